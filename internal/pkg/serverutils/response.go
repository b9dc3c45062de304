package serverutils

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var validate = validator.New()

// ApiError carries an HTTP status alongside a user-facing message.
type ApiError struct {
	Status  int    `json:"-"`
	Message string `json:"message"`
}

func (e *ApiError) Error() string {
	return e.Message
}

func NewApiError(status int, format string, args ...interface{}) *ApiError {
	return &ApiError{Status: status, Message: fmt.Sprintf(format, args...)}
}

type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func SuccessResponse(message string, data interface{}) Response {
	return Response{Success: true, Message: message, Data: data}
}

// ValidateRequest runs struct-tag validation and converts failures to a 400.
func ValidateRequest(req interface{}) error {
	if err := validate.Struct(req); err != nil {
		var ve validator.ValidationErrors
		if errors.As(err, &ve) && len(ve) > 0 {
			f := ve[0]
			return NewApiError(fiber.StatusBadRequest, "field '%s' failed on '%s'", f.Field(), f.Tag())
		}
		return NewApiError(fiber.StatusBadRequest, "invalid request body")
	}
	return nil
}

// ErrorHandlerMiddleware converts errors bubbled out of handlers into the
// JSON envelope. ApiError keeps its status, anything else becomes a 500.
func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}

		var apiErr *ApiError
		if errors.As(err, &apiErr) {
			return ctx.Status(apiErr.Status).JSON(Response{Success: false, Message: apiErr.Message})
		}

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return ctx.Status(fiberErr.Code).JSON(Response{Success: false, Message: fiberErr.Message})
		}

		return ctx.Status(fiber.StatusInternalServerError).JSON(Response{Success: false, Message: "internal server error"})
	}
}
