package controller

import (
	"autoideas-be/internal/dto"
	"autoideas-be/internal/pkg/serverutils"
	"autoideas-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IIngestController interface {
	RegisterRoutes(r fiber.Router)
	Submit(ctx *fiber.Ctx) error
	QueueStatus(ctx *fiber.Ctx) error
}

type ingestController struct {
	ingestService service.IIngestService
	apiKey        string
}

func NewIngestController(ingestService service.IIngestService, apiKey string) IIngestController {
	return &ingestController{
		ingestService: ingestService,
		apiKey:        apiKey,
	}
}

func (c *ingestController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/idea/v1")
	h.Use(serverutils.ApiKeyMiddleware(c.apiKey))
	h.Post("", c.Submit)
	h.Get("queue-status", c.QueueStatus)
}

func (c *ingestController) Submit(ctx *fiber.Ctx) error {
	var req dto.SubmitIdeaRequest
	if err := ctx.BodyParser(&req); err != nil {
		return serverutils.NewApiError(fiber.StatusBadRequest, "invalid request body")
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.ingestService.Submit(ctx.Context(), &req)
	if err != nil {
		return err
	}

	return ctx.Status(fiber.StatusAccepted).JSON(serverutils.SuccessResponse("Idea queued", res))
}

func (c *ingestController) QueueStatus(ctx *fiber.Ctx) error {
	res, err := c.ingestService.QueueStatus(ctx.Context())
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Queue status", res))
}
