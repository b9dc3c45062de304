package controller

import (
	"autoideas-be/internal/pkg/serverutils"
	"autoideas-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IWorkshopController interface {
	RegisterRoutes(r fiber.Router)
	Show(ctx *fiber.Ctx) error
	Themes(ctx *fiber.Ctx) error
	Ideas(ctx *fiber.Ctx) error
	DeadLetters(ctx *fiber.Ctx) error
}

type workshopController struct {
	workshopService service.IWorkshopService
}

func NewWorkshopController(workshopService service.IWorkshopService) IWorkshopController {
	return &workshopController{
		workshopService: workshopService,
	}
}

func (c *workshopController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/workshop/v1")
	h.Get(":id", c.Show)
	h.Get(":id/themes", c.Themes)
	h.Get(":id/ideas", c.Ideas)
	h.Get(":id/dead-letters", c.DeadLetters)
}

func parseWorkshopID(ctx *fiber.Ctx) (uuid.UUID, error) {
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return uuid.Nil, serverutils.NewApiError(fiber.StatusBadRequest, "invalid workshop id")
	}
	return id, nil
}

func (c *workshopController) Show(ctx *fiber.Ctx) error {
	id, err := parseWorkshopID(ctx)
	if err != nil {
		return err
	}

	res, err := c.workshopService.Show(ctx.Context(), id)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success show workshop", res))
}

func (c *workshopController) Themes(ctx *fiber.Ctx) error {
	id, err := parseWorkshopID(ctx)
	if err != nil {
		return err
	}

	res, err := c.workshopService.Themes(ctx.Context(), id)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success list themes", res))
}

func (c *workshopController) Ideas(ctx *fiber.Ctx) error {
	id, err := parseWorkshopID(ctx)
	if err != nil {
		return err
	}

	limit := ctx.QueryInt("limit", 50)
	offset := ctx.QueryInt("offset", 0)

	res, err := c.workshopService.Ideas(ctx.Context(), id, limit, offset)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success list ideas", res))
}

func (c *workshopController) DeadLetters(ctx *fiber.Ctx) error {
	id, err := parseWorkshopID(ctx)
	if err != nil {
		return err
	}

	res, err := c.workshopService.DeadLetters(ctx.Context(), id)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success list dead letters", res))
}
