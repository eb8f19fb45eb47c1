package controller

import (
	"shate-rag-be/internal/dto"
	"shate-rag-be/internal/pkg/serverutils"
	"shate-rag-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type ISystemController interface {
	RegisterRoutes(app *fiber.App, api fiber.Router)
	Health(ctx *fiber.Ctx) error
	Schema(ctx *fiber.Ctx) error
	GetLogs(ctx *fiber.Ctx) error
	GetChatLogs(ctx *fiber.Ctx) error
}

type systemController struct {
	service service.ISystemService
}

func NewSystemController(service service.ISystemService) ISystemController {
	return &systemController{service: service}
}

func (c *systemController) RegisterRoutes(app *fiber.App, api fiber.Router) {
	app.Get("/", c.Health)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	h := api.Group("/v1")
	h.Get("/schema", c.Schema)
	h.Get("/logs", c.GetLogs)
	h.Get("/chat-logs", c.GetChatLogs)
}

func (c *systemController) Health(ctx *fiber.Ctx) error {
	return ctx.JSON(c.service.Health(ctx.UserContext()))
}

func (c *systemController) Schema(ctx *fiber.Ctx) error {
	res, err := c.service.Schema(ctx.UserContext())
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success get schema", res))
}

func (c *systemController) GetLogs(ctx *fiber.Ctx) error {
	var req dto.GetSystemLogsRequest
	if err := ctx.QueryParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid query parameters")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.GetLogs(ctx.UserContext(), &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success get logs", res))
}

func (c *systemController) GetChatLogs(ctx *fiber.Ctx) error {
	var req dto.GetChatLogsRequest
	if err := ctx.QueryParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid query parameters")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.GetChatLogs(ctx.UserContext(), &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success get chat logs", res))
}
