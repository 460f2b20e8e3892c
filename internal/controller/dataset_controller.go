package controller

import (
	"fmt"

	"influencer-scout-be/internal/pkg/serverutils"
	"influencer-scout-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IDatasetController interface {
	RegisterRoutes(r fiber.Router)
	Show(ctx *fiber.Ctx) error
	ExportCSV(ctx *fiber.Ctx) error
}

type datasetController struct {
	service service.IPipelineService
}

func NewDatasetController(service service.IPipelineService) IDatasetController {
	return &datasetController{service: service}
}

func (c *datasetController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/dataset/v1")
	h.Use(serverutils.JwtMiddleware)
	h.Get("/:sessionId", c.Show)
	h.Get("/:sessionId/csv", c.ExportCSV)
}

func (c *datasetController) Show(ctx *fiber.Ctx) error {
	sessionId, err := uuid.Parse(ctx.Params("sessionId"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid session id")
	}

	res, err := c.service.GetDataset(ctx.Context(), sessionId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Session dataset", res))
}

func (c *datasetController) ExportCSV(ctx *fiber.Ctx) error {
	sessionId, err := uuid.Parse(ctx.Params("sessionId"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid session id")
	}

	csvText, err := c.service.GetDatasetCSV(ctx.Context(), sessionId)
	if err != nil {
		return err
	}

	ctx.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
	ctx.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="dataset-%s.csv"`, sessionId))
	return ctx.SendString(csvText)
}
