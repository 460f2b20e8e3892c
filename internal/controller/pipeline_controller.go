package controller

import (
	"influencer-scout-be/internal/dto"
	"influencer-scout-be/internal/pkg/serverutils"
	"influencer-scout-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IPipelineController interface {
	RegisterRoutes(r fiber.Router)
	Process(ctx *fiber.Ctx) error
}

type pipelineController struct {
	service service.IPipelineService
}

func NewPipelineController(service service.IPipelineService) IPipelineController {
	return &pipelineController{service: service}
}

func (c *pipelineController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/pipeline/v1")
	h.Use(serverutils.JwtMiddleware)
	h.Post("/process", c.Process)
}

// Process runs the pipeline synchronously. The bus consumer covers the
// automatic path; this endpoint is the explicit "run processing" action.
func (c *pipelineController) Process(ctx *fiber.Ctx) error {
	var req dto.ProcessRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.Process(ctx.Context(), req.SessionId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Pipeline run finished", res))
}
