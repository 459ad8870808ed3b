package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/printshop-api/internal/application/dto"
	"github.com/jhoicas/printshop-api/internal/application/estimate"
)

// EstimateHandler endpoints del ciclo de vida de cotizaciones.
type EstimateHandler struct {
	uc *estimate.UseCase
}

// NewEstimateHandler construye el handler.
func NewEstimateHandler(uc *estimate.UseCase) *EstimateHandler {
	return &EstimateHandler{uc: uc}
}

// Create POST /api/estimates
func (h *EstimateHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateEstimateRequest
	if err := bindBody(c, &in); err != nil {
		return respondError(c, err)
	}
	out, err := h.uc.Create(c.UserContext(), GetUserID(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// GetByID GET /api/estimates/:id
func (h *EstimateHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.Get(c.UserContext(), paramID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// List GET /api/estimates?customer_id=&status=&current_only=true
func (h *EstimateHandler) List(c *fiber.Ctx) error {
	var in dto.ListEstimatesRequest
	if err := bindQuery(c, &in); err != nil {
		return respondError(c, err)
	}
	list, err := h.uc.List(c.UserContext(), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(list)
}

// Send POST /api/estimates/:id/send
func (h *EstimateHandler) Send(c *fiber.Ctx) error {
	out, err := h.uc.Send(c.UserContext(), paramID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// View POST /api/estimates/:id/view
func (h *EstimateHandler) View(c *fiber.Ctx) error {
	out, err := h.uc.MarkViewed(c.UserContext(), paramID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Respond POST /api/estimates/:id/respond
func (h *EstimateHandler) Respond(c *fiber.Ctx) error {
	var in dto.RespondEstimateRequest
	if err := bindBody(c, &in); err != nil {
		return respondError(c, err)
	}
	out, err := h.uc.Respond(c.UserContext(), paramID(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Revise POST /api/estimates/:id/revise
func (h *EstimateHandler) Revise(c *fiber.Ctx) error {
	var in dto.ReviseEstimateRequest
	if err := bindBody(c, &in); err != nil {
		return respondError(c, err)
	}
	out, err := h.uc.Revise(c.UserContext(), GetUserID(c), paramID(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Convert POST /api/estimates/:id/convert
func (h *EstimateHandler) Convert(c *fiber.Ctx) error {
	est, job, err := h.uc.ConvertToJob(c.UserContext(), GetUserID(c), paramID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"estimate": est, "job": job})
}
