package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/printshop-api/internal/application/customer"
	"github.com/jhoicas/printshop-api/internal/application/dto"
)

// CustomerHandler endpoints de clientes.
type CustomerHandler struct {
	uc *customer.UseCase
}

// NewCustomerHandler construye el handler.
func NewCustomerHandler(uc *customer.UseCase) *CustomerHandler {
	return &CustomerHandler{uc: uc}
}

// Create POST /api/customers
func (h *CustomerHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateCustomerRequest
	if err := bindBody(c, &in); err != nil {
		return respondError(c, err)
	}
	out, err := h.uc.Create(c.UserContext(), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// List GET /api/customers?q=acme&limit=20&offset=0
func (h *CustomerHandler) List(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := bindQuery(c, &page); err != nil {
		return respondError(c, err)
	}
	list, err := h.uc.List(c.UserContext(), c.Query("q"), page)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(list)
}

// GetByID GET /api/customers/:id
func (h *CustomerHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.Get(c.UserContext(), paramID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}
