package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/printshop-api/internal/application/billing"
	"github.com/jhoicas/printshop-api/internal/application/dto"
)

// InvoiceHandler endpoints de facturación.
type InvoiceHandler struct {
	uc *billing.UseCase
}

// NewInvoiceHandler construye el handler.
func NewInvoiceHandler(uc *billing.UseCase) *InvoiceHandler {
	return &InvoiceHandler{uc: uc}
}

// Create factura trabajos completados en una sola factura.
// POST /api/invoices
func (h *InvoiceHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateInvoiceRequest
	if err := bindBody(c, &in); err != nil {
		return respondError(c, err)
	}
	out, err := h.uc.CreateInvoiceFromJobs(c.UserContext(), GetUserID(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// GetByID GET /api/invoices/:id
func (h *InvoiceHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.GetInvoice(c.UserContext(), paramID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// RecordPayment POST /api/invoices/:id/payments
func (h *InvoiceHandler) RecordPayment(c *fiber.Ctx) error {
	var in dto.RecordPaymentRequest
	if err := bindBody(c, &in); err != nil {
		return respondError(c, err)
	}
	out, err := h.uc.RecordPayment(c.UserContext(), GetUserID(c), paramID(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Cancel POST /api/invoices/:id/cancel
func (h *InvoiceHandler) Cancel(c *fiber.Ctx) error {
	out, err := h.uc.CancelInvoice(c.UserContext(), paramID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}
