package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/printshop-api/internal/application/catalog"
	"github.com/jhoicas/printshop-api/internal/application/dto"
)

// CatalogHandler datos de referencia, resolución de especificaciones y cotizaciones en vivo.
type CatalogHandler struct {
	svc *catalog.Service
}

// NewCatalogHandler construye el handler.
func NewCatalogHandler(svc *catalog.Service) *CatalogHandler {
	return &CatalogHandler{svc: svc}
}

// Get GET /api/catalog. Nunca falla: si el backend cae se sirve el catálogo incorporado.
func (h *CatalogHandler) Get(c *fiber.Ctx) error {
	return c.JSON(h.svc.Get(c.UserContext()))
}

// Resolve POST /api/catalog/resolve
func (h *CatalogHandler) Resolve(c *fiber.Ctx) error {
	var in dto.ResolveRequest
	if err := bindBody(c, &in); err != nil {
		return respondError(c, err)
	}
	out, err := h.svc.Resolve(c.UserContext(), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Quote POST /api/pricing/quote
func (h *CatalogHandler) Quote(c *fiber.Ctx) error {
	var in dto.QuoteRequest
	if err := bindBody(c, &in); err != nil {
		return respondError(c, err)
	}
	out, err := h.svc.Quote(c.UserContext(), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}
