package http

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/printshop-api/internal/application/dto"
	"github.com/jhoicas/printshop-api/internal/application/report"
	"github.com/jhoicas/printshop-api/internal/domain"
)

// CoverageExporter genera el reporte de cobertura como hoja de cálculo.
type CoverageExporter interface {
	PricingCoverage(rep *dto.PricingCoverageReport) ([]byte, error)
}

// ReportHandler endpoints de reportes.
type ReportHandler struct {
	uc       *report.UseCase
	exporter CoverageExporter
}

// NewReportHandler construye el handler. exporter puede ser nil, lo que desactiva la salida xlsx.
func NewReportHandler(uc *report.UseCase, exporter CoverageExporter) *ReportHandler {
	return &ReportHandler{uc: uc, exporter: exporter}
}

// PricingCoverage informa cuántos trabajos y cotizaciones tienen un precio interpretable.
// GET /api/reports/pricing-coverage?from=2024-01-01&to=2024-02-01&format=xlsx
func (h *ReportHandler) PricingCoverage(c *fiber.Ctx) error {
	var p report.Period
	var err error
	if p.From, err = parseDate(c.Query("from")); err != nil {
		return respondError(c, err)
	}
	if p.To, err = parseDate(c.Query("to")); err != nil {
		return respondError(c, err)
	}
	rep, err := h.uc.PricingCoverage(c.UserContext(), p)
	if err != nil {
		return respondError(c, err)
	}

	switch c.Query("format", "json") {
	case "json":
		return c.JSON(rep)
	case "xlsx":
		if h.exporter == nil {
			return respondError(c, fmt.Errorf("%w: xlsx export is not available", domain.ErrInvalidInput))
		}
		data, err := h.exporter.PricingCoverage(rep)
		if err != nil {
			return respondError(c, err)
		}
		c.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="pricing-coverage-%s.xlsx"`, rep.GeneratedAt.Format("20060102")))
		return c.Send(data)
	default:
		return respondError(c, fmt.Errorf("%w: format must be json or xlsx", domain.ErrInvalidInput))
	}
}

// parseDate acepta timestamps RFC 3339 o fechas simples (medianoche UTC).
func parseDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			t = t.UTC()
			return &t, nil
		}
	}
	return nil, fmt.Errorf("%w: invalid date %q", domain.ErrInvalidInput, s)
}
