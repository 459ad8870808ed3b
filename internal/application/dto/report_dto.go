package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CoverageDTO cobertura de precios de un tipo de documento.
type CoverageDTO struct {
	Total           int             `json:"total"`
	WithPrice       int             `json:"with_price"`
	Missing         int             `json:"missing"`
	CoveragePercent decimal.Decimal `json:"coverage_percent"`
	Sum             decimal.Decimal `json:"sum"`
	Average         decimal.Decimal `json:"average"`
	BySource        map[string]int  `json:"by_source,omitempty"`
}

// InvoiceSummaryDTO montos facturados, pagados y pendientes.
type InvoiceSummaryDTO struct {
	Count       int             `json:"count"`
	Invoiced    decimal.Decimal `json:"invoiced"`
	Paid        decimal.Decimal `json:"paid"`
	Outstanding decimal.Decimal `json:"outstanding"`
}

// PricingCoverageReport cuerpo de GET /api/reports/pricing-coverage.
type PricingCoverageReport struct {
	From        *time.Time        `json:"from,omitempty"`
	To          *time.Time        `json:"to,omitempty"`
	GeneratedAt time.Time         `json:"generated_at"`
	Jobs        CoverageDTO       `json:"jobs"`
	Estimates   CoverageDTO       `json:"estimates"`
	Invoices    InvoiceSummaryDTO `json:"invoices"`
}
