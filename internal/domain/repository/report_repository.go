package repository

import (
	"context"
	"time"

	"github.com/jhoicas/printshop-api/internal/domain/pricing"
	"github.com/shopspring/decimal"
)

// InvoiceSummary agrega las facturas creadas en un periodo.
type InvoiceSummary struct {
	Count       int
	Invoiced    decimal.Decimal
	Paid        decimal.Decimal
	Outstanding decimal.Decimal
}

// ReportRepository consultas de solo lectura del reporte de cobertura de precios.
// Un from/to cero deja abierto ese extremo del periodo.
type ReportRepository interface {
	JobPriceSources(ctx context.Context, from, to time.Time) ([]pricing.PriceSource, error)
	EstimatePriceSources(ctx context.Context, from, to time.Time) ([]pricing.PriceSource, error)
	InvoiceSummary(ctx context.Context, from, to time.Time) (InvoiceSummary, error)
}
