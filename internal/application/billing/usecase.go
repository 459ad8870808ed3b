// Package billing convierte trabajos terminados en facturas y registra los pagos recibidos.
package billing

import (
	"context"
	"time"

	"github.com/jhoicas/printshop-api/internal/application/dto"
	"github.com/jhoicas/printshop-api/internal/application/ports"
	"github.com/jhoicas/printshop-api/internal/domain"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// Config valores por defecto de facturación.
type Config struct {
	TaxRate decimal.Decimal
	// DueIn se suma a la fecha de emisión cuando la solicitud no trae vencimiento.
	DueIn time.Duration
}

// UseCase operaciones de facturación.
type UseCase struct {
	tx    ports.TxRunner
	repos ports.Repos
	cfg   Config
	log   zerolog.Logger
	now   func() time.Time
}

// NewUseCase construye el caso de uso.
func NewUseCase(tx ports.TxRunner, repos ports.Repos, cfg Config, log zerolog.Logger) *UseCase {
	return &UseCase{
		tx:    tx,
		repos: repos,
		cfg:   cfg,
		log:   log.With().Str("component", "billing").Logger(),
		now:   time.Now,
	}
}

// WithClock reemplaza el reloj.
func (uc *UseCase) WithClock(now func() time.Time) *UseCase {
	uc.now = now
	return uc
}

// GetInvoice devuelve una factura con sus líneas y pagos. La mora se deriva de la fecha de vencimiento.
func (uc *UseCase) GetInvoice(ctx context.Context, id string) (*dto.InvoiceResponse, error) {
	inv, err := uc.repos.Invoices.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if inv == nil {
		return nil, domain.ErrNotFound
	}
	lines, err := uc.repos.Invoices.GetLineItems(ctx, id)
	if err != nil {
		return nil, err
	}
	payments, err := uc.repos.Invoices.ListPayments(ctx, id)
	if err != nil {
		return nil, err
	}
	return dto.NewInvoiceResponse(inv, lines, payments, uc.now()), nil
}
