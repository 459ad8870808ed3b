package repository

import (
	"context"
	"time"

	"github.com/jhoicas/printshop-api/internal/domain/entity"
)

// InvoiceRepository puerto de persistencia de facturas, líneas y pagos.
type InvoiceRepository interface {
	Create(ctx context.Context, inv *entity.Invoice) error
	CreateLineItem(ctx context.Context, item *entity.InvoiceLineItem) error
	GetByID(ctx context.Context, id string) (*entity.Invoice, error)
	GetForUpdate(ctx context.Context, id string) (*entity.Invoice, error)
	GetLineItems(ctx context.Context, invoiceID string) ([]*entity.InvoiceLineItem, error)
	// UpdatePayment escribe amount_paid, amount_due y payment_status.
	UpdatePayment(ctx context.Context, inv *entity.Invoice) error
	// Cancel pasa a cancelled una factura sin pagos y anula sus líneas para que los trabajos se puedan volver a facturar.
	// Devuelve ErrConflict si la factura ya está anulada o tiene pagos.
	Cancel(ctx context.Context, id string, at time.Time) error
	CreatePayment(ctx context.Context, p *entity.Payment) error
	ListPayments(ctx context.Context, invoiceID string) ([]*entity.Payment, error)
}
