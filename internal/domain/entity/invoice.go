package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados del documento factura.
const (
	InvoiceDraft     = "draft"
	InvoiceIssued    = "issued"
	InvoiceCancelled = "cancelled"
)

// Estados de pago. Overdue se deriva al leer a partir de DueDate.
const (
	PaymentUnpaid  = "unpaid"
	PaymentPartial = "partial"
	PaymentPaid    = "paid"
	PaymentOverdue = "overdue"
)

// Invoice es la cabecera de una factura de cliente.
// Invariantes: Total = Subtotal + Tax - Discount; AmountDue = Total - AmountPaid.
type Invoice struct {
	ID            string
	InvoiceNo     string
	CustomerID    string
	Subtotal      decimal.Decimal
	TaxRate       decimal.Decimal
	Tax           decimal.Decimal
	Discount      decimal.Decimal
	Total         decimal.Decimal
	GrandTotal    decimal.Decimal
	AmountPaid    decimal.Decimal
	AmountDue     decimal.Decimal
	Status        string
	PaymentStatus string
	Notes         string
	DueDate       *time.Time
	CreatedBy     string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// EffectivePaymentStatus informa overdue para facturas sin pagar o con pago parcial pasada su fecha de vencimiento.
func (i *Invoice) EffectivePaymentStatus(now time.Time) string {
	if i.PaymentStatus == PaymentPaid || i.DueDate == nil {
		return i.PaymentStatus
	}
	if now.After(*i.DueDate) {
		return PaymentOverdue
	}
	return i.PaymentStatus
}
