package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateInvoiceRequest cuerpo de POST /api/invoices.
type CreateInvoiceRequest struct {
	CustomerID string          `json:"customer_id" validate:"required,uuid"`
	JobIDs     []string        `json:"job_ids" validate:"required,min=1,dive,required,uuid"`
	Discount   decimal.Decimal `json:"discount"`
	Notes      string          `json:"notes,omitempty" validate:"max=2000"`
	DueDate    *time.Time      `json:"due_date,omitempty"`
}

// RecordPaymentRequest cuerpo de POST /api/invoices/:id/payments.
type RecordPaymentRequest struct {
	Amount    decimal.Decimal `json:"amount"`
	Method    string          `json:"method" validate:"required,oneof=cash card transfer check other"`
	Reference string          `json:"reference,omitempty" validate:"max=100"`
}

// InvoiceLineResponse una línea de factura.
type InvoiceLineResponse struct {
	ID          string          `json:"id"`
	JobID       string          `json:"job_id,omitempty"`
	Description string          `json:"description"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	TotalPrice  decimal.Decimal `json:"total_price"`
	Voided      bool            `json:"voided,omitempty"`
}

// PaymentResponse un pago registrado.
type PaymentResponse struct {
	ID         string          `json:"id"`
	Amount     decimal.Decimal `json:"amount"`
	Method     string          `json:"method"`
	Reference  string          `json:"reference,omitempty"`
	ReceivedAt time.Time       `json:"received_at"`
}

// InvoiceResponse factura con líneas y pagos. PaymentStatus se deriva al leer.
type InvoiceResponse struct {
	ID            string                `json:"id"`
	InvoiceNo     string                `json:"invoice_no"`
	CustomerID    string                `json:"customer_id"`
	Subtotal      decimal.Decimal       `json:"subtotal"`
	TaxRate       decimal.Decimal       `json:"tax_rate"`
	Tax           decimal.Decimal       `json:"tax"`
	Discount      decimal.Decimal       `json:"discount"`
	Total         decimal.Decimal       `json:"total"`
	AmountPaid    decimal.Decimal       `json:"amount_paid"`
	AmountDue     decimal.Decimal       `json:"amount_due"`
	Status        string                `json:"status"`
	PaymentStatus string                `json:"payment_status"`
	Notes         string                `json:"notes,omitempty"`
	DueDate       *time.Time            `json:"due_date,omitempty"`
	Lines         []InvoiceLineResponse `json:"lines"`
	Payments      []PaymentResponse     `json:"payments,omitempty"`
	CreatedAt     time.Time             `json:"created_at"`
}
