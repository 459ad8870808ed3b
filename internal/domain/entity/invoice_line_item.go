package entity

import "github.com/shopspring/decimal"

// InvoiceLineItem es una fila facturable, opcionalmente trazable a un trabajo.
type InvoiceLineItem struct {
	ID          string
	InvoiceID   string
	Position    int
	JobID       string
	Description string
	Quantity    int
	UnitPrice   decimal.Decimal
	TotalPrice  decimal.Decimal
	TaxAmount   decimal.Decimal
	Discount    decimal.Decimal
	// Voided se marca al anular la factura; el trabajo queda libre para facturarse de nuevo.
	Voided bool
}
