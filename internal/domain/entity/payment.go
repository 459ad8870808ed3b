package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Payment recibido contra una factura.
type Payment struct {
	ID         string
	InvoiceID  string
	Amount     decimal.Decimal
	Method     string
	Reference  string
	ReceivedAt time.Time
	CreatedBy  string
	CreatedAt  time.Time
}
