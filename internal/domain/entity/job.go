package entity

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// Estados operativos del trabajo. El estado es libre; estos son los valores que usa la imprenta.
const (
	JobPending    = "pending"
	JobInProgress = "in_progress"
	JobOnHold     = "on_hold"
	JobCompleted  = "completed"
	JobCancelled  = "cancelled"
)

// Job es una orden de producción. Lleva varias representaciones históricas del precio;
// pricing.CanonicalPrice decide cuál es la que manda.
type Job struct {
	ID             string
	JobNo          string
	CustomerID     string
	ServiceID      string
	EstimateID     string
	Title          string
	Description    string
	Status         string
	Priority       Priority
	Quantity       int
	Specifications Specification

	UnitPrice     decimal.NullDecimal
	EstimatePrice decimal.NullDecimal
	EstimatedCost decimal.NullDecimal
	FinalCost     decimal.NullDecimal
	FinalPrice    decimal.NullDecimal
	// Estimate es el blob de precio heredado de formato libre (total, total_price, totalPrice, price, cost, amount).
	Estimate json.RawMessage

	Invoiced  bool
	InvoiceID string
	InvoiceNo string

	DueDate     *time.Time
	CompletedAt *time.Time
	CreatedBy   string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
