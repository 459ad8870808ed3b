package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// EstimateStatus ciclo de vida de una cotización. Las transiciones permitidas están en el paquete lifecycle.
type EstimateStatus string

const (
	EstimateDraft     EstimateStatus = "draft"
	EstimateSent      EstimateStatus = "sent"
	EstimateViewed    EstimateStatus = "viewed"
	EstimateApproved  EstimateStatus = "approved"
	EstimateRejected  EstimateStatus = "rejected"
	EstimateExpired   EstimateStatus = "expired"
	EstimateConverted EstimateStatus = "converted"
)

// Priority compartida por cotizaciones y trabajos.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// Valid indica si p es una de las prioridades conocidas.
func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

// Estimate es una cotización con precio enviada a un cliente. Las cotizaciones nunca se borran;
// una revisión crea una versión nueva en el mismo linaje.
type Estimate struct {
	ID               string
	EstimateNumber   string
	CustomerID       string
	ServiceID        string
	Title            string
	Description      string
	Specifications   Specification
	UnitPrice        decimal.Decimal
	Quantity         int
	Subtotal         decimal.Decimal
	TaxAmount        decimal.Decimal
	TotalAmount      decimal.Decimal
	Status           EstimateStatus
	Priority         Priority
	Version          int
	IsCurrentVersion bool
	ParentEstimateID string
	// LineageID es el id de la primera versión; todas las revisiones lo comparten.
	LineageID        string
	ConvertedToJobID string
	CustomerResponse string
	ExpiresAt        *time.Time
	SentAt           *time.Time
	ViewedAt         *time.Time
	RespondedAt      *time.Time
	CreatedBy        string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}
