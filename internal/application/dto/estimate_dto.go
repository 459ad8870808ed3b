package dto

import (
	"time"

	"github.com/jhoicas/printshop-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// CreateEstimateRequest cuerpo de POST /api/estimates.
type CreateEstimateRequest struct {
	CustomerID     string               `json:"customer_id" validate:"required,uuid"`
	ServiceID      string               `json:"service_id,omitempty" validate:"omitempty,max=100"`
	Title          string               `json:"title" validate:"required,max=200"`
	Description    string               `json:"description,omitempty"`
	Specifications entity.Specification `json:"specifications"`
	UnitPrice      decimal.Decimal      `json:"unit_price"`
	Quantity       int                  `json:"quantity" validate:"required,min=1"`
	Priority       string               `json:"priority,omitempty" validate:"omitempty,oneof=low medium high urgent"`
}

// ReviseEstimateRequest cuerpo de POST /api/estimates/:id/revise. Los campos nil conservan el valor anterior.
type ReviseEstimateRequest struct {
	Title          *string               `json:"title,omitempty" validate:"omitempty,max=200"`
	Description    *string               `json:"description,omitempty"`
	Specifications *entity.Specification `json:"specifications,omitempty"`
	UnitPrice      *decimal.Decimal      `json:"unit_price,omitempty"`
	Quantity       *int                  `json:"quantity,omitempty" validate:"omitempty,min=1"`
	Priority       *string               `json:"priority,omitempty" validate:"omitempty,oneof=low medium high urgent"`
}

// RespondEstimateRequest cuerpo de POST /api/estimates/:id/respond.
type RespondEstimateRequest struct {
	Decision string `json:"decision" validate:"required,oneof=approve reject"`
	Response string `json:"response,omitempty" validate:"max=2000"`
}

// ListEstimatesRequest query de GET /api/estimates.
type ListEstimatesRequest struct {
	PageRequest
	CustomerID  string `query:"customer_id" validate:"omitempty,uuid"`
	Status      string `query:"status" validate:"omitempty,oneof=draft sent viewed approved rejected expired converted"`
	CurrentOnly bool   `query:"current_only"`
}

// EstimateResponse cotización en las respuestas. Status es el estado efectivo.
type EstimateResponse struct {
	ID               string               `json:"id"`
	EstimateNumber   string               `json:"estimate_number"`
	CustomerID       string               `json:"customer_id"`
	ServiceID        string               `json:"service_id,omitempty"`
	Title            string               `json:"title"`
	Description      string               `json:"description,omitempty"`
	Specifications   entity.Specification `json:"specifications"`
	UnitPrice        decimal.Decimal      `json:"unit_price"`
	Quantity         int                  `json:"quantity"`
	Subtotal         decimal.Decimal      `json:"subtotal"`
	TaxAmount        decimal.Decimal      `json:"tax_amount"`
	TotalAmount      decimal.Decimal      `json:"total_amount"`
	Status           string               `json:"status"`
	Priority         string               `json:"priority"`
	Version          int                  `json:"version"`
	IsCurrentVersion bool                 `json:"is_current_version"`
	ParentEstimateID string               `json:"parent_estimate_id,omitempty"`
	ConvertedToJobID string               `json:"converted_to_job_id,omitempty"`
	CustomerResponse string               `json:"customer_response,omitempty"`
	ExpiresAt        *time.Time           `json:"expires_at,omitempty"`
	SentAt           *time.Time           `json:"sent_at,omitempty"`
	ViewedAt         *time.Time           `json:"viewed_at,omitempty"`
	RespondedAt      *time.Time           `json:"responded_at,omitempty"`
	CreatedAt        time.Time            `json:"created_at"`
	UpdatedAt        time.Time            `json:"updated_at"`
}
