package dto

import (
	"time"

	"github.com/jhoicas/printshop-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// SubmitJobRequest cuerpo de POST /api/jobs.
type SubmitJobRequest struct {
	CustomerID     string               `json:"customer_id" validate:"required,uuid"`
	ServiceID      string               `json:"service_id,omitempty" validate:"omitempty,max=100"`
	Title          string               `json:"title" validate:"required,max=200"`
	Description    string               `json:"description,omitempty"`
	Specifications entity.Specification `json:"specifications"`
	UnitPrice      decimal.Decimal      `json:"unit_price"`
	Quantity       int                  `json:"quantity" validate:"required,min=1"`
	Priority       string               `json:"priority,omitempty" validate:"omitempty,oneof=low medium high urgent"`
	DueDate        *time.Time           `json:"due_date,omitempty"`
}

// UpdateJobStatusRequest cuerpo de PATCH /api/jobs/:id/status.
type UpdateJobStatusRequest struct {
	Status string `json:"status" validate:"required,max=32"`
}

// CompleteJobRequest cuerpo de POST /api/jobs/:id/complete.
type CompleteJobRequest struct {
	FinalCost decimal.Decimal `json:"final_cost"`
}

// ListJobsRequest query de GET /api/jobs.
type ListJobsRequest struct {
	PageRequest
	CustomerID string `query:"customer_id" validate:"omitempty,uuid"`
	Status     string `query:"status" validate:"omitempty,max=32"`
	Invoiced   *bool  `query:"invoiced"`
}

// JobResponse trabajo en las respuestas. Price es el precio canónico; PriceSource indica de qué campo salió.
type JobResponse struct {
	ID             string               `json:"id"`
	JobNo          string               `json:"job_no"`
	CustomerID     string               `json:"customer_id"`
	ServiceID      string               `json:"service_id,omitempty"`
	EstimateID     string               `json:"estimate_id,omitempty"`
	Title          string               `json:"title"`
	Description    string               `json:"description,omitempty"`
	Status         string               `json:"status"`
	Priority       string               `json:"priority"`
	Quantity       int                  `json:"quantity"`
	Specifications entity.Specification `json:"specifications"`
	Price          decimal.Decimal      `json:"price"`
	PriceSource    string               `json:"price_source,omitempty"`
	Invoiced       bool                 `json:"invoiced"`
	InvoiceNo      string               `json:"invoice_no,omitempty"`
	DueDate        *time.Time           `json:"due_date,omitempty"`
	CompletedAt    *time.Time           `json:"completed_at,omitempty"`
	CreatedAt      time.Time            `json:"created_at"`
	UpdatedAt      time.Time            `json:"updated_at"`
}
