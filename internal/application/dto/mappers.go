package dto

import (
	"time"

	"github.com/jhoicas/printshop-api/internal/domain/entity"
	"github.com/jhoicas/printshop-api/internal/domain/lifecycle"
	"github.com/jhoicas/printshop-api/internal/domain/pricing"
)

// NewEstimateResponse mapea una cotización con su estado efectivo en now.
func NewEstimateResponse(e *entity.Estimate, now time.Time) *EstimateResponse {
	return &EstimateResponse{
		ID:               e.ID,
		EstimateNumber:   e.EstimateNumber,
		CustomerID:       e.CustomerID,
		ServiceID:        e.ServiceID,
		Title:            e.Title,
		Description:      e.Description,
		Specifications:   e.Specifications,
		UnitPrice:        e.UnitPrice,
		Quantity:         e.Quantity,
		Subtotal:         e.Subtotal,
		TaxAmount:        e.TaxAmount,
		TotalAmount:      e.TotalAmount,
		Status:           string(lifecycle.EffectiveStatus(e, now)),
		Priority:         string(e.Priority),
		Version:          e.Version,
		IsCurrentVersion: e.IsCurrentVersion,
		ParentEstimateID: e.ParentEstimateID,
		ConvertedToJobID: e.ConvertedToJobID,
		CustomerResponse: e.CustomerResponse,
		ExpiresAt:        e.ExpiresAt,
		SentAt:           e.SentAt,
		ViewedAt:         e.ViewedAt,
		RespondedAt:      e.RespondedAt,
		CreatedAt:        e.CreatedAt,
		UpdatedAt:        e.UpdatedAt,
	}
}

// NewJobResponse mapea un trabajo con su precio canónico.
func NewJobResponse(j *entity.Job) *JobResponse {
	price, source, _ := pricing.Consolidate(pricing.SourceFromJob(j))
	return &JobResponse{
		ID:             j.ID,
		JobNo:          j.JobNo,
		CustomerID:     j.CustomerID,
		ServiceID:      j.ServiceID,
		EstimateID:     j.EstimateID,
		Title:          j.Title,
		Description:    j.Description,
		Status:         j.Status,
		Priority:       string(j.Priority),
		Quantity:       j.Quantity,
		Specifications: j.Specifications,
		Price:          price.Round(2),
		PriceSource:    source,
		Invoiced:       j.Invoiced,
		InvoiceNo:      j.InvoiceNo,
		DueDate:        j.DueDate,
		CompletedAt:    j.CompletedAt,
		CreatedAt:      j.CreatedAt,
		UpdatedAt:      j.UpdatedAt,
	}
}

// NewInvoiceResponse mapea una factura con líneas y pagos; el estado de pago se evalúa en now.
func NewInvoiceResponse(inv *entity.Invoice, lines []*entity.InvoiceLineItem, payments []*entity.Payment, now time.Time) *InvoiceResponse {
	out := &InvoiceResponse{
		ID:            inv.ID,
		InvoiceNo:     inv.InvoiceNo,
		CustomerID:    inv.CustomerID,
		Subtotal:      inv.Subtotal,
		TaxRate:       inv.TaxRate,
		Tax:           inv.Tax,
		Discount:      inv.Discount,
		Total:         inv.Total,
		AmountPaid:    inv.AmountPaid,
		AmountDue:     inv.AmountDue,
		Status:        inv.Status,
		PaymentStatus: inv.EffectivePaymentStatus(now),
		Notes:         inv.Notes,
		DueDate:       inv.DueDate,
		Lines:         make([]InvoiceLineResponse, 0, len(lines)),
		CreatedAt:     inv.CreatedAt,
	}
	for _, l := range lines {
		out.Lines = append(out.Lines, InvoiceLineResponse{
			ID:          l.ID,
			JobID:       l.JobID,
			Description: l.Description,
			Quantity:    l.Quantity,
			UnitPrice:   l.UnitPrice,
			TotalPrice:  l.TotalPrice,
			Voided:      l.Voided,
		})
	}
	for _, p := range payments {
		out.Payments = append(out.Payments, PaymentResponse{
			ID:         p.ID,
			Amount:     p.Amount,
			Method:     p.Method,
			Reference:  p.Reference,
			ReceivedAt: p.ReceivedAt,
		})
	}
	return out
}

// NewFileResponse mapea un registro de adjunto.
func NewFileResponse(f *entity.FileRecord) *FileResponse {
	return &FileResponse{
		ID:          f.ID,
		FileName:    f.FileName,
		URL:         f.URL,
		Size:        f.Size,
		ContentType: f.ContentType,
		UploadedBy:  f.UploadedBy,
		CreatedAt:   f.CreatedAt,
	}
}

// NewCoverageDTO mapea las estadísticas de cobertura.
func NewCoverageDTO(st pricing.CoverageStats, bySource map[string]int) CoverageDTO {
	return CoverageDTO{
		Total:           st.Total,
		WithPrice:       st.WithPrice,
		Missing:         st.Missing,
		CoveragePercent: st.CoveragePercent,
		Sum:             st.Sum,
		Average:         st.Average,
		BySource:        bySource,
	}
}
