package billing

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/google/uuid"
	"github.com/jhoicas/printshop-api/internal/application/dto"
	"github.com/jhoicas/printshop-api/internal/application/numbering"
	"github.com/jhoicas/printshop-api/internal/application/ports"
	"github.com/jhoicas/printshop-api/internal/domain"
	"github.com/jhoicas/printshop-api/internal/domain/entity"
	"github.com/jhoicas/printshop-api/internal/domain/pricing"
	"github.com/shopspring/decimal"
)

// CreateInvoiceFromJobs factura trabajos de un mismo cliente en una sola transacción: se bloquean
// los trabajos, se valoran con el consolidador, se emite el número de factura, se escriben
// cabecera y líneas y los trabajos quedan marcados como facturados. Un fallo no deja factura parcial.
func (uc *UseCase) CreateInvoiceFromJobs(ctx context.Context, userID string, in dto.CreateInvoiceRequest) (*dto.InvoiceResponse, error) {
	ids := make([]string, 0, len(in.JobIDs))
	for _, id := range in.JobIDs {
		id = strings.TrimSpace(id)
		if id != "" && !slices.Contains(ids, id) {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return nil, fmt.Errorf("%w: at least one job is required", domain.ErrInvalidInput)
	}
	if in.Discount.IsNegative() {
		return nil, fmt.Errorf("%w: discount must not be negative", domain.ErrInvalidInput)
	}
	cust, err := uc.repos.Customers.GetByID(ctx, in.CustomerID)
	if err != nil {
		return nil, err
	}
	if cust == nil {
		return nil, fmt.Errorf("%w: customer %s", domain.ErrInvalidReference, in.CustomerID)
	}

	now := uc.now().UTC()
	due := in.DueDate
	if due == nil && uc.cfg.DueIn > 0 {
		d := now.Add(uc.cfg.DueIn)
		due = &d
	}
	inv := &entity.Invoice{
		ID:            uuid.New().String(),
		CustomerID:    cust.ID,
		TaxRate:       uc.cfg.TaxRate,
		Status:        entity.InvoiceIssued,
		PaymentStatus: entity.PaymentUnpaid,
		Notes:         strings.TrimSpace(in.Notes),
		DueDate:       due,
		CreatedBy:     userID,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	var lines []*entity.InvoiceLineItem

	err = uc.tx.RunInTx(ctx, func(r ports.Repos) error {
		locked, err := r.Jobs.GetManyForUpdate(ctx, ids)
		if err != nil {
			return err
		}
		byID := make(map[string]*entity.Job, len(locked))
		for _, j := range locked {
			byID[j.ID] = j
		}

		lines = lines[:0]
		subtotal := decimal.Zero
		for i, id := range ids {
			j, ok := byID[id]
			if !ok {
				return fmt.Errorf("%w: job %s", domain.ErrNotFound, id)
			}
			switch {
			case j.CustomerID != cust.ID:
				return fmt.Errorf("%w: job %s belongs to another customer", domain.ErrInvalidInput, j.JobNo)
			case j.Invoiced:
				return fmt.Errorf("%w: %s is on invoice %s", domain.ErrAlreadyInvoiced, j.JobNo, j.InvoiceNo)
			case j.Status == entity.JobCancelled:
				return fmt.Errorf("%w: job %s is cancelled", domain.ErrConflict, j.JobNo)
			}
			line, err := lineFor(j, uc.cfg.TaxRate)
			if err != nil {
				return err
			}
			line.InvoiceID = inv.ID
			line.Position = i + 1
			subtotal = subtotal.Add(line.TotalPrice)
			lines = append(lines, line)
		}

		totals, err := pricing.Totals(subtotal, uc.cfg.TaxRate, in.Discount)
		if err != nil {
			return err
		}
		inv.Subtotal = totals.Subtotal
		inv.Tax = totals.Tax
		inv.Discount = totals.Discount
		inv.Total = totals.Total
		inv.GrandTotal = totals.Total
		inv.AmountPaid = decimal.Zero
		inv.AmountDue = totals.Total

		number, err := numbering.NewIssuer(r.Counters).Next(ctx, numbering.Invoice)
		if err != nil {
			return err
		}
		inv.InvoiceNo = number
		if err := r.Invoices.Create(ctx, inv); err != nil {
			return err
		}
		for _, line := range lines {
			if err := r.Invoices.CreateLineItem(ctx, line); err != nil {
				return err
			}
		}
		n, err := r.Jobs.MarkInvoiced(ctx, ids, inv.ID, inv.InvoiceNo, now)
		if err != nil {
			return err
		}
		if int(n) != len(ids) {
			return fmt.Errorf("%w: %d of %d jobs were invoiced concurrently", domain.ErrAlreadyInvoiced, len(ids)-int(n), len(ids))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("invoice_no", inv.InvoiceNo).Int("jobs", len(ids)).
		Str("total", inv.Total.StringFixed(2)).Msg("factura creada")
	return dto.NewInvoiceResponse(inv, lines, nil, now), nil
}

// lineFor factura un trabajo a su precio canónico. La línea conserva la cantidad del trabajo si
// cantidad × precio unitario (4 decimales) reproduce el total exacto; si no, es una sola unidad.
func lineFor(j *entity.Job, taxRate decimal.Decimal) (*entity.InvoiceLineItem, error) {
	total, _, ok := pricing.Consolidate(pricing.SourceFromJob(j))
	if !ok {
		return nil, fmt.Errorf("%w: job %s has no price", domain.ErrInvalidInput, j.JobNo)
	}
	total = total.Round(2)
	qty := j.Quantity
	if qty <= 0 {
		qty = 1
	}
	unit := total.Div(decimal.NewFromInt(int64(qty))).Round(4)
	if !unit.Mul(decimal.NewFromInt(int64(qty))).Equal(total) {
		qty, unit = 1, total
	}
	desc := strings.TrimSpace(j.Title)
	if desc == "" {
		desc = j.JobNo
	}
	return &entity.InvoiceLineItem{
		ID:          uuid.New().String(),
		JobID:       j.ID,
		Description: desc,
		Quantity:    qty,
		UnitPrice:   unit,
		TotalPrice:  total,
		TaxAmount:   total.Mul(taxRate).Round(2),
		Discount:    decimal.Zero,
	}, nil
}
