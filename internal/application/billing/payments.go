package billing

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/jhoicas/printshop-api/internal/application/dto"
	"github.com/jhoicas/printshop-api/internal/application/ports"
	"github.com/jhoicas/printshop-api/internal/domain"
	"github.com/jhoicas/printshop-api/internal/domain/entity"
	"github.com/jhoicas/printshop-api/internal/domain/lifecycle"
)

// RecordPayment aplica un pago a una factura. La fila de la factura se bloquea para que pagos
// concurrentes no la sobrepaguen entre todos.
func (uc *UseCase) RecordPayment(ctx context.Context, userID, invoiceID string, in dto.RecordPaymentRequest) (*dto.InvoiceResponse, error) {
	now := uc.now().UTC()
	err := uc.tx.RunInTx(ctx, func(r ports.Repos) error {
		inv, err := r.Invoices.GetForUpdate(ctx, invoiceID)
		if err != nil {
			return err
		}
		if inv == nil {
			return domain.ErrNotFound
		}
		if err := lifecycle.ApplyPayment(inv, in.Amount); err != nil {
			return err
		}
		inv.UpdatedAt = now
		if err := r.Invoices.UpdatePayment(ctx, inv); err != nil {
			return err
		}
		return r.Invoices.CreatePayment(ctx, &entity.Payment{
			ID:         uuid.New().String(),
			InvoiceID:  inv.ID,
			Amount:     in.Amount.Round(2),
			Method:     strings.TrimSpace(in.Method),
			Reference:  strings.TrimSpace(in.Reference),
			ReceivedAt: now,
			CreatedBy:  userID,
			CreatedAt:  now,
		})
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("invoice_id", invoiceID).Str("amount", in.Amount.StringFixed(2)).Msg("pago registrado")
	return uc.GetInvoice(ctx, invoiceID)
}
