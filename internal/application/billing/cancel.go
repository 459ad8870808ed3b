package billing

import (
	"context"
	"fmt"

	"github.com/jhoicas/printshop-api/internal/application/dto"
	"github.com/jhoicas/printshop-api/internal/application/ports"
	"github.com/jhoicas/printshop-api/internal/domain"
	"github.com/jhoicas/printshop-api/internal/domain/entity"
	"github.com/jhoicas/printshop-api/internal/domain/lifecycle"
)

// CancelInvoice anula una factura que no ha recibido pagos. Sus trabajos quedan liberados para
// facturarse en una factura nueva.
func (uc *UseCase) CancelInvoice(ctx context.Context, invoiceID string) (*dto.InvoiceResponse, error) {
	now := uc.now().UTC()
	var released int64
	err := uc.tx.RunInTx(ctx, func(r ports.Repos) error {
		inv, err := r.Invoices.GetForUpdate(ctx, invoiceID)
		if err != nil {
			return err
		}
		if inv == nil {
			return domain.ErrNotFound
		}
		if err := lifecycle.CheckInvoiceTransition(inv.Status, entity.InvoiceCancelled); err != nil {
			return err
		}
		if !inv.AmountPaid.IsZero() {
			return fmt.Errorf("%w: invoice %s has %s paid", domain.ErrConflict, inv.InvoiceNo, inv.AmountPaid.StringFixed(2))
		}
		if err := r.Invoices.Cancel(ctx, inv.ID, now); err != nil {
			return err
		}
		released, err = r.Jobs.ReleaseInvoice(ctx, inv.ID, now)
		return err
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("invoice_id", invoiceID).Int64("jobs_released", released).Msg("factura anulada")
	return uc.GetInvoice(ctx, invoiceID)
}
