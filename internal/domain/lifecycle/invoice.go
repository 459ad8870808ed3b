package lifecycle

import (
	"fmt"

	"github.com/jhoicas/printshop-api/internal/domain"
	"github.com/jhoicas/printshop-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

var invoiceTransitions = map[string][]string{
	entity.InvoiceDraft:  {entity.InvoiceIssued, entity.InvoiceCancelled},
	entity.InvoiceIssued: {entity.InvoiceCancelled},
}

// CheckInvoiceTransition devuelve ErrInvalidTransition salvo que from pueda pasar a to.
func CheckInvoiceTransition(from, to string) error {
	for _, t := range invoiceTransitions[from] {
		if t == to {
			return nil
		}
	}
	return fmt.Errorf("%w: invoice %s -> %s", domain.ErrInvalidTransition, from, to)
}

// PaymentStatusFor deriva el estado de pago guardado a partir de lo pagado.
func PaymentStatusFor(total, paid decimal.Decimal) string {
	switch {
	case paid.LessThanOrEqual(decimal.Zero):
		return entity.PaymentUnpaid
	case paid.GreaterThanOrEqual(total):
		return entity.PaymentPaid
	default:
		return entity.PaymentPartial
	}
}

// ApplyPayment suma amount a inv, manteniendo AmountDue = Total - AmountPaid.
// Se rechazan los sobrepagos y los pagos sobre facturas anuladas.
func ApplyPayment(inv *entity.Invoice, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return fmt.Errorf("%w: payment amount must be positive", domain.ErrInvalidInput)
	}
	if inv.Status == entity.InvoiceCancelled {
		return fmt.Errorf("%w: invoice is cancelled", domain.ErrInvalidTransition)
	}
	paid := inv.AmountPaid.Add(amount)
	if paid.GreaterThan(inv.Total) {
		return fmt.Errorf("%w: payment exceeds amount due %s", domain.ErrInvalidInput, inv.AmountDue.StringFixed(2))
	}
	inv.AmountPaid = paid
	inv.AmountDue = inv.Total.Sub(paid)
	inv.PaymentStatus = PaymentStatusFor(inv.Total, paid)
	return nil
}
