package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/printshop-api/internal/domain"
	"github.com/jhoicas/printshop-api/internal/domain/entity"
	"github.com/jhoicas/printshop-api/internal/domain/repository"
)

var _ repository.InvoiceRepository = (*InvoiceRepo)(nil)

// InvoiceRepo InvoiceRepository sobre pool o tx. El llamador escribe cabecera y líneas
// dentro de una misma transacción.
type InvoiceRepo struct {
	q Querier
}

// NewInvoiceRepository construye el adaptador. Pasar pool o tx.
func NewInvoiceRepository(q Querier) *InvoiceRepo {
	return &InvoiceRepo{q: q}
}

const invoiceColumns = `
	id, invoice_no, customer_id, subtotal, tax_rate, tax, discount, total, grand_total,
	amount_paid, amount_due, status, payment_status, COALESCE(notes, ''), due_date,
	COALESCE(created_by, ''), created_at, updated_at`

// Create inserta la cabecera de la factura.
func (r *InvoiceRepo) Create(ctx context.Context, inv *entity.Invoice) error {
	if inv.ID == "" {
		inv.ID = uuid.New().String()
	}
	const query = `
		INSERT INTO invoices (id, invoice_no, customer_id, subtotal, tax_rate, tax, discount, total,
			grand_total, amount_paid, amount_due, status, payment_status, notes, due_date, created_by,
			created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)`
	_, err := r.q.Exec(ctx, query,
		inv.ID, inv.InvoiceNo, inv.CustomerID, inv.Subtotal, inv.TaxRate, inv.Tax, inv.Discount, inv.Total,
		inv.GrandTotal, inv.AmountPaid, inv.AmountDue, inv.Status, inv.PaymentStatus, nullIfEmpty(inv.Notes),
		inv.DueDate, nullIfEmpty(inv.CreatedBy), inv.CreatedAt, inv.UpdatedAt,
	)
	return mapError("insert invoice", err)
}

// CreateLineItem inserta una línea. Un trabajo ya facturado en otra viola invoice_line_items_job_live.
func (r *InvoiceRepo) CreateLineItem(ctx context.Context, item *entity.InvoiceLineItem) error {
	if item.ID == "" {
		item.ID = uuid.New().String()
	}
	const query = `
		INSERT INTO invoice_line_items (id, invoice_id, line_no, job_id, description, quantity, unit_price,
			total_price, tax_amount, discount)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.q.Exec(ctx, query,
		item.ID, item.InvoiceID, item.Position, nullIfEmpty(item.JobID), item.Description, item.Quantity,
		item.UnitPrice, item.TotalPrice, item.TaxAmount, item.Discount,
	)
	if isUniqueViolation(err) {
		return domain.ErrAlreadyInvoiced
	}
	return mapError("insert invoice line item", err)
}

// GetByID devuelve (nil, nil) cuando la factura no existe.
func (r *InvoiceRepo) GetByID(ctx context.Context, id string) (*entity.Invoice, error) {
	return r.getOne(ctx, `SELECT `+invoiceColumns+` FROM invoices WHERE id = $1`, id)
}

// GetForUpdate bloquea la fila de la factura para registrar pagos.
func (r *InvoiceRepo) GetForUpdate(ctx context.Context, id string) (*entity.Invoice, error) {
	return r.getOne(ctx, `SELECT `+invoiceColumns+` FROM invoices WHERE id = $1 FOR UPDATE`, id)
}

func (r *InvoiceRepo) getOne(ctx context.Context, query, id string) (*entity.Invoice, error) {
	var inv entity.Invoice
	err := r.q.QueryRow(ctx, query, id).Scan(
		&inv.ID, &inv.InvoiceNo, &inv.CustomerID, &inv.Subtotal, &inv.TaxRate, &inv.Tax, &inv.Discount,
		&inv.Total, &inv.GrandTotal, &inv.AmountPaid, &inv.AmountDue, &inv.Status, &inv.PaymentStatus,
		&inv.Notes, &inv.DueDate, &inv.CreatedBy, &inv.CreatedAt, &inv.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, mapError("get invoice", err)
	}
	return &inv, nil
}

// GetLineItems ordenadas por posición.
func (r *InvoiceRepo) GetLineItems(ctx context.Context, invoiceID string) ([]*entity.InvoiceLineItem, error) {
	const query = `
		SELECT id, invoice_id, line_no, COALESCE(job_id::text, ''), description, quantity, unit_price,
		       total_price, tax_amount, discount, voided
		FROM invoice_line_items WHERE invoice_id = $1 ORDER BY line_no`
	rows, err := r.q.Query(ctx, query, invoiceID)
	if err != nil {
		return nil, mapError("list invoice line items", err)
	}
	defer rows.Close()
	var out []*entity.InvoiceLineItem
	for rows.Next() {
		var it entity.InvoiceLineItem
		if err := rows.Scan(&it.ID, &it.InvoiceID, &it.Position, &it.JobID, &it.Description, &it.Quantity,
			&it.UnitPrice, &it.TotalPrice, &it.TaxAmount, &it.Discount, &it.Voided); err != nil {
			return nil, mapError("scan invoice line item", err)
		}
		out = append(out, &it)
	}
	return out, mapError("list invoice line items", rows.Err())
}

// UpdatePayment persiste los montos pagado y pendiente.
func (r *InvoiceRepo) UpdatePayment(ctx context.Context, inv *entity.Invoice) error {
	const query = `
		UPDATE invoices SET amount_paid = $2, amount_due = $3, payment_status = $4, updated_at = $5
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query, inv.ID, inv.AmountPaid, inv.AmountDue, inv.PaymentStatus, inv.UpdatedAt)
	if err != nil {
		return mapError("update invoice payment", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Cancel pasa a cancelled una factura sin pagos y anula sus líneas. Ejecutar dentro de una tx.
func (r *InvoiceRepo) Cancel(ctx context.Context, id string, at time.Time) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE invoices SET status = 'cancelled', updated_at = $2
		WHERE id = $1 AND status <> 'cancelled' AND amount_paid = 0`, id, at)
	if err != nil {
		return mapError("cancel invoice", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: invoice %s cannot be cancelled", domain.ErrConflict, id)
	}
	_, err = r.q.Exec(ctx, `UPDATE invoice_line_items SET voided = true WHERE invoice_id = $1`, id)
	return mapError("void invoice lines", err)
}

// CreatePayment registra un pago.
func (r *InvoiceRepo) CreatePayment(ctx context.Context, p *entity.Payment) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	const query = `
		INSERT INTO invoice_payments (id, invoice_id, amount, method, reference, received_at, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.q.Exec(ctx, query,
		p.ID, p.InvoiceID, p.Amount, nullIfEmpty(p.Method), nullIfEmpty(p.Reference), p.ReceivedAt,
		nullIfEmpty(p.CreatedBy), p.CreatedAt,
	)
	return mapError("insert payment", err)
}

// ListPayments del más viejo al más nuevo.
func (r *InvoiceRepo) ListPayments(ctx context.Context, invoiceID string) ([]*entity.Payment, error) {
	const query = `
		SELECT id, invoice_id, amount, COALESCE(method, ''), COALESCE(reference, ''), received_at,
		       COALESCE(created_by, ''), created_at
		FROM invoice_payments WHERE invoice_id = $1 ORDER BY received_at, created_at`
	rows, err := r.q.Query(ctx, query, invoiceID)
	if err != nil {
		return nil, mapError("list payments", err)
	}
	defer rows.Close()
	var out []*entity.Payment
	for rows.Next() {
		var p entity.Payment
		if err := rows.Scan(&p.ID, &p.InvoiceID, &p.Amount, &p.Method, &p.Reference, &p.ReceivedAt,
			&p.CreatedBy, &p.CreatedAt); err != nil {
			return nil, mapError("scan payment", err)
		}
		out = append(out, &p)
	}
	return out, mapError("list payments", rows.Err())
}
