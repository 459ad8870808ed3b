package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/printshop-api/internal/domain"
	"github.com/jhoicas/printshop-api/internal/domain/entity"
	"github.com/jhoicas/printshop-api/internal/domain/repository"
	"github.com/jhoicas/printshop-api/internal/domain/specification"
	"github.com/shopspring/decimal"
)

var _ repository.JobRepository = (*JobRepo)(nil)

// JobRepo JobRepository sobre pool o tx.
type JobRepo struct {
	q Querier
}

// NewJobRepository construye el adaptador. Pasar pool o tx.
func NewJobRepository(q Querier) *JobRepo {
	return &JobRepo{q: q}
}

const jobColumns = `
	id, job_no, customer_id, COALESCE(service_id, ''), COALESCE(estimate_id::text, ''), title,
	COALESCE(description, ''), status, priority, quantity, specifications,
	unit_price, estimate_price, estimated_cost, final_cost, final_price, estimate,
	invoiced, COALESCE(invoice_id::text, ''), COALESCE(invoice_no, ''),
	due_date, completed_at, COALESCE(created_by, ''), created_at, updated_at`

// Create inserta un trabajo; un job_no o estimate_id duplicado llega como domain.ErrDuplicate.
func (r *JobRepo) Create(ctx context.Context, j *entity.Job) error {
	if j.ID == "" {
		j.ID = uuid.New().String()
	}
	spec, err := specification.EncodeSnapshot(j.Specifications)
	if err != nil {
		return err
	}
	var legacy any
	if len(j.Estimate) > 0 {
		legacy = []byte(j.Estimate)
	}
	const query = `
		INSERT INTO jobs (id, job_no, customer_id, service_id, estimate_id, title, description, status,
			priority, quantity, specifications, unit_price, estimate_price, estimated_cost, final_cost,
			final_price, estimate, due_date, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21)`
	_, err = r.q.Exec(ctx, query,
		j.ID, j.JobNo, j.CustomerID, nullIfEmpty(j.ServiceID), nullIfEmpty(j.EstimateID), j.Title,
		nullIfEmpty(j.Description), j.Status, string(j.Priority), j.Quantity, spec,
		j.UnitPrice, j.EstimatePrice, j.EstimatedCost, j.FinalCost, j.FinalPrice, legacy,
		j.DueDate, nullIfEmpty(j.CreatedBy), j.CreatedAt, j.UpdatedAt,
	)
	return mapError("insert job", err)
}

// GetByID devuelve (nil, nil) cuando el trabajo no existe.
func (r *JobRepo) GetByID(ctx context.Context, id string) (*entity.Job, error) {
	j, err := scanJob(r.q.QueryRow(ctx, `SELECT `+jobColumns+` FROM jobs WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, mapError("get job", err)
	}
	return j, nil
}

// GetManyForUpdate bloquea los trabajos en orden de id para que la facturación concurrente no genere deadlocks.
func (r *JobRepo) GetManyForUpdate(ctx context.Context, ids []string) ([]*entity.Job, error) {
	return r.query(ctx, `SELECT `+jobColumns+` FROM jobs WHERE id = ANY($1::uuid[]) ORDER BY id FOR UPDATE`, ids)
}

// List del más nuevo al más viejo.
func (r *JobRepo) List(ctx context.Context, lf repository.JobFilter) ([]*entity.Job, error) {
	var f filter
	if lf.CustomerID != "" {
		f.add("customer_id = ?", lf.CustomerID)
	}
	if lf.Status != "" {
		f.add("status = ?", lf.Status)
	}
	if lf.Invoiced != nil {
		f.add("invoiced = ?", *lf.Invoiced)
	}
	query := `SELECT ` + jobColumns + ` FROM jobs` + f.where() + ` ORDER BY created_at DESC` + f.page(lf.Limit, lf.Offset)
	return r.query(ctx, query, f.args...)
}

func (r *JobRepo) query(ctx context.Context, query string, args ...any) ([]*entity.Job, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, mapError("list jobs", err)
	}
	defer rows.Close()
	var out []*entity.Job
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, mapError("scan job", err)
		}
		out = append(out, j)
	}
	return out, mapError("list jobs", rows.Err())
}

// UpdateStatus fija el estado operativo libre.
func (r *JobRepo) UpdateStatus(ctx context.Context, id, status string, at time.Time) error {
	tag, err := r.q.Exec(ctx, `UPDATE jobs SET status = $2, updated_at = $3 WHERE id = $1`, id, status, at)
	if err != nil {
		return mapError("update job status", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Complete guarda el costo final y marca el trabajo como completado. Un trabajo facturado solo
// acepta el costo final con el que se facturó.
func (r *JobRepo) Complete(ctx context.Context, id string, finalCost decimal.Decimal, at time.Time) error {
	const query = `
		UPDATE jobs j SET final_cost = $2, status = $3, completed_at = $4, updated_at = $4
		WHERE j.id = $1 AND j.status <> $5
		  AND (NOT j.invoiced OR EXISTS (
		      SELECT 1 FROM invoice_line_items li WHERE li.job_id = j.id AND NOT li.voided AND li.total_price = $2))`
	tag, err := r.q.Exec(ctx, query, id, finalCost, entity.JobCompleted, at, entity.JobCancelled)
	if err != nil {
		return mapError("complete job", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: job %s is missing, cancelled or invoiced at another price", domain.ErrConflict, id)
	}
	return nil
}

// MarkInvoiced solo toca trabajos aún sin facturar.
func (r *JobRepo) MarkInvoiced(ctx context.Context, ids []string, invoiceID, invoiceNo string, at time.Time) (int64, error) {
	const query = `
		UPDATE jobs SET invoiced = true, invoice_id = $2, invoice_no = $3, updated_at = $4
		WHERE id = ANY($1::uuid[]) AND NOT invoiced`
	tag, err := r.q.Exec(ctx, query, ids, invoiceID, invoiceNo, at)
	if err != nil {
		return 0, mapError("mark jobs invoiced", err)
	}
	return tag.RowsAffected(), nil
}

// ReleaseInvoice desmarca los trabajos facturados en una factura anulada.
func (r *JobRepo) ReleaseInvoice(ctx context.Context, invoiceID string, at time.Time) (int64, error) {
	const query = `
		UPDATE jobs SET invoiced = false, invoice_id = NULL, invoice_no = NULL, updated_at = $2
		WHERE invoice_id = $1 AND invoiced`
	tag, err := r.q.Exec(ctx, query, invoiceID, at)
	if err != nil {
		return 0, mapError("release invoiced jobs", err)
	}
	return tag.RowsAffected(), nil
}

func scanJob(row pgx.Row) (*entity.Job, error) {
	var (
		j        entity.Job
		spec     []byte
		legacy   []byte
		priority string
	)
	err := row.Scan(
		&j.ID, &j.JobNo, &j.CustomerID, &j.ServiceID, &j.EstimateID, &j.Title,
		&j.Description, &j.Status, &priority, &j.Quantity, &spec,
		&j.UnitPrice, &j.EstimatePrice, &j.EstimatedCost, &j.FinalCost, &j.FinalPrice, &legacy,
		&j.Invoiced, &j.InvoiceID, &j.InvoiceNo,
		&j.DueDate, &j.CompletedAt, &j.CreatedBy, &j.CreatedAt, &j.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	j.Priority = entity.Priority(priority)
	if len(legacy) > 0 {
		j.Estimate = json.RawMessage(legacy)
	}
	if j.Specifications, err = decodeSpecifications("job", j.ID, spec); err != nil {
		return nil, err
	}
	return &j, nil
}

// decodeSpecifications lee un snapshot guardado pasando por el esquema. Toda escritura pasa por
// EncodeSnapshot, así que una fila que falla aquí está corrupta; el error no es de entrada.
func decodeSpecifications(kind, id string, raw []byte) (entity.Specification, error) {
	if len(raw) == 0 {
		return entity.Specification{}, nil
	}
	spec, err := specification.DecodeSnapshot(raw)
	if err != nil {
		return entity.Specification{}, fmt.Errorf("%s %s has unreadable specifications: %v", kind, id, err)
	}
	return spec, nil
}
