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
	"github.com/jhoicas/printshop-api/internal/domain/lifecycle"
	"github.com/jhoicas/printshop-api/internal/domain/repository"
	"github.com/jhoicas/printshop-api/internal/domain/specification"
)

var _ repository.EstimateRepository = (*EstimateRepo)(nil)

// EstimateRepo EstimateRepository sobre pool o tx.
type EstimateRepo struct {
	q Querier
}

// NewEstimateRepository construye el adaptador. Pasar pool o tx.
func NewEstimateRepository(q Querier) *EstimateRepo {
	return &EstimateRepo{q: q}
}

const estimateColumns = `
	id, estimate_number, customer_id, COALESCE(service_id, ''), title, COALESCE(description, ''),
	specifications, unit_price, quantity, subtotal, tax_amount, total_amount, status, priority,
	version, is_current_version, COALESCE(parent_estimate_id::text, ''), lineage_id,
	COALESCE(converted_to_job_id::text, ''), COALESCE(customer_response, ''),
	expires_at, sent_at, viewed_at, responded_at, COALESCE(created_by, ''), created_at, updated_at`

// Create inserta una versión. El snapshot se valida antes de guardarse.
func (r *EstimateRepo) Create(ctx context.Context, e *entity.Estimate) error {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	if e.LineageID == "" {
		e.LineageID = e.ID
	}
	spec, err := specification.EncodeSnapshot(e.Specifications)
	if err != nil {
		return err
	}
	const query = `
		INSERT INTO estimates (id, estimate_number, customer_id, service_id, title, description,
			specifications, unit_price, quantity, subtotal, tax_amount, total_amount, status, priority,
			version, is_current_version, parent_estimate_id, lineage_id, expires_at, created_by,
			created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22)`
	_, err = r.q.Exec(ctx, query,
		e.ID, e.EstimateNumber, e.CustomerID, nullIfEmpty(e.ServiceID), e.Title, nullIfEmpty(e.Description),
		spec, e.UnitPrice, e.Quantity, e.Subtotal, e.TaxAmount, e.TotalAmount, string(e.Status), string(e.Priority),
		e.Version, e.IsCurrentVersion, nullIfEmpty(e.ParentEstimateID), e.LineageID, e.ExpiresAt, nullIfEmpty(e.CreatedBy),
		e.CreatedAt, e.UpdatedAt,
	)
	return mapError("insert estimate", err)
}

// GetByID devuelve (nil, nil) cuando la cotización no existe.
func (r *EstimateRepo) GetByID(ctx context.Context, id string) (*entity.Estimate, error) {
	return r.getOne(ctx, `SELECT `+estimateColumns+` FROM estimates WHERE id = $1`, id)
}

// GetForUpdate bloquea la fila por el resto de la transacción.
func (r *EstimateRepo) GetForUpdate(ctx context.Context, id string) (*entity.Estimate, error) {
	return r.getOne(ctx, `SELECT `+estimateColumns+` FROM estimates WHERE id = $1 FOR UPDATE`, id)
}

func (r *EstimateRepo) getOne(ctx context.Context, query, id string) (*entity.Estimate, error) {
	e, err := scanEstimate(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, mapError("get estimate", err)
	}
	return e, nil
}

// List de la más nueva a la más vieja.
func (r *EstimateRepo) List(ctx context.Context, lf repository.EstimateFilter) ([]*entity.Estimate, error) {
	var f filter
	if lf.CustomerID != "" {
		f.add("customer_id = ?", lf.CustomerID)
	}
	if lf.Status != "" {
		f.add("status = ?", string(lf.Status))
	}
	if lf.CurrentOnly {
		f.add("is_current_version = ?", true)
	}
	query := `SELECT ` + estimateColumns + ` FROM estimates` + f.where() +
		` ORDER BY created_at DESC, version DESC` + f.page(lf.Limit, lf.Offset)

	rows, err := r.q.Query(ctx, query, f.args...)
	if err != nil {
		return nil, mapError("list estimates", err)
	}
	defer rows.Close()
	var out []*entity.Estimate
	for rows.Next() {
		e, err := scanEstimate(rows)
		if err != nil {
			return nil, mapError("scan estimate", err)
		}
		out = append(out, e)
	}
	return out, mapError("list estimates", rows.Err())
}

// UpdateStatus persiste estado, marcas y vencimiento, con guarda sobre el estado anterior.
func (r *EstimateRepo) UpdateStatus(ctx context.Context, e *entity.Estimate, from entity.EstimateStatus) error {
	if !lifecycle.CanTransition(from, e.Status) {
		return fmt.Errorf("%w: estimate %s -> %s", domain.ErrInvalidTransition, from, e.Status)
	}
	const query = `
		UPDATE estimates
		SET status = $2, sent_at = $3, viewed_at = $4, responded_at = $5, expires_at = $6,
		    customer_response = $7, updated_at = $8
		WHERE id = $1 AND status = $9`
	tag, err := r.q.Exec(ctx, query,
		e.ID, string(e.Status), e.SentAt, e.ViewedAt, e.RespondedAt, e.ExpiresAt,
		nullIfEmpty(e.CustomerResponse), e.UpdatedAt, string(from),
	)
	if err != nil {
		return mapError("update estimate status", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: estimate %s is no longer %s", domain.ErrInvalidTransition, e.ID, from)
	}
	return nil
}

// ClearCurrent desmarca la versión vigente en todo el linaje.
func (r *EstimateRepo) ClearCurrent(ctx context.Context, lineageID string) error {
	_, err := r.q.Exec(ctx,
		`UPDATE estimates SET is_current_version = false, updated_at = now() WHERE lineage_id = $1 AND is_current_version`,
		lineageID)
	return mapError("clear current version", err)
}

// MarkConverted pasa approved -> converted una sola vez; una segunda llamada no encuentra fila.
func (r *EstimateRepo) MarkConverted(ctx context.Context, id, jobID string, at time.Time) error {
	const query = `
		UPDATE estimates
		SET status = 'converted', converted_to_job_id = $2, updated_at = $3
		WHERE id = $1 AND status = 'approved' AND converted_to_job_id IS NULL`
	tag, err := r.q.Exec(ctx, query, id, jobID, at)
	if err != nil {
		return mapError("mark estimate converted", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: estimate %s is not an unconverted approved estimate", domain.ErrInvalidTransition, id)
	}
	return nil
}

func scanEstimate(row pgx.Row) (*entity.Estimate, error) {
	var (
		e        entity.Estimate
		spec     []byte
		status   string
		priority string
	)
	err := row.Scan(
		&e.ID, &e.EstimateNumber, &e.CustomerID, &e.ServiceID, &e.Title, &e.Description,
		&spec, &e.UnitPrice, &e.Quantity, &e.Subtotal, &e.TaxAmount, &e.TotalAmount, &status, &priority,
		&e.Version, &e.IsCurrentVersion, &e.ParentEstimateID, &e.LineageID,
		&e.ConvertedToJobID, &e.CustomerResponse,
		&e.ExpiresAt, &e.SentAt, &e.ViewedAt, &e.RespondedAt, &e.CreatedBy, &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	e.Status = entity.EstimateStatus(status)
	e.Priority = entity.Priority(priority)
	if e.Specifications, err = decodeSpecifications("estimate", e.ID, spec); err != nil {
		return nil, err
	}
	return &e, nil
}
