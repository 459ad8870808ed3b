package postgres

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jhoicas/printshop-api/internal/domain/pricing"
	"github.com/jhoicas/printshop-api/internal/domain/repository"
)

var _ repository.ReportRepository = (*ReportRepo)(nil)

// ReportRepo consultas de reporte de solo lectura. Nada aquí modifica datos.
type ReportRepo struct {
	q Querier
}

// NewReportRepository construye el adaptador sobre el pool (las consultas corren en paralelo).
func NewReportRepository(pool *pgxpool.Pool) *ReportRepo {
	return &ReportRepo{q: pool}
}

func period(f *filter, column string, from, to time.Time) {
	if !from.IsZero() {
		f.add(column+" >= ?", from)
	}
	if !to.IsZero() {
		f.add(column+" < ?", to)
	}
}

// JobPriceSources todas las representaciones de precio de los trabajos creados en el periodo.
func (r *ReportRepo) JobPriceSources(ctx context.Context, from, to time.Time) ([]pricing.PriceSource, error) {
	var f filter
	period(&f, "created_at", from, to)
	query := `SELECT final_cost, final_price, estimated_cost, estimate_price, unit_price, quantity, estimate
		FROM jobs` + f.where()
	rows, err := r.q.Query(ctx, query, f.args...)
	if err != nil {
		return nil, mapError("job price sources", err)
	}
	defer rows.Close()
	var out []pricing.PriceSource
	for rows.Next() {
		var (
			s      pricing.PriceSource
			legacy []byte
		)
		if err := rows.Scan(&s.FinalCost, &s.FinalPrice, &s.EstimatedCost, &s.EstimatePrice, &s.UnitPrice,
			&s.Quantity, &legacy); err != nil {
			return nil, mapError("scan job price source", err)
		}
		if len(legacy) > 0 {
			s.Estimate = json.RawMessage(legacy)
		}
		out = append(out, s)
	}
	return out, mapError("job price sources", rows.Err())
}

// EstimatePriceSources versiones vigentes creadas en el periodo.
func (r *ReportRepo) EstimatePriceSources(ctx context.Context, from, to time.Time) ([]pricing.PriceSource, error) {
	var f filter
	f.add("is_current_version = ?", true)
	period(&f, "created_at", from, to)
	query := `SELECT total_amount, subtotal, unit_price, quantity FROM estimates` + f.where()
	rows, err := r.q.Query(ctx, query, f.args...)
	if err != nil {
		return nil, mapError("estimate price sources", err)
	}
	defer rows.Close()
	var out []pricing.PriceSource
	for rows.Next() {
		var s pricing.PriceSource
		if err := rows.Scan(&s.TotalAmount, &s.Subtotal, &s.UnitPrice, &s.Quantity); err != nil {
			return nil, mapError("scan estimate price source", err)
		}
		out = append(out, s)
	}
	return out, mapError("estimate price sources", rows.Err())
}

// InvoiceSummary totales de las facturas no anuladas; COALESCE deja en cero los periodos vacíos.
func (r *ReportRepo) InvoiceSummary(ctx context.Context, from, to time.Time) (repository.InvoiceSummary, error) {
	var f filter
	f.add("status <> ?", "cancelled")
	period(&f, "created_at", from, to)
	query := `SELECT COUNT(*), COALESCE(SUM(total), 0), COALESCE(SUM(amount_paid), 0), COALESCE(SUM(amount_due), 0)
		FROM invoices` + f.where()
	var s repository.InvoiceSummary
	if err := r.q.QueryRow(ctx, query, f.args...).Scan(&s.Count, &s.Invoiced, &s.Paid, &s.Outstanding); err != nil {
		return s, mapError("invoice summary", err)
	}
	return s, nil
}
