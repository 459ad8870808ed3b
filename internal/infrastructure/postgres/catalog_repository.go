package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jhoicas/printshop-api/internal/domain/entity"
	"github.com/jhoicas/printshop-api/internal/domain/repository"
	"github.com/jhoicas/printshop-api/internal/domain/specification"
)

var _ repository.CatalogRepository = (*CatalogRepo)(nil)

// CatalogRepo datos de referencia (servicios, acabados, papel, tamaños predefinidos).
type CatalogRepo struct {
	q Querier
}

// NewCatalogRepository construye el adaptador. Las lecturas corren en paralelo, así que pasar el pool.
func NewCatalogRepository(pool *pgxpool.Pool) *CatalogRepo {
	return &CatalogRepo{q: pool}
}

// GetService devuelve (nil, nil) cuando el servicio no existe.
func (r *CatalogRepo) GetService(ctx context.Context, id string) (*entity.Service, error) {
	svc, err := scanService(r.q.QueryRow(ctx,
		`SELECT id, title, COALESCE(description, ''), options, active, created_at, updated_at FROM services WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, mapError("get service", err)
	}
	return svc, nil
}

// ListServices servicios activos por título.
func (r *CatalogRepo) ListServices(ctx context.Context) ([]*entity.Service, error) {
	rows, err := r.q.Query(ctx,
		`SELECT id, title, COALESCE(description, ''), options, active, created_at, updated_at
		 FROM services WHERE active ORDER BY title`)
	if err != nil {
		return nil, mapError("list services", err)
	}
	defer rows.Close()
	var out []*entity.Service
	for rows.Next() {
		svc, err := scanService(rows)
		if err != nil {
			return nil, mapError("scan service", err)
		}
		out = append(out, svc)
	}
	return out, mapError("list services", rows.Err())
}

func scanService(row pgx.Row) (*entity.Service, error) {
	var (
		svc  entity.Service
		opts []byte
	)
	if err := row.Scan(&svc.ID, &svc.Title, &svc.Description, &opts, &svc.Active, &svc.CreatedAt, &svc.UpdatedAt); err != nil {
		return nil, err
	}
	if len(opts) > 0 {
		if err := json.Unmarshal(opts, &svc.Options); err != nil {
			return nil, fmt.Errorf("decode service %s options: %w", svc.ID, err)
		}
	}
	return &svc, nil
}

// ListFinishOptions incluye acabados inactivos para que las selecciones históricas sigan valorándose.
func (r *CatalogRepo) ListFinishOptions(ctx context.Context) ([]entity.FinishOption, error) {
	rows, err := r.q.Query(ctx,
		`SELECT id, name, category, base_price, COALESCE(price_unit, ''), active FROM finish_options ORDER BY category, name`)
	if err != nil {
		return nil, mapError("list finish options", err)
	}
	defer rows.Close()
	var out []entity.FinishOption
	for rows.Next() {
		var (
			f   entity.FinishOption
			cat string
		)
		if err := rows.Scan(&f.ID, &f.Name, &cat, &f.Pricing.Base, &f.Pricing.Unit, &f.Active); err != nil {
			return nil, mapError("scan finish option", err)
		}
		f.Category = entity.FinishCategory(cat)
		out = append(out, f)
	}
	return out, mapError("list finish options", rows.Err())
}

// ListPaperTypes en orden de presentación.
func (r *CatalogRepo) ListPaperTypes(ctx context.Context) ([]string, error) {
	return collect[string](ctx, r.q, "list paper types", `SELECT name FROM paper_types ORDER BY sort_order, name`)
}

// ListPaperWeights ascendente.
func (r *CatalogRepo) ListPaperWeights(ctx context.Context) ([]int, error) {
	return collect[int](ctx, r.q, "list paper weights", `SELECT gsm FROM paper_weights ORDER BY gsm`)
}

// ListSizePresets en orden de presentación.
func (r *CatalogRepo) ListSizePresets(ctx context.Context) ([]specification.SizePreset, error) {
	rows, err := r.q.Query(ctx, `SELECT name, width, height, unit FROM size_presets ORDER BY sort_order, name`)
	if err != nil {
		return nil, mapError("list size presets", err)
	}
	defer rows.Close()
	var out []specification.SizePreset
	for rows.Next() {
		var p specification.SizePreset
		if err := rows.Scan(&p.Name, &p.Width, &p.Height, &p.Unit); err != nil {
			return nil, mapError("scan size preset", err)
		}
		out = append(out, p)
	}
	return out, mapError("list size presets", rows.Err())
}

func collect[T any](ctx context.Context, q Querier, op, query string) ([]T, error) {
	rows, err := q.Query(ctx, query)
	if err != nil {
		return nil, mapError(op, err)
	}
	out, err := pgx.CollectRows(rows, pgx.RowTo[T])
	return out, mapError(op, err)
}

// SaveService hace upsert de un servicio.
func (r *CatalogRepo) SaveService(ctx context.Context, svc *entity.Service) error {
	opts, err := json.Marshal(svc.Options)
	if err != nil {
		return fmt.Errorf("encode service options: %w", err)
	}
	const query = `
		INSERT INTO services (id, title, description, options, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, now(), now())
		ON CONFLICT (id) DO UPDATE SET title = EXCLUDED.title, description = EXCLUDED.description,
			options = EXCLUDED.options, active = EXCLUDED.active, updated_at = now()`
	_, err = r.q.Exec(ctx, query, svc.ID, svc.Title, nullIfEmpty(svc.Description), opts, svc.Active)
	return mapError("save service", err)
}

// SaveFinishOption hace upsert de un acabado.
func (r *CatalogRepo) SaveFinishOption(ctx context.Context, f entity.FinishOption) error {
	const query = `
		INSERT INTO finish_options (id, name, category, base_price, price_unit, active)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, category = EXCLUDED.category,
			base_price = EXCLUDED.base_price, price_unit = EXCLUDED.price_unit, active = EXCLUDED.active`
	_, err := r.q.Exec(ctx, query, f.ID, f.Name, string(f.Category), f.Pricing.Base, nullIfEmpty(f.Pricing.Unit), f.Active)
	return mapError("save finish option", err)
}

// SavePaperType hace upsert de un tipo de papel.
func (r *CatalogRepo) SavePaperType(ctx context.Context, name string, sortOrder int) error {
	_, err := r.q.Exec(ctx,
		`INSERT INTO paper_types (name, sort_order) VALUES ($1, $2)
		 ON CONFLICT (name) DO UPDATE SET sort_order = EXCLUDED.sort_order`, name, sortOrder)
	return mapError("save paper type", err)
}

// SavePaperWeight inserta un gramaje si falta.
func (r *CatalogRepo) SavePaperWeight(ctx context.Context, gsm int) error {
	_, err := r.q.Exec(ctx, `INSERT INTO paper_weights (gsm) VALUES ($1) ON CONFLICT (gsm) DO NOTHING`, gsm)
	return mapError("save paper weight", err)
}

// SaveSizePreset hace upsert de un tamaño predefinido.
func (r *CatalogRepo) SaveSizePreset(ctx context.Context, p specification.SizePreset, sortOrder int) error {
	const query = `
		INSERT INTO size_presets (name, width, height, unit, sort_order) VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (name) DO UPDATE SET width = EXCLUDED.width, height = EXCLUDED.height,
			unit = EXCLUDED.unit, sort_order = EXCLUDED.sort_order`
	_, err := r.q.Exec(ctx, query, p.Name, p.Width, p.Height, p.Unit, sortOrder)
	return mapError("save size preset", err)
}
