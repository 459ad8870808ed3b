package postgres

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/printshop-api/internal/domain/entity"
	"github.com/jhoicas/printshop-api/internal/domain/repository"
)

var _ repository.CustomerRepository = (*CustomerRepo)(nil)

// CustomerRepo CustomerRepository sobre pool o tx.
type CustomerRepo struct {
	q Querier
}

// NewCustomerRepository construye el adaptador. Pasar pool o tx.
func NewCustomerRepository(q Querier) *CustomerRepo {
	return &CustomerRepo{q: q}
}

const customerColumns = `id, name, COALESCE(company_name, ''), COALESCE(email, ''), COALESCE(phone, ''),
	COALESCE(address, ''), created_at, updated_at`

// Create inserta un cliente.
func (r *CustomerRepo) Create(ctx context.Context, c *entity.Customer) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	const query = `
		INSERT INTO customers (id, name, company_name, email, phone, address, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.q.Exec(ctx, query,
		c.ID, c.Name, nullIfEmpty(c.CompanyName), nullIfEmpty(c.Email), nullIfEmpty(c.Phone),
		nullIfEmpty(c.Address), c.CreatedAt, c.UpdatedAt,
	)
	return mapError("insert customer", err)
}

// GetByID devuelve (nil, nil) cuando el cliente no existe.
func (r *CustomerRepo) GetByID(ctx context.Context, id string) (*entity.Customer, error) {
	c, err := scanCustomer(r.q.QueryRow(ctx, `SELECT `+customerColumns+` FROM customers WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, mapError("get customer", err)
	}
	return c, nil
}

// List filtra por nombre, empresa o email (sin distinguir mayúsculas) y pagina.
func (r *CustomerRepo) List(ctx context.Context, search string, limit, offset int) ([]*entity.Customer, error) {
	if limit <= 0 {
		limit = 50
	}
	var f filter
	if s := strings.TrimSpace(search); s != "" {
		f.add(`(name ILIKE ? OR company_name ILIKE ? OR email ILIKE ?)`, "%"+s+"%")
	}
	query := `SELECT ` + customerColumns + ` FROM customers` + f.where() + ` ORDER BY name` + f.page(limit, offset)

	rows, err := r.q.Query(ctx, query, f.args...)
	if err != nil {
		return nil, mapError("list customers", err)
	}
	defer rows.Close()
	var out []*entity.Customer
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, mapError("scan customer", err)
		}
		out = append(out, c)
	}
	return out, mapError("list customers", rows.Err())
}

func scanCustomer(row pgx.Row) (*entity.Customer, error) {
	var c entity.Customer
	err := row.Scan(&c.ID, &c.Name, &c.CompanyName, &c.Email, &c.Phone, &c.Address, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}
