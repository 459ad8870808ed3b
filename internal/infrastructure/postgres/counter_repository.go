package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/printshop-api/internal/domain"
	"github.com/jhoicas/printshop-api/internal/domain/repository"
)

var _ repository.CounterRepository = (*CounterRepo)(nil)

// CounterRepo emite valores de contador con un único upsert atómico, así los llamadores concurrentes nunca chocan.
type CounterRepo struct {
	q Querier
}

// NewCounterRepository construye el adaptador. Pasar pool o tx.
func NewCounterRepository(q Querier) *CounterRepo {
	return &CounterRepo{q: q}
}

// NextValue incrementa y devuelve el contador, creándolo en 1 en el primer uso.
// Dentro de una transacción el incremento se revierte junto con el insert del documento.
func (r *CounterRepo) NextValue(ctx context.Context, name string) (int64, error) {
	var v int64
	if err := r.q.QueryRow(ctx, `SELECT next_counter_value($1)`, name).Scan(&v); err != nil {
		return 0, fmt.Errorf("%w: %s: %v", domain.ErrCounterUnavailable, name, mapError("next counter value", err))
	}
	return v, nil
}
