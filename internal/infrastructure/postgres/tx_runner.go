package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jhoicas/printshop-api/internal/application/ports"
)

var _ ports.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// NewRepos ata todos los repositorios a q (pool o tx).
func NewRepos(q Querier) ports.Repos {
	return ports.Repos{
		Customers: NewCustomerRepository(q),
		Counters:  NewCounterRepository(q),
		Estimates: NewEstimateRepository(q),
		Jobs:      NewJobRepository(q),
		Invoices:  NewInvoiceRepository(q),
		Files:     NewFileRepository(q),
	}
}

// RunInTx inicia una transacción, ejecuta fn con repositorios atados a ella y hace Commit,
// o Rollback cuando fn falla.
func (r *TxRunner) RunInTx(ctx context.Context, fn func(repos ports.Repos) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return mapError("begin transaction", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(NewRepos(tx)); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return mapError("commit transaction", err)
	}
	return nil
}

