package ports

import (
	"context"

	"github.com/jhoicas/printshop-api/internal/domain/repository"
)

// Repos agrupa los repositorios atados a un mismo destino de consultas (pool o transacción).
type Repos struct {
	Customers repository.CustomerRepository
	Counters  repository.CounterRepository
	Estimates repository.EstimateRepository
	Jobs      repository.JobRepository
	Invoices  repository.InvoiceRepository
	Files     repository.FileRepository
}

// TxRunner ejecuta fn con repositorios atados a una sola transacción.
// Si fn devuelve error se revierte todo, contadores incluidos.
type TxRunner interface {
	RunInTx(ctx context.Context, fn func(repos Repos) error) error
}
