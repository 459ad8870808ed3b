package repository

import (
	"context"
	"time"

	"github.com/jhoicas/printshop-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// JobFilter criterios de listado; los valores cero significan "cualquiera". Limit 0 devuelve todas las filas.
type JobFilter struct {
	CustomerID string
	Status     string
	Invoiced   *bool
	Limit      int
	Offset     int
}

// JobRepository puerto de persistencia de trabajos.
type JobRepository interface {
	Create(ctx context.Context, job *entity.Job) error
	GetByID(ctx context.Context, id string) (*entity.Job, error)
	// GetManyForUpdate bloquea los trabajos indicados; los ids inexistentes simplemente no aparecen.
	GetManyForUpdate(ctx context.Context, ids []string) ([]*entity.Job, error)
	List(ctx context.Context, f JobFilter) ([]*entity.Job, error)
	UpdateStatus(ctx context.Context, id, status string, at time.Time) error
	Complete(ctx context.Context, id string, finalCost decimal.Decimal, at time.Time) error
	// MarkInvoiced marca los trabajos aún no facturados y devuelve cuántas filas cambiaron.
	MarkInvoiced(ctx context.Context, ids []string, invoiceID, invoiceNo string, at time.Time) (int64, error)
	// ReleaseInvoice quita la referencia de factura de todos los trabajos facturados en invoiceID.
	ReleaseInvoice(ctx context.Context, invoiceID string, at time.Time) (int64, error)
}
