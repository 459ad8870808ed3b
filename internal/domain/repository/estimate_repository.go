package repository

import (
	"context"
	"time"

	"github.com/jhoicas/printshop-api/internal/domain/entity"
)

// EstimateFilter criterios de listado; los valores cero significan "cualquiera".
type EstimateFilter struct {
	CustomerID  string
	Status      entity.EstimateStatus
	CurrentOnly bool
	Limit       int
	Offset      int
}

// EstimateRepository puerto de persistencia de cotizaciones. Las cotizaciones nunca se borran.
type EstimateRepository interface {
	Create(ctx context.Context, e *entity.Estimate) error
	GetByID(ctx context.Context, id string) (*entity.Estimate, error)
	// GetForUpdate bloquea la fila hasta que termine la transacción que la envuelve.
	GetForUpdate(ctx context.Context, id string) (*entity.Estimate, error)
	List(ctx context.Context, f EstimateFilter) ([]*entity.Estimate, error)
	// UpdateStatus escribe estado y marcas del ciclo de vida, solo si el estado guardado sigue siendo from.
	UpdateStatus(ctx context.Context, e *entity.Estimate, from entity.EstimateStatus) error
	// ClearCurrent desmarca is_current_version en todas las versiones de un linaje.
	ClearCurrent(ctx context.Context, lineageID string) error
	// MarkConverted pasa a converted una cotización aprobada y sin convertir.
	// Devuelve domain.ErrInvalidTransition cuando la guarda no coincide.
	MarkConverted(ctx context.Context, id, jobID string, at time.Time) error
}
