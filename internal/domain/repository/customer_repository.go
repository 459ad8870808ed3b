package repository

import (
	"context"

	"github.com/jhoicas/printshop-api/internal/domain/entity"
)

// CustomerRepository puerto de persistencia de clientes. GetByID devuelve (nil, nil) si no existe.
type CustomerRepository interface {
	Create(ctx context.Context, customer *entity.Customer) error
	GetByID(ctx context.Context, id string) (*entity.Customer, error)
	List(ctx context.Context, search string, limit, offset int) ([]*entity.Customer, error)
}
