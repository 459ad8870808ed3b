package repository

import (
	"context"

	"github.com/jhoicas/printshop-api/internal/domain/entity"
	"github.com/jhoicas/printshop-api/internal/domain/specification"
)

// CatalogRepository lee y carga los datos de referencia compartidos.
type CatalogRepository interface {
	GetService(ctx context.Context, id string) (*entity.Service, error)
	ListServices(ctx context.Context) ([]*entity.Service, error)
	ListFinishOptions(ctx context.Context) ([]entity.FinishOption, error)
	ListPaperTypes(ctx context.Context) ([]string, error)
	ListPaperWeights(ctx context.Context) ([]int, error)
	ListSizePresets(ctx context.Context) ([]specification.SizePreset, error)

	SaveService(ctx context.Context, svc *entity.Service) error
	SaveFinishOption(ctx context.Context, opt entity.FinishOption) error
	SavePaperType(ctx context.Context, name string, sortOrder int) error
	SavePaperWeight(ctx context.Context, gsm int) error
	SaveSizePreset(ctx context.Context, p specification.SizePreset, sortOrder int) error
}
