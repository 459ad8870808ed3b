package repository

import (
	"context"

	"github.com/jhoicas/printshop-api/internal/domain/entity"
)

// FileRepository puerto de persistencia de los metadatos de adjuntos.
type FileRepository interface {
	Create(ctx context.Context, rec *entity.FileRecord) error
	ListByEntity(ctx context.Context, entityType, entityID string) ([]*entity.FileRecord, error)
}
