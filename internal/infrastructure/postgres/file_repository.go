package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jhoicas/printshop-api/internal/domain/entity"
	"github.com/jhoicas/printshop-api/internal/domain/repository"
)

var _ repository.FileRepository = (*FileRepo)(nil)

// FileRepo FileRepository sobre pool o tx.
type FileRepo struct {
	q Querier
}

// NewFileRepository construye el adaptador. Pasar pool o tx.
func NewFileRepository(q Querier) *FileRepo {
	return &FileRepo{q: q}
}

// Create guarda los metadatos del adjunto una vez que el objeto está en el almacenamiento.
func (r *FileRepo) Create(ctx context.Context, rec *entity.FileRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	const query = `
		INSERT INTO file_records (id, entity_type, entity_id, file_name, storage_path, url, size,
			content_type, uploaded_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.q.Exec(ctx, query,
		rec.ID, rec.EntityType, rec.EntityID, rec.FileName, rec.StoragePath, rec.URL, rec.Size,
		nullIfEmpty(rec.ContentType), nullIfEmpty(rec.UploadedBy), rec.CreatedAt,
	)
	return mapError("insert file record", err)
}

// ListByEntity del más viejo al más nuevo.
func (r *FileRepo) ListByEntity(ctx context.Context, entityType, entityID string) ([]*entity.FileRecord, error) {
	const query = `
		SELECT id, entity_type, entity_id, file_name, storage_path, url, size,
		       COALESCE(content_type, ''), COALESCE(uploaded_by, ''), created_at
		FROM file_records WHERE entity_type = $1 AND entity_id = $2 ORDER BY created_at`
	rows, err := r.q.Query(ctx, query, entityType, entityID)
	if err != nil {
		return nil, mapError("list file records", err)
	}
	defer rows.Close()
	var out []*entity.FileRecord
	for rows.Next() {
		var f entity.FileRecord
		if err := rows.Scan(&f.ID, &f.EntityType, &f.EntityID, &f.FileName, &f.StoragePath, &f.URL, &f.Size,
			&f.ContentType, &f.UploadedBy, &f.CreatedAt); err != nil {
			return nil, mapError("scan file record", err)
		}
		out = append(out, &f)
	}
	return out, mapError("list file records", rows.Err())
}
