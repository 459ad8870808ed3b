package upload

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/jhoicas/printshop-api/internal/application/dto"
	"github.com/jhoicas/printshop-api/internal/application/ports"
	"github.com/jhoicas/printshop-api/internal/cache"
	"github.com/jhoicas/printshop-api/internal/domain"
	"github.com/jhoicas/printshop-api/internal/domain/entity"
	"github.com/rs/zerolog"
)

// Input un archivo de una solicitud de carga.
type Input struct {
	Name        string
	ContentType string
	Size        int64
	Body        io.ReadSeeker
}

// Service sube adjuntos y sirve las listas de archivos por documento desde una caché de vida corta.
type Service struct {
	storage ports.FileStorage
	repos   ports.Repos
	lists   *cache.TTL[string, []*entity.FileRecord]
	log     zerolog.Logger
	now     func() time.Time
}

// NewService construye el servicio. ttl limita cuánto se sirve una lista de archivos desde memoria.
func NewService(storage ports.FileStorage, repos ports.Repos, ttl time.Duration, log zerolog.Logger) *Service {
	return &Service{
		storage: storage,
		repos:   repos,
		lists:   cache.NewTTL[string, []*entity.FileRecord](ttl, nil),
		log:     log,
		now:     time.Now,
	}
}

// WithClock reemplaza el reloj de la caché de listas y de los trackers nuevos.
func (s *Service) WithClock(now func() time.Time, ttl time.Duration) *Service {
	s.now = now
	s.lists = cache.NewTTL[string, []*entity.FileRecord](ttl, now)
	return s
}

func listKey(entityType, entityID string) string {
	return entityType + "/" + entityID
}

func (s *Service) checkTarget(ctx context.Context, entityType, entityID string) error {
	var found bool
	switch entityType {
	case entity.FileEntityJob:
		j, err := s.repos.Jobs.GetByID(ctx, entityID)
		if err != nil {
			return err
		}
		found = j != nil
	case entity.FileEntityEstimate:
		e, err := s.repos.Estimates.GetByID(ctx, entityID)
		if err != nil {
			return err
		}
		found = e != nil
	default:
		return fmt.Errorf("%w: unknown entity type %q", domain.ErrInvalidInput, entityType)
	}
	if !found {
		return domain.ErrNotFound
	}
	return nil
}

// NewTracker inicia una sesión de carga para un documento. La lista de archivos cacheada del
// documento se invalida cuando termina el lote.
func (s *Service) NewTracker(target Target) *Tracker {
	t := NewTracker(s.storage, s.repos.Files, target, s.log).WithClock(s.now)
	key := listKey(target.EntityType, target.EntityID)
	t.OnBatchComplete = func(BatchResult) { s.lists.Invalidate(key) }
	return t
}

// Upload adjunta archivos a un documento e informa el resultado de cada uno.
func (s *Service) Upload(ctx context.Context, target Target, files []Input) (*dto.UploadBatchResponse, error) {
	if len(files) == 0 {
		return nil, fmt.Errorf("%w: no files", domain.ErrInvalidInput)
	}
	if err := s.checkTarget(ctx, target.EntityType, target.EntityID); err != nil {
		return nil, err
	}
	t := s.NewTracker(target)
	for _, in := range files {
		t.Enqueue(in.Name, in.ContentType, in.Size, in.Body)
	}
	res := t.Run(ctx)

	out := &dto.UploadBatchResponse{
		Total:     res.Total,
		Succeeded: res.Succeeded,
		Failed:    res.Failed,
		Files:     make([]dto.UploadStatusResponse, 0, len(res.Files)),
	}
	for _, f := range res.Files {
		st := dto.UploadStatusResponse{FileName: f.Name, Status: string(f.Status), Progress: f.Progress}
		if f.Err != nil {
			st.Error = f.Err.Error()
		}
		if f.Record != nil {
			st.File = dto.NewFileResponse(f.Record)
		}
		out.Files = append(out.Files, st)
	}
	return out, nil
}

// List devuelve los adjuntos de un documento.
func (s *Service) List(ctx context.Context, entityType, entityID string) ([]*dto.FileResponse, error) {
	key := listKey(entityType, entityID)
	recs, ok := s.lists.Get(key)
	if !ok {
		if err := s.checkTarget(ctx, entityType, entityID); err != nil {
			return nil, err
		}
		var err error
		recs, err = s.repos.Files.ListByEntity(ctx, entityType, entityID)
		if err != nil {
			return nil, err
		}
		s.lists.Set(key, recs)
	}
	out := make([]*dto.FileResponse, 0, len(recs))
	for _, r := range recs {
		out = append(out, dto.NewFileResponse(r))
	}
	return out, nil
}
