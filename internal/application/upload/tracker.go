// Package upload adjunta archivos a trabajos y cotizaciones. Un Tracker sube un lote en secuencia,
// informando progreso, velocidad y tiempo restante por archivo; un Service lista los adjuntos guardados.
package upload

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/printshop-api/internal/application/ports"
	"github.com/jhoicas/printshop-api/internal/domain"
	"github.com/jhoicas/printshop-api/internal/domain/entity"
	"github.com/jhoicas/printshop-api/internal/domain/repository"
	"github.com/rs/zerolog"
)

// Status de un archivo dentro del lote.
type Status string

const (
	StatusPending   Status = "pending"
	StatusUploading Status = "uploading"
	StatusCompleted Status = "completed"
	StatusError     Status = "error"
)

// File es el estado transitorio de una carga. Solo vive mientras dura el lote;
// Record guarda el adjunto persistido una vez terminada la carga.
type File struct {
	ID          string
	Name        string
	ContentType string
	Size        int64
	Status      Status
	Progress    int
	Sent        int64
	// Speed en bytes por segundo, ETA hasta el último byte; ambos orientativos.
	Speed  float64
	ETA    time.Duration
	Err    error
	Record *entity.FileRecord

	body    io.ReadSeeker
	started time.Time
}

// BatchResult resume un Run terminado.
type BatchResult struct {
	Total     int
	Succeeded int
	Failed    int
	Files     []File
}

// Target es el documento al que se adjuntan los archivos.
type Target struct {
	EntityType string
	EntityID   string
	UploadedBy string
}

// Tracker es dueño de la lista de archivos de un envío. No se comparte entre sesiones.
type Tracker struct {
	storage ports.FileStorage
	records repository.FileRepository
	target  Target
	log     zerolog.Logger
	now     func() time.Time

	mu    sync.Mutex
	files []*File

	// OnProgress recibe una copia del archivo cada vez que cambia su estado.
	OnProgress func(File)
	// OnBatchComplete se llama una vez al final de cada Run.
	OnBatchComplete func(BatchResult)
}

// NewTracker construye un tracker para target.
func NewTracker(storage ports.FileStorage, records repository.FileRepository, target Target, log zerolog.Logger) *Tracker {
	return &Tracker{
		storage: storage,
		records: records,
		target:  target,
		log:     log.With().Str("component", "upload").Str("entity_type", target.EntityType).Str("entity_id", target.EntityID).Logger(),
		now:     time.Now,
	}
}

// WithClock reemplaza el reloj de velocidad y ETA.
func (t *Tracker) WithClock(now func() time.Time) *Tracker {
	t.now = now
	return t
}

// Enqueue agrega un archivo pendiente y devuelve su id.
func (t *Tracker) Enqueue(name, contentType string, size int64, body io.ReadSeeker) string {
	f := &File{
		ID:          uuid.New().String(),
		Name:        name,
		ContentType: contentType,
		Size:        size,
		Status:      StatusPending,
		body:        body,
	}
	t.mu.Lock()
	t.files = append(t.files, f)
	t.mu.Unlock()
	return f.ID
}

// Files devuelve una copia de todos los archivos de la sesión.
func (t *Tracker) Files() []File {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]File, 0, len(t.files))
	for _, f := range t.files {
		out = append(out, *f)
	}
	return out
}

// Run sube cada archivo pendiente, uno tras otro. Un archivo fallido queda en error y el lote
// sigue; nada se reintenta. Los archivos que sigan pendientes al terminar ctx también quedan en error.
func (t *Tracker) Run(ctx context.Context) BatchResult {
	t.mu.Lock()
	var pending []*File
	for _, f := range t.files {
		if f.Status == StatusPending {
			pending = append(pending, f)
		}
	}
	t.mu.Unlock()

	res := BatchResult{Total: len(pending)}
	for _, f := range pending {
		if err := ctx.Err(); err != nil {
			t.fail(f, err)
		} else if err := t.upload(ctx, f); err != nil {
			t.fail(f, err)
		}
		t.mu.Lock()
		if f.Status == StatusCompleted {
			res.Succeeded++
		} else {
			res.Failed++
		}
		res.Files = append(res.Files, *f)
		t.mu.Unlock()
	}
	t.log.Info().Int("total", res.Total).Int("failed", res.Failed).Msg("lote de subida finalizado")
	if t.OnBatchComplete != nil {
		t.OnBatchComplete(res)
	}
	return res
}

func (t *Tracker) update(f *File, fn func(f *File)) {
	t.mu.Lock()
	fn(f)
	snap := *f
	t.mu.Unlock()
	if t.OnProgress != nil {
		t.OnProgress(snap)
	}
}

func (t *Tracker) fail(f *File, err error) {
	t.log.Warn().Err(err).Str("file", f.Name).Msg("subida fallida")
	t.update(f, func(f *File) {
		f.Status = StatusError
		f.Err = err
		f.Speed, f.ETA = 0, 0
	})
}

func (t *Tracker) upload(ctx context.Context, f *File) error {
	if f.body == nil || f.Size < 0 {
		return fmt.Errorf("%w: file %q has no content", domain.ErrInvalidInput, f.Name)
	}
	t.update(f, func(f *File) {
		f.Status = StatusUploading
		f.started = t.now()
	})

	storagePath := StoragePath(t.target.EntityType, t.target.EntityID, f.ID, f.Name)
	stored, err := t.storage.Upload(ctx, storagePath, f.body, f.Size, f.ContentType, func(sent int64) {
		t.update(f, func(f *File) { t.progress(f, sent) })
	})
	if err != nil {
		return fmt.Errorf("store %s: %w", f.Name, err)
	}

	rec := &entity.FileRecord{
		ID:          uuid.New().String(),
		EntityType:  t.target.EntityType,
		EntityID:    t.target.EntityID,
		FileName:    f.Name,
		StoragePath: stored,
		URL:         t.storage.PublicURL(stored),
		Size:        f.Size,
		ContentType: f.ContentType,
		UploadedBy:  t.target.UploadedBy,
		CreatedAt:   t.now().UTC(),
	}
	if err := t.records.Create(ctx, rec); err != nil {
		// el objeto no sirve sin su registro
		if delErr := t.storage.Delete(context.WithoutCancel(ctx), stored); delErr != nil {
			t.log.Error().Err(delErr).Str("path", stored).Msg("no se pudo eliminar la subida huérfana")
			err = errors.Join(err, delErr)
		}
		return fmt.Errorf("record %s: %w", f.Name, err)
	}

	t.update(f, func(f *File) {
		f.Status = StatusCompleted
		f.Progress = 100
		f.Sent = f.Size
		f.ETA = 0
		f.Record = rec
	})
	return nil
}

// progress deriva porcentaje, velocidad y ETA de los bytes confirmados y el tiempo transcurrido.
// La finalización solo se informa cuando el registro está guardado, así que el progreso se detiene en 99.
func (t *Tracker) progress(f *File, sent int64) {
	if sent > f.Size {
		sent = f.Size
	}
	f.Sent = sent
	if f.Size > 0 {
		f.Progress = min(int(sent*100/f.Size), 99)
	}
	elapsed := t.now().Sub(f.started)
	if elapsed <= 0 || sent <= 0 {
		return
	}
	f.Speed = float64(sent) / elapsed.Seconds()
	f.ETA = time.Duration(float64(f.Size-sent) / f.Speed * float64(time.Second))
}

// StoragePath ubica un adjunto bajo su documento: jobs/<id>/<fileID>-<nombre>.
func StoragePath(entityType, entityID, fileID, name string) string {
	return path.Join(entityType+"s", entityID, fileID+"-"+sanitize(name))
}

func sanitize(name string) string {
	name = path.Base(strings.ReplaceAll(name, "\\", "/"))
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	if b.Len() == 0 || name == "." || name == "/" {
		return "file"
	}
	return b.String()
}
