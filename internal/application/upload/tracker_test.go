package upload_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jhoicas/printshop-api/internal/application/ports"
	"github.com/jhoicas/printshop-api/internal/application/upload"
	"github.com/jhoicas/printshop-api/internal/domain"
	"github.com/jhoicas/printshop-api/internal/domain/entity"
	"github.com/jhoicas/printshop-api/internal/infrastructure/memory"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeStorage informa el progreso en bloques fijos y avanza el reloj del test por bloque.
type fakeStorage struct {
	mu      sync.Mutex
	objects map[string][]byte
	deleted []string
	failOn  map[string]error
	chunk   int64
	tick    func()
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{objects: map[string][]byte{}, failOn: map[string]error{}, chunk: 50}
}

func (s *fakeStorage) Upload(_ context.Context, p string, body io.ReadSeeker, size int64, _ string, progress ports.ProgressFunc) (string, error) {
	for name, err := range s.failOn {
		if strings.HasSuffix(p, name) {
			return "", err
		}
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return "", err
	}
	for sent := s.chunk; sent < size; sent += s.chunk {
		if s.tick != nil {
			s.tick()
		}
		progress(sent)
	}
	if s.tick != nil {
		s.tick()
	}
	progress(size)
	s.mu.Lock()
	s.objects[p] = data
	s.mu.Unlock()
	return p, nil
}

func (s *fakeStorage) PublicURL(p string) string { return "https://cdn.test/" + p }

func (s *fakeStorage) Delete(_ context.Context, p string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, p)
	s.deleted = append(s.deleted, p)
	return nil
}

func target() upload.Target {
	return upload.Target{EntityType: entity.FileEntityJob, EntityID: "job-1", UploadedBy: "user-1"}
}

func TestTracker_SequentialBatchContinuesPastFailures(t *testing.T) {
	store := memory.NewStore()
	storage := newFakeStorage()
	storage.failOn["broken.pdf"] = errors.New("network reset")
	tr := upload.NewTracker(storage, store.Repos().Files, target(), zerolog.Nop())

	tr.Enqueue("front.pdf", "application/pdf", 200, bytes.NewReader(make([]byte, 200)))
	tr.Enqueue("broken.pdf", "application/pdf", 10, bytes.NewReader(make([]byte, 10)))
	tr.Enqueue("back.pdf", "application/pdf", 30, bytes.NewReader(make([]byte, 30)))

	var done []upload.BatchResult
	tr.OnBatchComplete = func(r upload.BatchResult) { done = append(done, r) }

	res := tr.Run(context.Background())
	require.Len(t, done, 1)
	assert.Equal(t, 3, res.Total)
	assert.Equal(t, 2, res.Succeeded)
	assert.Equal(t, 1, res.Failed)

	require.Len(t, res.Files, 3)
	assert.Equal(t, upload.StatusCompleted, res.Files[0].Status)
	assert.Equal(t, 100, res.Files[0].Progress)
	assert.Equal(t, upload.StatusError, res.Files[1].Status)
	assert.ErrorContains(t, res.Files[1].Err, "network reset")
	assert.Equal(t, upload.StatusCompleted, res.Files[2].Status)

	recs, err := store.Repos().Files.ListByEntity(context.Background(), entity.FileEntityJob, "job-1")
	require.NoError(t, err)
	assert.Len(t, recs, 2)
	assert.True(t, strings.HasPrefix(recs[0].URL, "https://cdn.test/jobs/job-1/"))

	// una segunda ejecución no tiene nada que hacer
	again := tr.Run(context.Background())
	assert.Equal(t, 0, again.Total)
}

func TestTracker_ProgressSpeedAndETA(t *testing.T) {
	store := memory.NewStore()
	storage := newFakeStorage()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	storage.tick = func() { now = now.Add(time.Second) }
	tr := upload.NewTracker(storage, store.Repos().Files, target(), zerolog.Nop()).
		WithClock(func() time.Time { return now })

	var seen []upload.File
	tr.OnProgress = func(f upload.File) { seen = append(seen, f) }
	tr.Enqueue("poster.png", "image/png", 200, bytes.NewReader(make([]byte, 200)))
	tr.Run(context.Background())

	var uploading []upload.File
	for _, f := range seen {
		if f.Status == upload.StatusUploading && f.Sent > 0 {
			uploading = append(uploading, f)
		}
	}
	require.Len(t, uploading, 4)
	// 50 bytes por segundo simulado
	first := uploading[0]
	assert.Equal(t, 25, first.Progress)
	assert.InDelta(t, 50.0, first.Speed, 0.001)
	assert.Equal(t, 3*time.Second, first.ETA)
	last := uploading[3]
	assert.Equal(t, 99, last.Progress)
	assert.Equal(t, time.Duration(0), last.ETA)

	final := seen[len(seen)-1]
	assert.Equal(t, upload.StatusCompleted, final.Status)
	assert.Equal(t, 100, final.Progress)
}

func TestTracker_RecordFailureDeletesStoredObject(t *testing.T) {
	store := memory.NewStore()
	store.FailOn("files.create", domain.ErrUnavailable)
	storage := newFakeStorage()
	tr := upload.NewTracker(storage, store.Repos().Files, target(), zerolog.Nop())
	tr.Enqueue("art.ai", "application/postscript", 5, bytes.NewReader([]byte("hello")))

	res := tr.Run(context.Background())
	assert.Equal(t, 1, res.Failed)
	assert.ErrorIs(t, res.Files[0].Err, domain.ErrUnavailable)
	require.Len(t, storage.deleted, 1)
	assert.Empty(t, storage.objects)
}

func TestTracker_CancelledContextFailsRemaining(t *testing.T) {
	store := memory.NewStore()
	tr := upload.NewTracker(newFakeStorage(), store.Repos().Files, target(), zerolog.Nop())
	tr.Enqueue("a.pdf", "application/pdf", 1, bytes.NewReader([]byte("a")))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res := tr.Run(ctx)
	assert.Equal(t, 1, res.Failed)
	assert.ErrorIs(t, res.Files[0].Err, context.Canceled)
}

func TestStoragePath_SanitizesNames(t *testing.T) {
	assert.Equal(t, "jobs/j1/f1-my_file_1_.pdf", upload.StoragePath("job", "j1", "f1", "../my file(1).pdf"))
	assert.Equal(t, "estimates/e1/f1-file", upload.StoragePath("estimate", "e1", "f1", ""))
}
