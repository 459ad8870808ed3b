package ports

import (
	"context"
	"io"
)

// ProgressFunc recibe los bytes confirmados hasta el momento.
type ProgressFunc func(sent int64)

// FileStorage es almacenamiento binario opaco. Nunca inspecciona el contenido.
type FileStorage interface {
	Upload(ctx context.Context, path string, body io.ReadSeeker, size int64, contentType string, progress ProgressFunc) (string, error)
	PublicURL(storedPath string) string
	Delete(ctx context.Context, storedPath string) error
}
