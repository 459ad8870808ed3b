package entity

import "time"

// FileRecord es un adjunto persistido (objeto almacenado + metadatos) de un trabajo o cotización.
type FileRecord struct {
	ID          string
	EntityType  string
	EntityID    string
	FileName    string
	StoragePath string
	URL         string
	Size        int64
	ContentType string
	UploadedBy  string
	CreatedAt   time.Time
}

// Tipos de entidad a los que se puede adjuntar un archivo.
const (
	FileEntityJob      = "job"
	FileEntityEstimate = "estimate"
)
