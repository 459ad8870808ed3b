package dto

import "time"

// FileResponse adjunto almacenado.
type FileResponse struct {
	ID          string    `json:"id"`
	FileName    string    `json:"file_name"`
	URL         string    `json:"url"`
	Size        int64     `json:"size"`
	ContentType string    `json:"content_type,omitempty"`
	UploadedBy  string    `json:"uploaded_by,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// UploadStatusResponse resultado de un archivo del lote.
type UploadStatusResponse struct {
	FileName string        `json:"file_name"`
	Status   string        `json:"status"`
	Progress int           `json:"progress"`
	Error    string        `json:"error,omitempty"`
	File     *FileResponse `json:"file,omitempty"`
}

// UploadBatchResponse cuerpo de POST /api/jobs/:id/files.
type UploadBatchResponse struct {
	Total     int                    `json:"total"`
	Succeeded int                    `json:"succeeded"`
	Failed    int                    `json:"failed"`
	Files     []UploadStatusResponse `json:"files"`
}
