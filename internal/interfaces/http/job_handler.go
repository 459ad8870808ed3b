package http

import (
	"mime/multipart"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/printshop-api/internal/application/dto"
	"github.com/jhoicas/printshop-api/internal/application/job"
	"github.com/jhoicas/printshop-api/internal/application/upload"
	"github.com/jhoicas/printshop-api/internal/domain/entity"
	"github.com/jhoicas/printshop-api/internal/domain/repository"
)

// JobHandler endpoints de trabajos y sus adjuntos.
type JobHandler struct {
	uc    *job.UseCase
	files *upload.Service
}

// NewJobHandler construye el handler.
func NewJobHandler(uc *job.UseCase, files *upload.Service) *JobHandler {
	return &JobHandler{uc: uc, files: files}
}

// Submit POST /api/jobs
func (h *JobHandler) Submit(c *fiber.Ctx) error {
	var in dto.SubmitJobRequest
	if err := bindBody(c, &in); err != nil {
		return respondError(c, err)
	}
	out, err := h.uc.Submit(c.UserContext(), GetUserID(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// GetByID GET /api/jobs/:id
func (h *JobHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.Get(c.UserContext(), paramID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// List GET /api/jobs?customer_id=&status=&invoiced=false
func (h *JobHandler) List(c *fiber.Ctx) error {
	var in dto.ListJobsRequest
	if err := bindQuery(c, &in); err != nil {
		return respondError(c, err)
	}
	list, err := h.uc.List(c.UserContext(), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(list)
}

// Coverage GET /api/jobs/pricing-coverage, con los mismos filtros que List pero sin paginar.
func (h *JobHandler) Coverage(c *fiber.Ctx) error {
	var in dto.ListJobsRequest
	if err := bindQuery(c, &in); err != nil {
		return respondError(c, err)
	}
	out, err := h.uc.PricingCoverage(c.UserContext(), repository.JobFilter{
		CustomerID: in.CustomerID,
		Status:     in.Status,
		Invoiced:   in.Invoiced,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// UpdateStatus PATCH /api/jobs/:id/status
func (h *JobHandler) UpdateStatus(c *fiber.Ctx) error {
	var in dto.UpdateJobStatusRequest
	if err := bindBody(c, &in); err != nil {
		return respondError(c, err)
	}
	out, err := h.uc.UpdateStatus(c.UserContext(), paramID(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Complete POST /api/jobs/:id/complete
func (h *JobHandler) Complete(c *fiber.Ctx) error {
	var in dto.CompleteJobRequest
	if err := bindBody(c, &in); err != nil {
		return respondError(c, err)
	}
	out, err := h.uc.Complete(c.UserContext(), paramID(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// UploadFiles POST /api/jobs/:id/files (multipart, campo "files")
// Los fallos por archivo se informan en el cuerpo; la petición solo falla
// cuando el trabajo no existe o no se envió nada.
func (h *JobHandler) UploadFiles(c *fiber.Ctx) error {
	form, err := c.MultipartForm()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "multipart form expected"})
	}
	headers := form.File["files"]
	inputs := make([]upload.Input, 0, len(headers))
	opened := make([]multipart.File, 0, len(headers))
	defer func() {
		for _, f := range opened {
			_ = f.Close()
		}
	}()
	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			return respondError(c, err)
		}
		opened = append(opened, f)
		inputs = append(inputs, upload.Input{
			Name:        fh.Filename,
			ContentType: fh.Header.Get(fiber.HeaderContentType),
			Size:        fh.Size,
			Body:        f,
		})
	}
	out, err := h.files.Upload(c.UserContext(), upload.Target{
		EntityType: entity.FileEntityJob,
		EntityID:   paramID(c),
		UploadedBy: GetUserID(c),
	}, inputs)
	if err != nil {
		return respondError(c, err)
	}
	status := fiber.StatusCreated
	if out.Failed > 0 {
		status = fiber.StatusMultiStatus
	}
	return c.Status(status).JSON(out)
}

// ListFiles GET /api/jobs/:id/files
func (h *JobHandler) ListFiles(c *fiber.Ctx) error {
	list, err := h.files.List(c.UserContext(), entity.FileEntityJob, paramID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(list)
}
