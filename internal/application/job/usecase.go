// Package job gestiona los trabajos de producción: alta desde el formulario de pedido, cambios de
// estado con aviso al cliente y cierre.
package job

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/printshop-api/internal/application/catalog"
	"github.com/jhoicas/printshop-api/internal/application/dto"
	"github.com/jhoicas/printshop-api/internal/application/numbering"
	"github.com/jhoicas/printshop-api/internal/application/ports"
	"github.com/jhoicas/printshop-api/internal/domain"
	"github.com/jhoicas/printshop-api/internal/domain/entity"
	"github.com/jhoicas/printshop-api/internal/domain/pricing"
	"github.com/jhoicas/printshop-api/internal/domain/repository"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

const notifyTimeout = 15 * time.Second

// Pricer resuelve y valora una especificación contra un servicio.
type Pricer interface {
	Prepare(ctx context.Context, serviceID string, spec entity.Specification, unitPrice decimal.Decimal, quantity int) (*catalog.Prepared, error)
}

// UseCase operaciones de trabajos.
type UseCase struct {
	tx       ports.TxRunner
	repos    ports.Repos
	pricer   Pricer
	notifier ports.Notifier
	log      zerolog.Logger
	now      func() time.Time
	pending  sync.WaitGroup
}

// NewUseCase construye el caso de uso. Un notifier nil desactiva los correos de estado.
func NewUseCase(tx ports.TxRunner, repos ports.Repos, pricer Pricer, notifier ports.Notifier, log zerolog.Logger) *UseCase {
	return &UseCase{
		tx:       tx,
		repos:    repos,
		pricer:   pricer,
		notifier: notifier,
		log:      log.With().Str("component", "job").Logger(),
		now:      time.Now,
	}
}

// WithClock reemplaza el reloj.
func (uc *UseCase) WithClock(now func() time.Time) *UseCase {
	uc.now = now
	return uc
}

// Wait bloquea hasta que terminen las notificaciones en curso.
func (uc *UseCase) Wait() {
	uc.pending.Wait()
}

// Submit valida el formulario, repara la especificación contra el servicio, la valora, emite el
// número de trabajo y lo guarda; numeración e inserción van en una sola transacción.
func (uc *UseCase) Submit(ctx context.Context, userID string, in dto.SubmitJobRequest) (*dto.JobResponse, error) {
	priority := entity.Priority(in.Priority)
	if in.Priority == "" {
		priority = entity.PriorityMedium
	}
	switch {
	case strings.TrimSpace(in.Title) == "":
		return nil, fmt.Errorf("%w: title is required", domain.ErrInvalidInput)
	case in.Quantity <= 0:
		return nil, fmt.Errorf("%w: quantity must be greater than zero", domain.ErrInvalidInput)
	case in.UnitPrice.IsNegative():
		return nil, fmt.Errorf("%w: unit price must not be negative", domain.ErrInvalidInput)
	case !priority.Valid():
		return nil, fmt.Errorf("%w: unknown priority %q", domain.ErrInvalidInput, in.Priority)
	}
	cust, err := uc.repos.Customers.GetByID(ctx, in.CustomerID)
	if err != nil {
		return nil, err
	}
	if cust == nil {
		return nil, fmt.Errorf("%w: customer %s", domain.ErrInvalidReference, in.CustomerID)
	}

	prepared, err := uc.pricer.Prepare(ctx, in.ServiceID, in.Specifications, in.UnitPrice, in.Quantity)
	if err != nil {
		return nil, err
	}
	blob, err := json.Marshal(map[string]any{
		"total":             prepared.Quote.GrandTotal,
		"subtotal":          prepared.Quote.Subtotal,
		"per_option_totals": prepared.Quote.PerOptionTotals,
	})
	if err != nil {
		return nil, err
	}

	now := uc.now().UTC()
	j := &entity.Job{
		ID:             uuid.New().String(),
		CustomerID:     cust.ID,
		ServiceID:      in.ServiceID,
		Title:          strings.TrimSpace(in.Title),
		Description:    strings.TrimSpace(in.Description),
		Status:         entity.JobPending,
		Priority:       priority,
		Quantity:       in.Quantity,
		Specifications: prepared.Specifications,
		UnitPrice:      decimal.NewNullDecimal(in.UnitPrice),
		EstimatePrice:  decimal.NewNullDecimal(prepared.Quote.GrandTotal),
		Estimate:       blob,
		DueDate:        in.DueDate,
		CreatedBy:      userID,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	err = uc.tx.RunInTx(ctx, func(r ports.Repos) error {
		number, err := numbering.NewIssuer(r.Counters).Next(ctx, numbering.Job)
		if err != nil {
			return err
		}
		j.JobNo = number
		return r.Jobs.Create(ctx, j)
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("job_id", j.ID).Str("job_no", j.JobNo).
		Str("price", prepared.Quote.GrandTotal.StringFixed(2)).Msg("trabajo registrado")
	return dto.NewJobResponse(j), nil
}

// Get devuelve un trabajo.
func (uc *UseCase) Get(ctx context.Context, id string) (*dto.JobResponse, error) {
	j, err := uc.repos.Jobs.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if j == nil {
		return nil, domain.ErrNotFound
	}
	return dto.NewJobResponse(j), nil
}

// List filtra trabajos.
func (uc *UseCase) List(ctx context.Context, in dto.ListJobsRequest) ([]*dto.JobResponse, error) {
	in.DefaultPage()
	list, err := uc.repos.Jobs.List(ctx, repository.JobFilter{
		CustomerID: in.CustomerID,
		Status:     in.Status,
		Invoiced:   in.Invoiced,
		Limit:      in.Limit,
		Offset:     in.Offset,
	})
	if err != nil {
		return nil, err
	}
	out := make([]*dto.JobResponse, 0, len(list))
	for _, j := range list {
		out = append(out, dto.NewJobResponse(j))
	}
	return out, nil
}

// UpdateStatus fija un estado operativo libre y avisa al cliente por email en segundo plano.
// Volver a fijar el estado actual no cambia ni envía nada.
func (uc *UseCase) UpdateStatus(ctx context.Context, id string, in dto.UpdateJobStatusRequest) (*dto.JobResponse, error) {
	status := strings.ToLower(strings.TrimSpace(in.Status))
	if status == "" {
		return nil, fmt.Errorf("%w: status is required", domain.ErrInvalidInput)
	}
	j, err := uc.repos.Jobs.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if j == nil {
		return nil, domain.ErrNotFound
	}
	if j.Status == status {
		return dto.NewJobResponse(j), nil
	}
	if status == entity.JobCompleted {
		return nil, fmt.Errorf("%w: use complete to finish a job", domain.ErrInvalidInput)
	}
	old := j.Status
	now := uc.now().UTC()
	if err := uc.repos.Jobs.UpdateStatus(ctx, id, status, now); err != nil {
		return nil, err
	}
	j.Status, j.UpdatedAt = status, now
	uc.notify(ctx, j, old)
	return dto.NewJobResponse(j), nil
}

// Complete registra el costo final, que pasa a ser el precio canónico del trabajo, y lo marca completado.
func (uc *UseCase) Complete(ctx context.Context, id string, in dto.CompleteJobRequest) (*dto.JobResponse, error) {
	if in.FinalCost.IsNegative() {
		return nil, fmt.Errorf("%w: final cost must not be negative", domain.ErrInvalidInput)
	}
	j, err := uc.repos.Jobs.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if j == nil {
		return nil, domain.ErrNotFound
	}
	if j.Status == entity.JobCancelled {
		return nil, fmt.Errorf("%w: job %s is cancelled", domain.ErrConflict, j.JobNo)
	}
	// la línea de factura salió del precio canónico; no puede moverse después
	if j.Invoiced && !in.FinalCost.Equal(pricing.CanonicalPrice(pricing.SourceFromJob(j)).Round(2)) {
		return nil, fmt.Errorf("%w: job %s is on invoice %s", domain.ErrAlreadyInvoiced, j.JobNo, j.InvoiceNo)
	}
	old := j.Status
	now := uc.now().UTC()
	if err := uc.repos.Jobs.Complete(ctx, j.ID, in.FinalCost, now); err != nil {
		return nil, err
	}
	j.FinalCost = decimal.NewNullDecimal(in.FinalCost)
	j.Status, j.CompletedAt, j.UpdatedAt = entity.JobCompleted, &now, now
	if old != entity.JobCompleted {
		uc.notify(ctx, j, old)
	}
	return dto.NewJobResponse(j), nil
}

// PricingCoverage informa cuántos de los trabajos filtrados tienen un precio interpretable.
func (uc *UseCase) PricingCoverage(ctx context.Context, f repository.JobFilter) (dto.CoverageDTO, error) {
	f.Limit, f.Offset = 0, 0
	list, err := uc.repos.Jobs.List(ctx, f)
	if err != nil {
		return dto.CoverageDTO{}, err
	}
	prices := make([]decimal.Decimal, 0, len(list))
	bySource := map[string]int{}
	for _, j := range list {
		p, source, ok := pricing.Consolidate(pricing.SourceFromJob(j))
		if ok {
			bySource[source]++
		}
		prices = append(prices, p)
	}
	return dto.NewCoverageDTO(pricing.Coverage(prices), bySource), nil
}

// notify envía el correo de estado sin bloquear al llamador. Los fallos solo se registran en el log.
func (uc *UseCase) notify(ctx context.Context, j *entity.Job, oldStatus string) {
	if uc.notifier == nil {
		return
	}
	cust, err := uc.repos.Customers.GetByID(ctx, j.CustomerID)
	if err != nil || cust == nil || cust.Email == "" {
		if err != nil {
			uc.log.Warn().Err(err).Str("job_no", j.JobNo).Msg("correo de estado omitido: no se encontró el cliente")
		}
		return
	}
	change := ports.StatusChange{
		CustomerEmail: cust.Email,
		CustomerName:  cust.Name,
		JobNumber:     j.JobNo,
		JobTitle:      j.Title,
		OldStatus:     oldStatus,
		NewStatus:     j.Status,
	}
	uc.pending.Add(1)
	go func() {
		defer uc.pending.Done()
		sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), notifyTimeout)
		defer cancel()
		if err := uc.notifier.SendStatusChangeEmail(sendCtx, change); err != nil {
			uc.log.Warn().Err(err).Str("job_no", change.JobNumber).Str("to", change.CustomerEmail).
				Msg("fallo al enviar correo de estado")
		}
	}()
}
