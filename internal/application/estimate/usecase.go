// Package estimate lleva las cotizaciones por su ciclo de vida: borrador, envío, respuesta del cliente,
// revisión y conversión en trabajo de producción.
package estimate

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/printshop-api/internal/application/catalog"
	"github.com/jhoicas/printshop-api/internal/application/dto"
	"github.com/jhoicas/printshop-api/internal/application/numbering"
	"github.com/jhoicas/printshop-api/internal/application/ports"
	"github.com/jhoicas/printshop-api/internal/domain"
	"github.com/jhoicas/printshop-api/internal/domain/entity"
	"github.com/jhoicas/printshop-api/internal/domain/lifecycle"
	"github.com/jhoicas/printshop-api/internal/domain/pricing"
	"github.com/jhoicas/printshop-api/internal/domain/repository"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// Pricer resuelve y valora una especificación contra un servicio.
type Pricer interface {
	Prepare(ctx context.Context, serviceID string, spec entity.Specification, unitPrice decimal.Decimal, quantity int) (*catalog.Prepared, error)
}

// Config parámetros de precio de las cotizaciones nuevas.
type Config struct {
	TaxRate  decimal.Decimal
	Validity time.Duration
}

// UseCase operaciones de cotizaciones. Las escrituras que deben ser atómicas pasan por el TxRunner.
type UseCase struct {
	tx     ports.TxRunner
	repos  ports.Repos
	pricer Pricer
	cfg    Config
	log    zerolog.Logger
	now    func() time.Time
}

// NewUseCase construye el caso de uso. repos sirve las lecturas fuera de transacción.
func NewUseCase(tx ports.TxRunner, repos ports.Repos, pricer Pricer, cfg Config, log zerolog.Logger) *UseCase {
	return &UseCase{
		tx:     tx,
		repos:  repos,
		pricer: pricer,
		cfg:    cfg,
		log:    log.With().Str("component", "estimate").Logger(),
		now:    time.Now,
	}
}

// WithClock reemplaza el reloj de las marcas de tiempo y del estado efectivo.
func (uc *UseCase) WithClock(now func() time.Time) *UseCase {
	uc.now = now
	return uc
}

type draft struct {
	serviceID   string
	title       string
	description string
	spec        entity.Specification
	unitPrice   decimal.Decimal
	quantity    int
	priority    entity.Priority
}

func (d draft) validate() error {
	switch {
	case strings.TrimSpace(d.title) == "":
		return fmt.Errorf("%w: title is required", domain.ErrInvalidInput)
	case d.quantity <= 0:
		return fmt.Errorf("%w: quantity must be greater than zero", domain.ErrInvalidInput)
	case d.unitPrice.IsNegative():
		return fmt.Errorf("%w: unit price must not be negative", domain.ErrInvalidInput)
	case !d.priority.Valid():
		return fmt.Errorf("%w: unknown priority %q", domain.ErrInvalidInput, d.priority)
	}
	return nil
}

// price repara y valora d y llena los campos de dinero de e.
func (uc *UseCase) price(ctx context.Context, d draft, e *entity.Estimate) error {
	prepared, err := uc.pricer.Prepare(ctx, d.serviceID, d.spec, d.unitPrice, d.quantity)
	if err != nil {
		return err
	}
	totals, err := pricing.Totals(prepared.Quote.GrandTotal, uc.cfg.TaxRate, decimal.Zero)
	if err != nil {
		return err
	}
	e.ServiceID = d.serviceID
	e.Title = strings.TrimSpace(d.title)
	e.Description = strings.TrimSpace(d.description)
	e.Specifications = prepared.Specifications
	e.UnitPrice = d.unitPrice
	e.Quantity = d.quantity
	e.Priority = d.priority
	e.Subtotal = totals.Subtotal
	e.TaxAmount = totals.Tax
	e.TotalAmount = totals.Total
	return nil
}

func priorityOrDefault(p string) entity.Priority {
	if p == "" {
		return entity.PriorityMedium
	}
	return entity.Priority(p)
}

// Create redacta la versión 1 de una cotización nueva y emite su número.
func (uc *UseCase) Create(ctx context.Context, userID string, in dto.CreateEstimateRequest) (*dto.EstimateResponse, error) {
	d := draft{
		serviceID:   in.ServiceID,
		title:       in.Title,
		description: in.Description,
		spec:        in.Specifications,
		unitPrice:   in.UnitPrice,
		quantity:    in.Quantity,
		priority:    priorityOrDefault(in.Priority),
	}
	if err := d.validate(); err != nil {
		return nil, err
	}
	cust, err := uc.repos.Customers.GetByID(ctx, in.CustomerID)
	if err != nil {
		return nil, err
	}
	if cust == nil {
		return nil, fmt.Errorf("%w: customer %s", domain.ErrInvalidReference, in.CustomerID)
	}

	now := uc.now().UTC()
	id := uuid.New().String()
	e := &entity.Estimate{
		ID:               id,
		CustomerID:       cust.ID,
		Status:           entity.EstimateDraft,
		Version:          1,
		IsCurrentVersion: true,
		LineageID:        id,
		CreatedBy:        userID,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := uc.price(ctx, d, e); err != nil {
		return nil, err
	}

	err = uc.tx.RunInTx(ctx, func(r ports.Repos) error {
		number, err := numbering.NewIssuer(r.Counters).Next(ctx, numbering.Estimate)
		if err != nil {
			return err
		}
		e.EstimateNumber = number
		return r.Estimates.Create(ctx, e)
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("estimate_id", e.ID).Str("estimate_number", e.EstimateNumber).
		Str("total", e.TotalAmount.StringFixed(2)).Msg("presupuesto creado")
	return dto.NewEstimateResponse(e, now), nil
}

// Get devuelve una cotización con su estado efectivo.
func (uc *UseCase) Get(ctx context.Context, id string) (*dto.EstimateResponse, error) {
	e, err := uc.repos.Estimates.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if e == nil {
		return nil, domain.ErrNotFound
	}
	return dto.NewEstimateResponse(e, uc.now()), nil
}

// estados cuyo valor guardado puede diferir del efectivo.
var expiringStatuses = []entity.EstimateStatus{entity.EstimateSent, entity.EstimateViewed, entity.EstimateExpired}

// List filtra cotizaciones. Los filtros de estado comparan con el estado efectivo.
func (uc *UseCase) List(ctx context.Context, in dto.ListEstimatesRequest) ([]*dto.EstimateResponse, error) {
	in.DefaultPage()
	now := uc.now()
	status := entity.EstimateStatus(in.Status)
	f := repository.EstimateFilter{
		CustomerID:  in.CustomerID,
		Status:      status,
		CurrentOnly: in.CurrentOnly,
		Limit:       in.Limit,
		Offset:      in.Offset,
	}
	lazy := slices.Contains(expiringStatuses, status)
	if lazy {
		f.Status, f.Limit, f.Offset = "", 0, 0
	}
	list, err := uc.repos.Estimates.List(ctx, f)
	if err != nil {
		return nil, err
	}
	out := make([]*dto.EstimateResponse, 0, len(list))
	skipped := 0
	for _, e := range list {
		if lazy {
			if lifecycle.EffectiveStatus(e, now) != status {
				continue
			}
			if skipped < in.Offset {
				skipped++
				continue
			}
			if len(out) == in.Limit {
				break
			}
		}
		out = append(out, dto.NewEstimateResponse(e, now))
	}
	return out, nil
}

// transition aplica ev a la cotización bloqueada. El estado guardado solo se escribe si no
// cambió desde que se leyó la fila.
func (uc *UseCase) transition(ctx context.Context, id string, ev lifecycle.Event, opts lifecycle.ApplyOptions) (*entity.Estimate, error) {
	var out *entity.Estimate
	err := uc.tx.RunInTx(ctx, func(r ports.Repos) error {
		e, err := r.Estimates.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if e == nil {
			return domain.ErrNotFound
		}
		from := e.Status
		if err := lifecycle.Apply(e, ev, uc.now(), opts); err != nil {
			return err
		}
		if err := r.Estimates.UpdateStatus(ctx, e, from); err != nil {
			return err
		}
		out = e
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("estimate_id", out.ID).Str("event", string(ev)).Str("status", string(out.Status)).Msg("transición de presupuesto")
	return out, nil
}

// Send marca un borrador como enviado. Si falta expires_at se fija con la vigencia configurada.
func (uc *UseCase) Send(ctx context.Context, id string) (*dto.EstimateResponse, error) {
	e, err := uc.transition(ctx, id, lifecycle.EventSend, lifecycle.ApplyOptions{Validity: uc.cfg.Validity})
	if err != nil {
		return nil, err
	}
	return dto.NewEstimateResponse(e, uc.now()), nil
}

// MarkViewed registra que el cliente abrió la cotización. Verla dos veces no cambia nada.
func (uc *UseCase) MarkViewed(ctx context.Context, id string) (*dto.EstimateResponse, error) {
	cur, err := uc.repos.Estimates.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if cur == nil {
		return nil, domain.ErrNotFound
	}
	if lifecycle.EffectiveStatus(cur, uc.now()) == entity.EstimateViewed {
		return dto.NewEstimateResponse(cur, uc.now()), nil
	}
	e, err := uc.transition(ctx, id, lifecycle.EventView, lifecycle.ApplyOptions{})
	if err != nil {
		return nil, err
	}
	return dto.NewEstimateResponse(e, uc.now()), nil
}

// Respond registra la aprobación o el rechazo del cliente con un mensaje opcional.
func (uc *UseCase) Respond(ctx context.Context, id string, in dto.RespondEstimateRequest) (*dto.EstimateResponse, error) {
	var ev lifecycle.Event
	switch in.Decision {
	case "approve":
		ev = lifecycle.EventApprove
	case "reject":
		ev = lifecycle.EventReject
	default:
		return nil, fmt.Errorf("%w: decision must be approve or reject", domain.ErrInvalidInput)
	}
	e, err := uc.transition(ctx, id, ev, lifecycle.ApplyOptions{Response: in.Response})
	if err != nil {
		return nil, err
	}
	return dto.NewEstimateResponse(e, uc.now()), nil
}

// Revise crea un borrador nuevo a partir de la versión vigente de un linaje. Se conserva el número
// y la versión anterior deja de ser la vigente en la misma transacción.
func (uc *UseCase) Revise(ctx context.Context, userID, id string, in dto.ReviseEstimateRequest) (*dto.EstimateResponse, error) {
	prev, err := uc.repos.Estimates.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if prev == nil {
		return nil, domain.ErrNotFound
	}

	d := draft{
		serviceID:   prev.ServiceID,
		title:       prev.Title,
		description: prev.Description,
		spec:        prev.Specifications.Clone(),
		unitPrice:   prev.UnitPrice,
		quantity:    prev.Quantity,
		priority:    prev.Priority,
	}
	if in.Title != nil {
		d.title = *in.Title
	}
	if in.Description != nil {
		d.description = *in.Description
	}
	if in.Specifications != nil {
		d.spec = *in.Specifications
	}
	if in.UnitPrice != nil {
		d.unitPrice = *in.UnitPrice
	}
	if in.Quantity != nil {
		d.quantity = *in.Quantity
	}
	if in.Priority != nil {
		d.priority = priorityOrDefault(*in.Priority)
	}
	if err := d.validate(); err != nil {
		return nil, err
	}

	now := uc.now().UTC()
	next := &entity.Estimate{
		ID:               uuid.New().String(),
		EstimateNumber:   prev.EstimateNumber,
		CustomerID:       prev.CustomerID,
		Status:           entity.EstimateDraft,
		Version:          prev.Version + 1,
		IsCurrentVersion: true,
		ParentEstimateID: prev.ID,
		LineageID:        prev.LineageID,
		CreatedBy:        userID,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := uc.price(ctx, d, next); err != nil {
		return nil, err
	}

	err = uc.tx.RunInTx(ctx, func(r ports.Repos) error {
		locked, err := r.Estimates.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if locked == nil {
			return domain.ErrNotFound
		}
		if !locked.IsCurrentVersion || locked.Version != prev.Version {
			return fmt.Errorf("%w: only the current version can be revised", domain.ErrConflict)
		}
		if st := lifecycle.EffectiveStatus(locked, now); !lifecycle.Revisable(st) {
			return fmt.Errorf("%w: %s estimates cannot be revised", domain.ErrInvalidTransition, st)
		}
		if err := r.Estimates.ClearCurrent(ctx, locked.LineageID); err != nil {
			return err
		}
		return r.Estimates.Create(ctx, next)
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("estimate_number", next.EstimateNumber).Int("version", next.Version).Msg("presupuesto revisado")
	return dto.NewEstimateResponse(next, now), nil
}

// ConvertToJob convierte una cotización aprobada en un trabajo pendiente en una transacción: se
// bloquea la cotización, se emite el número de trabajo, se inserta el trabajo y la cotización pasa a converted.
// Una segunda conversión de la misma cotización falla con ErrInvalidTransition.
func (uc *UseCase) ConvertToJob(ctx context.Context, userID, id string) (*dto.EstimateResponse, *dto.JobResponse, error) {
	now := uc.now().UTC()
	var est *entity.Estimate
	var job *entity.Job
	err := uc.tx.RunInTx(ctx, func(r ports.Repos) error {
		e, err := r.Estimates.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if e == nil {
			return domain.ErrNotFound
		}
		if e.ConvertedToJobID != "" || e.Status == entity.EstimateConverted {
			return fmt.Errorf("%w: estimate %s is already converted", domain.ErrInvalidTransition, e.EstimateNumber)
		}
		if st := lifecycle.EffectiveStatus(e, now); st != entity.EstimateApproved {
			return fmt.Errorf("%w: only approved estimates can be converted, status is %s", domain.ErrInvalidTransition, st)
		}

		number, err := numbering.NewIssuer(r.Counters).Next(ctx, numbering.Job)
		if err != nil {
			return err
		}
		j := &entity.Job{
			ID:             uuid.New().String(),
			JobNo:          number,
			CustomerID:     e.CustomerID,
			ServiceID:      e.ServiceID,
			EstimateID:     e.ID,
			Title:          e.Title,
			Description:    e.Description,
			Status:         entity.JobPending,
			Priority:       e.Priority,
			Quantity:       e.Quantity,
			Specifications: e.Specifications,
			UnitPrice:      decimal.NewNullDecimal(e.UnitPrice),
			EstimatePrice:  decimal.NewNullDecimal(e.TotalAmount),
			EstimatedCost:  decimal.NewNullDecimal(e.TotalAmount),
			CreatedBy:      userID,
			CreatedAt:      now,
			UpdatedAt:      now,
		}
		if err := r.Jobs.Create(ctx, j); err != nil {
			return err
		}
		if err := lifecycle.Apply(e, lifecycle.EventConvert, now, lifecycle.ApplyOptions{JobID: j.ID}); err != nil {
			return err
		}
		if err := r.Estimates.MarkConverted(ctx, e.ID, j.ID, now); err != nil {
			return err
		}
		est, job = e, j
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	uc.log.Info().Str("estimate_number", est.EstimateNumber).Str("job_no", job.JobNo).Msg("presupuesto convertido en trabajo")
	return dto.NewEstimateResponse(est, now), dto.NewJobResponse(job), nil
}
