// Package catalog sirve los datos de referencia del formulario de pedido: servicios, papel, tamaños y
// acabados. Resuelve selecciones contra un servicio y las valora.
package catalog

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jhoicas/printshop-api/internal/application/dto"
	"github.com/jhoicas/printshop-api/internal/cache"
	"github.com/jhoicas/printshop-api/internal/domain"
	"github.com/jhoicas/printshop-api/internal/domain/entity"
	"github.com/jhoicas/printshop-api/internal/domain/pricing"
	"github.com/jhoicas/printshop-api/internal/domain/repository"
	"github.com/jhoicas/printshop-api/internal/domain/specification"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

const snapshotKey = "catalog"

// Snapshot es una carga consistente de los datos de referencia.
type Snapshot struct {
	Catalog  specification.Catalog
	Services []*entity.Service
	// Fallback indica que no se pudo leer el backend y se sirven los datos incorporados.
	Fallback bool
}

// Service devuelve el servicio activo con id, o nil.
func (s Snapshot) Service(id string) *entity.Service {
	for _, svc := range s.Services {
		if svc.ID == id {
			return svc
		}
	}
	return nil
}

// Prepared es una especificación resuelta contra su servicio y valorada.
type Prepared struct {
	Service        *entity.Service
	Specifications entity.Specification
	Report         specification.RepairReport
	Quote          pricing.Quote
}

// Service carga, cachea y aplica los datos de referencia.
type Service struct {
	repo      repository.CatalogRepository
	ttl       time.Duration
	cache     *cache.TTL[string, Snapshot]
	formatter pricing.Formatter
	log       zerolog.Logger
}

// NewService construye el servicio de catálogo. ttl limita la antigüedad de los datos de referencia.
func NewService(repo repository.CatalogRepository, ttl time.Duration, formatter pricing.Formatter, log zerolog.Logger) *Service {
	return &Service{
		repo:      repo,
		ttl:       ttl,
		cache:     cache.NewTTL[string, Snapshot](ttl, nil),
		formatter: formatter,
		log:       log.With().Str("component", "catalog").Logger(),
	}
}

// WithClock reemplaza el reloj de la caché.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.cache = cache.NewTTL[string, Snapshot](s.ttl, now)
	return s
}

// Invalidate obliga a que el siguiente Load vaya al backend.
func (s *Service) Invalidate() {
	s.cache.Invalidate(snapshotKey)
}

// Load devuelve el snapshot cacheado o lee todas las tablas de referencia en paralelo.
// Si el backend falla se degrada al catálogo incorporado, sin cachearlo.
func (s *Service) Load(ctx context.Context) Snapshot {
	if snap, ok := s.cache.Get(snapshotKey); ok {
		return snap
	}
	snap, err := s.fetch(ctx)
	if err != nil {
		s.log.Warn().Err(err).Msg("datos de referencia no disponibles, usando catálogo integrado")
		return Snapshot{Catalog: specification.DefaultCatalog(), Fallback: true}
	}
	s.cache.Set(snapshotKey, snap)
	return snap
}

func (s *Service) fetch(ctx context.Context) (Snapshot, error) {
	var snap Snapshot
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		snap.Services, err = s.repo.ListServices(gctx)
		return err
	})
	g.Go(func() (err error) {
		snap.Catalog.FinishOptions, err = s.repo.ListFinishOptions(gctx)
		return err
	})
	g.Go(func() (err error) {
		snap.Catalog.PaperTypes, err = s.repo.ListPaperTypes(gctx)
		return err
	})
	g.Go(func() (err error) {
		snap.Catalog.PaperWeightsGSM, err = s.repo.ListPaperWeights(gctx)
		return err
	})
	g.Go(func() (err error) {
		snap.Catalog.SizePresets, err = s.repo.ListSizePresets(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return Snapshot{}, err
	}
	if len(snap.Catalog.PaperTypes) == 0 && len(snap.Catalog.FinishOptions) == 0 && len(snap.Catalog.SizePresets) == 0 {
		return Snapshot{}, fmt.Errorf("%w: reference tables are empty", domain.ErrUnavailable)
	}
	return snap, nil
}

// lookupService resuelve serviceID en snap. En modo fallback un servicio desconocido no tiene restricciones.
func (s *Service) lookupService(snap Snapshot, serviceID string) (*entity.Service, error) {
	if strings.TrimSpace(serviceID) == "" {
		return nil, nil
	}
	if svc := snap.Service(serviceID); svc != nil {
		return svc, nil
	}
	if snap.Fallback {
		return nil, nil
	}
	return nil, fmt.Errorf("%w: service %s", domain.ErrInvalidReference, serviceID)
}

// Get devuelve el catálogo completo para el formulario de pedido.
func (s *Service) Get(ctx context.Context) *dto.CatalogResponse {
	snap := s.Load(ctx)
	out := &dto.CatalogResponse{
		Services:      make([]dto.ServiceResponse, 0, len(snap.Services)),
		PaperTypes:    snap.Catalog.PaperTypes,
		PaperWeights:  snap.Catalog.PaperWeightsGSM,
		SizePresets:   snap.Catalog.SizePresets,
		FinishOptions: make([]dto.FinishOptionResponse, 0, len(snap.Catalog.FinishOptions)),
		Fallback:      snap.Fallback,
	}
	for _, svc := range snap.Services {
		out.Services = append(out.Services, dto.ServiceResponse{
			ID: svc.ID, Title: svc.Title, Description: svc.Description, Options: svc.Options,
		})
	}
	for _, f := range snap.Catalog.FinishOptions {
		if !f.Active {
			continue
		}
		out.FinishOptions = append(out.FinishOptions, dto.FinishOptionResponse{
			ID:        f.ID,
			Name:      f.Name,
			Category:  string(f.Category),
			BasePrice: f.Pricing.Base,
			Label:     s.formatter.AmountLabel(f.Pricing.Base),
		})
	}
	return out
}

// Resolve reduce el catálogo a lo que permite el servicio y repara la selección.
func (s *Service) Resolve(ctx context.Context, in dto.ResolveRequest) (*dto.ResolveResponse, error) {
	snap := s.Load(ctx)
	svc, err := s.lookupService(snap, in.ServiceID)
	if err != nil {
		return nil, err
	}
	legal, spec, rep := specification.ResolveAndRepair(svc, snap.Catalog, in.Specifications)
	return &dto.ResolveResponse{
		Legal:           legal,
		Specifications:  spec,
		Changes:         rep.Changes,
		DroppedFinishes: rep.DroppedFinishes,
	}, nil
}

// Quote valora una selección en vivo. Con service id, primero se descartan los acabados no permitidos.
func (s *Service) Quote(ctx context.Context, in dto.QuoteRequest) (*dto.QuoteResponse, error) {
	snap := s.Load(ctx)
	selected, overrides := in.SelectedIDs, in.Overrides
	if in.ServiceID != "" {
		svc, err := s.lookupService(snap, in.ServiceID)
		if err != nil {
			return nil, err
		}
		legal := specification.Resolve(svc, snap.Catalog)
		repaired, _ := specification.Repair(legal, entity.Specification{
			Finishing: entity.FinishingSelection{SelectedIDs: selected, Overrides: overrides},
		})
		selected, overrides = repaired.Finishing.SelectedIDs, repaired.Finishing.Overrides
	}
	q, err := pricing.ComputeTotal(pricing.QuoteInput{
		UnitPrice:   in.UnitPrice,
		Quantity:    in.Quantity,
		SelectedIDs: selected,
		Overrides:   overrides,
	}, snap.Catalog.FinishByID())
	if err != nil {
		return nil, err
	}
	return s.quoteResponse(q), nil
}

func (s *Service) quoteResponse(q pricing.Quote) *dto.QuoteResponse {
	out := &dto.QuoteResponse{
		Subtotal:        q.Subtotal,
		Lines:           make([]dto.QuoteLineResponse, 0, len(q.Lines)),
		PerOptionTotals: q.PerOptionTotals,
		GrandTotal:      q.GrandTotal,
		GrandTotalLabel: s.formatter.Format(q.GrandTotal),
	}
	for _, l := range q.Lines {
		out.Lines = append(out.Lines, dto.QuoteLineResponse{
			OptionID:   l.OptionID,
			Name:       l.Name,
			UnitPrice:  l.UnitPrice,
			Total:      l.Total,
			Overridden: l.Overridden,
			IsFree:     l.IsFree,
			Label:      l.Label(s.formatter),
		})
	}
	return out
}

// Prepare resuelve spec contra el servicio, la repara y la valora.
// Cotizaciones y trabajos guardan el snapshot reparado y la cotización resultante.
func (s *Service) Prepare(ctx context.Context, serviceID string, spec entity.Specification, unitPrice decimal.Decimal, quantity int) (*Prepared, error) {
	snap := s.Load(ctx)
	svc, err := s.lookupService(snap, serviceID)
	if err != nil {
		return nil, err
	}
	_, repaired, rep := specification.ResolveAndRepair(svc, snap.Catalog, spec)
	q, err := pricing.ComputeTotal(pricing.QuoteInput{
		UnitPrice:   unitPrice,
		Quantity:    quantity,
		SelectedIDs: repaired.Finishing.SelectedIDs,
		Overrides:   repaired.Finishing.Overrides,
	}, snap.Catalog.FinishByID())
	if err != nil {
		return nil, err
	}
	if rep.Changed() {
		s.log.Debug().Str("service_id", serviceID).Int("changes", len(rep.Changes)).
			Strs("dropped_finishes", rep.DroppedFinishes).Msg("especificación reparada")
	}
	return &Prepared{Service: svc, Specifications: repaired, Report: rep, Quote: q}, nil
}
