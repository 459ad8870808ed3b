// Package report arma el reporte de cobertura de precios sobre trabajos, cotizaciones y facturas.
package report

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/printshop-api/internal/application/dto"
	"github.com/jhoicas/printshop-api/internal/domain"
	"github.com/jhoicas/printshop-api/internal/domain/pricing"
	"github.com/jhoicas/printshop-api/internal/domain/repository"
	"github.com/shopspring/decimal"
)

// Period acota el reporte por fecha de creación. Un extremo nil queda abierto.
type Period struct {
	From *time.Time
	To   *time.Time
}

// UseCase lee solo a través de ReportRepository.
type UseCase struct {
	repo repository.ReportRepository
	now  func() time.Time
}

// NewUseCase construye el caso de uso.
func NewUseCase(repo repository.ReportRepository) *UseCase {
	return &UseCase{repo: repo, now: time.Now}
}

// WithClock reemplaza el reloj que se estampa en GeneratedAt.
func (uc *UseCase) WithClock(now func() time.Time) *UseCase {
	uc.now = now
	return uc
}

// PricingCoverage ejecuta las tres consultas en paralelo:
//  1. JobPriceSources       → Jobs
//  2. EstimatePriceSources  → Estimates (versiones vigentes)
//  3. InvoiceSummary        → Invoices
func (uc *UseCase) PricingCoverage(ctx context.Context, p Period) (*dto.PricingCoverageReport, error) {
	var from, to time.Time
	if p.From != nil {
		from = *p.From
	}
	if p.To != nil {
		to = *p.To
	}
	if !from.IsZero() && !to.IsZero() && to.Before(from) {
		return nil, fmt.Errorf("%w: period ends before it starts", domain.ErrInvalidInput)
	}

	type sourcesResult struct {
		sources []pricing.PriceSource
		err     error
	}
	type summaryResult struct {
		summary repository.InvoiceSummary
		err     error
	}

	jobsCh := make(chan sourcesResult, 1)
	estimatesCh := make(chan sourcesResult, 1)
	invoicesCh := make(chan summaryResult, 1)

	go func() {
		s, err := uc.repo.JobPriceSources(ctx, from, to)
		jobsCh <- sourcesResult{s, err}
	}()
	go func() {
		s, err := uc.repo.EstimatePriceSources(ctx, from, to)
		estimatesCh <- sourcesResult{s, err}
	}()
	go func() {
		s, err := uc.repo.InvoiceSummary(ctx, from, to)
		invoicesCh <- summaryResult{s, err}
	}()

	jobs := <-jobsCh
	estimates := <-estimatesCh
	invoices := <-invoicesCh

	if jobs.err != nil {
		return nil, fmt.Errorf("report: jobs: %w", jobs.err)
	}
	if estimates.err != nil {
		return nil, fmt.Errorf("report: estimates: %w", estimates.err)
	}
	if invoices.err != nil {
		return nil, fmt.Errorf("report: invoices: %w", invoices.err)
	}

	return &dto.PricingCoverageReport{
		From:        p.From,
		To:          p.To,
		GeneratedAt: uc.now().UTC(),
		Jobs:        coverage(jobs.sources),
		Estimates:   coverage(estimates.sources),
		Invoices: dto.InvoiceSummaryDTO{
			Count:       invoices.summary.Count,
			Invoiced:    invoices.summary.Invoiced.Round(2),
			Paid:        invoices.summary.Paid.Round(2),
			Outstanding: invoices.summary.Outstanding.Round(2),
		},
	}, nil
}

func coverage(sources []pricing.PriceSource) dto.CoverageDTO {
	prices := make([]decimal.Decimal, 0, len(sources))
	bySource := map[string]int{}
	for _, src := range sources {
		p, name, ok := pricing.Consolidate(src)
		if ok {
			bySource[name]++
		}
		prices = append(prices, p)
	}
	return dto.NewCoverageDTO(pricing.Coverage(prices), bySource)
}
