package memory

import (
	"context"
	"time"

	"github.com/jhoicas/printshop-api/internal/domain/entity"
	"github.com/jhoicas/printshop-api/internal/domain/pricing"
	"github.com/jhoicas/printshop-api/internal/domain/repository"
)

var _ repository.ReportRepository = (*ReportRepo)(nil)

// ReportRepo consultas de reporte de solo lectura.
type ReportRepo struct{ s *session }

func inPeriod(t, from, to time.Time) bool {
	return (from.IsZero() || !t.Before(from)) && (to.IsZero() || t.Before(to))
}

func (r *ReportRepo) JobPriceSources(_ context.Context, from, to time.Time) (out []pricing.PriceSource, err error) {
	err = r.s.do("reports.jobs", func(st *state) error {
		for _, j := range st.jobs {
			if inPeriod(j.CreatedAt, from, to) {
				j := j
				out = append(out, pricing.SourceFromJob(&j))
			}
		}
		return nil
	})
	return out, err
}

func (r *ReportRepo) EstimatePriceSources(_ context.Context, from, to time.Time) (out []pricing.PriceSource, err error) {
	err = r.s.do("reports.estimates", func(st *state) error {
		for _, e := range st.estimates {
			if e.IsCurrentVersion && inPeriod(e.CreatedAt, from, to) {
				e := e
				out = append(out, pricing.SourceFromEstimate(&e))
			}
		}
		return nil
	})
	return out, err
}

func (r *ReportRepo) InvoiceSummary(_ context.Context, from, to time.Time) (s repository.InvoiceSummary, err error) {
	err = r.s.do("reports.invoices", func(st *state) error {
		for _, inv := range st.invoices {
			if inv.Status == entity.InvoiceCancelled || !inPeriod(inv.CreatedAt, from, to) {
				continue
			}
			s.Count++
			s.Invoiced = s.Invoiced.Add(inv.Total)
			s.Paid = s.Paid.Add(inv.AmountPaid)
			s.Outstanding = s.Outstanding.Add(inv.AmountDue)
		}
		return nil
	})
	return s, err
}
