package memory

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/printshop-api/internal/domain"
	"github.com/jhoicas/printshop-api/internal/domain/entity"
	"github.com/jhoicas/printshop-api/internal/domain/lifecycle"
	"github.com/jhoicas/printshop-api/internal/domain/repository"
	"github.com/jhoicas/printshop-api/internal/domain/specification"
	"github.com/shopspring/decimal"
)

var (
	_ repository.CustomerRepository = (*CustomerRepo)(nil)
	_ repository.CounterRepository  = (*CounterRepo)(nil)
	_ repository.EstimateRepository = (*EstimateRepo)(nil)
	_ repository.JobRepository      = (*JobRepo)(nil)
	_ repository.InvoiceRepository  = (*InvoiceRepo)(nil)
	_ repository.FileRepository     = (*FileRepo)(nil)
	_ repository.CatalogRepository  = (*CatalogRepo)(nil)
)

func page[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return nil
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}

// CounterRepo contadores atómicos.
type CounterRepo struct{ s *session }

func (r *CounterRepo) NextValue(_ context.Context, name string) (v int64, err error) {
	err = r.s.do("counters.next", func(st *state) error {
		st.counters[name]++
		v = st.counters[name]
		return nil
	})
	return v, err
}

// CustomerRepo clientes.
type CustomerRepo struct{ s *session }

func (r *CustomerRepo) Create(_ context.Context, c *entity.Customer) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	return r.s.do("customers.create", func(st *state) error {
		if _, ok := st.customers[c.ID]; ok {
			return domain.ErrDuplicate
		}
		for _, other := range st.customers {
			if c.Email != "" && strings.EqualFold(other.Email, c.Email) {
				return fmt.Errorf("%w: customer email", domain.ErrDuplicate)
			}
		}
		st.customers[c.ID] = *c
		return nil
	})
}

func (r *CustomerRepo) GetByID(_ context.Context, id string) (out *entity.Customer, err error) {
	err = r.s.do("customers.get", func(st *state) error {
		if c, ok := st.customers[id]; ok {
			out = &c
		}
		return nil
	})
	return out, err
}

func (r *CustomerRepo) List(_ context.Context, search string, limit, offset int) (out []*entity.Customer, err error) {
	if limit <= 0 {
		limit = 50
	}
	search = strings.ToLower(strings.TrimSpace(search))
	err = r.s.do("customers.list", func(st *state) error {
		var all []*entity.Customer
		for _, c := range st.customers {
			if search != "" && !strings.Contains(strings.ToLower(c.Name+" "+c.CompanyName+" "+c.Email), search) {
				continue
			}
			c := c
			all = append(all, &c)
		}
		sort.Slice(all, func(i, j int) bool { return all[i].Name < all[j].Name })
		out = page(all, limit, offset)
		return nil
	})
	return out, err
}

// EstimateRepo cotizaciones.
type EstimateRepo struct{ s *session }

func (r *EstimateRepo) Create(_ context.Context, e *entity.Estimate) error {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	if e.LineageID == "" {
		e.LineageID = e.ID
	}
	if _, err := specification.EncodeSnapshot(e.Specifications); err != nil {
		return err
	}
	return r.s.do("estimates.create", func(st *state) error {
		if _, ok := st.customers[e.CustomerID]; !ok {
			return fmt.Errorf("%w: customer %s", domain.ErrInvalidReference, e.CustomerID)
		}
		for _, other := range st.estimates {
			if other.EstimateNumber == e.EstimateNumber && other.Version == e.Version {
				return fmt.Errorf("%w: estimate number %s v%d", domain.ErrDuplicate, e.EstimateNumber, e.Version)
			}
			if e.IsCurrentVersion && other.IsCurrentVersion && other.LineageID == e.LineageID {
				return fmt.Errorf("%w: current version of lineage %s", domain.ErrDuplicate, e.LineageID)
			}
		}
		st.estimates[e.ID] = *e
		return nil
	})
}

func (r *EstimateRepo) GetByID(_ context.Context, id string) (out *entity.Estimate, err error) {
	err = r.s.do("estimates.get", func(st *state) error {
		if e, ok := st.estimates[id]; ok {
			out = &e
		}
		return nil
	})
	return out, err
}

func (r *EstimateRepo) GetForUpdate(ctx context.Context, id string) (*entity.Estimate, error) {
	return r.GetByID(ctx, id)
}

func (r *EstimateRepo) List(_ context.Context, f repository.EstimateFilter) (out []*entity.Estimate, err error) {
	err = r.s.do("estimates.list", func(st *state) error {
		var all []*entity.Estimate
		for _, e := range st.estimates {
			if (f.CustomerID != "" && e.CustomerID != f.CustomerID) ||
				(f.Status != "" && e.Status != f.Status) ||
				(f.CurrentOnly && !e.IsCurrentVersion) {
				continue
			}
			e := e
			all = append(all, &e)
		}
		sort.Slice(all, func(i, j int) bool {
			if !all[i].CreatedAt.Equal(all[j].CreatedAt) {
				return all[i].CreatedAt.After(all[j].CreatedAt)
			}
			return all[i].Version > all[j].Version
		})
		out = page(all, f.Limit, f.Offset)
		return nil
	})
	return out, err
}

func (r *EstimateRepo) UpdateStatus(_ context.Context, e *entity.Estimate, from entity.EstimateStatus) error {
	if !lifecycle.CanTransition(from, e.Status) {
		return fmt.Errorf("%w: estimate %s -> %s", domain.ErrInvalidTransition, from, e.Status)
	}
	return r.s.do("estimates.update_status", func(st *state) error {
		cur, ok := st.estimates[e.ID]
		if !ok || cur.Status != from {
			return fmt.Errorf("%w: estimate %s is no longer %s", domain.ErrInvalidTransition, e.ID, from)
		}
		cur.Status = e.Status
		cur.SentAt, cur.ViewedAt, cur.RespondedAt, cur.ExpiresAt = e.SentAt, e.ViewedAt, e.RespondedAt, e.ExpiresAt
		cur.CustomerResponse = e.CustomerResponse
		cur.UpdatedAt = e.UpdatedAt
		st.estimates[e.ID] = cur
		return nil
	})
}

func (r *EstimateRepo) ClearCurrent(_ context.Context, lineageID string) error {
	return r.s.do("estimates.clear_current", func(st *state) error {
		for _, e := range st.estimates {
			if e.LineageID == lineageID && e.IsCurrentVersion {
				e.IsCurrentVersion = false
				st.estimates[e.ID] = e
			}
		}
		return nil
	})
}

func (r *EstimateRepo) MarkConverted(_ context.Context, id, jobID string, at time.Time) error {
	return r.s.do("estimates.mark_converted", func(st *state) error {
		e, ok := st.estimates[id]
		if !ok || e.Status != entity.EstimateApproved || e.ConvertedToJobID != "" {
			return fmt.Errorf("%w: estimate %s is not an unconverted approved estimate", domain.ErrInvalidTransition, id)
		}
		if _, ok := st.jobs[jobID]; !ok {
			return fmt.Errorf("%w: job %s", domain.ErrInvalidReference, jobID)
		}
		e.Status = entity.EstimateConverted
		e.ConvertedToJobID = jobID
		e.UpdatedAt = at
		st.estimates[e.ID] = e
		return nil
	})
}

// JobRepo trabajos.
type JobRepo struct{ s *session }

func (r *JobRepo) Create(_ context.Context, j *entity.Job) error {
	if j.ID == "" {
		j.ID = uuid.New().String()
	}
	if _, err := specification.EncodeSnapshot(j.Specifications); err != nil {
		return err
	}
	return r.s.do("jobs.create", func(st *state) error {
		if _, ok := st.customers[j.CustomerID]; !ok {
			return fmt.Errorf("%w: customer %s", domain.ErrInvalidReference, j.CustomerID)
		}
		for _, other := range st.jobs {
			if other.JobNo == j.JobNo {
				return fmt.Errorf("%w: job number %s", domain.ErrDuplicate, j.JobNo)
			}
			if j.EstimateID != "" && other.EstimateID == j.EstimateID {
				return fmt.Errorf("%w: job for estimate %s", domain.ErrDuplicate, j.EstimateID)
			}
		}
		st.jobs[j.ID] = *j
		return nil
	})
}

func (r *JobRepo) GetByID(_ context.Context, id string) (out *entity.Job, err error) {
	err = r.s.do("jobs.get", func(st *state) error {
		if j, ok := st.jobs[id]; ok {
			out = &j
		}
		return nil
	})
	return out, err
}

func (r *JobRepo) GetManyForUpdate(_ context.Context, ids []string) (out []*entity.Job, err error) {
	err = r.s.do("jobs.get_many", func(st *state) error {
		for _, id := range ids {
			if j, ok := st.jobs[id]; ok {
				out = append(out, &j)
			}
		}
		sort.Slice(out, func(a, b int) bool { return out[a].ID < out[b].ID })
		return nil
	})
	return out, err
}

func (r *JobRepo) List(_ context.Context, f repository.JobFilter) (out []*entity.Job, err error) {
	err = r.s.do("jobs.list", func(st *state) error {
		var all []*entity.Job
		for _, j := range st.jobs {
			if (f.CustomerID != "" && j.CustomerID != f.CustomerID) ||
				(f.Status != "" && j.Status != f.Status) ||
				(f.Invoiced != nil && j.Invoiced != *f.Invoiced) {
				continue
			}
			j := j
			all = append(all, &j)
		}
		sort.Slice(all, func(a, b int) bool { return all[a].CreatedAt.After(all[b].CreatedAt) })
		out = page(all, f.Limit, f.Offset)
		return nil
	})
	return out, err
}

func (r *JobRepo) UpdateStatus(_ context.Context, id, status string, at time.Time) error {
	return r.s.do("jobs.update_status", func(st *state) error {
		j, ok := st.jobs[id]
		if !ok {
			return domain.ErrNotFound
		}
		j.Status = status
		j.UpdatedAt = at
		st.jobs[j.ID] = j
		return nil
	})
}

func (r *JobRepo) Complete(_ context.Context, id string, finalCost decimal.Decimal, at time.Time) error {
	return r.s.do("jobs.complete", func(st *state) error {
		j, ok := st.jobs[id]
		if !ok || j.Status == entity.JobCancelled {
			return fmt.Errorf("%w: job %s is missing or cancelled", domain.ErrConflict, id)
		}
		if j.Invoiced && !slices.ContainsFunc(st.lines, func(l entity.InvoiceLineItem) bool {
			return l.JobID == j.ID && !l.Voided && l.TotalPrice.Equal(finalCost)
		}) {
			return fmt.Errorf("%w: job %s is invoiced at another price", domain.ErrConflict, id)
		}
		j.FinalCost = decimal.NewNullDecimal(finalCost)
		j.Status = entity.JobCompleted
		j.CompletedAt = &at
		j.UpdatedAt = at
		st.jobs[j.ID] = j
		return nil
	})
}

func (r *JobRepo) MarkInvoiced(_ context.Context, ids []string, invoiceID, invoiceNo string, at time.Time) (n int64, err error) {
	err = r.s.do("jobs.mark_invoiced", func(st *state) error {
		for _, id := range ids {
			j, ok := st.jobs[id]
			if !ok || j.Invoiced {
				continue
			}
			j.Invoiced, j.InvoiceID, j.InvoiceNo, j.UpdatedAt = true, invoiceID, invoiceNo, at
			st.jobs[j.ID] = j
			n++
		}
		return nil
	})
	return n, err
}

func (r *JobRepo) ReleaseInvoice(_ context.Context, invoiceID string, at time.Time) (n int64, err error) {
	err = r.s.do("jobs.release_invoice", func(st *state) error {
		for _, j := range st.jobs {
			if !j.Invoiced || j.InvoiceID != invoiceID {
				continue
			}
			j.Invoiced, j.InvoiceID, j.InvoiceNo, j.UpdatedAt = false, "", "", at
			st.jobs[j.ID] = j
			n++
		}
		return nil
	})
	return n, err
}

// InvoiceRepo facturas, líneas y pagos.
type InvoiceRepo struct{ s *session }

func (r *InvoiceRepo) Create(_ context.Context, inv *entity.Invoice) error {
	if inv.ID == "" {
		inv.ID = uuid.New().String()
	}
	return r.s.do("invoices.create", func(st *state) error {
		if _, ok := st.customers[inv.CustomerID]; !ok {
			return fmt.Errorf("%w: customer %s", domain.ErrInvalidReference, inv.CustomerID)
		}
		if !inv.Total.Equal(inv.Subtotal.Add(inv.Tax).Sub(inv.Discount)) ||
			!inv.AmountDue.Equal(inv.Total.Sub(inv.AmountPaid)) {
			return fmt.Errorf("%w: invoice totals do not add up", domain.ErrInvalidInput)
		}
		for _, other := range st.invoices {
			if other.InvoiceNo == inv.InvoiceNo {
				return fmt.Errorf("%w: invoice number %s", domain.ErrDuplicate, inv.InvoiceNo)
			}
		}
		st.invoices[inv.ID] = *inv
		return nil
	})
}

func (r *InvoiceRepo) CreateLineItem(_ context.Context, item *entity.InvoiceLineItem) error {
	if item.ID == "" {
		item.ID = uuid.New().String()
	}
	return r.s.do("invoices.create_line_item", func(st *state) error {
		if _, ok := st.invoices[item.InvoiceID]; !ok {
			return fmt.Errorf("%w: invoice %s", domain.ErrInvalidReference, item.InvoiceID)
		}
		if item.JobID != "" {
			if _, ok := st.jobs[item.JobID]; !ok {
				return fmt.Errorf("%w: job %s", domain.ErrInvalidReference, item.JobID)
			}
			for _, l := range st.lines {
				if l.JobID == item.JobID && !l.Voided {
					return domain.ErrAlreadyInvoiced
				}
			}
		}
		st.lines = append(st.lines, *item)
		return nil
	})
}

func (r *InvoiceRepo) GetByID(_ context.Context, id string) (out *entity.Invoice, err error) {
	err = r.s.do("invoices.get", func(st *state) error {
		if inv, ok := st.invoices[id]; ok {
			out = &inv
		}
		return nil
	})
	return out, err
}

func (r *InvoiceRepo) GetForUpdate(ctx context.Context, id string) (*entity.Invoice, error) {
	return r.GetByID(ctx, id)
}

func (r *InvoiceRepo) GetLineItems(_ context.Context, invoiceID string) (out []*entity.InvoiceLineItem, err error) {
	err = r.s.do("invoices.get_line_items", func(st *state) error {
		for _, l := range st.lines {
			if l.InvoiceID == invoiceID {
				l := l
				out = append(out, &l)
			}
		}
		sort.SliceStable(out, func(a, b int) bool { return out[a].Position < out[b].Position })
		return nil
	})
	return out, err
}

func (r *InvoiceRepo) UpdatePayment(_ context.Context, inv *entity.Invoice) error {
	return r.s.do("invoices.update_payment", func(st *state) error {
		cur, ok := st.invoices[inv.ID]
		if !ok {
			return domain.ErrNotFound
		}
		cur.AmountPaid, cur.AmountDue, cur.PaymentStatus, cur.UpdatedAt = inv.AmountPaid, inv.AmountDue, inv.PaymentStatus, inv.UpdatedAt
		st.invoices[inv.ID] = cur
		return nil
	})
}

func (r *InvoiceRepo) Cancel(_ context.Context, id string, at time.Time) error {
	return r.s.do("invoices.cancel", func(st *state) error {
		inv, ok := st.invoices[id]
		if !ok || inv.Status == entity.InvoiceCancelled || !inv.AmountPaid.IsZero() {
			return fmt.Errorf("%w: invoice %s cannot be cancelled", domain.ErrConflict, id)
		}
		inv.Status, inv.UpdatedAt = entity.InvoiceCancelled, at
		st.invoices[inv.ID] = inv
		for i := range st.lines {
			if st.lines[i].InvoiceID == inv.ID {
				st.lines[i].Voided = true
			}
		}
		return nil
	})
}

func (r *InvoiceRepo) CreatePayment(_ context.Context, p *entity.Payment) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	return r.s.do("invoices.create_payment", func(st *state) error {
		if _, ok := st.invoices[p.InvoiceID]; !ok {
			return fmt.Errorf("%w: invoice %s", domain.ErrInvalidReference, p.InvoiceID)
		}
		st.payments = append(st.payments, *p)
		return nil
	})
}

func (r *InvoiceRepo) ListPayments(_ context.Context, invoiceID string) (out []*entity.Payment, err error) {
	err = r.s.do("invoices.list_payments", func(st *state) error {
		for _, p := range st.payments {
			if p.InvoiceID == invoiceID {
				p := p
				out = append(out, &p)
			}
		}
		return nil
	})
	return out, err
}

// FileRepo metadatos de adjuntos.
type FileRepo struct{ s *session }

func (r *FileRepo) Create(_ context.Context, rec *entity.FileRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	return r.s.do("files.create", func(st *state) error {
		for _, f := range st.files {
			if f.StoragePath == rec.StoragePath {
				return fmt.Errorf("%w: storage path %s", domain.ErrDuplicate, rec.StoragePath)
			}
		}
		st.files = append(st.files, *rec)
		return nil
	})
}

func (r *FileRepo) ListByEntity(_ context.Context, entityType, entityID string) (out []*entity.FileRecord, err error) {
	err = r.s.do("files.list", func(st *state) error {
		for _, f := range st.files {
			if f.EntityType == entityType && f.EntityID == entityID {
				f := f
				out = append(out, &f)
			}
		}
		return nil
	})
	return out, err
}

// CatalogRepo datos de referencia.
type CatalogRepo struct{ s *session }

func (r *CatalogRepo) GetService(_ context.Context, id string) (out *entity.Service, err error) {
	err = r.s.do("catalog.get_service", func(st *state) error {
		if svc, ok := st.services[id]; ok {
			out = &svc
		}
		return nil
	})
	return out, err
}

func (r *CatalogRepo) ListServices(_ context.Context) (out []*entity.Service, err error) {
	err = r.s.do("catalog.list_services", func(st *state) error {
		for _, svc := range st.services {
			if svc.Active {
				svc := svc
				out = append(out, &svc)
			}
		}
		sort.Slice(out, func(a, b int) bool { return out[a].Title < out[b].Title })
		return nil
	})
	return out, err
}

func (r *CatalogRepo) ListFinishOptions(_ context.Context) (out []entity.FinishOption, err error) {
	err = r.s.do("catalog.list_finishes", func(st *state) error {
		for _, f := range st.finishes {
			out = append(out, f)
		}
		sort.Slice(out, func(a, b int) bool {
			if out[a].Category != out[b].Category {
				return out[a].Category < out[b].Category
			}
			return out[a].Name < out[b].Name
		})
		return nil
	})
	return out, err
}

func (r *CatalogRepo) ListPaperTypes(_ context.Context) (out []string, err error) {
	err = r.s.do("catalog.list_paper_types", func(st *state) error {
		for name := range st.paperTypes {
			out = append(out, name)
		}
		sort.Slice(out, func(a, b int) bool {
			oa, ob := st.paperTypes[out[a]], st.paperTypes[out[b]]
			if oa != ob {
				return oa < ob
			}
			return out[a] < out[b]
		})
		return nil
	})
	return out, err
}

func (r *CatalogRepo) ListPaperWeights(_ context.Context) (out []int, err error) {
	err = r.s.do("catalog.list_paper_weights", func(st *state) error {
		for gsm := range st.weights {
			out = append(out, gsm)
		}
		slices.Sort(out)
		return nil
	})
	return out, err
}

func (r *CatalogRepo) ListSizePresets(_ context.Context) (out []specification.SizePreset, err error) {
	err = r.s.do("catalog.list_size_presets", func(st *state) error {
		rows := make([]presetRow, 0, len(st.presets))
		for _, p := range st.presets {
			rows = append(rows, p)
		}
		sort.Slice(rows, func(a, b int) bool {
			if rows[a].order != rows[b].order {
				return rows[a].order < rows[b].order
			}
			return rows[a].preset.Name < rows[b].preset.Name
		})
		for _, p := range rows {
			out = append(out, p.preset)
		}
		return nil
	})
	return out, err
}

func (r *CatalogRepo) SaveService(_ context.Context, svc *entity.Service) error {
	return r.s.do("catalog.save_service", func(st *state) error {
		st.services[svc.ID] = *svc
		return nil
	})
}

func (r *CatalogRepo) SaveFinishOption(_ context.Context, opt entity.FinishOption) error {
	return r.s.do("catalog.save_finish", func(st *state) error {
		st.finishes[opt.ID] = opt
		return nil
	})
}

func (r *CatalogRepo) SavePaperType(_ context.Context, name string, sortOrder int) error {
	return r.s.do("catalog.save_paper_type", func(st *state) error {
		st.paperTypes[name] = sortOrder
		return nil
	})
}

func (r *CatalogRepo) SavePaperWeight(_ context.Context, gsm int) error {
	return r.s.do("catalog.save_paper_weight", func(st *state) error {
		st.weights[gsm] = true
		return nil
	})
}

func (r *CatalogRepo) SaveSizePreset(_ context.Context, p specification.SizePreset, sortOrder int) error {
	return r.s.do("catalog.save_size_preset", func(st *state) error {
		st.presets[p.Name] = presetRow{preset: p, order: sortOrder}
		return nil
	})
}
