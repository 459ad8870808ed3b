package memory_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
	"unsafe"

	"github.com/jhoicas/printshop-api/internal/application/ports"
	"github.com/jhoicas/printshop-api/internal/domain"
	"github.com/jhoicas/printshop-api/internal/domain/entity"
	"github.com/jhoicas/printshop-api/internal/domain/repository"
	"github.com/jhoicas/printshop-api/internal/infrastructure/memory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedCustomer(t *testing.T, s *memory.Store) *entity.Customer {
	t.Helper()
	c := &entity.Customer{Name: "Acme", Email: "ops@acme.test"}
	require.NoError(t, s.Repos().Customers.Create(context.Background(), c))
	return c
}

func TestRunInTx_RollsBackOnError(t *testing.T) {
	ctx := context.Background()
	s := memory.NewStore()
	c := seedCustomer(t, s)

	boom := errors.New("boom")
	err := s.RunInTx(ctx, func(r ports.Repos) error {
		if _, err := r.Counters.NextValue(ctx, "job"); err != nil {
			return err
		}
		if err := r.Jobs.Create(ctx, &entity.Job{JobNo: "JKDP-JOB-0001", CustomerID: c.ID}); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	jobs, err := s.Repos().Jobs.List(ctx, repository.JobFilter{})
	require.NoError(t, err)
	assert.Empty(t, jobs)

	v, err := s.Repos().Counters.NextValue(ctx, "job")
	require.NoError(t, err)
	assert.Equal(t, int64(1), v, "counter increment must roll back with the transaction")
}

func TestJobs_UniqueNumberAndCustomerReference(t *testing.T) {
	ctx := context.Background()
	s := memory.NewStore()
	c := seedCustomer(t, s)
	jobs := s.Repos().Jobs

	require.NoError(t, jobs.Create(ctx, &entity.Job{JobNo: "JKDP-JOB-0001", CustomerID: c.ID}))
	err := jobs.Create(ctx, &entity.Job{JobNo: "JKDP-JOB-0001", CustomerID: c.ID})
	assert.ErrorIs(t, err, domain.ErrDuplicate)

	err = jobs.Create(ctx, &entity.Job{JobNo: "JKDP-JOB-0002", CustomerID: "missing"})
	assert.ErrorIs(t, err, domain.ErrInvalidReference)
}

func TestEstimates_OneCurrentVersionPerLineage(t *testing.T) {
	ctx := context.Background()
	s := memory.NewStore()
	c := seedCustomer(t, s)
	est := s.Repos().Estimates

	first := &entity.Estimate{EstimateNumber: "JKDP-EST-0001", CustomerID: c.ID, Version: 1, IsCurrentVersion: true, Status: entity.EstimateDraft}
	require.NoError(t, est.Create(ctx, first))
	assert.Equal(t, first.ID, first.LineageID)

	second := &entity.Estimate{EstimateNumber: "JKDP-EST-0001", CustomerID: c.ID, Version: 2, IsCurrentVersion: true, LineageID: first.LineageID}
	assert.ErrorIs(t, est.Create(ctx, second), domain.ErrDuplicate)

	require.NoError(t, est.ClearCurrent(ctx, first.LineageID))
	second.ID = ""
	require.NoError(t, est.Create(ctx, second))
}

func TestInvoiceLineItems_JobInvoicedOnce(t *testing.T) {
	ctx := context.Background()
	s := memory.NewStore()
	c := seedCustomer(t, s)
	r := s.Repos()

	job := &entity.Job{JobNo: "JKDP-JOB-0001", CustomerID: c.ID}
	require.NoError(t, r.Jobs.Create(ctx, job))
	inv := &entity.Invoice{InvoiceNo: "JKDP-INV-0001", CustomerID: c.ID}
	require.NoError(t, r.Invoices.Create(ctx, inv))

	require.NoError(t, r.Invoices.CreateLineItem(ctx, &entity.InvoiceLineItem{InvoiceID: inv.ID, JobID: job.ID}))
	err := r.Invoices.CreateLineItem(ctx, &entity.InvoiceLineItem{InvoiceID: inv.ID, JobID: job.ID})
	assert.ErrorIs(t, err, domain.ErrAlreadyInvoiced)
}

func TestFailOn_IsOneShot(t *testing.T) {
	ctx := context.Background()
	s := memory.NewStore()
	s.FailOn("counters.next", domain.ErrUnavailable)

	_, err := s.Repos().Counters.NextValue(ctx, "job")
	assert.ErrorIs(t, err, domain.ErrUnavailable)
	v, err := s.Repos().Counters.NextValue(ctx, "job")
	require.NoError(t, err)
	assert.Equal(t, int64(1), v)
	assert.Equal(t, 2, s.Calls("counters.next"))
}

// los llamadores pueden pasar ids respaldados por buffers que reutilizan después (params de ruta de fiber)
func TestJobs_WritesDoNotRetainCallerKey(t *testing.T) {
	ctx := context.Background()
	s := memory.NewStore()
	c := seedCustomer(t, s)
	jobs := s.Repos().Jobs

	j := &entity.Job{JobNo: "JKDP-JOB-0001", CustomerID: c.ID, Status: entity.JobPending}
	require.NoError(t, jobs.Create(ctx, j))

	buf := []byte(j.ID)
	borrowed := unsafe.String(&buf[0], len(buf))
	now := time.Now()
	require.NoError(t, jobs.UpdateStatus(ctx, borrowed, "printing", now))
	require.NoError(t, jobs.Complete(ctx, borrowed, decimal.NewFromInt(90), now))
	copy(buf, strings.Repeat("x", len(buf)))

	got, err := jobs.GetByID(ctx, j.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, entity.JobCompleted, got.Status)

	many, err := jobs.GetManyForUpdate(ctx, []string{j.ID})
	require.NoError(t, err)
	assert.Len(t, many, 1)
}

func TestEstimates_UpdateStatusRejectsIllegalMove(t *testing.T) {
	ctx := context.Background()
	s := memory.NewStore()
	c := seedCustomer(t, s)
	est := s.Repos().Estimates

	e := &entity.Estimate{EstimateNumber: "JKDP-EST-0001", CustomerID: c.ID, Version: 1, IsCurrentVersion: true, Status: entity.EstimateDraft}
	require.NoError(t, est.Create(ctx, e))

	e.Status = entity.EstimateApproved
	err := est.UpdateStatus(ctx, e, entity.EstimateDraft)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	got, err := est.GetByID(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.EstimateDraft, got.Status)
	assert.Equal(t, 0, s.Calls("estimates.update_status"))

	e.Status = entity.EstimateSent
	require.NoError(t, est.UpdateStatus(ctx, e, entity.EstimateDraft))
}

func TestInvoices_CancelVoidsLinesAndReleasesJobs(t *testing.T) {
	ctx := context.Background()
	s := memory.NewStore()
	c := seedCustomer(t, s)
	r := s.Repos()
	at := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)

	job := &entity.Job{JobNo: "JKDP-JOB-0001", CustomerID: c.ID}
	require.NoError(t, r.Jobs.Create(ctx, job))
	inv := &entity.Invoice{InvoiceNo: "JKDP-INV-0001", CustomerID: c.ID, Status: entity.InvoiceIssued}
	require.NoError(t, r.Invoices.Create(ctx, inv))
	require.NoError(t, r.Invoices.CreateLineItem(ctx, &entity.InvoiceLineItem{InvoiceID: inv.ID, JobID: job.ID}))
	n, err := r.Jobs.MarkInvoiced(ctx, []string{job.ID}, inv.ID, inv.InvoiceNo, at)
	require.NoError(t, err)
	require.Equal(t, int64(1), n)

	require.NoError(t, r.Invoices.Cancel(ctx, inv.ID, at))
	assert.ErrorIs(t, r.Invoices.Cancel(ctx, inv.ID, at), domain.ErrConflict)
	lines, err := r.Invoices.GetLineItems(ctx, inv.ID)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.True(t, lines[0].Voided)

	n, err = r.Jobs.ReleaseInvoice(ctx, inv.ID, at)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	next := &entity.Invoice{InvoiceNo: "JKDP-INV-0002", CustomerID: c.ID, Status: entity.InvoiceIssued}
	require.NoError(t, r.Invoices.Create(ctx, next))
	require.NoError(t, r.Invoices.CreateLineItem(ctx, &entity.InvoiceLineItem{InvoiceID: next.ID, JobID: job.ID}))
}

func TestJobs_CompleteKeepsBilledPrice(t *testing.T) {
	ctx := context.Background()
	s := memory.NewStore()
	c := seedCustomer(t, s)
	r := s.Repos()
	at := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	billed := decimal.RequireFromString("42.00")

	job := &entity.Job{JobNo: "JKDP-JOB-0001", CustomerID: c.ID, Status: entity.JobPending}
	require.NoError(t, r.Jobs.Create(ctx, job))
	inv := &entity.Invoice{InvoiceNo: "JKDP-INV-0001", CustomerID: c.ID, Status: entity.InvoiceIssued,
		Subtotal: billed, Total: billed, AmountDue: billed}
	require.NoError(t, r.Invoices.Create(ctx, inv))
	require.NoError(t, r.Invoices.CreateLineItem(ctx, &entity.InvoiceLineItem{InvoiceID: inv.ID, JobID: job.ID, TotalPrice: billed}))
	_, err := r.Jobs.MarkInvoiced(ctx, []string{job.ID}, inv.ID, inv.InvoiceNo, at)
	require.NoError(t, err)

	assert.ErrorIs(t, r.Jobs.Complete(ctx, job.ID, decimal.NewFromInt(99), at), domain.ErrConflict)
	got, err := r.Jobs.GetByID(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.JobPending, got.Status)
	assert.False(t, got.FinalCost.Valid)

	require.NoError(t, r.Jobs.Complete(ctx, job.ID, decimal.NewFromInt(42), at))
	got, err = r.Jobs.GetByID(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.JobCompleted, got.Status)
}

func TestInvoices_CancelRefusesPaidInvoice(t *testing.T) {
	ctx := context.Background()
	s := memory.NewStore()
	c := seedCustomer(t, s)
	r := s.Repos()

	inv := &entity.Invoice{
		InvoiceNo: "JKDP-INV-0001", CustomerID: c.ID, Status: entity.InvoiceIssued,
		Subtotal: decimal.NewFromInt(10), Total: decimal.NewFromInt(10), AmountPaid: decimal.NewFromInt(10),
	}
	require.NoError(t, r.Invoices.Create(ctx, inv))
	assert.ErrorIs(t, r.Invoices.Cancel(ctx, inv.ID, time.Now()), domain.ErrConflict)
	assert.ErrorIs(t, r.Invoices.Cancel(ctx, "missing", time.Now()), domain.ErrConflict)
}
