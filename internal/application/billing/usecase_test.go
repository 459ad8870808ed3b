package billing_test

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/jhoicas/printshop-api/internal/application/billing"
	"github.com/jhoicas/printshop-api/internal/application/dto"
	"github.com/jhoicas/printshop-api/internal/domain"
	"github.com/jhoicas/printshop-api/internal/domain/entity"
	"github.com/jhoicas/printshop-api/internal/infrastructure/memory"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	store *memory.Store
	uc    *billing.UseCase
	now   time.Time
	seq   int
}

func setup(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	f := &fixture{store: store, now: time.Date(2024, 8, 1, 12, 0, 0, 0, time.UTC)}
	f.uc = billing.NewUseCase(store, store.Repos(), billing.Config{
		TaxRate: decimal.RequireFromString("0.10"),
		DueIn:   30 * 24 * time.Hour,
	}, zerolog.Nop()).WithClock(func() time.Time { return f.now })
	return f
}

func (f *fixture) customer(t *testing.T, name string) string {
	t.Helper()
	c := &entity.Customer{Name: name}
	require.NoError(t, f.store.Repos().Customers.Create(context.Background(), c))
	return c.ID
}

func (f *fixture) job(t *testing.T, customerID string, mutate func(j *entity.Job)) *entity.Job {
	t.Helper()
	f.seq++
	j := &entity.Job{
		JobNo:      fmt.Sprintf("JKDP-JOB-%04d", f.seq),
		CustomerID: customerID,
		Title:      "Job",
		Status:     entity.JobCompleted,
		Quantity:   100,
	}
	mutate(j)
	require.NoError(t, f.store.Repos().Jobs.Create(context.Background(), j))
	return j
}

func price(s string) decimal.NullDecimal { return decimal.NewNullDecimal(decimal.RequireFromString(s)) }

func TestCreateInvoiceFromJobs_CanonicalPrices(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	cust := f.customer(t, "Fabrikam")
	a := f.job(t, cust, func(j *entity.Job) {
		j.FinalCost = price("120.00")
		j.EstimatePrice = price("100.00")
	})
	b := f.job(t, cust, func(j *entity.Job) {
		j.Estimate = json.RawMessage(`"{\"totalPrice\": \"80\"}"`)
		j.Quantity = 40
	})

	inv, err := f.uc.CreateInvoiceFromJobs(ctx, "user-1", dto.CreateInvoiceRequest{
		CustomerID: cust,
		JobIDs:     []string{a.ID, b.ID, a.ID},
		Discount:   decimal.NewFromInt(10),
	})
	require.NoError(t, err)

	assert.Equal(t, "JKDP-INV-0001", inv.InvoiceNo)
	assert.True(t, decimal.NewFromInt(200).Equal(inv.Subtotal), inv.Subtotal.String())
	assert.True(t, decimal.NewFromInt(20).Equal(inv.Tax), inv.Tax.String())
	assert.True(t, decimal.NewFromInt(210).Equal(inv.Total), inv.Total.String())
	assert.True(t, inv.Total.Equal(inv.AmountDue))
	assert.Equal(t, entity.PaymentUnpaid, inv.PaymentStatus)
	require.NotNil(t, inv.DueDate)
	assert.Equal(t, f.now.Add(30*24*time.Hour), *inv.DueDate)

	require.Len(t, inv.Lines, 2)
	assert.Equal(t, a.ID, inv.Lines[0].JobID)
	assert.True(t, decimal.NewFromInt(120).Equal(inv.Lines[0].TotalPrice))
	assert.True(t, decimal.RequireFromString("1.2").Equal(inv.Lines[0].UnitPrice))
	assert.True(t, decimal.NewFromInt(2).Equal(inv.Lines[1].UnitPrice))

	jobA, err := f.store.Repos().Jobs.GetByID(ctx, a.ID)
	require.NoError(t, err)
	assert.True(t, jobA.Invoiced)
	assert.Equal(t, inv.InvoiceNo, jobA.InvoiceNo)

	got, err := f.uc.GetInvoice(ctx, inv.ID)
	require.NoError(t, err)
	assert.Len(t, got.Lines, 2)
}

func TestCreateInvoiceFromJobs_LineDescriptionAndUnitPrice(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	cust := f.customer(t, "Fabrikam")
	even := f.job(t, cust, func(j *entity.Job) {
		j.Title = "Door hangers"
		j.Quantity = 250
		j.FinalCost = price("75.00")
	})
	uneven := f.job(t, cust, func(j *entity.Job) {
		j.Title = ""
		j.Quantity = 3
		j.FinalCost = price("100.00")
	})

	inv, err := f.uc.CreateInvoiceFromJobs(ctx, "u", dto.CreateInvoiceRequest{CustomerID: cust, JobIDs: []string{even.ID, uneven.ID}})
	require.NoError(t, err)
	require.Len(t, inv.Lines, 2)

	assert.Equal(t, "Door hangers", inv.Lines[0].Description)
	assert.Equal(t, 250, inv.Lines[0].Quantity)
	assert.True(t, decimal.RequireFromString("0.3").Equal(inv.Lines[0].UnitPrice))

	assert.Equal(t, uneven.JobNo, inv.Lines[1].Description)
	assert.Equal(t, 1, inv.Lines[1].Quantity)
	assert.True(t, decimal.NewFromInt(100).Equal(inv.Lines[1].UnitPrice))

	for _, l := range inv.Lines {
		assert.True(t, l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity))).Equal(l.TotalPrice), l.Description)
	}
}

func TestCreateInvoiceFromJobs_Rejections(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	cust := f.customer(t, "Fabrikam")
	other := f.customer(t, "Tailspin")
	priced := func(j *entity.Job) { j.FinalPrice = price("50") }
	a := f.job(t, cust, priced)
	foreign := f.job(t, other, priced)
	unpriced := f.job(t, cust, func(*entity.Job) {})

	_, err := f.uc.CreateInvoiceFromJobs(ctx, "u", dto.CreateInvoiceRequest{CustomerID: cust, JobIDs: []string{a.ID, foreign.ID}})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.uc.CreateInvoiceFromJobs(ctx, "u", dto.CreateInvoiceRequest{CustomerID: cust, JobIDs: []string{unpriced.ID}})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.uc.CreateInvoiceFromJobs(ctx, "u", dto.CreateInvoiceRequest{CustomerID: cust, JobIDs: []string{"missing"}})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = f.uc.CreateInvoiceFromJobs(ctx, "u", dto.CreateInvoiceRequest{CustomerID: cust})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.uc.CreateInvoiceFromJobs(ctx, "u", dto.CreateInvoiceRequest{CustomerID: cust, JobIDs: []string{a.ID}, Discount: decimal.NewFromInt(1000)})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	// los intentos fallidos no consumieron nada
	inv, err := f.uc.CreateInvoiceFromJobs(ctx, "u", dto.CreateInvoiceRequest{CustomerID: cust, JobIDs: []string{a.ID}})
	require.NoError(t, err)
	assert.Equal(t, "JKDP-INV-0001", inv.InvoiceNo)

	_, err = f.uc.CreateInvoiceFromJobs(ctx, "u", dto.CreateInvoiceRequest{CustomerID: cust, JobIDs: []string{a.ID}})
	assert.ErrorIs(t, err, domain.ErrAlreadyInvoiced)
}

func TestCreateInvoiceFromJobs_LineFailureRollsBack(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	cust := f.customer(t, "Fabrikam")
	a := f.job(t, cust, func(j *entity.Job) { j.FinalPrice = price("50") })
	f.store.FailOn("invoices.create_line_item", domain.ErrUnavailable)

	_, err := f.uc.CreateInvoiceFromJobs(ctx, "u", dto.CreateInvoiceRequest{CustomerID: cust, JobIDs: []string{a.ID}})
	require.ErrorIs(t, err, domain.ErrUnavailable)

	j, err := f.store.Repos().Jobs.GetByID(ctx, a.ID)
	require.NoError(t, err)
	assert.False(t, j.Invoiced)

	inv, err := f.uc.CreateInvoiceFromJobs(ctx, "u", dto.CreateInvoiceRequest{CustomerID: cust, JobIDs: []string{a.ID}})
	require.NoError(t, err)
	assert.Equal(t, "JKDP-INV-0001", inv.InvoiceNo)
}

func TestCreateInvoiceFromJobs_ConcurrentBillingOfSameJob(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	cust := f.customer(t, "Fabrikam")
	a := f.job(t, cust, func(j *entity.Job) { j.FinalPrice = price("50") })

	var wg sync.WaitGroup
	errs := make([]error, 8)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.uc.CreateInvoiceFromJobs(ctx, "u", dto.CreateInvoiceRequest{CustomerID: cust, JobIDs: []string{a.ID}})
		}(i)
	}
	wg.Wait()

	ok := 0
	for _, err := range errs {
		if err == nil {
			ok++
			continue
		}
		assert.ErrorIs(t, err, domain.ErrAlreadyInvoiced)
	}
	assert.Equal(t, 1, ok)
}

func TestRecordPayment(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	cust := f.customer(t, "Fabrikam")
	a := f.job(t, cust, func(j *entity.Job) { j.FinalPrice = price("100") })
	inv, err := f.uc.CreateInvoiceFromJobs(ctx, "u", dto.CreateInvoiceRequest{CustomerID: cust, JobIDs: []string{a.ID}})
	require.NoError(t, err)

	out, err := f.uc.RecordPayment(ctx, "u", inv.ID, dto.RecordPaymentRequest{Amount: decimal.NewFromInt(60), Method: "card"})
	require.NoError(t, err)
	assert.Equal(t, entity.PaymentPartial, out.PaymentStatus)
	assert.True(t, decimal.NewFromInt(50).Equal(out.AmountDue), out.AmountDue.String())
	require.Len(t, out.Payments, 1)

	_, err = f.uc.RecordPayment(ctx, "u", inv.ID, dto.RecordPaymentRequest{Amount: decimal.NewFromInt(51), Method: "card"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	f.now = f.now.Add(31 * 24 * time.Hour)
	overdue, err := f.uc.GetInvoice(ctx, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.PaymentOverdue, overdue.PaymentStatus)

	paid, err := f.uc.RecordPayment(ctx, "u", inv.ID, dto.RecordPaymentRequest{Amount: decimal.NewFromInt(50), Method: "transfer"})
	require.NoError(t, err)
	assert.Equal(t, entity.PaymentPaid, paid.PaymentStatus)
	assert.True(t, paid.AmountDue.IsZero())

	_, err = f.uc.RecordPayment(ctx, "u", "missing", dto.RecordPaymentRequest{Amount: decimal.NewFromInt(1), Method: "cash"})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCancelInvoice_ReleasesJobsForRebilling(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	cust := f.customer(t, "Fabrikam")
	a := f.job(t, cust, func(j *entity.Job) { j.FinalPrice = price("100") })
	inv, err := f.uc.CreateInvoiceFromJobs(ctx, "u", dto.CreateInvoiceRequest{CustomerID: cust, JobIDs: []string{a.ID}})
	require.NoError(t, err)

	out, err := f.uc.CancelInvoice(ctx, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.InvoiceCancelled, out.Status)
	require.Len(t, out.Lines, 1)
	assert.True(t, out.Lines[0].Voided)

	j, err := f.store.Repos().Jobs.GetByID(ctx, a.ID)
	require.NoError(t, err)
	assert.False(t, j.Invoiced)
	assert.Empty(t, j.InvoiceID)

	_, err = f.uc.CancelInvoice(ctx, inv.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	_, err = f.uc.RecordPayment(ctx, "u", inv.ID, dto.RecordPaymentRequest{Amount: decimal.NewFromInt(1), Method: "cash"})
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	again, err := f.uc.CreateInvoiceFromJobs(ctx, "u", dto.CreateInvoiceRequest{CustomerID: cust, JobIDs: []string{a.ID}})
	require.NoError(t, err)
	assert.Equal(t, "JKDP-INV-0002", again.InvoiceNo)
	j, err = f.store.Repos().Jobs.GetByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, again.ID, j.InvoiceID)
}

func TestCancelInvoice_Rejections(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	cust := f.customer(t, "Fabrikam")
	a := f.job(t, cust, func(j *entity.Job) { j.FinalPrice = price("100") })
	inv, err := f.uc.CreateInvoiceFromJobs(ctx, "u", dto.CreateInvoiceRequest{CustomerID: cust, JobIDs: []string{a.ID}})
	require.NoError(t, err)
	_, err = f.uc.RecordPayment(ctx, "u", inv.ID, dto.RecordPaymentRequest{Amount: decimal.NewFromInt(10), Method: "cash"})
	require.NoError(t, err)

	_, err = f.uc.CancelInvoice(ctx, inv.ID)
	assert.ErrorIs(t, err, domain.ErrConflict)
	got, err := f.uc.GetInvoice(ctx, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.InvoiceIssued, got.Status)
	j, err := f.store.Repos().Jobs.GetByID(ctx, a.ID)
	require.NoError(t, err)
	assert.True(t, j.Invoiced)

	_, err = f.uc.CancelInvoice(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCancelInvoice_ReleaseFailureRollsBack(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	cust := f.customer(t, "Fabrikam")
	a := f.job(t, cust, func(j *entity.Job) { j.FinalPrice = price("100") })
	inv, err := f.uc.CreateInvoiceFromJobs(ctx, "u", dto.CreateInvoiceRequest{CustomerID: cust, JobIDs: []string{a.ID}})
	require.NoError(t, err)
	f.store.FailOn("jobs.release_invoice", domain.ErrUnavailable)

	_, err = f.uc.CancelInvoice(ctx, inv.ID)
	require.ErrorIs(t, err, domain.ErrUnavailable)
	got, err := f.uc.GetInvoice(ctx, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.InvoiceIssued, got.Status)
	assert.False(t, got.Lines[0].Voided)
}
