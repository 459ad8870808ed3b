package pricing_test

import (
	"testing"

	"github.com/jhoicas/printshop-api/internal/domain"
	"github.com/jhoicas/printshop-api/internal/domain/entity"
	"github.com/jhoicas/printshop-api/internal/domain/pricing"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func catalog() map[string]entity.FinishOption {
	return map[string]entity.FinishOption{
		"lamination": {ID: "lamination", Name: "Lamination", Pricing: entity.FinishPricing{Base: decimal.NewFromInt(3)}},
		"embossing":  {ID: "embossing", Name: "Embossing", Pricing: entity.FinishPricing{Base: decimal.RequireFromString("4.5")}},
		"rounded":    {ID: "rounded", Name: "Rounded corners", Pricing: entity.FinishPricing{Base: decimal.Zero}},
	}
}

func TestComputeTotal_OverrideApplied(t *testing.T) {
	q, err := pricing.ComputeTotal(pricing.QuoteInput{
		UnitPrice:   decimal.NewFromInt(10),
		Quantity:    5,
		SelectedIDs: []string{"lamination"},
		Overrides:   map[string]decimal.Decimal{"lamination": decimal.NewFromInt(2)},
	}, catalog())

	require.NoError(t, err)
	assert.Equal(t, "50.00", q.Subtotal.StringFixed(2))
	assert.Equal(t, "10.00", q.PerOptionTotals["lamination"].StringFixed(2))
	assert.Equal(t, "60.00", q.GrandTotal.StringFixed(2))
	require.Len(t, q.Lines, 1)
	assert.True(t, q.Lines[0].Overridden)
	assert.False(t, q.Lines[0].IsFree)
}

func TestComputeTotal_FreeOption(t *testing.T) {
	q, err := pricing.ComputeTotal(pricing.QuoteInput{
		UnitPrice:   decimal.NewFromInt(10),
		Quantity:    3,
		SelectedIDs: []string{"embossing"},
		Overrides:   map[string]decimal.Decimal{"embossing": decimal.Zero},
	}, catalog())

	require.NoError(t, err)
	assert.Equal(t, "30.00", q.GrandTotal.StringFixed(2))
	require.Len(t, q.Lines, 1)
	assert.True(t, q.Lines[0].IsFree)
	assert.True(t, q.Lines[0].Total.IsZero())
	assert.Equal(t, pricing.FreeLabel, q.Lines[0].Label(pricing.DefaultFormatter()))
}

func TestComputeTotal_BasePriceAndNegativeOverride(t *testing.T) {
	q, err := pricing.ComputeTotal(pricing.QuoteInput{
		UnitPrice:   decimal.RequireFromString("0.35"),
		Quantity:    3,
		SelectedIDs: []string{"embossing", "rounded", "embossing"},
		Overrides:   map[string]decimal.Decimal{"embossing": decimal.NewFromInt(-1)},
	}, catalog())

	require.NoError(t, err)
	require.Len(t, q.Lines, 2)
	assert.False(t, q.Lines[0].Overridden)
	assert.Equal(t, "13.50", q.PerOptionTotals["embossing"].StringFixed(2))
	assert.True(t, q.Lines[1].IsFree)
	// (0.35 + 4.5 + 0) x 3
	assert.Equal(t, "14.55", q.GrandTotal.StringFixed(2))
}

func TestComputeTotal_RoundsOnlyAtOutput(t *testing.T) {
	opts := map[string]entity.FinishOption{
		"a": {ID: "a", Pricing: entity.FinishPricing{Base: decimal.RequireFromString("0.005")}},
		"b": {ID: "b", Pricing: entity.FinishPricing{Base: decimal.RequireFromString("0.005")}},
	}
	q, err := pricing.ComputeTotal(pricing.QuoteInput{
		UnitPrice: decimal.Zero, Quantity: 100, SelectedIDs: []string{"a", "b"},
	}, opts)

	require.NoError(t, err)
	assert.Equal(t, "1.00", q.GrandTotal.StringFixed(2))
}

func TestComputeTotal_Errors(t *testing.T) {
	_, err := pricing.ComputeTotal(pricing.QuoteInput{UnitPrice: decimal.NewFromInt(1), Quantity: 0}, catalog())
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = pricing.ComputeTotal(pricing.QuoteInput{UnitPrice: decimal.NewFromInt(-1), Quantity: 1}, catalog())
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = pricing.ComputeTotal(pricing.QuoteInput{UnitPrice: decimal.NewFromInt(1), Quantity: 1, SelectedIDs: []string{"foil"}}, catalog())
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	q, err := pricing.ComputeTotal(pricing.QuoteInput{
		UnitPrice: decimal.NewFromInt(1), Quantity: 2, SelectedIDs: []string{"foil"},
		Overrides: map[string]decimal.Decimal{"foil": decimal.NewFromInt(1)},
	}, catalog())
	require.NoError(t, err)
	assert.Equal(t, "4.00", q.GrandTotal.StringFixed(2))
}

func TestTotals(t *testing.T) {
	tot, err := pricing.Totals(decimal.NewFromInt(200), decimal.RequireFromString("0.08"), decimal.NewFromInt(10))
	require.NoError(t, err)
	assert.Equal(t, "16.00", tot.Tax.StringFixed(2))
	assert.Equal(t, "206.00", tot.Total.StringFixed(2))
	assert.True(t, tot.Total.Equal(tot.Subtotal.Add(tot.Tax).Sub(tot.Discount)))

	_, err = pricing.Totals(decimal.NewFromInt(5), decimal.Zero, decimal.NewFromInt(10))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestFormatter(t *testing.T) {
	f := pricing.DefaultFormatter()
	assert.Equal(t, "$10.00", f.Format(decimal.NewFromInt(10)))
	assert.Equal(t, pricing.FreeLabel, f.AmountLabel(decimal.Zero))
}
