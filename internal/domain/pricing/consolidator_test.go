package pricing_test

import (
	"encoding/json"
	"testing"

	"github.com/jhoicas/printshop-api/internal/domain/entity"
	"github.com/jhoicas/printshop-api/internal/domain/pricing"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func nd(s string) decimal.NullDecimal {
	return decimal.NewNullDecimal(decimal.RequireFromString(s))
}

func TestCanonicalPrice_FinalCostWinsOverEstimatedCost(t *testing.T) {
	src := pricing.PriceSource{FinalCost: nd("100"), EstimatedCost: nd("50")}

	price, source, ok := pricing.Consolidate(src)

	assert.True(t, ok)
	assert.Equal(t, "final_cost", source)
	assert.True(t, price.Equal(decimal.NewFromInt(100)))
}

func TestCanonicalPrice_FallsThroughZeroAndNull(t *testing.T) {
	src := pricing.PriceSource{
		FinalCost: nd("0"),
		Estimate:  json.RawMessage(`{"total": 75}`),
	}

	price, source, ok := pricing.Consolidate(src)

	assert.True(t, ok)
	assert.Equal(t, "estimate.total", source)
	assert.True(t, price.Equal(decimal.NewFromInt(75)))
}

func TestCanonicalPrice_Sources(t *testing.T) {
	tests := []struct {
		name   string
		src    pricing.PriceSource
		want   string
		source string
	}{
		{"final price", pricing.PriceSource{FinalPrice: nd("80"), EstimatedCost: nd("10")}, "80", "final_price"},
		{"negative final cost ignored", pricing.PriceSource{FinalCost: nd("-5"), EstimatePrice: nd("12.5")}, "12.5", "estimate_price"},
		{"unit price times quantity", pricing.PriceSource{UnitPrice: nd("2.5"), Quantity: 4}, "10", "unit_price"},
		{"unit price without quantity", pricing.PriceSource{UnitPrice: nd("2.5"), Estimate: json.RawMessage(`{"cost":"9"}`)}, "9", "estimate.cost"},
		{"key order", pricing.PriceSource{Estimate: json.RawMessage(`{"amount": 1, "price": 3, "totalPrice": 7}`)}, "7", "estimate.totalPrice"},
		{"numeric string", pricing.PriceSource{Estimate: json.RawMessage(`{"total_price": " 42.10 "}`)}, "42.1", "estimate.total_price"},
		{"non numeric skipped", pricing.PriceSource{Estimate: json.RawMessage(`{"total": "n/a", "amount": 5}`)}, "5", "estimate.amount"},
		{"double encoded", pricing.PriceSource{Estimate: json.RawMessage(`"{\"price\": 19}"`)}, "19", "estimate.price"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			price, source, ok := pricing.Consolidate(tt.src)
			assert.True(t, ok)
			assert.Equal(t, tt.source, source)
			assert.True(t, price.Equal(decimal.RequireFromString(tt.want)), "got %s", price)
		})
	}
}

func TestCanonicalPrice_MissingIsZero(t *testing.T) {
	srcs := []pricing.PriceSource{
		{},
		{FinalCost: nd("0"), EstimatedCost: nd("-1")},
		{Estimate: json.RawMessage(`null`)},
		{Estimate: json.RawMessage(`{"total": null, "price": false}`)},
		{Estimate: json.RawMessage(`not json`)},
	}
	for _, src := range srcs {
		price, _, ok := pricing.Consolidate(src)
		assert.False(t, ok)
		assert.True(t, price.IsZero())
	}
}

func TestSourceFromJobAndEstimate(t *testing.T) {
	job := &entity.Job{EstimatedCost: nd("120"), UnitPrice: nd("1"), Quantity: 10}
	assert.True(t, pricing.CanonicalPrice(pricing.SourceFromJob(job)).Equal(decimal.NewFromInt(120)))

	est := &entity.Estimate{TotalAmount: decimal.Zero, Subtotal: decimal.NewFromInt(90), UnitPrice: decimal.NewFromInt(1), Quantity: 3}
	assert.True(t, pricing.CanonicalPrice(pricing.SourceFromEstimate(est)).Equal(decimal.NewFromInt(90)))
}

func TestCoverage(t *testing.T) {
	st := pricing.Coverage([]decimal.Decimal{
		decimal.NewFromInt(100), decimal.Zero, decimal.NewFromInt(50), decimal.Zero,
	})

	assert.Equal(t, 4, st.Total)
	assert.Equal(t, 2, st.WithPrice)
	assert.Equal(t, 2, st.Missing)
	assert.Equal(t, "50.00", st.CoveragePercent.StringFixed(2))
	assert.Equal(t, "75.00", st.Average.StringFixed(2))
	assert.Equal(t, "150.00", st.Sum.StringFixed(2))

	empty := pricing.Coverage(nil)
	assert.True(t, empty.CoveragePercent.IsZero())
	assert.True(t, empty.Average.IsZero())
}
