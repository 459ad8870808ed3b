package pricing

import "github.com/shopspring/decimal"

// CoverageStats resume cuántos documentos tienen un precio interpretable.
type CoverageStats struct {
	Total           int             `json:"total"`
	WithPrice       int             `json:"withPrice"`
	Missing         int             `json:"missing"`
	CoveragePercent decimal.Decimal `json:"coveragePercent"`
	Sum             decimal.Decimal `json:"sum"`
	Average         decimal.Decimal `json:"average"`
}

var hundred = decimal.NewFromInt(100)

// Coverage agrega precios canónicos. Cero cuenta como precio faltante.
// El promedio se toma solo sobre los documentos con precio.
func Coverage(prices []decimal.Decimal) CoverageStats {
	st := CoverageStats{Total: len(prices), Sum: decimal.Zero, Average: decimal.Zero, CoveragePercent: decimal.Zero}
	for _, p := range prices {
		if p.IsPositive() {
			st.WithPrice++
			st.Sum = st.Sum.Add(p)
		}
	}
	st.Missing = st.Total - st.WithPrice
	if st.Total > 0 {
		st.CoveragePercent = decimal.NewFromInt(int64(st.WithPrice)).Mul(hundred).
			Div(decimal.NewFromInt(int64(st.Total))).Round(2)
	}
	if st.WithPrice > 0 {
		st.Average = st.Sum.Div(decimal.NewFromInt(int64(st.WithPrice))).Round(2)
	}
	st.Sum = st.Sum.Round(2)
	return st
}
