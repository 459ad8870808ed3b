package main

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/jhoicas/printshop-api/internal/application/dto"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePeriod(t *testing.T) {
	tests := []struct {
		name     string
		from, to string
		wantFrom *time.Time
		wantTo   *time.Time
		wantErr  bool
	}{
		{name: "open", from: "", to: ""},
		{
			name:     "dates",
			from:     "2024-03-01",
			to:       "2024-04-01",
			wantFrom: ptr(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)),
			wantTo:   ptr(time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)),
		},
		{
			name:     "rfc3339",
			from:     "2024-03-01T10:30:00Z",
			wantFrom: ptr(time.Date(2024, 3, 1, 10, 30, 0, 0, time.UTC)),
		},
		{name: "bad from", from: "March", wantErr: true},
		{name: "bad to", to: "2024-13-01", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := parsePeriod(tt.from, tt.to)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantFrom, p.From)
			assert.Equal(t, tt.wantTo, p.To)
		})
	}
}

func TestWriteReport(t *testing.T) {
	rep := &dto.PricingCoverageReport{
		GeneratedAt: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
		Jobs: dto.CoverageDTO{
			Total:     4,
			WithPrice: 3,
			Missing:   1,
			Sum:       decimal.NewFromInt(300),
			BySource:  map[string]int{"final_price": 3},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, writeReport(&buf, rep))

	var got map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	jobs := got["jobs"].(map[string]any)
	assert.Equal(t, float64(4), jobs["total"])
	assert.Equal(t, float64(1), jobs["missing"])
	assert.Equal(t, "300", jobs["sum"])
	assert.NotContains(t, got, "from")
}

func ptr(t time.Time) *time.Time { return &t }
