package specification_test

import (
	"encoding/json"
	"testing"

	"github.com/jhoicas/printshop-api/internal/domain"
	"github.com/jhoicas/printshop-api/internal/domain/entity"
	"github.com/jhoicas/printshop-api/internal/domain/specification"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshot_RoundTrip(t *testing.T) {
	spec := entity.Specification{
		Size:  entity.CustomSize(decimal.RequireFromString("8.5"), decimal.NewFromInt(11), "in"),
		Paper: entity.PaperSpec{Type: "Bond Paper", Weight: 100},
		Finishing: entity.FinishingSelection{
			SelectedIDs: []string{"folding"},
			Overrides:   map[string]decimal.Decimal{"folding": decimal.Zero},
		},
	}

	raw, err := specification.EncodeSnapshot(spec)
	require.NoError(t, err)

	var shape map[string]map[string]any
	require.NoError(t, json.Unmarshal(raw, &shape))
	assert.Equal(t, "custom", shape["size"]["type"])
	assert.NotContains(t, shape["size"], "preset")

	back, err := specification.DecodeSnapshot(raw)
	require.NoError(t, err)
	assert.Equal(t, entity.SizeCustom, back.Size.Kind)
	assert.True(t, back.Size.Width.Equal(spec.Size.Width))
	assert.Equal(t, spec.Paper, back.Paper)
	assert.Equal(t, []string{"folding"}, back.Finishing.SelectedIDs)
}

func TestValidateSnapshot_Rejects(t *testing.T) {
	cases := map[string]string{
		"missing paper":    `{"size":{"type":"standard","preset":"A4"},"finishing":{"selectedIds":[]}}`,
		"unknown size":     `{"size":{"type":"round","preset":"A4"},"paper":{"type":"x","weight":1},"finishing":{"selectedIds":[]}}`,
		"custom no height": `{"size":{"type":"custom","width":1,"unit":"in"},"paper":{"type":"x","weight":1},"finishing":{"selectedIds":[]}}`,
		"weight string":    `{"size":{"type":"standard","preset":"A4"},"paper":{"type":"x","weight":"heavy"},"finishing":{"selectedIds":[]}}`,
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			err := specification.ValidateSnapshot([]byte(raw))
			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
			var ve *specification.ValidationError
			assert.ErrorAs(t, err, &ve)
		})
	}
}

func TestValidateSnapshot_Accepts(t *testing.T) {
	raw := `{"size":{"type":"standard","preset":"A4"},"paper":{"type":"Cardstock","weight":300},"finishing":{"selectedIds":["lamination"],"priceOverridesById":{"lamination":0.05}}}`
	assert.NoError(t, specification.ValidateSnapshot([]byte(raw)))
}
