package specification_test

import (
	"testing"

	"github.com/jhoicas/printshop-api/internal/domain/entity"
	"github.com/jhoicas/printshop-api/internal/domain/specification"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func businessCards() *entity.Service {
	return &entity.Service{
		ID:    "svc-cards",
		Title: "Business Cards",
		Options: entity.ServiceOptions{
			FinishIDs: []string{"lamination", "embossing"},
			Paper: entity.PaperConstraints{
				Types:      []string{"Cardstock"},
				WeightsGSM: []int{300, 350},
			},
		},
	}
}

func TestResolveAndRepair_BusinessCards(t *testing.T) {
	spec := entity.Specification{
		Size:  entity.StandardSize("Business Card"),
		Paper: entity.PaperSpec{Type: "Glossy Paper", Weight: 350},
		Finishing: entity.FinishingSelection{
			SelectedIDs: []string{"lamination", "foil_stamping"},
			Overrides: map[string]decimal.Decimal{
				"lamination":    decimal.RequireFromString("0.08"),
				"foil_stamping": decimal.RequireFromString("0.50"),
			},
		},
	}

	legal, repaired, rep := specification.ResolveAndRepair(businessCards(), specification.DefaultCatalog(), spec)

	assert.Equal(t, []string{"Cardstock"}, legal.PaperTypes)
	assert.Equal(t, []int{300, 350}, legal.PaperWeightsGSM)
	assert.Equal(t, []string{"lamination", "embossing"}, legal.FinishIDs())

	assert.Equal(t, "Cardstock", repaired.Paper.Type)
	assert.Equal(t, 350, repaired.Paper.Weight)
	assert.Equal(t, []string{"lamination"}, repaired.Finishing.SelectedIDs)
	assert.NotContains(t, repaired.Finishing.Overrides, "foil_stamping")
	assert.Contains(t, repaired.Finishing.Overrides, "lamination")
	assert.Equal(t, []string{"foil_stamping"}, rep.DroppedFinishes)
	require.Len(t, rep.Changes, 1)
	assert.Equal(t, "paper.type", rep.Changes[0].Field)

	// la selección del llamador no se toca
	assert.Equal(t, "Glossy Paper", spec.Paper.Type)
	assert.Len(t, spec.Finishing.SelectedIDs, 2)
}

func TestRepair_Idempotent(t *testing.T) {
	cat := specification.DefaultCatalog()
	spec := entity.Specification{
		Size:  entity.StandardSize("Tabloid"),
		Paper: entity.PaperSpec{Type: "cardstock", Weight: 90},
		Finishing: entity.FinishingSelection{
			SelectedIDs: []string{"embossing", "embossing", "die_cutting"},
		},
	}

	legal1, once, rep1 := specification.ResolveAndRepair(businessCards(), cat, spec)
	legal2, twice, rep2 := specification.ResolveAndRepair(businessCards(), cat, once)

	assert.True(t, rep1.Changed())
	assert.False(t, rep2.Changed())
	assert.Equal(t, legal1, legal2)
	assert.Equal(t, once, twice)
	assert.Equal(t, "Cardstock", once.Paper.Type)
	assert.Equal(t, 300, once.Paper.Weight)
	assert.Equal(t, "A4", once.Size.Preset)
	assert.Equal(t, []string{"embossing"}, once.Finishing.SelectedIDs)
}

func TestResolve_NoConstraintsIsFullCatalog(t *testing.T) {
	cat := specification.DefaultCatalog()

	for _, svc := range []*entity.Service{nil, {ID: "plain"}} {
		legal := specification.Resolve(svc, cat)
		assert.Equal(t, cat.PaperTypes, legal.PaperTypes)
		assert.Equal(t, cat.PaperWeightsGSM, legal.PaperWeightsGSM)
		assert.Len(t, legal.FinishOptions, len(cat.FinishOptions))
		assert.True(t, legal.AllowCustomSize)
	}
}

func TestResolve_EmptyPaperListsFallBackToCatalog(t *testing.T) {
	cat := specification.DefaultCatalog()
	svc := &entity.Service{Options: entity.ServiceOptions{
		FinishIDs: []string{"lamination"},
		Paper:     entity.PaperConstraints{Types: []string{" "}, WeightsGSM: []int{0}},
	}}

	legal := specification.Resolve(svc, cat)

	assert.Equal(t, cat.PaperTypes, legal.PaperTypes)
	assert.Equal(t, cat.PaperWeightsGSM, legal.PaperWeightsGSM)
	assert.Equal(t, []string{"lamination"}, legal.FinishIDs())
}

func TestRepair_CustomSizeNotAllowed(t *testing.T) {
	no := false
	svc := &entity.Service{Options: entity.ServiceOptions{
		Sizing: entity.SizingOptions{StandardPresets: []string{"Letter", "A4"}, AllowCustom: &no},
	}}
	spec := entity.Specification{
		Size:  entity.CustomSize(decimal.NewFromInt(5), decimal.NewFromInt(7), "in"),
		Paper: entity.PaperSpec{Type: "Matte Paper", Weight: 120},
	}

	_, repaired, rep := specification.ResolveAndRepair(svc, specification.DefaultCatalog(), spec)

	assert.Equal(t, entity.StandardSize("Letter"), repaired.Size)
	require.Len(t, rep.Changes, 1)
	assert.Equal(t, "size", rep.Changes[0].Field)
}

func TestRepair_CustomSizeAllowedIsKept(t *testing.T) {
	spec := entity.Specification{
		Size:  entity.CustomSize(decimal.NewFromInt(5), decimal.NewFromInt(7), "in"),
		Paper: entity.PaperSpec{Type: "Matte Paper", Weight: 120},
	}

	_, repaired, rep := specification.ResolveAndRepair(nil, specification.DefaultCatalog(), spec)

	assert.Equal(t, spec.Size, repaired.Size)
	assert.False(t, rep.Changed())
}
