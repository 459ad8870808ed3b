// Package specification reduce el catálogo de papel, tamaños y acabados a lo que permite un
// servicio y repara las selecciones que quedaron fuera de ese conjunto permitido.
package specification

import (
	"github.com/jhoicas/printshop-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// SizePreset un tamaño estándar con nombre.
type SizePreset struct {
	Name   string          `json:"name"`
	Width  decimal.Decimal `json:"width"`
	Height decimal.Decimal `json:"height"`
	Unit   string          `json:"unit"`
}

// Catalog son los datos de referencia compartidos que filtra el resolver.
type Catalog struct {
	PaperTypes      []string              `json:"paperTypes"`
	PaperWeightsGSM []int                 `json:"paperWeightsGsm"`
	SizePresets     []SizePreset          `json:"sizePresets"`
	FinishOptions   []entity.FinishOption `json:"finishOptions"`
}

// FinishByID indexa los acabados, incluidos los inactivos, para que los snapshots viejos sigan valorándose.
func (c Catalog) FinishByID() map[string]entity.FinishOption {
	out := make(map[string]entity.FinishOption, len(c.FinishOptions))
	for _, f := range c.FinishOptions {
		out[f.ID] = f
	}
	return out
}

// PresetNames en el orden del catálogo.
func (c Catalog) PresetNames() []string {
	out := make([]string, 0, len(c.SizePresets))
	for _, p := range c.SizePresets {
		out = append(out, p.Name)
	}
	return out
}

func finish(id, name string, cat entity.FinishCategory, base string) entity.FinishOption {
	return entity.FinishOption{
		ID:       id,
		Name:     name,
		Category: cat,
		Pricing:  entity.FinishPricing{Base: decimal.RequireFromString(base), Unit: "per_unit"},
		Active:   true,
	}
}

func preset(name, w, h, unit string) SizePreset {
	return SizePreset{Name: name, Width: decimal.RequireFromString(w), Height: decimal.RequireFromString(h), Unit: unit}
}

// DefaultCatalog son los datos de referencia incorporados que se usan cuando no se puede leer el backend.
func DefaultCatalog() Catalog {
	return Catalog{
		PaperTypes: []string{
			"Glossy Paper", "Matte Paper", "Cardstock", "Bond Paper", "Recycled Paper", "Linen",
		},
		PaperWeightsGSM: []int{80, 100, 120, 150, 200, 250, 300, 350},
		SizePresets: []SizePreset{
			preset("A4", "210", "297", "mm"),
			preset("A5", "148", "210", "mm"),
			preset("A3", "297", "420", "mm"),
			preset("Letter", "8.5", "11", "in"),
			preset("Business Card", "3.5", "2", "in"),
			preset("Postcard", "6", "4", "in"),
		},
		FinishOptions: []entity.FinishOption{
			finish("lamination", "Lamination", entity.FinishCoating, "0.10"),
			finish("uv_coating", "UV Coating", entity.FinishCoating, "0.15"),
			finish("die_cutting", "Die Cutting", entity.FinishCutting, "0.25"),
			finish("rounded_corners", "Rounded Corners", entity.FinishCutting, "0.05"),
			finish("saddle_stitch", "Saddle Stitch", entity.FinishBinding, "0.50"),
			finish("folding", "Folding", entity.FinishFinishing, "0.03"),
			finish("scoring", "Scoring", entity.FinishFinishing, "0"),
			finish("embossing", "Embossing", entity.FinishTexture, "0.30"),
			finish("foil_stamping", "Foil Stamping", entity.FinishSpecial, "0.40"),
		},
	}
}
