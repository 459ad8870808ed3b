package entity

import (
	"encoding/json"
	"fmt"
	"slices"

	"github.com/shopspring/decimal"
)

// Specification es el snapshot de papel/tamaño/acabados que se copia tal cual en cotizaciones y trabajos,
// para que los documentos históricos sigan siendo interpretables aunque cambie el catálogo.
type Specification struct {
	Size      SizeSpec           `json:"size"`
	Paper     PaperSpec          `json:"paper"`
	Finishing FinishingSelection `json:"finishing"`
}

// SizeKind discrimina SizeSpec.
type SizeKind string

const (
	SizeStandard SizeKind = "standard"
	SizeCustom   SizeKind = "custom"
)

// SizeSpec es una unión etiquetada: {type:"standard", preset} | {type:"custom", width, height, unit}.
type SizeSpec struct {
	Kind   SizeKind
	Preset string
	Width  decimal.Decimal
	Height decimal.Decimal
	Unit   string
}

// StandardSize construye un tamaño predefinido.
func StandardSize(preset string) SizeSpec {
	return SizeSpec{Kind: SizeStandard, Preset: preset}
}

// CustomSize construye un tamaño personalizado.
func CustomSize(width, height decimal.Decimal, unit string) SizeSpec {
	return SizeSpec{Kind: SizeCustom, Width: width, Height: height, Unit: unit}
}

type standardSizeJSON struct {
	Type   SizeKind `json:"type"`
	Preset string   `json:"preset"`
}

type customSizeJSON struct {
	Type   SizeKind        `json:"type"`
	Width  decimal.Decimal `json:"width"`
	Height decimal.Decimal `json:"height"`
	Unit   string          `json:"unit"`
}

// MarshalJSON escribe solo los campos de la variante activa.
func (s SizeSpec) MarshalJSON() ([]byte, error) {
	switch s.Kind {
	case SizeCustom:
		return json.Marshal(customSizeJSON{Type: SizeCustom, Width: s.Width, Height: s.Height, Unit: s.Unit})
	case SizeStandard, "":
		return json.Marshal(standardSizeJSON{Type: SizeStandard, Preset: s.Preset})
	default:
		return nil, fmt.Errorf("size: unknown type %q", s.Kind)
	}
}

// UnmarshalJSON lee cualquiera de las variantes; sin type se asume standard.
func (s *SizeSpec) UnmarshalJSON(data []byte) error {
	var raw struct {
		Type   SizeKind         `json:"type"`
		Preset string           `json:"preset"`
		Width  *decimal.Decimal `json:"width"`
		Height *decimal.Decimal `json:"height"`
		Unit   string           `json:"unit"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch raw.Type {
	case SizeCustom:
		if raw.Width == nil || raw.Height == nil {
			return fmt.Errorf("size: custom size requires width and height")
		}
		*s = CustomSize(*raw.Width, *raw.Height, raw.Unit)
	case SizeStandard, "":
		*s = StandardSize(raw.Preset)
	default:
		return fmt.Errorf("size: unknown type %q", raw.Type)
	}
	return nil
}

// PaperSpec tipo y gramaje (GSM) del papel elegido.
type PaperSpec struct {
	Type   string `json:"type"`
	Weight int    `json:"weight"`
}

// FinishingSelection ids de acabados elegidos más precios unitarios pactados con el cliente.
type FinishingSelection struct {
	SelectedIDs []string                   `json:"selectedIds"`
	Overrides   map[string]decimal.Decimal `json:"priceOverridesById,omitempty"`
}

// Has indica si id está seleccionado.
func (f FinishingSelection) Has(id string) bool {
	return slices.Contains(f.SelectedIDs, id)
}

// Clone devuelve una copia profunda para reparar una selección sin compartir memoria con la original.
func (s Specification) Clone() Specification {
	out := s
	out.Finishing.SelectedIDs = slices.Clone(s.Finishing.SelectedIDs)
	if s.Finishing.Overrides != nil {
		out.Finishing.Overrides = make(map[string]decimal.Decimal, len(s.Finishing.Overrides))
		for k, v := range s.Finishing.Overrides {
			out.Finishing.Overrides[k] = v
		}
	}
	return out
}
