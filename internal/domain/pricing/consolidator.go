package pricing

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/jhoicas/printshop-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// PriceSource es la vista tipada de todas las representaciones de precio que puede traer un documento.
// Los trabajos llenan los campos final/estimated/unit y el blob heredado Estimate; las cotizaciones llenan
// TotalAmount, Subtotal y los campos unitarios.
type PriceSource struct {
	FinalCost     decimal.NullDecimal
	FinalPrice    decimal.NullDecimal
	TotalAmount   decimal.NullDecimal
	EstimatedCost decimal.NullDecimal
	EstimatePrice decimal.NullDecimal
	Subtotal      decimal.NullDecimal
	UnitPrice     decimal.NullDecimal
	Quantity      int
	Estimate      json.RawMessage
}

// Extractor saca un precio candidato de una fuente. ok=false significa "no está, probar el siguiente".
type Extractor struct {
	Name    string
	Extract func(PriceSource) (decimal.Decimal, bool)
}

// EstimateKeys es el orden de búsqueda dentro del objeto JSON heredado de la cotización.
var EstimateKeys = []string{"total", "total_price", "totalPrice", "price", "cost", "amount"}

// Extractors en orden de prioridad; gana el primer valor positivo.
var Extractors = buildExtractors()

func buildExtractors() []Extractor {
	ex := []Extractor{
		field("final_cost", func(s PriceSource) decimal.NullDecimal { return s.FinalCost }),
		field("final_price", func(s PriceSource) decimal.NullDecimal { return s.FinalPrice }),
		field("total_amount", func(s PriceSource) decimal.NullDecimal { return s.TotalAmount }),
		field("estimated_cost", func(s PriceSource) decimal.NullDecimal { return s.EstimatedCost }),
		field("estimate_price", func(s PriceSource) decimal.NullDecimal { return s.EstimatePrice }),
		field("subtotal", func(s PriceSource) decimal.NullDecimal { return s.Subtotal }),
		{Name: "unit_price", Extract: unitTimesQuantity},
	}
	for _, key := range EstimateKeys {
		ex = append(ex, estimateKey(key))
	}
	return ex
}

func field(name string, get func(PriceSource) decimal.NullDecimal) Extractor {
	return Extractor{Name: name, Extract: func(s PriceSource) (decimal.Decimal, bool) {
		v := get(s)
		if !v.Valid || !v.Decimal.IsPositive() {
			return decimal.Zero, false
		}
		return v.Decimal, true
	}}
}

func unitTimesQuantity(s PriceSource) (decimal.Decimal, bool) {
	if !s.UnitPrice.Valid || !s.UnitPrice.Decimal.IsPositive() || s.Quantity <= 0 {
		return decimal.Zero, false
	}
	return s.UnitPrice.Decimal.Mul(decimal.NewFromInt(int64(s.Quantity))), true
}

func estimateKey(key string) Extractor {
	return Extractor{Name: "estimate." + key, Extract: func(s PriceSource) (decimal.Decimal, bool) {
		obj := decodeEstimate(s.Estimate)
		if obj == nil {
			return decimal.Zero, false
		}
		return positive(obj[key])
	}}
}

// decodeEstimate acepta un objeto o un string JSON que contiene un objeto (filas heredadas con doble codificación).
func decodeEstimate(raw json.RawMessage) map[string]any {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil
	}
	if raw[0] == '"' {
		var inner string
		if err := json.Unmarshal(raw, &inner); err != nil {
			return nil
		}
		return decodeEstimate(json.RawMessage(inner))
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var obj map[string]any
	if err := dec.Decode(&obj); err != nil {
		return nil
	}
	return obj
}

func positive(v any) (decimal.Decimal, bool) {
	var (
		d   decimal.Decimal
		err error
	)
	switch x := v.(type) {
	case json.Number:
		d, err = decimal.NewFromString(x.String())
	case string:
		d, err = decimal.NewFromString(strings.TrimSpace(x))
	case float64:
		d = decimal.NewFromFloat(x)
	default:
		return decimal.Zero, false
	}
	if err != nil || !d.IsPositive() {
		return decimal.Zero, false
	}
	return d, true
}

// Consolidate devuelve el precio canónico y el nombre del campo del que salió.
// ok es false cuando ninguna fuente tiene un valor positivo; el precio es entonces cero.
func Consolidate(src PriceSource) (price decimal.Decimal, source string, ok bool) {
	for _, ex := range Extractors {
		if v, found := ex.Extract(src); found {
			return v, ex.Name, true
		}
	}
	return decimal.Zero, "", false
}

// CanonicalPrice es el único valor que manda en un documento, nunca negativo.
func CanonicalPrice(src PriceSource) decimal.Decimal {
	p, _, _ := Consolidate(src)
	return p
}

// SourceFromJob mapea las columnas de precio de un trabajo.
func SourceFromJob(j *entity.Job) PriceSource {
	return PriceSource{
		FinalCost:     j.FinalCost,
		FinalPrice:    j.FinalPrice,
		EstimatedCost: j.EstimatedCost,
		EstimatePrice: j.EstimatePrice,
		UnitPrice:     j.UnitPrice,
		Quantity:      j.Quantity,
		Estimate:      j.Estimate,
	}
}

// SourceFromEstimate mapea una cotización: total_amount, luego subtotal, luego precio unitario x cantidad.
func SourceFromEstimate(e *entity.Estimate) PriceSource {
	return PriceSource{
		TotalAmount: decimal.NewNullDecimal(e.TotalAmount),
		Subtotal:    decimal.NewNullDecimal(e.Subtotal),
		UnitPrice:   decimal.NewNullDecimal(e.UnitPrice),
		Quantity:    e.Quantity,
	}
}
