package pricing

import (
	"fmt"

	"github.com/jhoicas/printshop-api/internal/domain"
	"github.com/jhoicas/printshop-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// QuoteInput valores del formulario en vivo que valora ComputeTotal.
type QuoteInput struct {
	UnitPrice   decimal.Decimal
	Quantity    int
	SelectedIDs []string
	Overrides   map[string]decimal.Decimal
}

// QuoteLine es el aporte de un acabado.
type QuoteLine struct {
	OptionID   string          `json:"optionId"`
	Name       string          `json:"name"`
	UnitPrice  decimal.Decimal `json:"unitPrice"`
	Total      decimal.Decimal `json:"total"`
	Overridden bool            `json:"overridden"`
	IsFree     bool            `json:"isFree"`
}

// Label presenta la línea: "Free" para los acabados sin precio.
func (l QuoteLine) Label(f Formatter) string {
	if l.IsFree {
		return FreeLabel
	}
	return f.Format(l.Total)
}

// Quote resultado de ComputeTotal. Todos los montos van redondeados a 2 decimales.
type Quote struct {
	Subtotal        decimal.Decimal            `json:"subtotal"`
	Lines           []QuoteLine                `json:"lines"`
	PerOptionTotals map[string]decimal.Decimal `json:"perOptionTotals"`
	GrandTotal      decimal.Decimal            `json:"grandTotal"`
}

// EffectivePrice es el precio pactado si existe y no es negativo; si no, el precio base del acabado.
func EffectivePrice(opt entity.FinishOption, override decimal.Decimal, hasOverride bool) (decimal.Decimal, bool) {
	if hasOverride && !override.IsNegative() {
		return override, true
	}
	return opt.Pricing.Base, false
}

// ComputeTotal valora una selección: grandTotal = (unitPrice + suma de precios efectivos) x quantity.
// Se redondea una sola vez, sobre los valores devueltos.
func ComputeTotal(in QuoteInput, options map[string]entity.FinishOption) (Quote, error) {
	if in.Quantity <= 0 {
		return Quote{}, fmt.Errorf("%w: quantity must be greater than zero", domain.ErrInvalidInput)
	}
	if in.UnitPrice.IsNegative() {
		return Quote{}, fmt.Errorf("%w: unit price must not be negative", domain.ErrInvalidInput)
	}
	qty := decimal.NewFromInt(int64(in.Quantity))
	perUnit := in.UnitPrice
	q := Quote{PerOptionTotals: make(map[string]decimal.Decimal, len(in.SelectedIDs))}
	seen := make(map[string]struct{}, len(in.SelectedIDs))
	for _, id := range in.SelectedIDs {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}

		override, hasOverride := in.Overrides[id]
		opt, known := options[id]
		if !known {
			if !hasOverride || override.IsNegative() {
				return Quote{}, fmt.Errorf("%w: unknown finishing option %q", domain.ErrInvalidInput, id)
			}
			opt = entity.FinishOption{ID: id, Name: id}
		}
		price, overridden := EffectivePrice(opt, override, hasOverride)
		if price.IsNegative() {
			return Quote{}, fmt.Errorf("%w: finishing option %q has a negative price", domain.ErrInvalidInput, id)
		}
		perUnit = perUnit.Add(price)
		total := price.Mul(qty)
		q.Lines = append(q.Lines, QuoteLine{
			OptionID:   id,
			Name:       opt.Name,
			UnitPrice:  price.Round(2),
			Total:      total.Round(2),
			Overridden: overridden,
			IsFree:     price.IsZero(),
		})
		q.PerOptionTotals[id] = total.Round(2)
	}
	q.Subtotal = in.UnitPrice.Mul(qty).Round(2)
	q.GrandTotal = perUnit.Mul(qty).Round(2)
	return q, nil
}

// DocumentTotals montos de cabecera de una cotización o factura.
type DocumentTotals struct {
	Subtotal decimal.Decimal
	Tax      decimal.Decimal
	Discount decimal.Decimal
	Total    decimal.Decimal
}

// Totals aplica impuesto y descuento: total = subtotal + tax - discount.
func Totals(subtotal, taxRate, discount decimal.Decimal) (DocumentTotals, error) {
	if taxRate.IsNegative() || discount.IsNegative() {
		return DocumentTotals{}, fmt.Errorf("%w: tax rate and discount must not be negative", domain.ErrInvalidInput)
	}
	tax := subtotal.Mul(taxRate).Round(2)
	sub := subtotal.Round(2)
	disc := discount.Round(2)
	total := sub.Add(tax).Sub(disc)
	if total.IsNegative() {
		return DocumentTotals{}, fmt.Errorf("%w: discount exceeds total", domain.ErrInvalidInput)
	}
	return DocumentTotals{Subtotal: sub, Tax: tax, Discount: disc, Total: total}, nil
}
