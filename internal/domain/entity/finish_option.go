package entity

import "github.com/shopspring/decimal"

// FinishCategory agrupa los acabados del catálogo.
type FinishCategory string

const (
	FinishCoating   FinishCategory = "coating"
	FinishCutting   FinishCategory = "cutting"
	FinishBinding   FinishCategory = "binding"
	FinishFinishing FinishCategory = "finishing"
	FinishTexture   FinishCategory = "texture"
	FinishSpecial   FinishCategory = "special"
	FinishOther     FinishCategory = "other"
)

// FinishOption es dato de referencia de solo lectura. Pricing.Base es el precio unitario por defecto;
// una base de cero es un acabado gratis.
type FinishOption struct {
	ID       string
	Name     string
	Category FinishCategory
	Pricing  FinishPricing
	Active   bool
}

// FinishPricing precio unitario de un acabado.
type FinishPricing struct {
	Base decimal.Decimal `json:"base"`
	Unit string          `json:"unit,omitempty"`
}
