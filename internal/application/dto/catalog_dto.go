package dto

import (
	"github.com/jhoicas/printshop-api/internal/domain/entity"
	"github.com/jhoicas/printshop-api/internal/domain/specification"
	"github.com/shopspring/decimal"
)

// ServiceResponse un servicio vendible con su bloque de restricciones.
type ServiceResponse struct {
	ID          string                `json:"id"`
	Title       string                `json:"title"`
	Description string                `json:"description,omitempty"`
	Options     entity.ServiceOptions `json:"options"`
}

// FinishOptionResponse un acabado con su etiqueta de presentación.
type FinishOptionResponse struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Category  string          `json:"category"`
	BasePrice decimal.Decimal `json:"base_price"`
	Label     string          `json:"label"`
}

// CatalogResponse cuerpo de GET /api/catalog. Fallback es true cuando se sirvieron datos incorporados.
type CatalogResponse struct {
	Services      []ServiceResponse          `json:"services"`
	PaperTypes    []string                   `json:"paper_types"`
	PaperWeights  []int                      `json:"paper_weights_gsm"`
	SizePresets   []specification.SizePreset `json:"size_presets"`
	FinishOptions []FinishOptionResponse     `json:"finish_options"`
	Fallback      bool                       `json:"fallback"`
}

// ResolveRequest cuerpo de POST /api/catalog/resolve.
type ResolveRequest struct {
	ServiceID      string               `json:"service_id"`
	Specifications entity.Specification `json:"specifications"`
}

// ResolveResponse opciones permitidas más la selección reparada.
type ResolveResponse struct {
	Legal           specification.LegalOptions `json:"legal"`
	Specifications  entity.Specification       `json:"specifications"`
	Changes         []specification.Change     `json:"changes,omitempty"`
	DroppedFinishes []string                   `json:"dropped_finishes,omitempty"`
}

// QuoteRequest cuerpo de POST /api/pricing/quote.
type QuoteRequest struct {
	ServiceID   string                     `json:"service_id,omitempty"`
	UnitPrice   decimal.Decimal            `json:"unit_price"`
	Quantity    int                        `json:"quantity" validate:"required,min=1"`
	SelectedIDs []string                   `json:"selected_ids" validate:"dive,required"`
	Overrides   map[string]decimal.Decimal `json:"price_overrides,omitempty"`
}

// QuoteLineResponse una línea de acabado de la cotización.
type QuoteLineResponse struct {
	OptionID   string          `json:"option_id"`
	Name       string          `json:"name"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	Total      decimal.Decimal `json:"total"`
	Overridden bool            `json:"overridden"`
	IsFree     bool            `json:"is_free"`
	Label      string          `json:"label"`
}

// QuoteResponse selección valorada.
type QuoteResponse struct {
	Subtotal        decimal.Decimal            `json:"subtotal"`
	Lines           []QuoteLineResponse        `json:"lines"`
	PerOptionTotals map[string]decimal.Decimal `json:"per_option_totals"`
	GrandTotal      decimal.Decimal            `json:"grand_total"`
	GrandTotalLabel string                     `json:"grand_total_label"`
}
