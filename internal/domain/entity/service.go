package entity

import "time"

// Service es una oferta vendible (tarjetas de presentación, volantes, pendones...).
// Sus Options restringen qué papel, tamaños y acabados se pueden pedir con él.
type Service struct {
	ID          string
	Title       string
	Description string
	Options     ServiceOptions
	Active      bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ServiceOptions es el bloque de restricciones que declara el panel de administración.
// Una lista vacía significa "sin restricción" en esa dimensión.
type ServiceOptions struct {
	FinishIDs []string         `json:"finishIds,omitempty"`
	Paper     PaperConstraints `json:"paper"`
	Sizing    SizingOptions    `json:"sizing"`
}

// PaperConstraints subconjuntos permitidos del catálogo de papel.
type PaperConstraints struct {
	Types      []string `json:"types,omitempty"`
	WeightsGSM []int    `json:"weightsGsm,omitempty"`
}

// SizingOptions tamaños estándar ofrecidos y si se aceptan tamaños personalizados.
type SizingOptions struct {
	StandardPresets []string `json:"standardPresets,omitempty"`
	AllowCustom     *bool    `json:"allowCustom,omitempty"`
}

// IsEmpty indica si el servicio no declara ninguna restricción.
func (o ServiceOptions) IsEmpty() bool {
	return len(o.FinishIDs) == 0 &&
		len(o.Paper.Types) == 0 &&
		len(o.Paper.WeightsGSM) == 0 &&
		len(o.Sizing.StandardPresets) == 0 &&
		o.Sizing.AllowCustom == nil
}

// CustomSizeAllowed vale true por defecto cuando el servicio no dice nada.
func (o ServiceOptions) CustomSizeAllowed() bool {
	return o.Sizing.AllowCustom == nil || *o.Sizing.AllowCustom
}
