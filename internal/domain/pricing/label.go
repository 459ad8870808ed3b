package pricing

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// FreeLabel se muestra en lugar de un monto cero.
const FreeLabel = "Free"

// Formatter presenta dinero con agrupación de dígitos según el locale.
type Formatter struct {
	Symbol  string
	printer *message.Printer
}

// NewFormatter construye un formatter para una etiqueta BCP 47 como "en-US". Las desconocidas caen a inglés.
func NewFormatter(tag, symbol string) Formatter {
	lang, err := language.Parse(tag)
	if err != nil {
		lang = language.English
	}
	return Formatter{Symbol: symbol, printer: message.NewPrinter(lang)}
}

// DefaultFormatter usa dólares estadounidenses.
func DefaultFormatter() Formatter {
	return NewFormatter("en-US", "$")
}

// Format presenta un monto redondeado a centavos.
func (f Formatter) Format(amount decimal.Decimal) string {
	p := f.printer
	if p == nil {
		p = message.NewPrinter(language.English)
	}
	v, _ := amount.Round(2).Float64()
	if v < 0 {
		return "-" + f.Symbol + p.Sprintf("%.2f", -v)
	}
	return f.Symbol + p.Sprintf("%.2f", v)
}

// AmountLabel devuelve "Free" para cero y el monto formateado en otro caso.
func (f Formatter) AmountLabel(amount decimal.Decimal) string {
	if amount.IsZero() {
		return FreeLabel
	}
	return f.Format(amount)
}
