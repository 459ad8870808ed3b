// Package numbering emite números de documento legibles (JKDP-JOB-0001) a partir de contadores del servidor.
package numbering

import (
	"context"
	"errors"
	"fmt"

	"github.com/jhoicas/printshop-api/internal/domain"
	"github.com/jhoicas/printshop-api/internal/domain/repository"
)

// Kind es un tipo de documento numerado.
type Kind struct {
	Counter string
	Prefix  string
}

var (
	Job      = Kind{Counter: "job", Prefix: "JKDP-JOB"}
	Estimate = Kind{Counter: "estimates", Prefix: "JKDP-EST"}
	Invoice  = Kind{Counter: "invoices", Prefix: "JKDP-INV"}
)

const minDigits = 4

// Format produce PREFIJO-NNNN; los valores por encima de 9999 se ensanchan en vez de reiniciar.
func Format(prefix string, value int64) string {
	return fmt.Sprintf("%s-%0*d", prefix, minDigits, value)
}

// Issuer entrega números de documento. Atarlo al CounterRepository de una transacción hace que un
// insert fallido también revierta el incremento.
type Issuer struct {
	counters repository.CounterRepository
}

// NewIssuer construye un emisor sobre counters.
func NewIssuer(counters repository.CounterRepository) *Issuer {
	return &Issuer{counters: counters}
}

// NextValue devuelve el siguiente valor del contador. Cualquier fallo del backend es ErrCounterUnavailable.
func (i *Issuer) NextValue(ctx context.Context, counter string) (int64, error) {
	v, err := i.counters.NextValue(ctx, counter)
	if err != nil {
		if errors.Is(err, domain.ErrCounterUnavailable) {
			return 0, err
		}
		return 0, fmt.Errorf("%w: %s: %v", domain.ErrCounterUnavailable, counter, err)
	}
	if v <= 0 {
		return 0, fmt.Errorf("%w: %s returned %d", domain.ErrCounterUnavailable, counter, v)
	}
	return v, nil
}

// Next devuelve el número formateado para kind.
func (i *Issuer) Next(ctx context.Context, kind Kind) (string, error) {
	v, err := i.NextValue(ctx, kind.Counter)
	if err != nil {
		return "", err
	}
	return Format(kind.Prefix, v), nil
}
