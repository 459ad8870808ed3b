package repository

import "context"

// CounterRepository es el incremento atómico del servidor detrás de los números de documento.
// NextValue nunca devuelve dos veces el mismo valor de un contador, ni con llamadores concurrentes.
type CounterRepository interface {
	NextValue(ctx context.Context, name string) (int64, error)
}
