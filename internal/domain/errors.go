package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas). Los llamadores distinguen con errors.Is.
var (
	ErrNotFound         = errors.New("resource not found")
	ErrInvalidInput     = errors.New("invalid input")
	ErrUnauthorized     = errors.New("unauthorized")
	ErrForbidden        = errors.New("permission denied")
	ErrConflict         = errors.New("conflict with current state")
	ErrDuplicate        = errors.New("resource already exists")
	ErrInvalidReference = errors.New("invalid reference")
	ErrUnavailable      = errors.New("backend unavailable")
	ErrAlreadyInvoiced  = errors.New("job already invoiced")

	// ErrInvalidTransition se devuelve cuando un cambio de estado de documento no está permitido
	// desde su estado actual (efectivo). El estado guardado no cambia.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrCounterUnavailable envuelve ErrUnavailable para que siga aplicando el manejo de transporte.
	ErrCounterUnavailable = fmt.Errorf("counter unavailable: %w", ErrUnavailable)
)
