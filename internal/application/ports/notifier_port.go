package ports

import "context"

// StatusChange describe un cambio de estado de trabajo que se envía al cliente.
type StatusChange struct {
	CustomerEmail string
	CustomerName  string
	JobNumber     string
	JobTitle      string
	OldStatus     string
	NewStatus     string
}

// Notifier entrega los correos de estado. El llamador registra los fallos, nunca los propaga.
type Notifier interface {
	SendStatusChangeEmail(ctx context.Context, change StatusChange) error
}
