package entity

import "time"

// Customer es un cliente de la imprenta. El email se usa para avisar cambios de estado de trabajos.
type Customer struct {
	ID          string
	Name        string
	CompanyName string
	Email       string
	Phone       string
	Address     string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
