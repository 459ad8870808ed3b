package dto

import "time"

// CreateCustomerRequest cuerpo de POST /api/customers.
type CreateCustomerRequest struct {
	Name        string `json:"name" validate:"required,max=200"`
	CompanyName string `json:"company_name,omitempty" validate:"omitempty,max=200"`
	Email       string `json:"email,omitempty" validate:"omitempty,email"`
	Phone       string `json:"phone,omitempty" validate:"omitempty,max=40"`
	Address     string `json:"address,omitempty"`
}

// CustomerResponse cliente en las respuestas.
type CustomerResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	CompanyName string    `json:"company_name,omitempty"`
	Email       string    `json:"email,omitempty"`
	Phone       string    `json:"phone,omitempty"`
	Address     string    `json:"address,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}
