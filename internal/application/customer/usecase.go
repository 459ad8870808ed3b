// Package customer gestiona los clientes a los que se refieren cotizaciones, trabajos y facturas.
package customer

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/printshop-api/internal/application/dto"
	"github.com/jhoicas/printshop-api/internal/domain"
	"github.com/jhoicas/printshop-api/internal/domain/entity"
	"github.com/jhoicas/printshop-api/internal/domain/repository"
)

// UseCase operaciones de clientes.
type UseCase struct {
	repo repository.CustomerRepository
	now  func() time.Time
}

// NewUseCase construye el caso de uso.
func NewUseCase(repo repository.CustomerRepository) *UseCase {
	return &UseCase{repo: repo, now: time.Now}
}

// Create registra un cliente. El email, si viene, debe ser único (sin distinguir mayúsculas).
func (uc *UseCase) Create(ctx context.Context, in dto.CreateCustomerRequest) (*dto.CustomerResponse, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", domain.ErrInvalidInput)
	}
	now := uc.now().UTC()
	c := &entity.Customer{
		ID:          uuid.New().String(),
		Name:        name,
		CompanyName: strings.TrimSpace(in.CompanyName),
		Email:       strings.ToLower(strings.TrimSpace(in.Email)),
		Phone:       strings.TrimSpace(in.Phone),
		Address:     strings.TrimSpace(in.Address),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := uc.repo.Create(ctx, c); err != nil {
		return nil, err
	}
	return toResponse(c), nil
}

// Get devuelve un cliente.
func (uc *UseCase) Get(ctx context.Context, id string) (*dto.CustomerResponse, error) {
	c, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, domain.ErrNotFound
	}
	return toResponse(c), nil
}

// List busca clientes por nombre, empresa o email.
func (uc *UseCase) List(ctx context.Context, search string, page dto.PageRequest) ([]*dto.CustomerResponse, error) {
	page.DefaultPage()
	list, err := uc.repo.List(ctx, search, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	out := make([]*dto.CustomerResponse, 0, len(list))
	for _, c := range list {
		out = append(out, toResponse(c))
	}
	return out, nil
}

func toResponse(c *entity.Customer) *dto.CustomerResponse {
	return &dto.CustomerResponse{
		ID:          c.ID,
		Name:        c.Name,
		CompanyName: c.CompanyName,
		Email:       c.Email,
		Phone:       c.Phone,
		Address:     c.Address,
		CreatedAt:   c.CreatedAt,
	}
}
