package postgres

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jhoicas/printshop-api/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"duplicate", &pgconn.PgError{Code: "23505", ConstraintName: "jobs_job_no_key"}, domain.ErrDuplicate},
		{"foreign key", &pgconn.PgError{Code: "23503"}, domain.ErrInvalidReference},
		{"check", &pgconn.PgError{Code: "23514"}, domain.ErrInvalidInput},
		{"permission", fmt.Errorf("wrapped: %w", &pgconn.PgError{Code: "42501"}), domain.ErrForbidden},
		{"connection class", &pgconn.PgError{Code: "08006"}, domain.ErrUnavailable},
		{"deadline", context.DeadlineExceeded, domain.ErrUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, mapError("op", tt.err), tt.want)
		})
	}
	assert.NoError(t, mapError("op", nil))

	plain := errors.New("boom")
	got := mapError("insert job", plain)
	assert.ErrorIs(t, got, plain)
	assert.Contains(t, got.Error(), "insert job")
}

func TestIsUniqueViolation(t *testing.T) {
	assert.True(t, isUniqueViolation(&pgconn.PgError{Code: "23505"}))
	assert.False(t, isUniqueViolation(errors.New("23505 in text only")))
}

func TestFilter(t *testing.T) {
	var f filter
	f.add("customer_id = ?", "c-1")
	f.add("(name ILIKE ? OR email ILIKE ?)", "%a%")
	page := f.page(10, 20)

	assert.Equal(t, " WHERE customer_id = $1 AND (name ILIKE $2 OR email ILIKE $2)", f.where())
	assert.Equal(t, " LIMIT $3 OFFSET $4", page)
	assert.Equal(t, []any{"c-1", "%a%", 10, 20}, f.args)

	var empty filter
	assert.Equal(t, "", empty.where())
	assert.Equal(t, "", empty.page(0, 0))
}
