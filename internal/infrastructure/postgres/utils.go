package postgres

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jhoicas/printshop-api/internal/domain"
)

// Códigos de error de PostgreSQL que distingue el adaptador.
const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
	codeCheckViolation      = "23514"
	codeInsufficientPriv    = "42501"
)

// isUniqueViolation verifica si un error es una violación de constraint único (23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == codeUniqueViolation
	}
	return false
}

// mapError traduce los errores del driver a la taxonomía del dominio, conservando el original para el log:
// clave duplicada, referencia inválida, permiso denegado y backend inalcanzable.
func mapError(op string, err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case codeUniqueViolation:
			return fmt.Errorf("%s: %w: %s", op, domain.ErrDuplicate, pgErr.ConstraintName)
		case codeForeignKeyViolation:
			return fmt.Errorf("%s: %w: %s", op, domain.ErrInvalidReference, pgErr.ConstraintName)
		case codeCheckViolation:
			return fmt.Errorf("%s: %w: %s", op, domain.ErrInvalidInput, pgErr.ConstraintName)
		case codeInsufficientPriv:
			return fmt.Errorf("%s: %w", op, domain.ErrForbidden)
		}
		if strings.HasPrefix(pgErr.Code, "08") { // clase de excepción de conexión
			return fmt.Errorf("%s: %w: %v", op, domain.ErrUnavailable, err)
		}
		return fmt.Errorf("%s: %w", op, err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) || pgconn.Timeout(err) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%s: %w: %v", op, domain.ErrUnavailable, err)
	}
	var connErr *pgconn.ConnectError
	if errors.As(err, &connErr) {
		return fmt.Errorf("%s: %w: %v", op, domain.ErrUnavailable, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func derefStr(p *string) string {
	if p != nil {
		return *p
	}
	return ""
}

// filter acumula cláusulas WHERE con argumentos posicionales.
type filter struct {
	clauses []string
	args    []any
}

// add agrega una cláusula; cada "?" de cond se reemplaza por el siguiente placeholder.
func (f *filter) add(cond string, arg any) {
	f.args = append(f.args, arg)
	f.clauses = append(f.clauses, strings.Replace(cond, "?", "$"+strconv.Itoa(len(f.args)), -1))
}

func (f *filter) where() string {
	if len(f.clauses) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(f.clauses, " AND ")
}

// page agrega LIMIT/OFFSET; limit <= 0 significa sin límite.
func (f *filter) page(limit, offset int) string {
	out := ""
	if limit > 0 {
		f.args = append(f.args, limit)
		out += " LIMIT $" + strconv.Itoa(len(f.args))
	}
	if offset > 0 {
		f.args = append(f.args, offset)
		out += " OFFSET $" + strconv.Itoa(len(f.args))
	}
	return out
}
