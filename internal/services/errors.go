package services

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	// ErrNotFound covers both absent rows and rows outside the actor's scope.
	ErrNotFound = errors.New("not found")

	ErrRateNotFound = errors.New("no rate on file for project and developer")
	ErrRenderFailed = errors.New("invoice rendering failed")
)

type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// notFound folds pgx.ErrNoRows into ErrNotFound and wraps everything else.
func notFound(err error, op string) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return fmt.Errorf("failed to %s: %w", op, err)
}

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgCheckViolation      = "23514"
)

// constraint maps integrity violations to validation errors.
func constraint(err error, field, op string) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return invalid(field, "already exists")
		case pgForeignKeyViolation:
			return invalid(field, "references a record that does not exist")
		case pgCheckViolation:
			return invalid(field, "violates constraint %s", pgErr.ConstraintName)
		}
	}
	return fmt.Errorf("failed to %s: %w", op, err)
}
