package postgres

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/jbaikge/boneless/internal/domain"
)

const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
)

// IsPgDuplicateError checks if error is a unique constraint violation
func IsPgDuplicateError(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == codeUniqueViolation
}

// IsPgNoRowsError checks if error is a "no rows" error
func IsPgNoRowsError(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

// IsPgForeignKeyError checks if error is a foreign key violation
func IsPgForeignKeyError(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == codeForeignKeyViolation
}

// MapError translates driver errors into domain errors. op names the failed
// operation ("get class"), resource and id describe the row.
func MapError(err error, op, resource, id string) error {
	switch {
	case err == nil:
		return nil
	case IsPgNoRowsError(err):
		return fmt.Errorf("%s %s: %w", resource, id, domain.ErrNotFound)
	case IsPgForeignKeyError(err):
		return fmt.Errorf("%s %s references a missing row: %w", resource, id, domain.ErrValidation)
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}
