package database

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

const (
	postgresUniqueViolationErrorCode = "23505"
)

// IsUniqueViolation reports whether err is a unique constraint violation,
// optionally restricted to the named constraint.
func IsUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != postgresUniqueViolationErrorCode {
		return false
	}
	return constraint == "" || pgErr.ConstraintName == constraint
}
