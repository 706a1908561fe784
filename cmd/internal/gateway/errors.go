package gateway

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	// ErrNotFound is returned when a single-row lookup matches nothing.
	ErrNotFound = errors.New("gateway: not found")

	// ErrDuplicate is returned when an insert hits a unique constraint.
	ErrDuplicate = errors.New("gateway: duplicate")

	ErrMissingDatabaseURL = errors.New("gateway: database url missing")
	ErrMissingCredential  = errors.New("gateway: credential missing")
)

const pgUniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == pgUniqueViolation
}
