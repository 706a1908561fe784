package identity

import (
	"errors"
	"fmt"
)

// Error kinds. Callers branch on them with errors.Is.
var (
	ErrInvalidInput = errors.New("identity: invalid input")
	ErrNotFound     = errors.New("identity: user not found")
	ErrConflict     = errors.New("identity: already taken")
)

// OpError wraps a kind with the failing operation. Msg never carries a
// password or hash.
type OpError struct {
	Op   string
	Kind error
	Msg  string
}

func (e OpError) Error() string {
	if e.Msg == "" {
		return e.Op + ": " + e.Kind.Error()
	}
	return fmt.Sprintf("%s: %v (%s)", e.Op, e.Kind, e.Msg)
}

func (e OpError) Unwrap() error { return e.Kind }

// ConflictError is a unique violation on Field ("email").
type ConflictError struct {
	Op    string
	Field string
}

func (e ConflictError) Error() string {
	return fmt.Sprintf("%s: %s %v", e.Op, e.Field, ErrConflict)
}

func (e ConflictError) Unwrap() error { return ErrConflict }

// NotFoundError is a lookup that matched no row.
type NotFoundError struct {
	Op       string
	Resource string
}

func (e NotFoundError) Error() string { return e.Op + ": " + ErrNotFound.Error() }

func (e NotFoundError) Unwrap() error { return ErrNotFound }

func IsConflict(err error) bool { return errors.Is(err, ErrConflict) }

func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }

func IsInvalidInput(err error) bool { return errors.Is(err, ErrInvalidInput) }
