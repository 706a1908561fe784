package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"quill/cmd/internal/gateway"
)

// UserReader is the read-only users capability.
type UserReader interface {
	EmailExists(ctx context.Context, email string) (bool, error)
	ByEmail(ctx context.Context, email string) (gateway.User, error)
}

// UserWriter is the insert-only users capability.
type UserWriter interface {
	Insert(ctx context.Context, name, email, passwordHash string) (int64, error)
}

// PostgresStore implements Store over the privilege-scoped gateway handles.
// The pools behind the handles are owned by the caller.
type PostgresStore struct {
	reader UserReader
	writer UserWriter
}

var _ Store = (*PostgresStore)(nil)

// NewPostgresStore wires the read-only and insert-only users handles.
func NewPostgresStore(reader UserReader, writer UserWriter) (*PostgresStore, error) {
	if reader == nil || writer == nil {
		return nil, fmt.Errorf("identity: nil users handle")
	}
	return &PostgresStore{reader: reader, writer: writer}, nil
}

// NewGatewayStore builds a PostgresStore from opened pools.
func NewGatewayStore(p *gateway.Pools) *PostgresStore {
	return &PostgresStore{reader: p.ReadOnlyUsers(), writer: p.InsertUsers()}
}

func (s *PostgresStore) EmailExists(ctx context.Context, email string) (bool, error) {
	const op = "identity.EmailExists"

	email = NormalizeEmail(email)
	if email == "" {
		return false, pgInvalid(op, "email is required")
	}
	ok, err := s.reader.EmailExists(ctx, email)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return ok, nil
}

func (s *PostgresStore) GetUserAuthByEmail(ctx context.Context, email string) (User, error) {
	const op = "identity.GetUserAuthByEmail"

	email = NormalizeEmail(email)
	if email == "" {
		return User{}, pgInvalid(op, "email is required")
	}
	u, err := s.reader.ByEmail(ctx, email)
	if errors.Is(err, gateway.ErrNotFound) {
		return User{}, NotFoundError{Op: op, Resource: "user"}
	}
	if err != nil {
		return User{}, fmt.Errorf("%s: %w", op, err)
	}
	return User{ID: u.ID, Name: u.Name, Email: u.Email, PasswordHash: u.PasswordHash}, nil
}

func (s *PostgresStore) CreateUser(ctx context.Context, in CreateUserInput) (User, error) {
	const op = "identity.CreateUser"

	if err := ctx.Err(); err != nil {
		return User{}, err
	}

	name := NormalizeName(in.Name)
	email := NormalizeEmail(in.Email)
	switch {
	case name == "":
		return User{}, pgInvalid(op, "name is required")
	case email == "":
		return User{}, pgInvalid(op, "email is required")
	case strings.TrimSpace(in.PasswordHash) == "":
		return User{}, pgInvalid(op, "password hash is required")
	}

	id, err := s.writer.Insert(ctx, name, email, in.PasswordHash)
	if errors.Is(err, gateway.ErrDuplicate) {
		return User{}, ConflictError{Op: op, Field: "email"}
	}
	if err != nil {
		return User{}, fmt.Errorf("%s: %w", op, err)
	}
	return User{ID: id, Name: name, Email: email, PasswordHash: in.PasswordHash}, nil
}

func pgInvalid(op, msg string) error {
	return OpError{Op: op, Kind: ErrInvalidInput, Msg: msg}
}
