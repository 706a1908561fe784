package identity

import "context"

// User is quill's security principal. PasswordHash never leaves the auth flow.
type User struct {
	ID           int64
	Name         string
	Email        string
	PasswordHash string `json:"-"`
}

// CreateUserInput describes a registration that already passed validation.
type CreateUserInput struct {
	Name         string
	Email        string
	PasswordHash string
}

// Store is the credential persistence boundary.
type Store interface {
	// EmailExists reports whether the email is already registered (exact match).
	EmailExists(ctx context.Context, email string) (bool, error)

	// GetUserAuthByEmail returns the user with its password hash, or a NotFoundError.
	GetUserAuthByEmail(ctx context.Context, email string) (User, error)

	// CreateUser inserts the user. A taken email yields ConflictError{Field: "email"}.
	CreateUser(ctx context.Context, in CreateUserInput) (User, error)
}
