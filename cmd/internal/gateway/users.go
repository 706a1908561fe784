package gateway

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
)

// User is a users row including the stored password hash.
type User struct {
	ID           int64
	Name         string
	Email        string
	PasswordHash string
}

// ReadOnlyUsers may only read the users table.
type ReadOnlyUsers struct{ db Querier }

// NewReadOnlyUsers wraps db, which must be connected as the read-only users role.
func NewReadOnlyUsers(db Querier) ReadOnlyUsers { return ReadOnlyUsers{db: db} }

// EmailExists reports whether a user with exactly this email exists.
func (h ReadOnlyUsers) EmailExists(ctx context.Context, email string) (bool, error) {
	var exists bool
	if err := h.db.QueryRow(ctx, stmtUserExists, email).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

// ByEmail returns the user with this email or ErrNotFound.
func (h ReadOnlyUsers) ByEmail(ctx context.Context, email string) (User, error) {
	var u User
	err := h.db.QueryRow(ctx, stmtSelectUser, email).Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash)
	if errors.Is(err, pgx.ErrNoRows) {
		return User{}, ErrNotFound
	}
	if err != nil {
		return User{}, err
	}
	return u, nil
}

// InsertUsers may only insert into the users table.
type InsertUsers struct{ db Querier }

// NewInsertUsers wraps db, which must be connected as the insert users role.
func NewInsertUsers(db Querier) InsertUsers { return InsertUsers{db: db} }

// Insert creates a user and returns its id. A taken email yields ErrDuplicate.
func (h InsertUsers) Insert(ctx context.Context, name, email, passwordHash string) (int64, error) {
	var id int64
	err := withTx(ctx, h.db, func(tx pgx.Tx) error {
		return tx.QueryRow(ctx, stmtInsertUser, name, email, passwordHash).Scan(&id)
	})
	if err != nil {
		if isUniqueViolation(err) {
			return 0, ErrDuplicate
		}
		return 0, err
	}
	return id, nil
}
