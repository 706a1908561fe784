package session

import (
	"context"
	"time"
)

// Row mirrors a sessions row.
type Row struct {
	UserID    int64
	TokenHash string
	CreatedAt time.Time
}

// Store abstracts persistence for session state.
//
// Implementations only ever see token hashes.
type Store interface {
	// Active returns the row for tokenHash created at or after since,
	// or ErrSessionNotFound.
	Active(ctx context.Context, tokenHash string, since time.Time) (Row, error)

	// Insert stores a new session. A stored tokenHash yields ErrTokenCollision.
	Insert(ctx context.Context, userID int64, tokenHash string, createdAt time.Time) error

	// Delete removes the session for tokenHash.
	Delete(ctx context.Context, tokenHash string) error
}
