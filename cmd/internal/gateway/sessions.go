package gateway

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
)

// Session is a sessions row. TokenHash is the digest of the client token.
type Session struct {
	UserID    int64
	TokenHash string
	CreatedAt time.Time
}

// ReadOnlySessions may only read the sessions table.
type ReadOnlySessions struct{ db Querier }

func NewReadOnlySessions(db Querier) ReadOnlySessions { return ReadOnlySessions{db: db} }

// Active returns the session for tokenHash created at or after since, or ErrNotFound.
func (h ReadOnlySessions) Active(ctx context.Context, tokenHash string, since time.Time) (Session, error) {
	var s Session
	err := h.db.QueryRow(ctx, stmtActiveSess, tokenHash, since).Scan(&s.UserID, &s.TokenHash, &s.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Session{}, ErrNotFound
	}
	if err != nil {
		return Session{}, err
	}
	return s, nil
}

// InsertSessions may only insert into the sessions table.
type InsertSessions struct{ db Querier }

func NewInsertSessions(db Querier) InsertSessions { return InsertSessions{db: db} }

// Insert stores a session. A token hash that is already stored yields ErrDuplicate.
func (h InsertSessions) Insert(ctx context.Context, userID int64, tokenHash string, createdAt time.Time) error {
	err := withTx(ctx, h.db, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, stmtInsertSess, userID, tokenHash, createdAt)
		return err
	})
	if err != nil && isUniqueViolation(err) {
		return ErrDuplicate
	}
	return err
}

// DeleteSessions may only delete from the sessions table.
type DeleteSessions struct{ db Querier }

func NewDeleteSessions(db Querier) DeleteSessions { return DeleteSessions{db: db} }

// Delete removes the session for tokenHash. Deleting nothing is not an error.
func (h DeleteSessions) Delete(ctx context.Context, tokenHash string) error {
	return withTx(ctx, h.db, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, stmtDeleteSess, tokenHash)
		return err
	})
}
