package session

import (
	"context"
	"errors"
	"time"

	"quill/cmd/internal/gateway"
)

// PostgresStore implements Store over the three session gateway handles.
type PostgresStore struct {
	read   gateway.ReadOnlySessions
	insert gateway.InsertSessions
	del    gateway.DeleteSessions
}

var _ Store = (*PostgresStore)(nil)

// NewPostgresStore creates a Postgres-backed session store from its handles.
func NewPostgresStore(read gateway.ReadOnlySessions, insert gateway.InsertSessions, del gateway.DeleteSessions) *PostgresStore {
	return &PostgresStore{read: read, insert: insert, del: del}
}

// NewGatewayStore creates a PostgresStore from opened pools.
func NewGatewayStore(p *gateway.Pools) *PostgresStore {
	return NewPostgresStore(p.ReadOnlySessions(), p.InsertSessions(), p.DeleteSessions())
}

func (s *PostgresStore) Active(ctx context.Context, tokenHash string, since time.Time) (Row, error) {
	r, err := s.read.Active(ctx, tokenHash, since)
	if errors.Is(err, gateway.ErrNotFound) {
		return Row{}, ErrSessionNotFound
	}
	if err != nil {
		return Row{}, err
	}
	return Row{UserID: r.UserID, TokenHash: r.TokenHash, CreatedAt: r.CreatedAt}, nil
}

func (s *PostgresStore) Insert(ctx context.Context, userID int64, tokenHash string, createdAt time.Time) error {
	err := s.insert.Insert(ctx, userID, tokenHash, createdAt)
	if errors.Is(err, gateway.ErrDuplicate) {
		return ErrTokenCollision
	}
	return err
}

func (s *PostgresStore) Delete(ctx context.Context, tokenHash string) error {
	return s.del.Delete(ctx, tokenHash)
}
