package session

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"quill/cmd/security/token"
)

// maxTokenLen bounds presented tokens before hashing.
const maxTokenLen = 512

// TokenSource generates the plain token for a new session.
type TokenSource func(nBytes int) (string, error)

// Service implements create, validate and destroy for quill sessions.
type Service struct {
	cfg      Config
	store    Store
	hasher   token.Hasher
	newToken TokenSource
	metrics  *Metrics
}

// Option configures a Service.
type Option func(*Service)

// WithHasher sets how tokens are digested before they reach the store.
func WithHasher(h token.Hasher) Option {
	return func(s *Service) { s.hasher = h }
}

// WithTokenSource replaces the crypto/rand token generator.
func WithTokenSource(src TokenSource) Option {
	return func(s *Service) {
		if src != nil {
			s.newToken = src
		}
	}
}

// WithMetrics records lifecycle counters into m.
func WithMetrics(m *Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// NewService constructs a Service. Zero config fields fall back to DefaultConfig.
func NewService(cfg Config, store Store, opts ...Option) *Service {
	def := DefaultConfig()
	if cfg.TTL <= 0 {
		cfg.TTL = def.TTL
	}
	if cfg.MaxAllocAttempts <= 0 {
		cfg.MaxAllocAttempts = def.MaxAllocAttempts
	}
	if cfg.TokenBytes <= 0 {
		cfg.TokenBytes = def.TokenBytes
	}
	if cfg.CookieName == "" {
		cfg.CookieName = def.CookieName
	}

	s := &Service{cfg: cfg, store: store, newToken: newOpaqueToken}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Config returns the effective configuration.
func (s *Service) Config() Config { return s.cfg }

// Create allocates a fresh session for userID and returns the plain token.
//
// A generated token whose digest matches an active session, or whose insert
// hits the unique constraint, is discarded and regenerated. After
// MaxAllocAttempts such collisions Create returns ErrSessionAllocation.
func (s *Service) Create(ctx context.Context, now time.Time, userID int64) (string, error) {
	since := now.Add(-s.cfg.TTL)

	for attempt := 0; attempt < s.cfg.MaxAllocAttempts; attempt++ {
		plain, err := s.newToken(s.cfg.TokenBytes)
		if err != nil {
			return "", fmt.Errorf("session: generate token: %w", err)
		}
		hash := s.hasher.Hash(plain)

		_, err = s.store.Active(ctx, hash, since)
		switch {
		case err == nil:
			s.metrics.incCollision()
			continue
		case !errors.Is(err, ErrSessionNotFound):
			return "", err
		}

		err = s.store.Insert(ctx, userID, hash, now)
		if errors.Is(err, ErrTokenCollision) {
			s.metrics.incCollision()
			continue
		}
		if err != nil {
			return "", err
		}

		s.metrics.incCreated()
		return plain, nil
	}

	s.metrics.incAllocationFailure()
	return "", ErrSessionAllocation
}

// Validate returns the user id bound to an active session token.
// Empty, unknown and expired tokens all yield ErrNoActiveSession.
func (s *Service) Validate(ctx context.Context, now time.Time, tok string) (int64, error) {
	row, err := s.active(ctx, now, tok)
	if err != nil {
		if errors.Is(err, ErrNoActiveSession) {
			s.metrics.incValidation("none")
		} else {
			s.metrics.incValidation("error")
		}
		return 0, err
	}
	s.metrics.incValidation("active")
	return row.UserID, nil
}

// Destroy deletes the session if it is active. Destroying an unknown or
// expired token is a no-op.
func (s *Service) Destroy(ctx context.Context, now time.Time, tok string) error {
	row, err := s.active(ctx, now, tok)
	if errors.Is(err, ErrNoActiveSession) {
		return nil
	}
	if err != nil {
		return err
	}
	if err := s.store.Delete(ctx, row.TokenHash); err != nil {
		return err
	}
	s.metrics.incDestroyed()
	return nil
}

func (s *Service) active(ctx context.Context, now time.Time, tok string) (Row, error) {
	tok = strings.TrimSpace(tok)
	if tok == "" || len(tok) > maxTokenLen {
		return Row{}, ErrNoActiveSession
	}

	row, err := s.store.Active(ctx, s.hasher.Hash(tok), now.Add(-s.cfg.TTL))
	if errors.Is(err, ErrSessionNotFound) {
		return Row{}, ErrNoActiveSession
	}
	if err != nil {
		return Row{}, err
	}
	return row, nil
}

func newOpaqueToken(nBytes int) (string, error) {
	b := make([]byte, nBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	// URL-safe, no padding.
	return base64.RawURLEncoding.EncodeToString(b), nil
}
