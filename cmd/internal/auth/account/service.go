package account

import (
	"context"
	"fmt"
	"strings"
	"time"

	"quill/cmd/identity"
	"quill/cmd/security/password"
)

// DefaultLoginFloor is the minimum time a failed login takes.
const DefaultLoginFloor = 500 * time.Millisecond

// SessionCreator opens a session for a user and returns its token.
type SessionCreator interface {
	Create(ctx context.Context, now time.Time, userID int64) (string, error)
}

// Result is a successful registration or login.
type Result struct {
	UserID int64
	Name   string
	Token  string
}

// Service implements the authentication flow.
type Service struct {
	users    identity.Store
	sessions SessionCreator
	pw       password.Config

	loginFloor time.Duration
	metrics    *Metrics
	now        func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithLoginFloor overrides DefaultLoginFloor.
func WithLoginFloor(d time.Duration) Option {
	return func(s *Service) {
		if d >= 0 {
			s.loginFloor = d
		}
	}
}

// WithMetrics records outcomes into m.
func WithMetrics(m *Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithClock sets the clock used for session timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// NewService wires the credential store, session lifecycle and password config.
func NewService(users identity.Store, sessions SessionCreator, pw password.Config, opts ...Option) *Service {
	s := &Service{
		users:      users,
		sessions:   sessions,
		pw:         pw,
		loginFloor: DefaultLoginFloor,
		now:        func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Register creates an account and opens a session for it.
//
// Input faults return *ValidationError; a taken email returns
// ErrAlreadyRegistered. Anything else is an unexpected fault.
func (s *Service) Register(ctx context.Context, in RegisterInput) (Result, error) {
	in, err := ValidateRegistration(in, s.pw)
	if err != nil {
		s.metrics.registration("invalid")
		return Result{}, err
	}

	exists, err := s.users.EmailExists(ctx, in.Email)
	if err != nil {
		s.metrics.registration("error")
		return Result{}, fmt.Errorf("account: register: %w", err)
	}
	if exists {
		s.metrics.registration("duplicate")
		return Result{}, ErrAlreadyRegistered
	}

	hash, err := s.pw.Hash(in.Password)
	if err != nil {
		s.metrics.registration("error")
		return Result{}, fmt.Errorf("account: register: %w", err)
	}

	u, err := s.users.CreateUser(ctx, identity.CreateUserInput{Name: in.Name, Email: in.Email, PasswordHash: hash})
	if err != nil {
		// The unique constraint catches registrations racing past the existence check.
		if identity.IsConflict(err) {
			s.metrics.registration("duplicate")
			return Result{}, ErrAlreadyRegistered
		}
		s.metrics.registration("error")
		return Result{}, fmt.Errorf("account: register: %w", err)
	}

	tok, err := s.sessions.Create(ctx, s.now(), u.ID)
	if err != nil {
		s.metrics.registration("error")
		return Result{}, fmt.Errorf("account: register session: %w", err)
	}

	s.metrics.registration("ok")
	return Result{UserID: u.ID, Name: u.Name, Token: tok}, nil
}

// Login verifies credentials and opens a session.
//
// Unknown email and wrong password both yield ErrInvalidCredentials, returned
// no earlier than the login floor after the lookup started.
func (s *Service) Login(ctx context.Context, email, pw string) (Result, error) {
	email = strings.TrimSpace(email)
	if err := ValidateLogin(email, pw); err != nil {
		return Result{}, err
	}

	start := time.Now()
	floor := time.NewTimer(s.loginFloor)
	defer floor.Stop()

	fail := func() (Result, error) {
		select {
		case <-floor.C:
		case <-ctx.Done():
			return Result{}, ctx.Err()
		}
		s.metrics.login("invalid", time.Since(start).Seconds())
		return Result{}, ErrInvalidCredentials
	}

	u, err := s.users.GetUserAuthByEmail(ctx, email)
	switch {
	case identity.IsNotFound(err):
		// Burn a comparable bcrypt verification for unknown emails.
		_, _ = s.pw.Verify(s.pw.DummyHash(), pw)
		return fail()
	case err != nil:
		s.metrics.login("error", time.Since(start).Seconds())
		return Result{}, fmt.Errorf("account: login: %w", err)
	}

	// A malformed stored hash fails like a wrong password.
	if ok, _ := s.pw.Verify(u.PasswordHash, pw); !ok {
		return fail()
	}

	tok, err := s.sessions.Create(ctx, s.now(), u.ID)
	if err != nil {
		s.metrics.login("error", time.Since(start).Seconds())
		return Result{}, fmt.Errorf("account: login session: %w", err)
	}

	s.metrics.login("ok", time.Since(start).Seconds())
	return Result{UserID: u.ID, Name: u.Name, Token: tok}, nil
}
