// Package gatewaytest opens real privilege-scoped pools against a throwaway
// schema for integration tests. Tests skip unless QUILL_DATABASE_URL is set.
package gatewaytest

import (
	"context"
	"crypto/rand"
	"errors"
	"net"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/oklog/ulid/v2"

	"quill/cmd/internal/gateway"
)

// EnvDatabaseURL names the DSN used by integration tests. Every privilege class
// connects with the DSN's own user, so the role must own the test schema.
const EnvDatabaseURL = "QUILL_DATABASE_URL"

const schemaSQL = `
CREATE TABLE users (
  id BIGSERIAL PRIMARY KEY,
  name TEXT NOT NULL,
  email TEXT NOT NULL UNIQUE,
  password TEXT NOT NULL
);

CREATE TABLE sessions (
  user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
  session_id TEXT NOT NULL UNIQUE,
  created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE posts (
  id BIGSERIAL PRIMARY KEY,
  user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
  title TEXT NOT NULL,
  content TEXT NOT NULL,
  created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
  edited BOOLEAN NOT NULL DEFAULT false
);

CREATE TABLE comments (
  id BIGSERIAL PRIMARY KEY,
  post_id BIGINT NOT NULL REFERENCES posts(id) ON DELETE CASCADE,
  user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
  content TEXT NOT NULL,
  created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
`

// Open creates a fresh schema, applies the blog tables and returns pools
// bound to it. The schema is dropped and the pools closed on test cleanup.
func Open(t *testing.T) *gateway.Pools {
	t.Helper()

	raw := strings.TrimSpace(os.Getenv(EnvDatabaseURL))
	if raw == "" {
		t.Skipf("integration test skipped: %s is not set", EnvDatabaseURL)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	admin, err := pgxpool.New(ctx, raw)
	if err != nil {
		t.Fatalf("connect postgres: %v", err)
	}
	if err := admin.Ping(ctx); err != nil {
		admin.Close()
		if ShouldSkip(err) {
			t.Skipf("integration test skipped: Postgres unreachable (%s set): %v", EnvDatabaseURL, err)
		}
		t.Fatalf("ping: %v", err)
	}

	schema := "quill_it_" + strings.ToLower(ulid.MustNew(ulid.Now(), rand.Reader).String())
	ident := pgx.Identifier{schema}.Sanitize()
	if _, err := admin.Exec(ctx, `CREATE SCHEMA `+ident); err != nil {
		admin.Close()
		t.Fatalf("create schema: %v", err)
	}
	if _, err := admin.Exec(ctx, `SET search_path TO `+ident+`; `+schemaSQL); err != nil {
		dropSchema(admin, ident)
		admin.Close()
		t.Fatalf("apply schema: %v", err)
	}

	cc := admin.Config().ConnConfig
	creds := make(map[gateway.Class]gateway.Credential, len(gateway.Classes()))
	for _, c := range gateway.Classes() {
		creds[c] = gateway.Credential{User: cc.User, Password: cc.Password}
	}

	pools, err := gateway.Open(ctx, gateway.Config{
		DatabaseURL: raw,
		Credentials: creds,
		Schema:      schema,
		MaxConns:    4,
	})
	if err != nil {
		dropSchema(admin, ident)
		admin.Close()
		t.Fatalf("open gateway: %v", err)
	}

	t.Cleanup(func() {
		pools.Close()
		dropSchema(admin, ident)
		admin.Close()
	})
	return pools
}

func dropSchema(pool *pgxpool.Pool, ident string) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_, _ = pool.Exec(ctx, `DROP SCHEMA IF EXISTS `+ident+` CASCADE`)
}

// ShouldSkip reports whether err means Postgres is simply not reachable.
// In CI nothing is skipped.
func ShouldSkip(err error) bool {
	if err == nil {
		return false
	}
	if os.Getenv("CI") != "" {
		return false
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return true
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "connection refused") ||
		strings.Contains(msg, "context deadline exceeded") ||
		strings.Contains(msg, "timeout") ||
		strings.Contains(msg, "dial tcp") ||
		strings.Contains(msg, "no such host")
}
