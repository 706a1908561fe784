package session

import (
	"context"
	"testing"
	"time"

	"quill/cmd/internal/gateway/gatewaytest"
)

// Integration tests are enabled when QUILL_DATABASE_URL is set.
// In non-CI runs, unreachable Postgres skips these tests to keep local runs fast.

func TestPostgresSession_CreateValidateDestroy(t *testing.T) {
	t.Parallel()

	pools := gatewaytest.Open(t)
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	userID, err := pools.InsertUsers().Insert(ctx, "Session Owner", "owner@example.com", "$2a$10$x")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}

	svc := NewService(DefaultConfig(), NewGatewayStore(pools))

	// Postgres keeps microseconds.
	now := time.Now().UTC().Truncate(time.Microsecond)

	tok, err := svc.Create(ctx, now, userID)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := svc.Validate(ctx, now.Add(time.Hour), tok)
	if err != nil {
		t.Fatalf("validate at ttl: %v", err)
	}
	if got != userID {
		t.Fatalf("user id mismatch: got %d want %d", got, userID)
	}

	if _, err := svc.Validate(ctx, now.Add(time.Hour+time.Second), tok); err != ErrNoActiveSession {
		t.Fatalf("expected ErrNoActiveSession after ttl, got %v", err)
	}

	if err := svc.Destroy(ctx, now.Add(time.Minute), tok); err != nil {
		t.Fatalf("destroy: %v", err)
	}
	if err := svc.Destroy(ctx, now.Add(time.Minute), tok); err != nil {
		t.Fatalf("second destroy: %v", err)
	}
	if _, err := svc.Validate(ctx, now.Add(time.Minute), tok); err != ErrNoActiveSession {
		t.Fatalf("expected ErrNoActiveSession after destroy, got %v", err)
	}
}

func TestPostgresSession_DuplicateHashIsCollision(t *testing.T) {
	t.Parallel()

	pools := gatewaytest.Open(t)
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	userID, err := pools.InsertUsers().Insert(ctx, "Dup", "dup@example.com", "$2a$10$x")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}

	store := NewGatewayStore(pools)
	now := time.Now().UTC()
	hash := "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"

	if err := store.Insert(ctx, userID, hash, now); err != nil {
		t.Fatalf("first insert: %v", err)
	}
	if err := store.Insert(ctx, userID, hash, now); err != ErrTokenCollision {
		t.Fatalf("expected ErrTokenCollision, got %v", err)
	}
}
