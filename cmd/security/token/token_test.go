package token

import (
	"errors"
	"testing"
)

func TestHasher_ZeroValueIsSHA256(t *testing.T) {
	var h Hasher
	if h.HMAC() {
		t.Fatalf("zero hasher must not be keyed")
	}
	if got, want := h.Hash("abc"), HashSHA256Hex("abc"); got != want {
		t.Fatalf("Hash()=%q want=%q", got, want)
	}
}

func TestHasher_KeyedDiffersFromPlain(t *testing.T) {
	h := NewHasher([]byte("0123456789abcdef0123456789abcdef"))
	if !h.HMAC() {
		t.Fatalf("expected keyed hasher")
	}
	got := h.Hash("abc")
	if len(got) != 64 {
		t.Fatalf("expected 64 hex chars, got %d", len(got))
	}
	if got == HashSHA256Hex("abc") {
		t.Fatalf("keyed digest must differ from plain SHA-256")
	}
	if got != h.Hash("abc") {
		t.Fatalf("digest must be deterministic")
	}
}

func TestHasherFromEnv(t *testing.T) {
	t.Setenv(HMACEnvKey, "")
	h, err := HasherFromEnv(false, 32)
	if err != nil || h.HMAC() {
		t.Fatalf("expected unkeyed fallback, got hmac=%v err=%v", h.HMAC(), err)
	}

	if _, err := HasherFromEnv(true, 32); !errors.Is(err, ErrHMACKeyMissing) {
		t.Fatalf("expected ErrHMACKeyMissing, got %v", err)
	}

	t.Setenv(HMACEnvKey, "short")
	if _, err := HasherFromEnv(false, 32); !errors.Is(err, ErrHMACKeyTooShort) {
		t.Fatalf("expected ErrHMACKeyTooShort, got %v", err)
	}

	t.Setenv(HMACEnvKey, "0123456789abcdef0123456789abcdef")
	h, err = HasherFromEnv(true, 32)
	if err != nil || !h.HMAC() {
		t.Fatalf("expected keyed hasher, got hmac=%v err=%v", h.HMAC(), err)
	}
}
