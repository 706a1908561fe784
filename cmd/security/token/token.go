package token

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"os"
	"strings"
)

var (
	ErrHMACKeyMissing  = errors.New("token: " + HMACEnvKey + " is not set")
	ErrHMACKeyTooShort = errors.New("token: " + HMACEnvKey + " is too short")
)

const (
	// HMACEnvKey is the env var name for the token HMAC secret.
	// #nosec G101 -- not a credential; it's an environment variable name.
	HMACEnvKey = "QUILL_TOKEN_HMAC_KEY"
)

// HashSHA256Hex returns a SHA-256 hex digest of s.
func HashSHA256Hex(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}

// HashHMACSHA256Hex returns an HMAC-SHA256 hex digest of s using key.
func HashHMACSHA256Hex(s string, key []byte) string {
	m := hmac.New(sha256.New, key)
	_, _ = m.Write([]byte(s))
	return hex.EncodeToString(m.Sum(nil))
}

// HMACKeyFromEnv returns the trimmed key bytes. A blank key is
// ErrHMACKeyMissing and one shorter than minBytes is ErrHMACKeyTooShort.
func HMACKeyFromEnv(minBytes int) ([]byte, error) {
	raw := strings.TrimSpace(os.Getenv(HMACEnvKey))
	if raw == "" {
		return nil, ErrHMACKeyMissing
	}
	b := []byte(raw)
	if minBytes > 0 && len(b) < minBytes {
		return nil, ErrHMACKeyTooShort
	}
	return b, nil
}

// Hasher turns session tokens into the digest stored in the sessions table.
// The zero value hashes with plain SHA-256.
type Hasher struct {
	key []byte
}

// NewHasher returns a Hasher using HMAC-SHA256 with key, or SHA-256 when key is empty.
func NewHasher(key []byte) Hasher {
	if len(key) == 0 {
		return Hasher{}
	}
	return Hasher{key: append([]byte(nil), key...)}
}

// HasherFromEnv builds a Hasher from QUILL_TOKEN_HMAC_KEY.
// With requireHMAC the key must be present and at least minBytes long;
// otherwise a missing key falls back to SHA-256 for local development.
func HasherFromEnv(requireHMAC bool, minBytes int) (Hasher, error) {
	key, err := HMACKeyFromEnv(minBytes)
	switch {
	case err == nil:
		return NewHasher(key), nil
	case !requireHMAC && errors.Is(err, ErrHMACKeyMissing):
		return Hasher{}, nil
	default:
		return Hasher{}, err
	}
}

// HMAC reports whether the hasher is keyed.
func (h Hasher) HMAC() bool { return len(h.key) > 0 }

// Hash returns the 64-char hex digest of tok.
func (h Hasher) Hash(tok string) string {
	if len(h.key) == 0 {
		return HashSHA256Hex(tok)
	}
	return HashHMACSHA256Hex(tok, h.key)
}
