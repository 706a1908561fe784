package app

import (
	"errors"
	"fmt"

	"quill/cmd/security/token"
)

const minHMACKeyBytes = 32

// sessionHasher builds the hasher for session tokens at rest and enforces the
// HMAC policy. Startup fails rather than silently hashing with plain SHA-256
// when the policy requires a key.
func sessionHasher(cfg Config) (token.Hasher, error) {
	h, err := token.HasherFromEnv(cfg.RequireTokenHMAC, minHMACKeyBytes)
	switch {
	case errors.Is(err, token.ErrHMACKeyMissing):
		return token.Hasher{}, fmt.Errorf("security policy: QUILL_REQUIRE_TOKEN_HMAC=true but %s is missing", token.HMACEnvKey)
	case errors.Is(err, token.ErrHMACKeyTooShort):
		return token.Hasher{}, fmt.Errorf("security policy: %s is too short (min %d bytes)", token.HMACEnvKey, minHMACKeyBytes)
	case err != nil:
		return token.Hasher{}, err
	}

	if cfg.RequireTokenHMAC && !h.HMAC() {
		return token.Hasher{}, errors.New("security policy: token hasher is not in HMAC mode")
	}
	return h, nil
}
