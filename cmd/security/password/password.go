package password

import (
	"errors"
	"fmt"
	"sync"

	"golang.org/x/crypto/bcrypt"
)

// Hash hashes a password with bcrypt at the configured cost.
// Strength rules are not applied here; callers run Check first.
func (c Config) Hash(pw string) (string, error) {
	if c.Policy.MaxBytes > 0 && len(pw) > c.Policy.MaxBytes {
		return "", ErrPasswordTooLong
	}
	cost := c.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	b, err := bcrypt.GenerateFromPassword([]byte(pw), cost)
	if err != nil {
		return "", fmt.Errorf("bcrypt: %w", err)
	}
	return string(b), nil
}

// Verify checks whether pw matches the given bcrypt hash.
// Returns (true, nil) for a match, (false, nil) for mismatch,
// and (false, ErrInvalidHash) for malformed hashes.
func (c Config) Verify(encodedHash, pw string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(encodedHash), []byte(pw))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return false, ErrInvalidHash
	}
}

// dummyHashes maps cost -> *dummyHash.
var dummyHashes sync.Map

type dummyHash struct {
	once sync.Once
	hash string
}

// DummyHash returns a valid bcrypt hash at the configured cost that matches no
// real password. Comparing against it costs the same as a real verification.
func (c Config) DummyHash() string {
	cost := c.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	v, _ := dummyHashes.LoadOrStore(cost, &dummyHash{})
	d := v.(*dummyHash)
	d.once.Do(func() {
		b, err := bcrypt.GenerateFromPassword([]byte("quill-dummy-password"), cost)
		if err == nil {
			d.hash = string(b)
		}
	})
	return d.hash
}
