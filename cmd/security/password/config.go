package password

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// Policy controls the strength rules and the bcrypt input boundary.
type Policy struct {
	MinLength int
	// MaxBytes caps the input handed to bcrypt, which ignores anything past 72 bytes.
	MaxBytes int
}

// Config is the single configuration surface for this package.
type Config struct {
	Cost   int
	Policy Policy
}

// DefaultConfig returns cost 10 and the registration strength rules.
func DefaultConfig() Config {
	return Config{
		Cost: bcrypt.DefaultCost,
		Policy: Policy{
			MinLength: 8,
			MaxBytes:  72,
		},
	}
}

// FromEnv loads config from environment variables.
//
// Env surface:
// - QUILL_BCRYPT_COST
// - QUILL_PASSWORD_MIN_LEN
func FromEnv() (Config, error) {
	cfg := DefaultConfig()

	if v, ok := os.LookupEnv("QUILL_BCRYPT_COST"); ok {
		n, err := atoiPositiveInt(v, bcrypt.MinCost, bcrypt.MaxCost)
		if err != nil {
			return Config{}, fmt.Errorf("QUILL_BCRYPT_COST: %w", err)
		}
		cfg.Cost = n
	}

	if v, ok := os.LookupEnv("QUILL_PASSWORD_MIN_LEN"); ok {
		n, err := atoiPositiveInt(v, 1, 72)
		if err != nil {
			return Config{}, fmt.Errorf("QUILL_PASSWORD_MIN_LEN: %w", err)
		}
		cfg.Policy.MinLength = n
	}

	return cfg, nil
}

func atoiPositiveInt(s string, minVal, maxVal int) (int, error) {
	s = strings.TrimSpace(s)
	i64, err := strconv.ParseInt(s, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("not an integer")
	}

	i := int(i64)
	if i < minVal || i > maxVal {
		return 0, fmt.Errorf("out of range [%d..%d]", minVal, maxVal)
	}
	return i, nil
}
