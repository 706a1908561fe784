package app

import (
	"testing"
	"time"

	"quill/cmd/internal/gateway"
	"quill/cmd/security/token"

	"github.com/stretchr/testify/require"
)

func TestLoadConfig_PerClassCredentials(t *testing.T) {
	t.Setenv("QUILL_DATABASE_URL", "postgres://db:5432/blog?sslmode=disable")
	t.Setenv("QUILL_HTTP_READ_TIMEOUT", "3s")
	t.Setenv("QUILL_LOG_FORMAT", "Pretty")
	for _, c := range gateway.Classes() {
		t.Setenv(c.EnvPrefix()+"_USER", c.String())
		t.Setenv(c.EnvPrefix()+"_PASSWORD", "pw-"+c.String())
	}
	t.Setenv("QUILL_DB_DELETE_POSTS_USER", "")

	cfg := LoadConfig()
	require.Equal(t, 3*time.Second, cfg.ReadTimeout)
	require.Equal(t, "pretty", cfg.LogFormat)
	require.Equal(t, "postgres://db:5432/blog?sslmode=disable", cfg.DB.DatabaseURL)
	require.Equal(t, gateway.Credential{User: "readonly_users", Password: "pw-readonly_users"}, cfg.DB.Credentials[gateway.ClassReadOnlyUsers])

	_, ok := cfg.DB.Credentials[gateway.ClassDeletePosts]
	require.False(t, ok)
	require.ErrorIs(t, cfg.DB.Validate(), gateway.ErrMissingCredential)
}

func TestSessionHasher_Policy(t *testing.T) {
	t.Setenv(token.HMACEnvKey, "")
	h, err := sessionHasher(Config{})
	require.NoError(t, err)
	require.False(t, h.HMAC())

	_, err = sessionHasher(Config{RequireTokenHMAC: true})
	require.ErrorContains(t, err, "missing")

	t.Setenv(token.HMACEnvKey, "short")
	_, err = sessionHasher(Config{RequireTokenHMAC: true})
	require.ErrorContains(t, err, "too short")

	t.Setenv(token.HMACEnvKey, "0123456789abcdef0123456789abcdef")
	h, err = sessionHasher(Config{RequireTokenHMAC: true})
	require.NoError(t, err)
	require.True(t, h.HMAC())
}

func TestEnvHelpers_FallBackOnBadValues(t *testing.T) {
	t.Setenv("QUILL_TEST_INT", "-3")
	t.Setenv("QUILL_TEST_INT32", "0")
	t.Setenv("QUILL_TEST_BOOL", "maybe")
	t.Setenv("QUILL_TEST_DUR", "soon")
	t.Setenv("QUILL_TEST_STR", "  padded  ")

	require.Equal(t, 9, EnvInt("QUILL_TEST_INT", 9))
	require.Equal(t, int32(0), EnvInt32("QUILL_TEST_INT32", 4))
	require.True(t, EnvBool("QUILL_TEST_BOOL", true))
	require.Equal(t, time.Second, EnvDuration("QUILL_TEST_DUR", time.Second))
	require.Equal(t, "padded", EnvString("QUILL_TEST_STR", ""))
	require.Equal(t, "def", EnvString("QUILL_TEST_UNSET", "def"))
}
