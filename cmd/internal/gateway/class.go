package gateway

import (
	"fmt"
	"regexp"
	"strings"
)

// Class is a database privilege class. Each class maps to one role and one pool.
type Class int

const (
	ClassReadOnlyUsers Class = iota
	ClassInsertUsers
	ClassReadOnlySessions
	ClassInsertSessions
	ClassDeleteSessions
	ClassReadOnlyPosts
	ClassInsertUpdatePosts
	ClassDeletePosts
)

var classNames = [...]string{
	ClassReadOnlyUsers:     "readonly_users",
	ClassInsertUsers:       "insert_users",
	ClassReadOnlySessions:  "readonly_sessions",
	ClassInsertSessions:    "insert_sessions",
	ClassDeleteSessions:    "delete_sessions",
	ClassReadOnlyPosts:     "readonly_posts",
	ClassInsertUpdatePosts: "insert_update_posts",
	ClassDeletePosts:       "delete_posts",
}

// Classes returns every privilege class in a stable order.
func Classes() []Class {
	out := make([]Class, 0, len(classNames))
	for c := range classNames {
		out = append(out, Class(c))
	}
	return out
}

func (c Class) String() string {
	if c < 0 || int(c) >= len(classNames) {
		return fmt.Sprintf("class(%d)", int(c))
	}
	return classNames[c]
}

// EnvPrefix returns the environment variable prefix holding this class's
// credentials, e.g. QUILL_DB_READONLY_POSTS.
func (c Class) EnvPrefix() string {
	return "QUILL_DB_" + strings.ToUpper(c.String())
}

// Credential is a database role login.
type Credential struct {
	User     string
	Password string
}

// Config configures all privilege-scoped pools.
type Config struct {
	// DatabaseURL carries host, port, database and options. Any user/password in
	// it is replaced by the per-class credential.
	DatabaseURL string

	Credentials map[Class]Credential

	// Schema, when set, becomes the search_path of every connection.
	Schema string

	MaxConns int32
	MinConns int32
}

// Validate reports the first missing piece of configuration.
func (c Config) Validate() error {
	if strings.TrimSpace(c.DatabaseURL) == "" {
		return ErrMissingDatabaseURL
	}
	for _, cl := range Classes() {
		cred, ok := c.Credentials[cl]
		if !ok || strings.TrimSpace(cred.User) == "" {
			return fmt.Errorf("%w: %s", ErrMissingCredential, cl)
		}
	}
	if c.Schema != "" && !pgIdentRe.MatchString(c.Schema) {
		return fmt.Errorf("gateway: invalid schema identifier %q", c.Schema)
	}
	if c.MaxConns > 0 && c.MinConns > c.MaxConns {
		return fmt.Errorf("gateway: min conns (%d) > max conns (%d)", c.MinConns, c.MaxConns)
	}
	return nil
}

var pgIdentRe = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)
