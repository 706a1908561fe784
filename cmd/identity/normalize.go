package identity

import "strings"

// NormalizeEmail trims surrounding whitespace. Case is preserved: emails are
// unique exactly as stored.
func NormalizeEmail(s string) string {
	return strings.TrimSpace(s)
}

// NormalizeName trims surrounding whitespace from a display name.
func NormalizeName(s string) string {
	return strings.TrimSpace(s)
}
