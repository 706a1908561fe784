package password

import (
	"fmt"
	"unicode/utf8"
)

// Rule is one registration strength requirement.
type Rule struct {
	Reason string
	Met    func(pw string) bool
}

// Rules returns the strength rules in display order.
func (c Config) Rules() []Rule {
	minLen := c.Policy.MinLength
	rules := []Rule{
		{
			Reason: fmt.Sprintf("Is at least %d characters long", minLen),
			Met:    func(pw string) bool { return utf8.RuneCountInString(pw) >= minLen },
		},
		{Reason: "Contains at least one number", Met: containsAny(isDigit)},
		{Reason: "Contains at least one lowercase letter", Met: containsAny(isLower)},
		{Reason: "Contains at least one uppercase letter", Met: containsAny(isUpper)},
		{Reason: "Contains at least one special character", Met: containsAny(isSpecial)},
	}
	// bcrypt only reads the first MaxBytes bytes; Hash refuses anything longer.
	if maxBytes := c.Policy.MaxBytes; maxBytes > 0 {
		rules = append(rules, Rule{
			Reason: fmt.Sprintf("Is at most %d bytes long", maxBytes),
			Met:    func(pw string) bool { return len(pw) <= maxBytes },
		})
	}
	return rules
}

// Check returns the reason of every rule pw fails, or nil.
func (c Config) Check(pw string) []string {
	var reasons []string
	for _, r := range c.Rules() {
		if !r.Met(pw) {
			reasons = append(reasons, r.Reason)
		}
	}
	return reasons
}

// Validate checks password policy. It does not mutate input. A password over
// MaxBytes yields ErrPasswordTooLong; any other failed rule ErrWeakPassword.
// Reasons for either come from Check.
func (c Config) Validate(pw string) error {
	if c.Policy.MaxBytes > 0 && len(pw) > c.Policy.MaxBytes {
		return ErrPasswordTooLong
	}
	if len(c.Check(pw)) > 0 {
		return ErrWeakPassword
	}
	return nil
}

func containsAny(pred func(rune) bool) func(string) bool {
	return func(s string) bool {
		for _, r := range s {
			if pred(r) {
				return true
			}
		}
		return false
	}
}

// ASCII classes only; anything outside [A-Za-z0-9] counts as special.
func isDigit(r rune) bool   { return r >= '0' && r <= '9' }
func isLower(r rune) bool   { return r >= 'a' && r <= 'z' }
func isUpper(r rune) bool   { return r >= 'A' && r <= 'Z' }
func isSpecial(r rune) bool { return !isDigit(r) && !isLower(r) && !isUpper(r) }
