package account

import (
	"regexp"
	"strings"

	"quill/cmd/security/password"
)

var (
	nameIllegalRe = regexp.MustCompile(`[^A-Za-z0-9.\-\s]`)
	emailShapeRe  = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
)

// RegisterInput is the raw registration form.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Confirm  string
}

// ValidateRegistration trims every field and applies the registration rules in
// order. It returns the trimmed input or the first *ValidationError.
func ValidateRegistration(in RegisterInput, pw password.Config) (RegisterInput, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	in.Password = strings.TrimSpace(in.Password)
	in.Confirm = strings.TrimSpace(in.Confirm)

	fail := func(msg string) error {
		return &ValidationError{Message: msg, Name: in.Name, Email: in.Email}
	}

	if in.Name == "" || in.Email == "" || in.Password == "" || in.Confirm == "" {
		return in, fail(MsgFillAllRegister)
	}
	if nameIllegalRe.MatchString(in.Name) {
		return in, &ValidationError{
			Message: MsgInvalidName,
			Name:    SanitizeName(in.Name),
			Email:   in.Email,
		}
	}
	if !ValidEmail(in.Email) {
		return in, fail(MsgInvalidEmail)
	}
	if in.Password != in.Confirm {
		return in, fail(MsgPasswordMismatch)
	}
	if err := pw.Validate(in.Password); err != nil {
		return in, &ValidationError{Message: MsgWeakPassword, Reasons: pw.Check(in.Password), Name: in.Name, Email: in.Email}
	}
	return in, nil
}

// ValidateLogin checks presence and email shape of a login form.
func ValidateLogin(email, pw string) error {
	if email == "" || pw == "" {
		return &ValidationError{Message: MsgFillAllLogin, Email: email}
	}
	if !ValidEmail(email) {
		return &ValidationError{Message: MsgInvalidLoginEmail, Email: email}
	}
	return nil
}

// ValidEmail reports whether s has the local@domain.tld shape.
func ValidEmail(s string) bool { return emailShapeRe.MatchString(s) }

// SanitizeName strips every character outside the name allow-list.
func SanitizeName(s string) string { return nameIllegalRe.ReplaceAllString(s, "") }
