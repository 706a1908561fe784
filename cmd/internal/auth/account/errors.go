package account

import (
	"errors"
	"strings"
)

var (
	// ErrAlreadyRegistered is returned when the email is taken, whether the
	// existence check or the unique constraint caught it.
	ErrAlreadyRegistered = errors.New("account: email already registered")

	// ErrInvalidCredentials is the single login failure for unknown email and wrong password.
	ErrInvalidCredentials = errors.New("account: invalid credentials")
)

// User-facing messages.
const (
	MsgFillAllRegister   = "Please fill out all the fields"
	MsgFillAllLogin      = "Please fill in all fields"
	MsgCaptcha           = "Please complete CAPTCHA."
	MsgInvalidName       = "Name input is invalid or contains illegal characters, please make sure to only use English alphabet letters (A-Z and a-z) and/or numbers (0-9), with exception for couple of approved special characters such as periods (.), hyphens (-), and spaces."
	MsgInvalidEmail      = "Invalid email address, please enter a valid email address"
	MsgInvalidLoginEmail = "Not a valid email address format."
	MsgPasswordMismatch  = "Passwords do not match, please check your password and try again"
	MsgWeakPassword      = "Weak password, please ensure your password:"
	MsgAlreadyRegistered = "This email address is already registered"
	MsgInvalidLogin      = "User does not exist with those details."
)

// ValidationError is a user-input fault. It carries the message to show, any
// failing password rules, and the name/email to redisplay in the form.
type ValidationError struct {
	Message string
	Reasons []string
	Name    string
	Email   string
}

func (e *ValidationError) Error() string {
	if len(e.Reasons) == 0 {
		return "account: " + e.Message
	}
	return "account: " + e.Message + " " + strings.Join(e.Reasons, "; ")
}

// IsValidation reports whether err is a *ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
