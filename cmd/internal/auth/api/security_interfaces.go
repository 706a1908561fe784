package authapi

import (
	"context"
	"errors"
	"net"
	"strings"
)

// CaptchaField is the form field carrying the widget response.
const CaptchaField = "g-recaptcha-response"

var (
	// ErrCaptchaRequired indicates captcha is enabled but token is missing.
	ErrCaptchaRequired = errors.New("captcha token required")
	// ErrCaptchaInvalid indicates captcha verification failed.
	ErrCaptchaInvalid = errors.New("captcha invalid")
)

// CaptchaVerifier verifies user-provided captcha tokens.
//
// Only presence of the token is enforced by default; provider checks plug in here.
type CaptchaVerifier interface {
	Verify(ctx context.Context, token string, ip net.IP) error
}

// NoopCaptchaVerifier accepts any non-empty token.
type NoopCaptchaVerifier struct{}

func (NoopCaptchaVerifier) Verify(_ context.Context, _ string, _ net.IP) error { return nil }

func normalizeCaptchaToken(raw string) string { return strings.TrimSpace(raw) }

func (h *Handler) enforceCaptcha(ctx context.Context, token string, ip net.IP) error {
	if !h.cfg.CaptchaEnabled {
		return nil
	}
	token = normalizeCaptchaToken(token)
	if token == "" {
		return ErrCaptchaRequired
	}
	if err := h.captcha.Verify(ctx, token, ip); err != nil {
		return errors.Join(ErrCaptchaInvalid, err)
	}
	return nil
}
