package web

import (
	"net/http"
	"strings"
	"time"
)

// Cookies carries the attributes shared by every cookie the app sets.
type Cookies struct {
	Path   string
	Domain string
	Secure bool
}

func (c Cookies) path() string {
	if c.Path == "" {
		return "/"
	}
	return c.Path
}

// Set writes an HttpOnly cookie living maxAge.
func (c Cookies) Set(w http.ResponseWriter, name, value string, maxAge time.Duration, sameSite http.SameSite) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     c.path(),
		Domain:   c.Domain,
		MaxAge:   int(maxAge / time.Second),
		Expires:  time.Now().Add(maxAge).UTC(),
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: sameSite,
	})
}

// Expire clears a cookie on the client.
func (c Cookies) Expire(w http.ResponseWriter, name string) {
	if w == nil || strings.TrimSpace(name) == "" {
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     c.path(),
		Domain:   c.Domain,
		Expires:  time.Unix(0, 0).UTC(),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   c.Secure,
	})
}

// Value returns the trimmed value of a cookie, or "" when absent.
func Value(r *http.Request, name string) string {
	c, err := r.Cookie(name)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(c.Value)
}
