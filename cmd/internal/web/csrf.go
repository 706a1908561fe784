package web

import (
	"crypto/subtle"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// Anti-forgery cookie names, one per form family.
const (
	FormTokenCookie    = "form_csrfToken"
	DeleteTokenCookie  = "del_csrfToken"
	CommentTokenCookie = "comment_csrfToken"

	// TokenField is the hidden form field echoing the cookie.
	TokenField = "_csrf"

	TokenMaxAge = time.Hour
)

// MsgTokenMismatch is shown when a submission fails the double-submit check.
const MsgTokenMismatch = "Illegal form submission, CSRF token did not match"

// Tokens issues and checks double-submit anti-forgery tokens.
type Tokens struct {
	Cookies Cookies
	// NewToken defaults to a random uuid.
	NewToken func() (string, error)
}

func (t Tokens) newToken() (string, error) {
	if t.NewToken != nil {
		return t.NewToken()
	}
	id, err := uuid.NewRandom()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

// Issue mints a token, stores it in the named cookie and returns it for the form.
func (t Tokens) Issue(w http.ResponseWriter, cookie string) (string, error) {
	tok, err := t.newToken()
	if err != nil {
		return "", err
	}
	t.Cookies.Set(w, cookie, tok, TokenMaxAge, http.SameSiteStrictMode)
	return tok, nil
}

// Verify compares the named cookie with the submitted form field. On mismatch
// the cookie is cleared and a 401 HTTPError is returned. The caller must have
// parsed the form or let PostFormValue parse it.
func (t Tokens) Verify(w http.ResponseWriter, r *http.Request, cookie string) (string, error) {
	got := r.PostFormValue(TokenField)
	want := Value(r, cookie)
	if !SecureEqual(got, want) {
		t.Cookies.Expire(w, cookie)
		return "", Unauthorized(MsgTokenMismatch)
	}
	return got, nil
}

// Clear drops a consumed token.
func (t Tokens) Clear(w http.ResponseWriter, cookie string) {
	t.Cookies.Expire(w, cookie)
}

// SecureEqual is a constant-time comparison that never matches empty values.
func SecureEqual(a, b string) bool {
	if len(a) == 0 || len(b) == 0 || len(a) != len(b) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
