package web

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
)

// HTTPError is a fault with a status and a message safe to show the client.
type HTTPError struct {
	Status  int
	Message string
	Err     error
}

func (e *HTTPError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return fmt.Sprintf("http %d: %s: %v", e.Status, e.Message, e.Err)
	}
	return fmt.Sprintf("http %d: %s", e.Status, e.Message)
}

func (e *HTTPError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func Errorf(status int, format string, args ...any) *HTTPError {
	return &HTTPError{Status: status, Message: fmt.Sprintf(format, args...)}
}

func BadRequest(msg string) *HTTPError   { return &HTTPError{Status: http.StatusBadRequest, Message: msg} }
func Unauthorized(msg string) *HTTPError { return &HTTPError{Status: http.StatusUnauthorized, Message: msg} }
func NotFound(msg string) *HTTPError     { return &HTTPError{Status: http.StatusNotFound, Message: msg} }

var statusTitles = map[int]string{
	http.StatusBadRequest:          "Bad Request",
	http.StatusUnauthorized:        "Unauthorized request",
	http.StatusForbidden:           "Forbidden",
	http.StatusNotFound:            "Not Found",
	http.StatusMethodNotAllowed:    "Method Not Allowed",
	http.StatusRequestTimeout:      "Request Timeout",
	http.StatusTooManyRequests:     "Too Many Requests",
	http.StatusInternalServerError: "Internal Server Error",
	http.StatusBadGateway:          "Bad Gateway",
	http.StatusServiceUnavailable:  "Service Unavailable",
	http.StatusGatewayTimeout:      "Gateway Timeout",
}

// StatusTitle is the short human label for an error status.
func StatusTitle(status int) string {
	if t, ok := statusTitles[status]; ok {
		return t
	}
	return http.StatusText(status)
}

// ErrorView builds the error page for err. Anything that is not an
// HTTPError becomes a bare 500 without detail.
func ErrorView(err error) ErrorPage {
	var he *HTTPError
	if !errors.As(err, &he) || he == nil || he.Status < 400 {
		return ErrorPage{
			Status:  http.StatusInternalServerError,
			Title:   strconv.Itoa(http.StatusInternalServerError),
			Message: StatusTitle(http.StatusInternalServerError),
		}
	}
	p := ErrorPage{
		Status:  he.Status,
		Title:   strconv.Itoa(he.Status),
		Message: StatusTitle(he.Status),
	}
	if he.Status < 500 {
		p.Detail = he.Message
	}
	return p
}

// NotFoundPage is the fallback for unknown routes.
func NotFoundPage() ErrorPage {
	return ErrorPage{
		Status:  http.StatusNotFound,
		Title:   "404 - Page Not Found",
		Message: "The page you are looking for does not exist",
	}
}

// WriteError renders the error page for err. Server faults are logged.
func WriteError(w http.ResponseWriter, r *http.Request, rnd Renderer, log *slog.Logger, err error) {
	p := ErrorView(err)
	if p.Status >= 500 && log != nil {
		log.Error("http.error", "path", r.URL.Path, "status", p.Status, "err", err)
	}
	Render(w, r, rnd, log, p.Status, p)
}

// Render calls rnd and logs a failed write.
func Render(w http.ResponseWriter, r *http.Request, rnd Renderer, log *slog.Logger, status int, v View) {
	if rnd == nil {
		rnd = JSONRenderer{}
	}
	if err := rnd.Render(w, r, status, v); err != nil && log != nil {
		log.Warn("http.render.fail", "view", v.ViewName(), "err", err)
	}
}

// Fallback answers unknown routes with the 404 page.
func Fallback(rnd Renderer, log *slog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		Render(w, r, rnd, log, http.StatusNotFound, NotFoundPage())
	})
}
