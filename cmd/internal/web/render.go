package web

import (
	"encoding/json"
	"net/http"
)

// Renderer turns a view record into a response body. Implementations must
// write the status themselves.
type Renderer interface {
	Render(w http.ResponseWriter, r *http.Request, status int, v View) error
}

// RendererFunc adapts a function to Renderer.
type RendererFunc func(w http.ResponseWriter, r *http.Request, status int, v View) error

func (f RendererFunc) Render(w http.ResponseWriter, r *http.Request, status int, v View) error {
	return f(w, r, status, v)
}

// Envelope is the JSONRenderer body.
type Envelope struct {
	View string `json:"view"`
	Data View   `json:"data"`
}

// JSONRenderer writes {"view": name, "data": record}.
type JSONRenderer struct{}

func (JSONRenderer) Render(w http.ResponseWriter, _ *http.Request, status int, v View) error {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(Envelope{View: v.ViewName(), Data: v})
}
