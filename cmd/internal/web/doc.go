// Package web holds the pieces shared by every HTML-facing handler: explicit
// view records, the Renderer seam, anti-forgery tokens, error pages and the
// authenticated user id carried in the request context.
package web
