package authapi

import (
	"net"
	"net/http"
	"strings"
	"time"

	"quill/cmd/internal/web"
)

func (h *Handler) setSessionCookie(w http.ResponseWriter, token string) {
	h.cookies.Set(w, h.sessCfg.CookieName, token, h.sessCfg.TTL, http.SameSiteLaxMode)
}

func (h *Handler) clearSessionCookie(w http.ResponseWriter) {
	h.cookies.Expire(w, h.sessCfg.CookieName)
}

func (h *Handler) sessionToken(r *http.Request) string {
	return web.Value(r, h.sessCfg.CookieName)
}

func (h *Handler) now() time.Time { return h.clock().UTC() }

func clientIP(r *http.Request, trustProxy bool) net.IP {
	if trustProxy {
		if ip := parseForwardedIP(r.Header.Get("X-Forwarded-For")); ip != nil {
			return ip
		}
		if ip := net.ParseIP(strings.TrimSpace(r.Header.Get("X-Real-IP"))); ip != nil {
			return ip
		}
	}
	host, _, err := net.SplitHostPort(strings.TrimSpace(r.RemoteAddr))
	if err == nil {
		if ip := net.ParseIP(host); ip != nil {
			return ip
		}
	}
	return nil
}

func parseForwardedIP(raw string) net.IP {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	for _, p := range parts {
		if ip := net.ParseIP(strings.TrimSpace(p)); ip != nil {
			return ip
		}
	}
	return nil
}

func ipKey(ip net.IP) string {
	if ip == nil {
		return ""
	}
	return ip.String()
}
