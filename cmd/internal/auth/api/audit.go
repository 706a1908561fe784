package authapi

import (
	"context"
	"net"
	"strings"
	"time"
)

// Auth events are written to the structured log; there is no audit table.

func (h *Handler) auditLoginFailed(ctx context.Context, ip net.IP, ua, reason string) {
	h.audit(ctx, "auth.login.fail", ip, ua, "reason", reason)
}

func (h *Handler) auditLoginSuccess(ctx context.Context, userID int64, ip net.IP, ua string) {
	h.audit(ctx, "auth.login.ok", ip, ua, "user_id", userID)
}

func (h *Handler) auditRegistered(ctx context.Context, userID int64, ip net.IP, ua string) {
	h.audit(ctx, "auth.register.ok", ip, ua, "user_id", userID)
}

func (h *Handler) auditRateLimited(ctx context.Context, action string, ip net.IP, ua string, retryAfter time.Duration) {
	h.audit(ctx, "auth.rate_limited", ip, ua, "action", action, "retry_after_s", int64(retryAfter.Seconds()))
}

func (h *Handler) auditLogout(ctx context.Context, ip net.IP, ua string) {
	h.audit(ctx, "auth.logout", ip, ua)
}

func (h *Handler) audit(ctx context.Context, action string, ip net.IP, ua string, attrs ...any) {
	if h == nil || h.log == nil {
		return
	}
	ipStr := ""
	if ip != nil {
		ipStr = ip.String()
	}
	if len(ua) > 256 {
		ua = ua[:256]
	}
	args := append([]any{"ip", ipStr, "user_agent", strings.TrimSpace(ua)}, attrs...)
	h.log.InfoContext(ctx, action, args...)
}
