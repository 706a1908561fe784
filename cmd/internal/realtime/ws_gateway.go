package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"sync"
	"time"

	"quill/cmd/internal/web"

	"github.com/coder/websocket"
)

const (
	wsSubprotocolV1 = "quill.feed.v1"

	wsDefaultSendQueueSize = 64
	wsMinSendQueueSize     = 8

	wsDefaultWriteTimeout = 5 * time.Second
	wsDefaultReadIdle     = 2 * time.Minute
	wsCloseGrace          = 1 * time.Second

	wsMaxPingFailures = 3
)

// WSGateway is the websocket entrypoint for the post feed. It must sit behind
// session authentication: the user id is taken from the request context.
type WSGateway struct {
	log *slog.Logger
	hub *Hub
	cfg Config

	// Derived for websocket.Accept cross-origin checks.
	originPatterns []string

	checkSession SessionCheck
}

// SessionCheck reports whether the session that opened r is still active.
// A non-nil error means the answer is unknown and the socket is kept.
type SessionCheck func(ctx context.Context, r *http.Request) (active bool, err error)

// WSOption configures a WSGateway.
type WSOption func(*WSGateway)

// WithSessionCheck re-checks the upgrading session on every heartbeat and
// closes the socket once it has ended.
func WithSessionCheck(fn SessionCheck) WSOption {
	return func(g *WSGateway) { g.checkSession = fn }
}

// NewWSGateway constructs a gateway. A nil hub gets a private one.
func NewWSGateway(log *slog.Logger, hub *Hub, cfg Config, opts ...WSOption) *WSGateway {
	if log == nil {
		log = slog.Default()
	}
	if hub == nil {
		hub = NewHub(log, nil)
	}
	cfg = cfg.normalized()
	g := &WSGateway{
		log:            log,
		hub:            hub,
		cfg:            cfg,
		originPatterns: deriveOriginPatterns(cfg.AllowedOrigins),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

func (g *WSGateway) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	g.HandleWS(w, r)
}

// HandleWS upgrades the request and streams feed events until either side
// closes.
func (g *WSGateway) HandleWS(w http.ResponseWriter, r *http.Request) {
	userID, ok := web.UserID(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	if err := g.enforceOrigin(r); err != nil {
		g.log.Info("ws.reject.origin", "err", err, "origin", r.Header.Get("Origin"), "remote", r.RemoteAddr)
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		Subprotocols:   []string{wsSubprotocolV1},
		OriginPatterns: g.originPatterns,
	})
	if err != nil {
		g.log.Error("ws.accept.fail", "err", err)
		return
	}
	defer func() { _ = conn.Close(websocket.StatusNormalClosure, "bye") }()

	if sp := conn.Subprotocol(); sp != wsSubprotocolV1 {
		g.log.Info("ws.reject.subprotocol", "got", sp, "want", wsSubprotocolV1)
		_ = conn.Close(websocket.StatusProtocolError, "subprotocol required")
		return
	}
	conn.SetReadLimit(maxFrameBytes)

	now := time.Now().UTC()
	sessionID := NewSessionID(now)
	client := NewClient(userID, sessionID, g.cfg.SendQueueSize)

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	var closeOnce sync.Once
	// shutdown is idempotent and never closes client.Send.
	shutdown := func(code websocket.StatusCode, reason string) {
		closeOnce.Do(func() {
			g.hub.Leave(sessionID)
			client.Close()
			_ = conn.Close(code, reason)
			cancel()
		})
	}

	// Hello is queued before joining so it is always the first frame.
	hello := newEvent(TypeHello, now)
	hello.ID = sessionID
	client.offer(hello)
	g.hub.Join(client)

	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		for {
			select {
			case <-ctx.Done():
				return
			case <-client.Done():
				return
			case ev := <-client.Send:
				if err := writeEvent(ctx, conn, ev, g.cfg.WriteTimeout); err != nil {
					g.log.Info("ws.write.fail", "session_id", sessionID, "close_status", websocket.CloseStatus(err), "err", err)
					shutdown(websocket.StatusAbnormalClosure, "write failed")
					return
				}
			}
		}
	}()

	heartbeatDone := make(chan struct{})
	go func() {
		defer close(heartbeatDone)
		t := time.NewTicker(g.cfg.HeartbeatEvery)
		defer t.Stop()

		failures := 0
		for {
			select {
			case <-ctx.Done():
				return
			case <-client.Done():
				return
			case <-t.C:
				hbCtx, hbCancel := context.WithTimeout(ctx, g.cfg.HeartbeatTimeout)
				if !g.sessionActive(hbCtx, r, sessionID) {
					hbCancel()
					shutdown(websocket.StatusPolicyViolation, "session ended")
					return
				}
				err := conn.Ping(hbCtx)
				hbCancel()
				if err != nil {
					failures++
					g.log.Info("ws.ping.fail", "session_id", sessionID, "failures", failures, "err", err)
					if failures >= wsMaxPingFailures {
						shutdown(websocket.StatusGoingAway, "heartbeat failed")
						return
					}
					continue
				}
				failures = 0
			}
		}
	}()

	rl := newFrameLimiter(g.cfg.RateFrames, g.cfg.RateWindow)

readLoop:
	for {
		readCtx, readCancel := context.WithTimeout(ctx, g.cfg.ReadIdleTimeout)
		frame, err := readFrame(readCtx, conn)
		readCancel()

		if err != nil {
			switch classifyReadErr(err) {
			case readErrClose:
				shutdown(websocket.StatusNormalClosure, "peer closed")
				break readLoop
			case readErrCtxDone:
				shutdown(websocket.StatusNormalClosure, "context done")
				break readLoop
			case readErrConnClosed:
				shutdown(websocket.StatusAbnormalClosure, "conn closed")
				break readLoop
			case readErrBadJSON:
			default:
				g.log.Info("ws.read.fail", "session_id", sessionID, "err", err)
				shutdown(websocket.StatusAbnormalClosure, "read failed")
				break readLoop
			}
		}

		// Malformed frames count against the limit too.
		if !rl.Allow(time.Now().UTC()) {
			g.trySendError(client, "rate_limited", "too many frames")
			shutdown(websocket.StatusPolicyViolation, "rate limited")
			break readLoop
		}
		if err != nil {
			g.trySendError(client, "bad_json", "invalid JSON")
			continue
		}

		switch frame.Type {
		case TypePing:
			client.offer(newEvent(TypePong, time.Now().UTC()))
		default:
			g.trySendError(client, "unsupported", fmt.Sprintf("unsupported type: %q", frame.Type))
		}
	}

	shutdown(websocket.StatusNormalClosure, "bye")
	<-writerDone
	select {
	case <-heartbeatDone:
	case <-time.After(wsCloseGrace):
	}
}

func (g *WSGateway) sessionActive(ctx context.Context, r *http.Request, sessionID string) bool {
	if g.checkSession == nil {
		return true
	}
	active, err := g.checkSession(ctx, r)
	if err != nil {
		g.log.Warn("ws.session_check.fail", "session_id", sessionID, "err", err)
		return true
	}
	if !active {
		g.log.Info("ws.session.ended", "session_id", sessionID)
	}
	return active
}

func (g *WSGateway) trySendError(client *Client, code, msg string) {
	ev := newEvent(TypeError, time.Now().UTC())
	ev.Code, ev.Message = code, msg
	client.offer(ev)
}

// ---- frame IO ----

type badJSONError struct{ err error }

func (e badJSONError) Error() string { return "bad json: " + e.err.Error() }
func (e badJSONError) Unwrap() error { return e.err }

func readFrame(ctx context.Context, conn *websocket.Conn) (clientFrame, error) {
	mt, data, err := conn.Read(ctx)
	if err != nil {
		return clientFrame{}, err
	}
	if mt != websocket.MessageText {
		return clientFrame{}, badJSONError{fmt.Errorf("unsupported message type: %v", mt)}
	}
	var f clientFrame
	if err := json.Unmarshal(data, &f); err != nil {
		return clientFrame{}, badJSONError{err}
	}
	return f, nil
}

func writeEvent(parent context.Context, conn *websocket.Conn, ev Event, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(parent, timeout)
	defer cancel()

	b, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return conn.Write(ctx, websocket.MessageText, b)
}

// ---- read error classification ----

type readErrKind uint8

const (
	readErrUnknown readErrKind = iota
	readErrClose
	readErrCtxDone
	readErrConnClosed
	readErrBadJSON
)

func classifyReadErr(err error) readErrKind {
	var bj badJSONError
	switch {
	case errors.As(err, &bj):
		return readErrBadJSON
	case websocket.CloseStatus(err) != -1:
		return readErrClose
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return readErrCtxDone
	case errors.Is(err, net.ErrClosed), errors.Is(err, io.EOF):
		return readErrConnClosed
	default:
		return readErrUnknown
	}
}

// ---- origin policy ----

// enforceOrigin applies the explicit allowlist. With no allowlist the
// same-host check in websocket.Accept decides.
func (g *WSGateway) enforceOrigin(r *http.Request) error {
	origin := strings.TrimSpace(r.Header.Get("Origin"))
	if origin == "" {
		if g.cfg.OriginRequired {
			return errors.New("missing origin")
		}
		return nil
	}
	if len(g.cfg.AllowedOrigins) == 0 {
		return nil
	}

	originHost := originHostOnly(origin)
	if originHost != "" && originHost == originHostOnly(r.Host) {
		return nil
	}
	for _, a := range g.cfg.AllowedOrigins {
		if a == "*" || origin == a {
			return nil
		}
		if originHost != "" && originHost == originHostOnly(a) {
			return nil
		}
	}
	return fmt.Errorf("origin not allowed: %s", origin)
}

func originHostOnly(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	if strings.Contains(s, "://") {
		u, err := url.Parse(s)
		if err != nil {
			return ""
		}
		s = strings.TrimSpace(u.Host)
		if s == "" {
			return ""
		}
	}
	if host, _, err := net.SplitHostPort(s); err == nil {
		return strings.ToLower(host)
	}
	return strings.ToLower(s)
}

// deriveOriginPatterns turns the allowlist into websocket.Accept host patterns.
func deriveOriginPatterns(allowed []string) []string {
	seen := make(map[string]struct{}, len(allowed))
	for _, a := range allowed {
		if strings.TrimSpace(a) == "*" {
			return []string{"*"}
		}
		if h := originHostOnly(a); h != "" {
			seen[h] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for h := range seen {
		out = append(out, h)
	}
	sort.Strings(out)
	return out
}
