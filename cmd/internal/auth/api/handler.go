package authapi

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"quill/cmd/internal/auth/account"
	"quill/cmd/internal/auth/session"
	"quill/cmd/internal/web"
)

// Accounts is the authentication flow the handlers drive.
type Accounts interface {
	Register(ctx context.Context, in account.RegisterInput) (account.Result, error)
	Login(ctx context.Context, email, pw string) (account.Result, error)
}

// Sessions validates and ends sessions named by the session cookie.
type Sessions interface {
	Validate(ctx context.Context, now time.Time, tok string) (int64, error)
	Destroy(ctx context.Context, now time.Time, tok string) error
}

const msgRateLimited = "Too many attempts, please try again later"

// Handler wires HTTP auth endpoints to the account and session services.
type Handler struct {
	log *slog.Logger
	cfg Config

	accounts Accounts
	sessions Sessions
	sessCfg  session.Config

	captcha  CaptchaVerifier
	limiter  Limiter
	renderer web.Renderer
	cookies  web.Cookies
	clock    func() time.Time
}

// HandlerOption configures optional auth handler dependencies.
type HandlerOption func(*Handler)

// WithCaptchaVerifier overrides the default no-op captcha verifier.
func WithCaptchaVerifier(verifier CaptchaVerifier) HandlerOption {
	return func(h *Handler) {
		if verifier != nil {
			h.captcha = verifier
		}
	}
}

// WithLimiter enables per-IP rate limiting.
func WithLimiter(l Limiter) HandlerOption {
	return func(h *Handler) {
		if l != nil {
			h.limiter = l
		}
	}
}

// WithRenderer overrides the JSON renderer.
func WithRenderer(r web.Renderer) HandlerOption {
	return func(h *Handler) {
		if r != nil {
			h.renderer = r
		}
	}
}

// WithClock sets the clock used for session checks.
func WithClock(now func() time.Time) HandlerOption {
	return func(h *Handler) {
		if now != nil {
			h.clock = now
		}
	}
}

// NewHandler constructs an auth Handler.
func NewHandler(log *slog.Logger, cfg Config, sessCfg session.Config, accounts Accounts, sessions Sessions, opts ...HandlerOption) (*Handler, error) {
	if accounts == nil || sessions == nil {
		return nil, errors.New("auth: nil account or session service")
	}
	if log == nil {
		log = slog.Default()
	}
	if sessCfg.CookieName == "" {
		sessCfg.CookieName = session.DefaultConfig().CookieName
	}
	if sessCfg.TTL <= 0 {
		sessCfg.TTL = session.DefaultConfig().TTL
	}

	h := &Handler{
		log:      log,
		cfg:      cfg,
		accounts: accounts,
		sessions: sessions,
		sessCfg:  sessCfg,
		captcha:  NoopCaptchaVerifier{},
		limiter:  NoopLimiter{},
		renderer: web.JSONRenderer{},
		cookies:  web.Cookies{Secure: sessCfg.CookieSecure},
		clock:    time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(h)
		}
	}
	return h, nil
}

// Register wires auth routes onto the provided mux.
func (h *Handler) Register(mux *http.ServeMux) {
	if h == nil || mux == nil {
		return
	}
	mux.HandleFunc("GET /login", h.handleLoginPage)
	mux.HandleFunc("GET /register", h.handleRegisterPage)
	mux.HandleFunc("POST /auth/login", h.handleLogin)
	mux.HandleFunc("POST /auth/register", h.handleRegister)
	mux.HandleFunc("GET /logout", h.handleLogout)
}

// Cookies returns the cookie attributes the handler uses.
func (h *Handler) Cookies() web.Cookies { return h.cookies }

// Renderer returns the renderer used for auth pages.
func (h *Handler) Renderer() web.Renderer { return h.renderer }

// Authenticate admits requests carrying an active session cookie and stores
// the user id in the request context. Anything else is sent to /login.
func (h *Handler) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tok := h.sessionToken(r)
		if tok == "" {
			http.Redirect(w, r, "/login", http.StatusFound)
			return
		}

		userID, err := h.sessions.Validate(r.Context(), h.now(), tok)
		switch {
		case errors.Is(err, session.ErrNoActiveSession):
			h.clearSessionCookie(w)
			http.Redirect(w, r, "/login", http.StatusFound)
			return
		case err != nil:
			h.clearSessionCookie(w)
			web.WriteError(w, r, h.renderer, h.log, err)
			return
		}

		next.ServeHTTP(w, r.WithContext(web.WithUserID(r.Context(), userID)))
	})
}

// SessionActive re-validates the cookie of a request Authenticate already
// admitted. Long-lived connections call it to notice logout and expiry.
func (h *Handler) SessionActive(ctx context.Context, r *http.Request) (bool, error) {
	tok := h.sessionToken(r)
	if tok == "" {
		return false, nil
	}
	userID, err := h.sessions.Validate(ctx, h.now(), tok)
	switch {
	case errors.Is(err, session.ErrNoActiveSession):
		return false, nil
	case err != nil:
		return false, err
	}
	admitted, ok := web.UserID(r.Context())
	return ok && admitted == userID, nil
}

// ---- handlers ----

func (h *Handler) handleLoginPage(w http.ResponseWriter, r *http.Request) {
	if h.sessionToken(r) != "" {
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}
	h.render(w, r, http.StatusOK, web.LoginPage{CaptchaSiteKey: h.siteKey()})
}

func (h *Handler) handleRegisterPage(w http.ResponseWriter, r *http.Request) {
	if h.sessionToken(r) != "" {
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}
	h.render(w, r, http.StatusOK, web.RegisterPage{CaptchaSiteKey: h.siteKey()})
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	if !h.parseForm(w, r) {
		return
	}
	ctx := r.Context()
	ip := clientIP(r, h.cfg.TrustProxy)
	ua := r.UserAgent()

	in := account.RegisterInput{
		Name:     r.PostFormValue("name"),
		Email:    r.PostFormValue("email"),
		Password: r.PostFormValue("password"),
		Confirm:  r.PostFormValue("confirm_password"),
	}
	page := web.RegisterPage{
		Name:           strings.TrimSpace(in.Name),
		Email:          strings.TrimSpace(in.Email),
		CaptchaSiteKey: h.siteKey(),
	}

	if ok, retry := h.allow(ctx, actionRegister, ipKey(ip)); !ok {
		h.auditRateLimited(ctx, actionRegister, ip, ua, retry)
		setRetryAfter(w, retry)
		page.Error = msgRateLimited
		h.render(w, r, http.StatusTooManyRequests, page)
		return
	}

	if err := h.enforceCaptcha(ctx, r.PostFormValue(CaptchaField), ip); err != nil {
		page.Error = account.MsgCaptcha
		h.render(w, r, http.StatusBadRequest, page)
		return
	}

	res, err := h.accounts.Register(ctx, in)
	if err != nil {
		var ve *account.ValidationError
		switch {
		case errors.As(err, &ve):
			page.Error, page.Reasons, page.Name, page.Email = ve.Message, ve.Reasons, ve.Name, ve.Email
			h.render(w, r, http.StatusBadRequest, page)
		case errors.Is(err, account.ErrAlreadyRegistered):
			page.Error = account.MsgAlreadyRegistered
			h.render(w, r, http.StatusBadRequest, page)
		default:
			h.log.Error("auth.register.fail", "err", err)
			web.WriteError(w, r, h.renderer, h.log, err)
		}
		return
	}

	h.auditRegistered(ctx, res.UserID, ip, ua)
	h.setSessionCookie(w, res.Token)
	http.Redirect(w, r, "/", http.StatusFound)
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	if !h.parseForm(w, r) {
		return
	}
	ctx := r.Context()
	ip := clientIP(r, h.cfg.TrustProxy)
	ua := r.UserAgent()

	email := r.PostFormValue("email")
	page := web.LoginPage{Email: strings.TrimSpace(email), CaptchaSiteKey: h.siteKey()}

	if ok, retry := h.allow(ctx, actionLogin, ipKey(ip)); !ok {
		h.auditRateLimited(ctx, actionLogin, ip, ua, retry)
		setRetryAfter(w, retry)
		page.Error = msgRateLimited
		h.render(w, r, http.StatusTooManyRequests, page)
		return
	}

	if err := h.enforceCaptcha(ctx, r.PostFormValue(CaptchaField), ip); err != nil {
		h.auditLoginFailed(ctx, ip, ua, "captcha")
		page.Error = account.MsgCaptcha
		h.render(w, r, http.StatusBadRequest, page)
		return
	}

	res, err := h.accounts.Login(ctx, email, r.PostFormValue("password"))
	if err != nil {
		var ve *account.ValidationError
		switch {
		case errors.As(err, &ve):
			page.Error = ve.Message
			h.render(w, r, http.StatusBadRequest, page)
		case errors.Is(err, account.ErrInvalidCredentials):
			h.auditLoginFailed(ctx, ip, ua, "invalid_credentials")
			page.Error = account.MsgInvalidLogin
			h.render(w, r, http.StatusUnauthorized, page)
		case errors.Is(err, context.Canceled):
			// Client went away while the failure floor was pending.
		default:
			h.log.Error("auth.login.error", "err", err)
			web.WriteError(w, r, h.renderer, h.log, err)
		}
		return
	}

	h.auditLoginSuccess(ctx, res.UserID, ip, ua)
	h.setSessionCookie(w, res.Token)
	http.Redirect(w, r, "/", http.StatusFound)
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	tok := h.sessionToken(r)
	if tok != "" {
		if err := h.sessions.Destroy(r.Context(), h.now(), tok); err != nil {
			h.log.Error("auth.logout.fail", "err", err)
			h.clearSessionCookie(w)
			web.WriteError(w, r, h.renderer, h.log, err)
			return
		}
		h.clearSessionCookie(w)
		h.auditLogout(r.Context(), clientIP(r, h.cfg.TrustProxy), r.UserAgent())
	}
	http.Redirect(w, r, "/", http.StatusFound)
}

// ---- helpers ----

func (h *Handler) parseForm(w http.ResponseWriter, r *http.Request) bool {
	r.Body = http.MaxBytesReader(w, r.Body, h.cfg.maxBody())
	if err := r.ParseForm(); err != nil {
		web.WriteError(w, r, h.renderer, h.log, web.BadRequest("invalid form submission"))
		return false
	}
	return true
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, status int, v web.View) {
	web.Render(w, r, h.renderer, h.log, status, v)
}

func (h *Handler) siteKey() string {
	if !h.cfg.CaptchaEnabled {
		return ""
	}
	return h.cfg.CaptchaSiteKey
}

func (c Config) maxBody() int64 {
	if c.MaxBodyBytes <= 0 {
		return 64 << 10
	}
	return c.MaxBodyBytes
}
