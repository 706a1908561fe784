// Package main is a CI-friendly smoke test for a running quill server.
//
// It validates:
//   - registration (or login with -email/-password) sets a session cookie
//   - the /ws/feed handshake selects quill.feed.v1 and sends feed.hello
//   - ping -> pong
//   - creating a post through the form flow publishes post.created
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
)

const (
	subprotocol  = "quill.feed.v1"
	maxReadBytes = 64 << 10
)

type event struct {
	Type    string `json:"type"`
	ID      string `json:"id"`
	PostID  int64  `json:"post_id"`
	Title   string `json:"title"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func main() {
	var (
		baseURL  = flag.String("url", "http://127.0.0.1:8080", "Server base URL")
		email    = flag.String("email", "", "Existing account email (registers a fresh account when empty)")
		password = flag.String("password", "Smoke-Test-1", "Account password")
		timeout  = flag.Duration("timeout", 7*time.Second, "Per-step timeout")
		verbose  = flag.Bool("v", false, "Verbose output")
	)
	flag.Parse()

	base, err := url.Parse(strings.TrimRight(*baseURL, "/"))
	if err != nil || (base.Scheme != "http" && base.Scheme != "https") || base.Host == "" {
		fatalf("invalid -url %q", *baseURL)
	}

	jar, _ := cookiejar.New(nil)
	hc := &http.Client{
		Jar:     jar,
		Timeout: *timeout,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}

	if *email == "" {
		*email = "smoke-" + uuid.NewString()[:8] + "@example.com"
		mustPostForm(hc, base, "/auth/register", url.Values{
			"name":             {"Smoke Test"},
			"email":            {*email},
			"password":         {*password},
			"confirm_password": {*password},
		}, "/")
		logf(*verbose, "registered %s", *email)
	} else {
		mustPostForm(hc, base, "/auth/login", url.Values{"email": {*email}, "password": {*password}}, "/")
		logf(*verbose, "logged in as %s", *email)
	}

	ctx := context.Background()
	conn := mustDial(ctx, jar, base, *timeout)
	defer func() { _ = conn.Close(websocket.StatusNormalClosure, "bye") }()

	hello := mustRead(ctx, conn, "feed.hello", *timeout)
	logf(*verbose, "hello session=%s", hello.ID)

	mustWrite(ctx, conn, `{"type":"ping"}`, *timeout)
	mustRead(ctx, conn, "pong", *timeout)
	logf(*verbose, "pong ok")

	token := mustEditorToken(hc, base)
	title := "smoke " + time.Now().UTC().Format(time.RFC3339)
	mustPostForm(hc, base, "/posts/new", url.Values{
		"title":   {title},
		"content": {"posted by feed-smoke"},
		"_csrf":   {token},
	}, "/posts/")

	ev := mustRead(ctx, conn, "post.created", *timeout)
	if ev.Title != title || ev.PostID <= 0 {
		fatalf("post.created mismatch: got id=%d title=%q want title=%q", ev.PostID, ev.Title, title)
	}
	logf(*verbose, "post.created id=%d", ev.PostID)

	fmt.Println("OK: feed smoke passed")
}

func mustPostForm(hc *http.Client, base *url.URL, path string, form url.Values, wantLocationPrefix string) {
	resp, err := hc.PostForm(base.String()+path, form)
	if err != nil {
		fatalf("POST %s: %v", path, err)
	}
	defer drain(resp)

	if resp.StatusCode != http.StatusFound {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		fatalf("POST %s: status=%d body=%s", path, resp.StatusCode, strings.TrimSpace(string(body)))
	}
	if loc := resp.Header.Get("Location"); !strings.HasPrefix(loc, wantLocationPrefix) {
		fatalf("POST %s: redirect to %q, want prefix %q", path, loc, wantLocationPrefix)
	}
}

// mustEditorToken loads the new-post editor, which sets the form cookie and
// returns the matching token (JSON renderer).
func mustEditorToken(hc *http.Client, base *url.URL) string {
	resp, err := hc.Get(base.String() + "/posts/new")
	if err != nil {
		fatalf("GET /posts/new: %v", err)
	}
	defer drain(resp)
	if resp.StatusCode != http.StatusOK {
		fatalf("GET /posts/new: status=%d", resp.StatusCode)
	}

	var page struct {
		View string `json:"view"`
		Data struct {
			Token string `json:"csrf_token"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		fatalf("decode editor page: %v", err)
	}
	if page.View != "editor" || page.Data.Token == "" {
		fatalf("unexpected editor page: view=%q token=%q", page.View, page.Data.Token)
	}
	return page.Data.Token
}

func mustDial(parent context.Context, jar http.CookieJar, base *url.URL, stepTimeout time.Duration) *websocket.Conn {
	wsURL := *base
	wsURL.Path = "/ws/feed"
	if base.Scheme == "https" {
		wsURL.Scheme = "wss"
	} else {
		wsURL.Scheme = "ws"
	}

	h := http.Header{}
	for _, c := range jar.Cookies(base) {
		h.Add("Cookie", c.String())
	}

	ctx, cancel := context.WithTimeout(parent, stepTimeout)
	defer cancel()

	conn, resp, err := websocket.Dial(ctx, wsURL.String(), &websocket.DialOptions{
		Subprotocols: []string{subprotocol},
		HTTPHeader:   h,
	})
	if err != nil {
		if resp != nil {
			fatalf("dial %s: status=%d: %v", wsURL.String(), resp.StatusCode, err)
		}
		fatalf("dial %s: %v", wsURL.String(), err)
	}
	if got := conn.Subprotocol(); got != subprotocol {
		fatalf("subprotocol mismatch: got=%q want=%q", got, subprotocol)
	}
	conn.SetReadLimit(maxReadBytes)
	return conn
}

func mustRead(parent context.Context, conn *websocket.Conn, wantType string, stepTimeout time.Duration) event {
	ctx, cancel := context.WithTimeout(parent, stepTimeout)
	defer cancel()

	for {
		_, b, err := conn.Read(ctx)
		if err != nil {
			if errors.Is(err, context.DeadlineExceeded) {
				fatalf("timeout waiting for %q", wantType)
			}
			fatalf("read while waiting for %q: %v", wantType, err)
		}
		var ev event
		if err := json.Unmarshal(b, &ev); err != nil {
			fatalf("unmarshal event: %v", err)
		}
		switch ev.Type {
		case wantType:
			return ev
		case "error":
			fatalf("server error: code=%q msg=%q", ev.Code, ev.Message)
		}
		// Other users' activity may interleave; skip it.
	}
}

func mustWrite(parent context.Context, conn *websocket.Conn, raw string, stepTimeout time.Duration) {
	ctx, cancel := context.WithTimeout(parent, stepTimeout)
	defer cancel()
	if err := conn.Write(ctx, websocket.MessageText, []byte(raw)); err != nil {
		fatalf("write failed: %v", err)
	}
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()
}

func logf(verbose bool, format string, args ...any) {
	if verbose {
		fmt.Printf(format+"\n", args...)
	}
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "FAIL: "+format+"\n", args...)
	os.Exit(1)
}
