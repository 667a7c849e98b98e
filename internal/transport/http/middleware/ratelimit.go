package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"staffleave/internal/domain/auth"
	"staffleave/internal/transport/http/api"
)

// keyFunc names the client a request is counted against.
type keyFunc func(r *http.Request) string

type counter struct {
	hits  int
	reset time.Time
}

// window is a fixed-window counter per client key.
type window struct {
	name  string
	limit int
	span  time.Duration
	key   keyFunc

	mu     sync.Mutex
	counts map[string]*counter
	now    func() time.Time
}

func newWindow(name string, limit int, span time.Duration, key keyFunc) *window {
	return &window{name: name, limit: limit, span: span, key: key, counts: map[string]*counter{}, now: time.Now}
}

// take counts one hit for key and reports the hits so far in the current
// window and when the window resets. Expired entries are swept lazily.
func (w *window) take(key string) (int, time.Time) {
	now := w.now()
	w.mu.Lock()
	defer w.mu.Unlock()

	c, ok := w.counts[key]
	if !ok || !now.Before(c.reset) {
		if len(w.counts) > 4096 {
			for k, old := range w.counts {
				if !now.Before(old.reset) {
					delete(w.counts, k)
				}
			}
		}
		c = &counter{reset: now.Add(w.span)}
		w.counts[key] = c
	}
	c.hits++
	return c.hits, c.reset
}

// admit writes the rate headers and, when the client is over its limit, the
// 429 response. It reports whether the request may proceed.
func (w *window) admit(rw http.ResponseWriter, r *http.Request) bool {
	if w.limit <= 0 {
		return true
	}
	key := w.key(r)
	if key == "" {
		key = clientIPKey(r)
	}
	hits, reset := w.take(key)
	secs := int(time.Until(reset).Round(time.Second).Seconds())

	h := rw.Header()
	h.Set("X-RateLimit-Limit", strconv.Itoa(w.limit))
	h.Set("X-RateLimit-Remaining", strconv.Itoa(max(w.limit-hits, 0)))
	h.Set("X-RateLimit-Reset", strconv.Itoa(max(secs, 0)))
	if hits <= w.limit {
		return true
	}

	h.Set("Retry-After", strconv.Itoa(max(secs, 1)))
	slog.Warn("rate limit exceeded",
		"limiter", w.name,
		"key", key,
		"method", r.Method,
		"path", r.URL.Path,
		"limit", w.limit,
	)
	api.Fail(rw, http.StatusTooManyRequests, "rate_limited", "too many requests", GetRequestID(r.Context()))
	return false
}

// RateLimit counts every request against the signed-in user, or the client
// address when there is no session.
func RateLimit(limit int, span time.Duration) func(http.Handler) http.Handler {
	w := newWindow("global", limit, span, actorOrIPKey)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
			if w.admit(rw, r) {
				next.ServeHTTP(rw, r)
			}
		})
	}
}

// SensitiveMutationRateLimit adds tighter windows for credential and decision
// writes. Logins are limited per client address and per submitted email, so
// spreading guesses across addresses does not help. Account and leave
// decision writes are limited per signed-in user.
func SensitiveMutationRateLimit(baseLimit int, span time.Duration) func(http.Handler) http.Handler {
	loginLimit := max(baseLimit/4, 1)
	login := []*window{
		newWindow("login_ip", loginLimit, span, clientIPKey),
		newWindow("login_email", loginLimit, span, bodyEmailKey),
	}
	account := []*window{newWindow("account", max(baseLimit/2, 1), span, actorOrIPKey)}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
			var windows []*window
			switch sensitiveRoute(r.Method, r.URL.Path) {
			case routeLogin:
				windows = login
			case routeAccount:
				windows = account
			}
			for _, w := range windows {
				if !w.admit(rw, r) {
					return
				}
			}
			next.ServeHTTP(rw, r)
		})
	}
}

type routeClass int

const (
	routeOther routeClass = iota
	routeLogin
	routeAccount
)

func sensitiveRoute(method, path string) routeClass {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
	default:
		return routeOther
	}
	path = strings.TrimSuffix(strings.TrimPrefix(path, "/api/v1"), "/")
	switch path {
	case "/auth/login":
		return routeLogin
	case "/user/change-password", "/user/mfa/setup", "/user/mfa/enable", "/admin/users":
		return routeAccount
	}
	if method == http.MethodPut && strings.HasPrefix(path, "/leave/") {
		return routeAccount
	}
	return routeOther
}

func actorOrIPKey(r *http.Request) string {
	if s, ok := auth.SessionFrom(r.Context()); ok && s.UserID != "" {
		return "user:" + s.UserID
	}
	return clientIPKey(r)
}

// bodyEmailKey peeks at the JSON body for an email and restores the body for
// the handler. Anything unreadable falls back to the client address.
func bodyEmailKey(r *http.Request) string {
	if r.Body == nil || !strings.Contains(strings.ToLower(r.Header.Get("Content-Type")), "application/json") {
		return clientIPKey(r)
	}
	raw, err := io.ReadAll(io.LimitReader(r.Body, 64<<10))
	r.Body = io.NopCloser(bytes.NewReader(raw))
	if err != nil {
		return clientIPKey(r)
	}
	var payload struct {
		Email string `json:"email"`
	}
	if json.Unmarshal(raw, &payload) != nil {
		return clientIPKey(r)
	}
	email := strings.ToLower(strings.TrimSpace(payload.Email))
	if email == "" {
		return clientIPKey(r)
	}
	return "email:" + email
}

// clientIPKey is the peer address. Forwarding headers are only honoured when
// the router rewrites RemoteAddr from them behind a trusted proxy.
func clientIPKey(r *http.Request) string {
	addr := strings.TrimSpace(r.RemoteAddr)
	if host, _, err := net.SplitHostPort(addr); err == nil && host != "" {
		return host
	}
	return addr
}
