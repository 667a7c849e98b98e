package server

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"staffleave/internal/domain/apperr"
	"staffleave/internal/domain/audit"
	"staffleave/internal/domain/auth"
	"staffleave/internal/domain/identity"
	"staffleave/internal/domain/leave"
	"staffleave/internal/platform/config"
	"staffleave/internal/platform/metrics"
)

const secret = "router-test-secret-0123456789abcdef"

// sessionIdentity trusts the session placed by the auth middleware.
type sessionIdentity struct{}

func (sessionIdentity) RequireAuthenticated(ctx context.Context) (auth.Actor, error) {
	s, ok := auth.SessionFrom(ctx)
	if !ok {
		return auth.Actor{}, apperr.ErrUnauthenticated
	}
	return auth.Actor{ID: s.UserID, Role: s.Role, EmploymentType: auth.EmploymentFullTime}, nil
}

func (sessionIdentity) Profile(_ context.Context, a auth.Actor) (auth.Actor, error) { return a, nil }
func (sessionIdentity) ChangeCredential(context.Context, auth.Actor, string, string) error {
	return nil
}
func (sessionIdentity) SetupMFA(context.Context, auth.Actor) (identity.MFASetup, error) {
	return identity.MFASetup{}, nil
}
func (sessionIdentity) EnableMFA(context.Context, auth.Actor, string) error { return nil }
func (sessionIdentity) CreateUser(context.Context, auth.Actor, auth.UserCandidate) (auth.Actor, error) {
	return auth.Actor{}, apperr.ErrForbidden
}
func (sessionIdentity) Login(context.Context, string, string, string) (identity.LoginResult, error) {
	return identity.LoginResult{}, apperr.ErrUnauthenticated
}

type stubLeave struct{}

func (stubLeave) Submit(context.Context, auth.Actor, leave.SubmitInput) (leave.Submission, error) {
	return leave.Submission{}, nil
}
func (stubLeave) ListPending(context.Context, auth.Actor) ([]leave.PendingItem, error) {
	return nil, apperr.ErrForbidden
}
func (stubLeave) Decide(context.Context, auth.Actor, string, leave.Outcome, string) (leave.Submission, error) {
	return leave.Submission{}, nil
}
func (stubLeave) ListMine(context.Context, auth.Actor) ([]leave.Submission, error) {
	return []leave.Submission{}, nil
}
func (stubLeave) Get(context.Context, auth.Actor, string) (leave.Submission, error) {
	return leave.Submission{}, apperr.ErrNotFound
}
func (stubLeave) Balance(_ context.Context, a auth.Actor) (leave.Balance, error) {
	return leave.Balance{UserID: a.ID, AccruedDays: 14, RemainingDays: 14}, nil
}
func (stubLeave) RenderStatement(context.Context, auth.Actor) (leave.Statement, error) {
	return leave.Statement{}, nil
}

type stubAudit struct{}

func (stubAudit) List(context.Context, auth.Actor, audit.Filter, int, int) (audit.Page, error) {
	return audit.Page{}, nil
}

type pinger struct{ err error }

func (p pinger) Ping(context.Context) error { return p.err }

func testRouter(dbErr error) (http.Handler, *metrics.Collector) {
	return routerWith(config.Config{
		Environment:        "test",
		JWTSecret:          secret,
		MaxBodyBytes:       1 << 20,
		RateLimitPerMinute: 100,
		MetricsEnabled:     true,
	}, dbErr)
}

func routerWith(cfg config.Config, dbErr error) (http.Handler, *metrics.Collector) {
	collector := metrics.New()
	return NewRouter(Deps{
		Config:  cfg,
		Logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		Metrics: collector,
		DB:      pinger{err: dbErr},
		Gate:    sessionIdentity{},
		Login:   sessionIdentity{},
		Leave:   stubLeave{},
		Audit:   stubAudit{},
	}), collector
}

func get(h http.Handler, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealthAndReadiness(t *testing.T) {
	h, _ := testRouter(nil)
	require.Equal(t, http.StatusOK, get(h, "/healthz", "").Code)
	require.Equal(t, http.StatusOK, get(h, "/readyz", "").Code)

	down, _ := testRouter(errors.New("connection refused"))
	require.Equal(t, http.StatusServiceUnavailable, get(down, "/readyz", "").Code)
}

func TestBalanceNeedsToken(t *testing.T) {
	h, _ := testRouter(nil)

	rec := get(h, "/api/v1/leave/balance", "")
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	token, err := auth.GenerateToken(secret, auth.Claims{UserID: "t1", Role: auth.RoleTeacher}, time.Hour)
	require.NoError(t, err)
	rec = get(h, "/api/v1/leave/balance", token)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"remainingDays":14`)
	require.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
}

func TestMetricsUseRoutePatterns(t *testing.T) {
	h, _ := testRouter(nil)
	token, err := auth.GenerateToken(secret, auth.Claims{UserID: "t1", Role: auth.RoleTeacher}, time.Hour)
	require.NoError(t, err)

	get(h, "/api/v1/leave/6f1c2d7e-0000-4000-8000-000000000001", token)

	body := get(h, "/metrics", "").Body.String()
	require.True(t, strings.Contains(body, `route="/api/v1/leave/{submissionID}"`), body)
	require.NotContains(t, body, "6f1c2d7e")
}

func TestForwardedForHonouredOnlyBehindTrustedProxy(t *testing.T) {
	send := func(h http.Handler, fwd string) int {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/leave/balance", nil)
		req.Header.Set("X-Forwarded-For", fwd)
		req.RemoteAddr = "10.0.0.5:5000"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}
	cfg := config.Config{Environment: "test", JWTSecret: secret, MaxBodyBytes: 1 << 20, RateLimitPerMinute: 1}

	direct, _ := routerWith(cfg, nil)
	require.Equal(t, http.StatusUnauthorized, send(direct, "198.51.100.1"))
	require.Equal(t, http.StatusTooManyRequests, send(direct, "198.51.100.2"))

	cfg.TrustProxy = true
	proxied, _ := routerWith(cfg, nil)
	require.Equal(t, http.StatusUnauthorized, send(proxied, "198.51.100.1"))
	require.Equal(t, http.StatusUnauthorized, send(proxied, "198.51.100.2"))
}
