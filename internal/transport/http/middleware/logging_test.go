package middleware

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
)

type seenRoute struct {
	method, route string
	status        int
}

type fakeObserver struct {
	seen []seenRoute
}

func (f *fakeObserver) Record(method, route string, status int, _ time.Duration) {
	f.seen = append(f.seen, seenRoute{method, route, status})
}

func TestLoggerReportsRoutePattern(t *testing.T) {
	var logs bytes.Buffer
	obs := &fakeObserver{}

	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(Logger(slog.New(slog.NewJSONHandler(&logs, nil)), obs))
	r.Get("/leave/{id}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/leave/abc", nil))

	if len(obs.seen) != 1 {
		t.Fatalf("expected one observation, got %d", len(obs.seen))
	}
	if got := obs.seen[0]; got.route != "/leave/{id}" || got.status != http.StatusNotFound {
		t.Fatalf("unexpected observation %+v", got)
	}
	if !strings.Contains(logs.String(), `"path":"/leave/abc"`) {
		t.Fatalf("expected path in log line, got %s", logs.String())
	}
}
