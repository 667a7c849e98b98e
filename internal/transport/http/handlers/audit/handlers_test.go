package audithandler

import (
	"context"
	"encoding/csv"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"staffleave/internal/domain/apperr"
	"staffleave/internal/domain/audit"
	"staffleave/internal/domain/auth"
)

type fakeGate struct{ actor auth.Actor }

func (g fakeGate) RequireAuthenticated(context.Context) (auth.Actor, error) { return g.actor, nil }

type fakeLister struct {
	filter audit.Filter
	limit  int
	offset int
	err    error
}

func (f *fakeLister) List(_ context.Context, _ auth.Actor, filter audit.Filter, limit, offset int) (audit.Page, error) {
	f.filter, f.limit, f.offset = filter, limit, offset
	if f.err != nil {
		return audit.Page{}, f.err
	}
	return audit.Page{
		Items: []audit.Entry{{
			ID: "e1", Action: audit.ActionApprove, EntityType: audit.EntityLeaveSubmission, EntityID: "s1",
			ActorID: "p1", ActorName: "Pat", ActorRole: "TEACHER", IPAddress: "10.0.0.1", UserAgent: "curl",
			Severity: audit.SeverityInfo, CreatedAt: time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC),
		}},
		Total: 7, Limit: limit, Offset: offset,
	}, nil
}

func serve(l Lister, path string) *httptest.ResponseRecorder {
	r := chi.NewRouter()
	NewHandler(l, fakeGate{actor: auth.Actor{ID: "a1", Role: auth.RoleAdmin}}).RegisterRoutes(r)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestListEntriesPassesFiltersAndPaging(t *testing.T) {
	l := &fakeLister{}
	rec := serve(l, "/audit/entries?action=APPROVE&entityType=leave_submission&actorId=p1&limit=10&offset=20")

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "7", rec.Header().Get("X-Total-Count"))
	require.Equal(t, audit.Filter{Action: "APPROVE", EntityType: "leave_submission", ActorID: "p1"}, l.filter)
	require.Equal(t, 10, l.limit)
	require.Equal(t, 20, l.offset)
}

func TestListEntriesRejectsBadPaging(t *testing.T) {
	l := &fakeLister{}
	rec := serve(l, "/audit/entries?limit=abc")

	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, rec.Body.String(), "validation_error")
	require.Zero(t, l.limit)
}

func TestListEntriesForbidden(t *testing.T) {
	rec := serve(&fakeLister{err: apperr.ErrForbidden}, "/audit/entries")
	require.Equal(t, http.StatusForbidden, rec.Code)
}

func TestExportEntriesCSV(t *testing.T) {
	l := &fakeLister{}
	rec := serve(l, "/audit/entries/export?action=APPROVE")

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
	require.Equal(t, maxExportRows, l.limit)

	rows, err := csv.NewReader(strings.NewReader(rec.Body.String())).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	require.Equal(t, "severity", rows[0][2])
	require.Equal(t, []string{"e1", "2025-03-01T09:00:00Z", "INFO", "APPROVE", "leave_submission", "s1", "p1", "Pat", "TEACHER", "10.0.0.1", "curl"}, rows[1])
}
