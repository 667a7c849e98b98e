package audit

import (
	"context"
	"testing"
	"time"

	pgxmock "github.com/pashagolub/pgxmock/v2"
	"github.com/stretchr/testify/require"

	"staffleave/internal/domain/apperr"
	"staffleave/internal/domain/auth"
)

func TestStoreInsert(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	now := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	mock.ExpectExec(`INSERT INTO audit_logs`).
		WithArgs("APPROVE", "s1", "leave_submission", "p1", "Pat", "TEACHER", "10.0.0.1", "curl/8", []byte(`{}`), "INFO", now).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	store := NewStore(mock, time.Second)
	err = store.Insert(context.Background(), Entry{
		Action: "APPROVE", EntityID: "s1", EntityType: "leave_submission",
		ActorID: "p1", ActorName: "Pat", ActorRole: "TEACHER",
		IPAddress: "10.0.0.1", UserAgent: "curl/8",
		Details: []byte(`{}`), Severity: SeverityInfo, CreatedAt: now,
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStoreListAppliesFilters(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	now := time.Now().UTC()
	rows := pgxmock.NewRows(entryColumns).
		AddRow("a1", "REJECT", "s2", "leave_submission", "p1", "Pat", "TEACHER", "unknown", "unknown", []byte(`{"note":"x"}`), "INFO", now)
	mock.ExpectQuery(`SELECT .+ FROM audit_logs WHERE action = \$1 AND actor_id = \$2 ORDER BY created_at DESC, id DESC LIMIT 20 OFFSET 0`).
		WithArgs("REJECT", "p1").
		WillReturnRows(rows)

	store := NewStore(mock, time.Second)
	entries, err := store.List(context.Background(), Filter{Action: "REJECT", ActorID: "p1"}, 20, 0)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, SeverityInfo, entries[0].Severity)
	require.JSONEq(t, `{"note":"x"}`, string(entries[0].Details))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestServiceListRequiresAdmin(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	svc := NewService(NewStore(mock, time.Second))
	_, err = svc.List(context.Background(), auth.Actor{ID: "t1", Role: auth.RoleTeacher}, Filter{}, 10, 0)
	require.ErrorIs(t, err, apperr.ErrForbidden)

	mock.ExpectQuery(`SELECT COUNT\(1\) FROM audit_logs`).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery(`SELECT .+ FROM audit_logs`).
		WillReturnRows(pgxmock.NewRows(entryColumns))
	page, err := svc.List(context.Background(), auth.Actor{ID: "a1", Role: auth.RoleAdmin}, Filter{}, 10, 0)
	require.NoError(t, err)
	require.Equal(t, 0, page.Total)
	require.Empty(t, page.Items)
	require.NoError(t, mock.ExpectationsWereMet())
}
