package audit

import (
	"context"
	"time"

	"github.com/Masterminds/squirrel"

	"staffleave/internal/platform/querier"
)

const entity = "audit_log"

var entryColumns = []string{
	"id", "action", "entity_id", "entity_type", "actor_id", "actor_name", "actor_role",
	"ip_address", "user_agent", "details", "status", "created_at",
}

type Store struct {
	DB      querier.Querier
	Timeout time.Duration
}

func NewStore(db querier.Querier, timeout time.Duration) *Store {
	return &Store{DB: db, Timeout: timeout}
}

func (s *Store) Insert(ctx context.Context, e Entry) error {
	ctx, cancel := querier.WithTimeout(ctx, s.Timeout)
	defer cancel()

	query, args, err := querier.SQL.Insert("audit_logs").
		Columns("action", "entity_id", "entity_type", "actor_id", "actor_name", "actor_role",
			"ip_address", "user_agent", "details", "status", "created_at").
		Values(e.Action, e.EntityID, e.EntityType, e.ActorID, e.ActorName, e.ActorRole,
			e.IPAddress, e.UserAgent, []byte(e.Details), string(e.Severity), e.CreatedAt).
		ToSql()
	if err != nil {
		return err
	}
	_, err = s.DB.Exec(ctx, query, args...)
	return querier.MapError(err, entity)
}

func (s *Store) Count(ctx context.Context, filter Filter) (int, error) {
	ctx, cancel := querier.WithTimeout(ctx, s.Timeout)
	defer cancel()

	query, args, err := applyFilter(querier.SQL.Select("COUNT(1)").From("audit_logs"), filter).ToSql()
	if err != nil {
		return 0, err
	}
	var total int
	if err := s.DB.QueryRow(ctx, query, args...).Scan(&total); err != nil {
		return 0, querier.MapError(err, entity)
	}
	return total, nil
}

// List returns entries newest first.
func (s *Store) List(ctx context.Context, filter Filter, limit, offset int) ([]Entry, error) {
	ctx, cancel := querier.WithTimeout(ctx, s.Timeout)
	defer cancel()

	builder := applyFilter(querier.SQL.Select(entryColumns...).From("audit_logs"), filter).
		OrderBy("created_at DESC", "id DESC").
		Limit(uint64(limit)).
		Offset(uint64(offset))
	query, args, err := builder.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, querier.MapError(err, entity)
	}
	defer rows.Close()

	out := []Entry{}
	for rows.Next() {
		var (
			e        Entry
			details  []byte
			severity string
		)
		if err := rows.Scan(&e.ID, &e.Action, &e.EntityID, &e.EntityType, &e.ActorID, &e.ActorName, &e.ActorRole,
			&e.IPAddress, &e.UserAgent, &details, &severity, &e.CreatedAt); err != nil {
			return nil, querier.MapError(err, entity)
		}
		e.Details = details
		e.Severity = Severity(severity)
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, querier.MapError(err, entity)
	}
	return out, nil
}

func applyFilter(b squirrel.SelectBuilder, f Filter) squirrel.SelectBuilder {
	if f.Action != "" {
		b = b.Where(squirrel.Eq{"action": f.Action})
	}
	if f.EntityType != "" {
		b = b.Where(squirrel.Eq{"entity_type": f.EntityType})
	}
	if f.EntityID != "" {
		b = b.Where(squirrel.Eq{"entity_id": f.EntityID})
	}
	if f.ActorID != "" {
		b = b.Where(squirrel.Eq{"actor_id": f.ActorID})
	}
	return b
}
