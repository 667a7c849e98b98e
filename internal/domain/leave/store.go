package leave

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"staffleave/internal/domain/auth"
	"staffleave/internal/platform/querier"
)

const entity = "leave_submission"

var submissionColumns = []string{
	"s.id", "s.user_id", "s.type", "s.status", "s.start_date", "s.end_date", "s.days",
	"s.reason", "s.created_at", "s.decided_by", "s.decided_at", "s.decision_note",
}

type Store struct {
	DB      querier.Querier
	Timeout time.Duration
}

func NewStore(db querier.Querier, timeout time.Duration) *Store {
	return &Store{DB: db, Timeout: timeout}
}

func (s *Store) Create(ctx context.Context, sub Submission) (Submission, error) {
	ctx, cancel := querier.WithTimeout(ctx, s.Timeout)
	defer cancel()

	query, args, err := querier.SQL.Insert("leave_submissions").
		Columns("user_id", "type", "status", "start_date", "end_date", "days", "reason").
		Values(sub.UserID, string(sub.Type), string(StatusPending), sub.StartDate, sub.EndDate, sub.Days, sub.Reason).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		return Submission{}, err
	}
	if err := s.DB.QueryRow(ctx, query, args...).Scan(&sub.ID, &sub.CreatedAt); err != nil {
		return Submission{}, querier.MapError(err, entity)
	}
	sub.Status = StatusPending
	return sub, nil
}

func (s *Store) Get(ctx context.Context, id string) (Submission, error) {
	ctx, cancel := querier.WithTimeout(ctx, s.Timeout)
	defer cancel()

	query, args, err := querier.SQL.Select(submissionColumns...).
		From("leave_submissions s").
		Where(squirrel.Eq{"s.id": id}).
		ToSql()
	if err != nil {
		return Submission{}, err
	}
	sub, err := scanSubmission(s.DB.QueryRow(ctx, query, args...))
	if err != nil {
		return Submission{}, querier.MapError(err, entity)
	}
	return sub, nil
}

// ListPending returns the approval queue oldest first. id breaks created_at ties.
func (s *Store) ListPending(ctx context.Context, types []SubmissionType) ([]PendingItem, error) {
	ctx, cancel := querier.WithTimeout(ctx, s.Timeout)
	defer cancel()

	kinds := make([]string, 0, len(types))
	for _, t := range types {
		kinds = append(kinds, string(t))
	}
	cols := append(append([]string{}, submissionColumns...), "u.name", "u.email", "u.employment_type")
	query, args, err := querier.SQL.Select(cols...).
		From("leave_submissions s").
		Join("users u ON u.id = s.user_id").
		Where(squirrel.Eq{"s.status": string(StatusPending)}).
		Where(squirrel.Eq{"s.type": kinds}).
		OrderBy("s.created_at ASC", "s.id ASC").
		ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, querier.MapError(err, entity)
	}
	defer rows.Close()

	out := []PendingItem{}
	for rows.Next() {
		var (
			item       PendingItem
			employment *string
		)
		sub, err := scanSubmission(rows, &item.Submitter.Name, &item.Submitter.Email, &employment)
		if err != nil {
			return nil, querier.MapError(err, entity)
		}
		item.Submission = sub
		item.Submitter.ID = sub.UserID
		if employment != nil {
			item.Submitter.EmploymentType = auth.EmploymentType(*employment)
		}
		out = append(out, item)
	}
	if err := rows.Err(); err != nil {
		return nil, querier.MapError(err, entity)
	}
	return out, nil
}

func (s *Store) ListByUser(ctx context.Context, userID string) ([]Submission, error) {
	ctx, cancel := querier.WithTimeout(ctx, s.Timeout)
	defer cancel()

	query, args, err := querier.SQL.Select(submissionColumns...).
		From("leave_submissions s").
		Where(squirrel.Eq{"s.user_id": userID}).
		OrderBy("s.created_at DESC", "s.id DESC").
		ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, querier.MapError(err, entity)
	}
	defer rows.Close()

	out := []Submission{}
	for rows.Next() {
		sub, err := scanSubmission(rows)
		if err != nil {
			return nil, querier.MapError(err, entity)
		}
		out = append(out, sub)
	}
	if err := rows.Err(); err != nil {
		return nil, querier.MapError(err, entity)
	}
	return out, nil
}

func (s *Store) UpdateStatusIfPending(ctx context.Context, id string, d Decision) (Submission, bool, error) {
	ctx, cancel := querier.WithTimeout(ctx, s.Timeout)
	defer cancel()

	query, args, err := querier.SQL.Update("leave_submissions s").
		Set("status", string(d.Status)).
		Set("decided_by", d.DecidedBy).
		Set("decided_at", d.DecidedAt).
		Set("decision_note", d.Note).
		Where(squirrel.Eq{"s.id": id}).
		Where(squirrel.Eq{"s.status": string(StatusPending)}).
		Suffix("RETURNING " + strings.Join(submissionColumns, ", ")).
		ToSql()
	if err != nil {
		return Submission{}, false, err
	}
	sub, err := scanSubmission(s.DB.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return Submission{}, false, nil
	}
	if err != nil {
		return Submission{}, false, querier.MapError(err, entity)
	}
	return sub, true, nil
}

func (s *Store) ApprovedDaysByType(ctx context.Context, userID string, from, to time.Time) (map[SubmissionType]int, error) {
	ctx, cancel := querier.WithTimeout(ctx, s.Timeout)
	defer cancel()

	query, args, err := querier.SQL.Select("type", "COALESCE(SUM(days), 0)").
		From("leave_submissions").
		Where(squirrel.Eq{"user_id": userID}).
		Where(squirrel.Eq{"status": string(StatusApproved)}).
		Where(squirrel.GtOrEq{"start_date": from}).
		Where(squirrel.Lt{"start_date": to}).
		GroupBy("type").
		ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, querier.MapError(err, entity)
	}
	defer rows.Close()

	out := map[SubmissionType]int{}
	for rows.Next() {
		var (
			kind string
			days int
		)
		if err := rows.Scan(&kind, &days); err != nil {
			return nil, querier.MapError(err, entity)
		}
		out[SubmissionType(kind)] = days
	}
	if err := rows.Err(); err != nil {
		return nil, querier.MapError(err, entity)
	}
	return out, nil
}

func scanSubmission(row pgx.Row, extra ...any) (Submission, error) {
	var (
		sub          Submission
		kind, status string
	)
	dest := []any{
		&sub.ID, &sub.UserID, &kind, &status, &sub.StartDate, &sub.EndDate, &sub.Days,
		&sub.Reason, &sub.CreatedAt, &sub.DecidedBy, &sub.DecidedAt, &sub.DecisionNote,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return Submission{}, err
	}
	sub.Type = SubmissionType(kind)
	sub.Status = Status(status)
	return sub, nil
}
