package querier

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"staffleave/internal/domain/apperr"
)

// SQL is the statement builder every store uses.
var SQL = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

// MapError translates driver errors into domain errors. entity names the
// thing being read or written and is kept in the message.
func MapError(err error, entity string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%s: %w: %w", entity, apperr.ErrUnavailable, err)
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%s: %w", entity, apperr.ErrNotFound)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			return fmt.Errorf("%s: %w", entity, apperr.Validation("", entity+" already exists"))
		case "23503":
			return fmt.Errorf("%s: %w", entity, apperr.ErrNotFound)
		case "57014":
			return fmt.Errorf("%s: %w: %w", entity, apperr.ErrUnavailable, err)
		}
	}
	return fmt.Errorf("%s: %w", entity, err)
}

// WithTimeout bounds a store call. A non-positive d only adds cancellation.
func WithTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}
