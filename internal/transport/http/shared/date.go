package shared

import (
	"time"

	"staffleave/internal/domain/apperr"
	"staffleave/internal/domain/validation"
)

const dateLayout = "2006-01-02"

// ParseDate accepts YYYY-MM-DD or RFC3339; only the calendar date is kept.
func ParseDate(field, value string) (time.Time, error) {
	parsed, err := time.Parse(dateLayout, value)
	if err != nil {
		ts, tsErr := time.Parse(time.RFC3339, value)
		if tsErr != nil {
			return time.Time{}, apperr.Validation(field, field+" must be a valid date in YYYY-MM-DD format")
		}
		parsed = time.Date(ts.Year(), ts.Month(), ts.Day(), 0, 0, 0, 0, time.UTC)
	}
	if !validation.DateParts(parsed.Day(), int(parsed.Month()), parsed.Year()) {
		return time.Time{}, apperr.Validation(field, field+" is out of range")
	}
	return parsed, nil
}
