package leave

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var errEndBeforeStart = errors.New("end date before start date")

// CalculateDays returns the inclusive calendar day count between start and end.
// Only the date part of each value is considered.
func CalculateDays(start, end time.Time) (int, error) {
	s := dateOnly(start)
	e := dateOnly(end)
	if e.Before(s) {
		return 0, errEndBeforeStart
	}
	return int(e.Sub(s).Hours()/24) + 1, nil
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseOutcome accepts APPROVE or REJECT in any case.
func ParseOutcome(raw string) (Outcome, error) {
	switch Outcome(strings.ToUpper(strings.TrimSpace(raw))) {
	case OutcomeApprove:
		return OutcomeApprove, nil
	case OutcomeReject:
		return OutcomeReject, nil
	}
	return "", fmt.Errorf("unknown outcome %q", raw)
}

func (o Outcome) Status() Status {
	if o == OutcomeApprove {
		return StatusApproved
	}
	return StatusRejected
}

// yearWindow is [Jan 1 of t's year, Jan 1 of the next year).
func yearWindow(t time.Time) (time.Time, time.Time) {
	start := time.Date(t.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(1, 0, 0)
}
