// Package validation holds the pure field checks shared by the HTTP payloads
// and the domain services.
package validation

import (
	"regexp"
	"strings"
	"time"
)

const (
	minYear = 1900
	maxYear = 2100
)

var identityNumberPattern = regexp.MustCompile(`^(\d{12}|\d{6}-\d{2}-\d{4})$`)

// RequiredText is false for empty or whitespace-only input.
func RequiredText(s string) bool {
	return strings.TrimSpace(s) != ""
}

// IdentityNumber accepts twelve digits, optionally grouped 6-2-4 with hyphens.
func IdentityNumber(s string) bool {
	return identityNumberPattern.MatchString(s)
}

// DateParts checks a calendar date given as separate components.
func DateParts(day, month, year int) bool {
	if year < minYear || year > maxYear {
		return false
	}
	if month < 1 || month > 12 {
		return false
	}
	return day >= 1 && day <= daysIn(time.Month(month), year)
}

func daysIn(month time.Month, year int) int {
	// day 0 of the following month normalizes to the last day of month.
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
