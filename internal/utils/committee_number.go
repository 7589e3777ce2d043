package utils

import (
	"fmt"
	"strings"
	"time"
)

// AcademicYearLabel formats the committee number derived from the clock, e.g. "2025-2026".
func AcademicYearLabel(t time.Time) string {
	year := t.Year()
	return fmt.Sprintf("%d-%d", year, year+1)
}

// NormalizeCommitteeNumber trims surrounding whitespace from a user-supplied committee number.
func NormalizeCommitteeNumber(number string) string {
	return strings.TrimSpace(number)
}

// Today truncates t to midnight in its own location.
func Today(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
