package ui

import (
	"fmt"
	"time"

	internalage "github.com/amonks/todopro/internal/age"
)

// DateLayout is how due dates are printed and parsed on the command line.
const DateLayout = "2006-01-02"

// FormatTimeAgo returns a compact age string like "2m ago".
func FormatTimeAgo(then time.Time, now time.Time) string {
	duration, ok := internalage.AgeData(then, now)
	if !ok {
		return "-"
	}
	return FormatDurationShort(duration) + " ago"
}

// FormatDue describes a due date relative to now, e.g. "2026-03-01 (in 3d)"
// or "2026-02-20 (6d overdue)". A nil due date renders as "-".
func FormatDue(due *time.Time, now time.Time) string {
	if due == nil {
		return "-"
	}
	remaining, ok := internalage.Remaining(*due, now)
	if !ok {
		return "-"
	}
	date := due.Format(DateLayout)
	if remaining < 0 {
		return fmt.Sprintf("%s (%s overdue)", date, FormatDurationShort(-remaining))
	}
	return fmt.Sprintf("%s (in %s)", date, FormatDurationShort(remaining))
}

// FormatDurationShort formats a duration using short units (s/m/h/d).
func FormatDurationShort(duration time.Duration) string {
	if duration < 0 {
		duration = 0
	}

	duration = duration.Truncate(time.Second)
	seconds := int64(duration.Seconds())
	if seconds < 60 {
		return fmt.Sprintf("%ds", seconds)
	}

	minutes := seconds / 60
	if minutes < 60 {
		return fmt.Sprintf("%dm", minutes)
	}

	hours := minutes / 60
	if hours < 24 {
		return fmt.Sprintf("%dh", hours)
	}

	return fmt.Sprintf("%dd", hours/24)
}
