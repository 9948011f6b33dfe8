package todo

import (
	"time"

	internalage "github.com/amonks/todopro/internal/age"
)

// AgeData computes how long ago the todo was created.
func AgeData(item Todo, now time.Time) (time.Duration, bool) {
	return internalage.AgeData(item.CreatedAt, now)
}

// DueData computes the time left until the todo is due. Overdue todos report
// a negative duration; todos without a due date report false.
func DueData(item Todo, now time.Time) (time.Duration, bool) {
	if item.DueDate == nil {
		return 0, false
	}
	return internalage.Remaining(*item.DueDate, now)
}

// IsOverdue reports whether an unfinished todo is past its due date.
func IsOverdue(item Todo, now time.Time) bool {
	if item.Status == StatusDone {
		return false
	}
	remaining, ok := DueData(item, now)
	return ok && remaining < 0
}
