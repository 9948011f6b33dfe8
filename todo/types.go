// Package todo defines todo records, the inputs that create and change them,
// and the rules a record must follow at rest.
//
// The package has no I/O. Gateways, stores and presentation layers share
// these types:
//   - Todo, Status, Priority for records
//   - NewTodo, Patch for create and update bodies
//   - AddTag, RemoveTag, NormalizeTags for the unique-tag invariant
//   - Sort, Compare for server-side ordering
//   - GroupByStatus for board projections
package todo

import (
	"strings"

	"github.com/amonks/todopro/internal/validation"
)

// Status represents the column a todo lives in.
type Status string

const (
	// StatusTodo indicates the todo has not been started.
	StatusTodo Status = "todo"

	// StatusInProgress indicates the todo is being worked on.
	StatusInProgress Status = "in_progress"

	// StatusDone indicates the todo is finished.
	StatusDone Status = "done"
)

// ValidStatuses returns all valid status values in board order.
func ValidStatuses() []Status {
	return []Status{StatusTodo, StatusInProgress, StatusDone}
}

// IsValid returns true if the status is a known valid value.
func (s Status) IsValid() bool {
	for _, valid := range ValidStatuses() {
		if s == valid {
			return true
		}
	}
	return false
}

// Label returns the human-readable form used in notifications, e.g. "in progress".
func (s Status) Label() string {
	return strings.ReplaceAll(string(s), "_", " ")
}

// ParseStatus accepts the wire value or its label, case-insensitively.
func ParseStatus(value string) (Status, error) {
	normalized := normalizeEnum(value)
	status := Status(normalized)
	if !status.IsValid() {
		return "", validation.FormatInvalidValueError(ErrInvalidStatus, Status(value), ValidStatuses())
	}
	return status, nil
}

// Priority represents the importance of a todo.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium" // default
	PriorityHigh   Priority = "high"
)

// ValidPriorities returns all valid priority values from lowest to highest.
func ValidPriorities() []Priority {
	return []Priority{PriorityLow, PriorityMedium, PriorityHigh}
}

// IsValid returns true if the priority is a known valid value.
func (p Priority) IsValid() bool {
	return p.Rank() > 0
}

// Rank returns the sort weight of the priority: low=1, medium=2, high=3.
// Unknown priorities rank 0.
func (p Priority) Rank() int {
	switch p {
	case PriorityLow:
		return 1
	case PriorityMedium:
		return 2
	case PriorityHigh:
		return 3
	default:
		return 0
	}
}

// ParsePriority accepts a priority name case-insensitively.
func ParsePriority(value string) (Priority, error) {
	priority := Priority(normalizeEnum(value))
	if !priority.IsValid() {
		return "", validation.FormatInvalidValueError(ErrInvalidPriority, Priority(value), ValidPriorities())
	}
	return priority, nil
}

// StatusPtr returns a pointer to the provided status.
func StatusPtr(status Status) *Status {
	return &status
}

// PriorityPtr returns a pointer to the provided priority.
func PriorityPtr(priority Priority) *Priority {
	return &priority
}

// StringPtr returns a pointer to the provided string.
func StringPtr(value string) *string {
	return &value
}

// TagsPtr returns a pointer to a copy of the provided tags.
func TagsPtr(tags []string) *[]string {
	copied := append([]string{}, tags...)
	return &copied
}

// MinTitleLength is the minimum length of a trimmed todo title.
const MinTitleLength = 3

// MaxTitleLength is the maximum allowed length for a todo title.
const MaxTitleLength = 500
