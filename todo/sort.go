package todo

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/amonks/todopro/internal/validation"
)

// SortKey names the field a list is ordered by.
type SortKey string

const (
	SortByCreatedAt SortKey = "createdAt"
	SortByDueDate   SortKey = "dueDate"
	SortByPriority  SortKey = "priority"
	SortByTitle     SortKey = "title"
)

// ValidSortKeys returns all sort keys.
func ValidSortKeys() []SortKey {
	return []SortKey{SortByCreatedAt, SortByDueDate, SortByPriority, SortByTitle}
}

// IsValid returns true if the key is a known sort key.
func (k SortKey) IsValid() bool {
	for _, valid := range ValidSortKeys() {
		if k == valid {
			return true
		}
	}
	return false
}

// ParseSortKey accepts a sort key, matching case-insensitively.
func ParseSortKey(value string) (SortKey, error) {
	trimmed := strings.TrimSpace(value)
	for _, key := range ValidSortKeys() {
		if strings.EqualFold(trimmed, string(key)) {
			return key, nil
		}
	}
	return "", fmt.Errorf("invalid sort key %q (valid: %s)", value, validation.FormatValidValues(ValidSortKeys()))
}

// SortOrder is the direction of a sort.
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// IsValid returns true for asc and desc.
func (o SortOrder) IsValid() bool {
	return o == SortAsc || o == SortDesc
}

// ParseSortOrder accepts asc or desc, case-insensitively.
func ParseSortOrder(value string) (SortOrder, error) {
	order := SortOrder(strings.ToLower(strings.TrimSpace(value)))
	if !order.IsValid() {
		return "", fmt.Errorf("invalid sort order %q (valid: %s)", value, validation.FormatValidValues([]SortOrder{SortAsc, SortDesc}))
	}
	return order, nil
}

// Compare orders a and b ascending by key. It returns a negative number when a
// sorts first, positive when b does, and 0 when they tie.
// Todos without a due date sort as if due at the zero instant.
func Compare(a, b Todo, key SortKey) int {
	switch key {
	case SortByDueDate:
		return compareTimes(dueOrZero(a), dueOrZero(b))
	case SortByPriority:
		return a.Priority.Rank() - b.Priority.Rank()
	case SortByTitle:
		return strings.Compare(strings.ToLower(a.Title), strings.ToLower(b.Title))
	default:
		return compareTimes(a.CreatedAt, b.CreatedAt)
	}
}

// Sort orders items in place. Ties keep their existing order.
func Sort(items []Todo, key SortKey, order SortOrder) {
	sort.SliceStable(items, func(i, j int) bool {
		cmp := Compare(items[i], items[j], key)
		if order == SortAsc {
			return cmp < 0
		}
		return cmp > 0
	})
}

func dueOrZero(t Todo) time.Time {
	if t.DueDate == nil {
		return time.Time{}
	}
	return *t.DueDate
}

func compareTimes(a, b time.Time) int {
	switch {
	case a.Before(b):
		return -1
	case a.After(b):
		return 1
	default:
		return 0
	}
}
