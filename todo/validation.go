package todo

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

var (
	// ErrEmptyTitle is returned when a todo title is blank.
	ErrEmptyTitle = errors.New("title is required")

	// ErrTitleTooShort is returned when a trimmed title is shorter than MinTitleLength.
	ErrTitleTooShort = errors.New("title must be at least 3 characters")

	// ErrTitleTooLong is returned when a todo title exceeds MaxTitleLength.
	ErrTitleTooLong = errors.New("title exceeds maximum length")

	// ErrInvalidStatus is returned when an invalid status is provided.
	ErrInvalidStatus = errors.New("invalid status")

	// ErrInvalidPriority is returned when an invalid priority is provided.
	ErrInvalidPriority = errors.New("invalid priority")

	// ErrDuplicateTag is returned when a tag list repeats an entry.
	ErrDuplicateTag = errors.New("duplicate tag")

	// ErrEmptyTag is returned when a tag is blank.
	ErrEmptyTag = errors.New("tag cannot be empty")

	// ErrMissingID is returned when a record or patch has no ID.
	ErrMissingID = errors.New("todo id is required")

	// ErrUpdatedBeforeCreated is returned when updatedAt precedes createdAt.
	ErrUpdatedBeforeCreated = errors.New("updatedAt is before createdAt")
)

// ValidateTitle checks if the title is valid once surrounding whitespace is trimmed.
func ValidateTitle(title string) error {
	trimmed := strings.TrimSpace(title)
	if trimmed == "" {
		return ErrEmptyTitle
	}
	length := utf8.RuneCountInString(trimmed)
	if length < MinTitleLength {
		return ErrTitleTooShort
	}
	if length > MaxTitleLength {
		return fmt.Errorf("%w: %d > %d", ErrTitleTooLong, length, MaxTitleLength)
	}
	return nil
}

// ValidateStatus checks that the status is one of the three columns.
func ValidateStatus(status Status) error {
	if !status.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}
	return nil
}

// ValidatePriority checks that the priority is low, medium, or high.
func ValidatePriority(priority Priority) error {
	if !priority.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidPriority, priority)
	}
	return nil
}

// ValidateTags checks for blank and duplicate tags. Comparison is case-sensitive.
func ValidateTags(tags []string) error {
	seen := make(map[string]struct{}, len(tags))
	for _, tag := range tags {
		if strings.TrimSpace(tag) == "" {
			return ErrEmptyTag
		}
		if _, ok := seen[tag]; ok {
			return fmt.Errorf("%w: %q", ErrDuplicateTag, tag)
		}
		seen[tag] = struct{}{}
	}
	return nil
}

// ValidateTodo checks if a stored record is valid.
func ValidateTodo(t *Todo) error {
	if t.ID == "" {
		return ErrMissingID
	}
	if err := ValidateTitle(t.Title); err != nil {
		return err
	}
	if err := ValidateStatus(t.Status); err != nil {
		return err
	}
	if err := ValidatePriority(t.Priority); err != nil {
		return err
	}
	if err := ValidateTags(t.Tags); err != nil {
		return err
	}
	if t.UpdatedAt.Before(t.CreatedAt) {
		return ErrUpdatedBeforeCreated
	}
	return nil
}
