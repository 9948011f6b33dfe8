package todo

import (
	"strings"
	"time"
)

// NewTodo is the body of a create request. The gateway assigns ID and timestamps.
type NewTodo struct {
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Status      Status     `json:"status"`
	Priority    Priority   `json:"priority"`
	Tags        []string   `json:"tags"`
	DueDate     *time.Time `json:"dueDate,omitempty"`
}

// Normalize trims text fields, dedupes tags, and fills the default status and priority.
func (n NewTodo) Normalize() NewTodo {
	n.Title = strings.TrimSpace(n.Title)
	n.Description = strings.TrimSpace(n.Description)
	n.Tags = NormalizeTags(n.Tags)
	if n.Status == "" {
		n.Status = StatusTodo
	}
	if n.Priority == "" {
		n.Priority = PriorityMedium
	}
	return n
}

// Validate checks the input the way the create form does, before any request is sent.
func (n NewTodo) Validate() error {
	if err := ValidateTitle(n.Title); err != nil {
		return err
	}
	if err := ValidateStatus(n.Status); err != nil {
		return err
	}
	if err := ValidatePriority(n.Priority); err != nil {
		return err
	}
	return ValidateTags(n.Tags)
}

// Build turns the input into a record with the given id and creation time.
func (n NewTodo) Build(id string, now time.Time) Todo {
	n = n.Normalize()
	tags := n.Tags
	if tags == nil {
		tags = []string{}
	}
	created := Todo{
		ID:          id,
		Title:       n.Title,
		Description: n.Description,
		Status:      n.Status,
		Priority:    n.Priority,
		Tags:        tags,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if n.DueDate != nil {
		due := *n.DueDate
		created.DueDate = &due
	}
	return created
}

// Patch changes any subset of a todo's mutable fields. Nil fields are left alone.
type Patch struct {
	ID          string     `json:"id,omitempty"`
	Title       *string    `json:"title,omitempty"`
	Description *string    `json:"description,omitempty"`
	Status      *Status    `json:"status,omitempty"`
	Priority    *Priority  `json:"priority,omitempty"`
	Tags        *[]string  `json:"tags,omitempty"`
	DueDate     *time.Time `json:"dueDate,omitempty"`
}

// PatchFromTodo builds a patch that sets every mutable field to the record's
// values, which is what the td update editor submits. A nil due date leaves
// the stored one alone.
func PatchFromTodo(t Todo) Patch {
	patch := Patch{
		ID:          t.ID,
		Title:       StringPtr(t.Title),
		Description: StringPtr(t.Description),
		Status:      StatusPtr(t.Status),
		Priority:    PriorityPtr(t.Priority),
		Tags:        TagsPtr(t.Tags),
	}
	if t.DueDate != nil {
		due := *t.DueDate
		patch.DueDate = &due
	}
	return patch
}

// IsEmpty reports whether the patch changes nothing.
func (p Patch) IsEmpty() bool {
	return p.Title == nil && p.Description == nil && p.Status == nil &&
		p.Priority == nil && p.Tags == nil && p.DueDate == nil
}

// Normalize trims the title and description and dedupes tags.
func (p Patch) Normalize() Patch {
	if p.Title != nil {
		p.Title = StringPtr(strings.TrimSpace(*p.Title))
	}
	if p.Description != nil {
		p.Description = StringPtr(strings.TrimSpace(*p.Description))
	}
	if p.Tags != nil {
		tags := NormalizeTags(*p.Tags)
		if tags == nil {
			tags = []string{}
		}
		p.Tags = &tags
	}
	return p
}

// Validate checks every field the patch sets.
func (p Patch) Validate() error {
	if p.ID == "" {
		return ErrMissingID
	}
	if p.Title != nil {
		if err := ValidateTitle(*p.Title); err != nil {
			return err
		}
	}
	if p.Status != nil {
		if err := ValidateStatus(*p.Status); err != nil {
			return err
		}
	}
	if p.Priority != nil {
		if err := ValidatePriority(*p.Priority); err != nil {
			return err
		}
	}
	if p.Tags != nil {
		if err := ValidateTags(*p.Tags); err != nil {
			return err
		}
	}
	return nil
}

// Apply merges the patch into a copy of t. Timestamps are left to the caller.
func (p Patch) Apply(t Todo) Todo {
	merged := t.Clone()
	if p.Title != nil {
		merged.Title = *p.Title
	}
	if p.Description != nil {
		merged.Description = *p.Description
	}
	if p.Status != nil {
		merged.Status = *p.Status
	}
	if p.Priority != nil {
		merged.Priority = *p.Priority
	}
	if p.Tags != nil {
		merged.Tags = append([]string{}, (*p.Tags)...)
	}
	if p.DueDate != nil {
		due := *p.DueDate
		merged.DueDate = &due
	}
	return merged
}
