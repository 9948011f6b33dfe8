package todo

import "time"

// Todo represents a single task.
type Todo struct {
	// ID is assigned by the gateway and never changes.
	ID string `json:"id"`

	// Title is the short summary of the todo (3 to 500 chars after trimming).
	Title string `json:"title"`

	// Description provides additional context about the todo.
	Description string `json:"description,omitempty"`

	// Status is the column the todo belongs to.
	Status Status `json:"status"`

	// Priority is the importance level.
	Priority Priority `json:"priority"`

	// Tags is an ordered set; duplicates are not allowed.
	Tags []string `json:"tags"`

	// DueDate has no required relation to the other timestamps.
	DueDate *time.Time `json:"dueDate,omitempty"`

	// CreatedAt is when the todo was created.
	CreatedAt time.Time `json:"createdAt"`

	// UpdatedAt is when the todo was last modified.
	UpdatedAt time.Time `json:"updatedAt"`
}

// IsZero reports whether the todo has no ID.
func (t Todo) IsZero() bool {
	return t.ID == ""
}

// Clone returns a copy that shares no memory with t.
func (t Todo) Clone() Todo {
	cloned := t
	if t.Tags != nil {
		cloned.Tags = append([]string{}, t.Tags...)
	}
	if t.DueDate != nil {
		due := *t.DueDate
		cloned.DueDate = &due
	}
	return cloned
}

// CloneAll copies a slice of todos.
func CloneAll(items []Todo) []Todo {
	if items == nil {
		return nil
	}
	cloned := make([]Todo, len(items))
	for i, item := range items {
		cloned[i] = item.Clone()
	}
	return cloned
}
