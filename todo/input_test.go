package todo

import (
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestNewTodoNormalize(t *testing.T) {
	input := NewTodo{
		Title:       "  Plan sprint ",
		Description: " notes ",
		Tags:        []string{"work", "work", " planning"},
	}.Normalize()

	want := NewTodo{
		Title:       "Plan sprint",
		Description: "notes",
		Status:      StatusTodo,
		Priority:    PriorityMedium,
		Tags:        []string{"work", "planning"},
	}
	if diff := cmp.Diff(want, input); diff != "" {
		t.Fatalf("Normalize mismatch (-want +got):\n%s", diff)
	}
}

func TestNewTodoValidate(t *testing.T) {
	input := NewTodo{Title: "ab", Status: StatusTodo, Priority: PriorityLow}
	if err := input.Validate(); !errors.Is(err, ErrTitleTooShort) {
		t.Fatalf("expected ErrTitleTooShort, got %v", err)
	}

	input.Title = "abc"
	if err := input.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	input.Status = "blocked"
	if err := input.Validate(); !errors.Is(err, ErrInvalidStatus) {
		t.Fatalf("expected ErrInvalidStatus, got %v", err)
	}
}

func TestNewTodoBuild(t *testing.T) {
	now := time.Date(2025, 2, 1, 10, 0, 0, 0, time.UTC)
	built := NewTodo{Title: "Write tests"}.Build("id-1", now)

	if built.ID != "id-1" || built.Status != StatusTodo || built.Priority != PriorityMedium {
		t.Fatalf("unexpected record: %+v", built)
	}
	if built.Tags == nil {
		t.Fatalf("expected empty tag list, got nil")
	}
	if !built.CreatedAt.Equal(now) || !built.UpdatedAt.Equal(now) {
		t.Fatalf("expected timestamps %s, got %s/%s", now, built.CreatedAt, built.UpdatedAt)
	}
}

func TestPatchApply(t *testing.T) {
	created := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	original := Todo{
		ID:        "1",
		Title:     "Original",
		Status:    StatusTodo,
		Priority:  PriorityLow,
		Tags:      []string{"a"},
		CreatedAt: created,
		UpdatedAt: created,
	}

	patched := Patch{Status: StatusPtr(StatusDone), Tags: TagsPtr([]string{"a", "b"})}.Apply(original)

	if patched.Status != StatusDone {
		t.Fatalf("expected status done, got %q", patched.Status)
	}
	if patched.Title != "Original" || patched.Priority != PriorityLow {
		t.Fatalf("unset fields changed: %+v", patched)
	}
	if diff := cmp.Diff([]string{"a", "b"}, patched.Tags); diff != "" {
		t.Fatalf("tags mismatch (-want +got):\n%s", diff)
	}
	if original.Status != StatusTodo || len(original.Tags) != 1 {
		t.Fatalf("Apply modified its input: %+v", original)
	}
}

func TestPatchValidate(t *testing.T) {
	if err := (Patch{}).Validate(); !errors.Is(err, ErrMissingID) {
		t.Fatalf("expected ErrMissingID, got %v", err)
	}
	if err := (Patch{ID: "1", Title: StringPtr("ab")}).Validate(); !errors.Is(err, ErrTitleTooShort) {
		t.Fatalf("expected ErrTitleTooShort, got %v", err)
	}
	if err := (Patch{ID: "1", Status: StatusPtr(StatusInProgress)}).Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestPatchFromTodo(t *testing.T) {
	due := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	item := Todo{ID: "9", Title: "Edit me", Status: StatusDone, Priority: PriorityHigh, Tags: []string{"x"}, DueDate: &due}
	patch := PatchFromTodo(item)
	if patch.IsEmpty() {
		t.Fatalf("expected a full patch")
	}
	if diff := cmp.Diff(item, patch.Apply(Todo{ID: "9"})); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}
}
