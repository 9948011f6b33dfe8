package todo

import (
	"testing"
	"time"
)

func TestDueData(t *testing.T) {
	now := time.Date(2025, 1, 10, 12, 0, 0, 0, time.UTC)
	due := now.Add(-time.Hour)

	item := Todo{Status: StatusTodo, DueDate: &due}
	remaining, ok := DueData(item, now)
	if !ok || remaining != -time.Hour {
		t.Fatalf("expected -1h remaining, got %s (ok=%v)", remaining, ok)
	}
	if !IsOverdue(item, now) {
		t.Fatalf("expected overdue")
	}

	item.Status = StatusDone
	if IsOverdue(item, now) {
		t.Fatalf("done todos are never overdue")
	}

	if _, ok := DueData(Todo{}, now); ok {
		t.Fatalf("expected no due data without a due date")
	}
}

func TestAgeData(t *testing.T) {
	now := time.Date(2025, 1, 10, 12, 0, 0, 0, time.UTC)
	item := Todo{CreatedAt: now.Add(-90 * time.Minute)}
	age, ok := AgeData(item, now)
	if !ok || age != 90*time.Minute {
		t.Fatalf("expected 90m, got %s (ok=%v)", age, ok)
	}
}
