package board

import (
	"testing"

	"github.com/amonks/todopro/todo"
)

func TestShift(t *testing.T) {
	columns := Columns([]todo.Todo{
		{ID: "a", Status: todo.StatusTodo},
		{ID: "b", Status: todo.StatusTodo},
		{ID: "c", Status: todo.StatusDone},
	})

	drop, ok := Shift(columns, "b", 1)
	if !ok {
		t.Fatalf("expected shift to succeed")
	}
	if drop.Source != (Location{DroppableID: todo.StatusTodo, Index: 1}) {
		t.Fatalf("unexpected source %+v", drop.Source)
	}
	if *drop.Destination != (Location{DroppableID: todo.StatusInProgress, Index: 0}) {
		t.Fatalf("unexpected destination %+v", *drop.Destination)
	}

	if _, ok := Shift(columns, "c", 1); ok {
		t.Fatalf("expected shift past the last column to fail")
	}
	if _, ok := Shift(columns, "a", -1); ok {
		t.Fatalf("expected shift before the first column to fail")
	}
	if _, ok := Shift(columns, "missing", 1); ok {
		t.Fatalf("expected unknown id to fail")
	}
}

func TestDropResultIsNoop(t *testing.T) {
	source := Location{DroppableID: todo.StatusTodo, Index: 2}
	if !(DropResult{Source: source}).IsNoop() {
		t.Fatalf("expected cancelled drop to be a no-op")
	}
	if !(DropResult{Source: source, Destination: &Location{DroppableID: todo.StatusTodo, Index: 2}}).IsNoop() {
		t.Fatalf("expected same-place drop to be a no-op")
	}
	if (DropResult{Source: source, Destination: &Location{DroppableID: todo.StatusTodo, Index: 1}}).IsNoop() {
		t.Fatalf("expected reorder to count as a move")
	}
}
