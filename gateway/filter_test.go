package gateway

import (
	"testing"
	"time"

	"github.com/amonks/todopro/query"
	"github.com/amonks/todopro/todo"
	"github.com/google/go-cmp/cmp"
)

var testNow = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func selectFixture() []todo.Todo {
	due := testNow.Add(24 * time.Hour)
	return []todo.Todo{
		{ID: "a", Title: "Buy milk", Status: todo.StatusTodo, Priority: todo.PriorityLow, Tags: []string{"shopping"}, CreatedAt: testNow.Add(3 * time.Hour)},
		{ID: "b", Title: "Write report", Description: "quarterly numbers", Status: todo.StatusInProgress, Priority: todo.PriorityHigh, Tags: []string{}, CreatedAt: testNow.Add(2 * time.Hour), DueDate: &due},
		{ID: "c", Title: "Call plumber", Status: todo.StatusDone, Priority: todo.PriorityMedium, Tags: []string{"Home"}, CreatedAt: testNow.Add(time.Hour)},
		{ID: "d", Title: "Milk the budget", Status: todo.StatusTodo, Priority: todo.PriorityHigh, Tags: []string{}, CreatedAt: testNow},
	}
}

func resultIDs(items []todo.Todo) []string {
	out := make([]string, len(items))
	for i, item := range items {
		out[i] = item.ID
	}
	return out
}

func TestSelect(t *testing.T) {
	tests := []struct {
		name string
		d    query.Descriptor
		want []string
	}{
		{"defaults newest first", query.Default(), []string{"a", "b", "c", "d"}},
		{"search title", query.Default().WithFilters(query.Filters{Search: "MILK"}), []string{"a", "d"}},
		{"search description", query.Default().WithFilters(query.Filters{Search: "quarterly"}), []string{"b"}},
		{"search tag", query.Default().WithFilters(query.Filters{Search: "home"}), []string{"c"}},
		{"status", query.Default().WithFilters(query.Filters{Status: todo.StatusPtr(todo.StatusTodo)}), []string{"a", "d"}},
		{"priority", query.Default().WithFilters(query.Filters{Priority: todo.PriorityPtr(todo.PriorityHigh)}), []string{"b", "d"}},
		{"unknown status matches nothing", query.Default().WithFilters(query.Filters{Status: todo.StatusPtr("archived")}), []string{}},
		{"priority asc", query.Default().WithSort(todo.SortByPriority, todo.SortAsc), []string{"a", "c", "b", "d"}},
		{"title asc", query.Default().WithSort(todo.SortByTitle, todo.SortAsc), []string{"a", "c", "d", "b"}},
		{"due date desc", query.Default().WithSort(todo.SortByDueDate, todo.SortDesc), []string{"b", "a", "c", "d"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Select(selectFixture(), tt.d)
			if diff := cmp.Diff(tt.want, resultIDs(got.Items)); diff != "" {
				t.Fatalf("ids mismatch (-want +got):\n%s", diff)
			}
			if got.Total != len(tt.want) {
				t.Fatalf("expected total %d, got %d", len(tt.want), got.Total)
			}
		})
	}
}

func TestSelectPaginates(t *testing.T) {
	d := query.Default()
	d.ItemsPerPage = 3
	d.Page = 2

	got := Select(selectFixture(), d)
	if diff := cmp.Diff([]string{"d"}, resultIDs(got.Items)); diff != "" {
		t.Fatalf("ids mismatch (-want +got):\n%s", diff)
	}
	if got.Total != 4 || got.Page != 2 || got.ItemsPerPage != 3 {
		t.Fatalf("unexpected metadata %+v", got)
	}

	d.Page = 9
	if got := Select(selectFixture(), d); len(got.Items) != 0 || got.Total != 4 {
		t.Fatalf("expected empty page past the end, got %+v", got)
	}
}
