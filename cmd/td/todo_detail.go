package main

import (
	"fmt"
	"io"
	"time"

	"github.com/amonks/todopro/internal/markdown"
	"github.com/amonks/todopro/internal/ui"
	"github.com/amonks/todopro/todo"
)

const todoDetailLineWidth = 80

// printTodoDetail prints detailed information about a todo.
func printTodoDetail(w io.Writer, t todo.Todo, now time.Time) {
	fmt.Fprintf(w, "ID:       %s\n", t.ID)
	fmt.Fprintf(w, "Title:    %s\n", t.Title)
	fmt.Fprintf(w, "Status:   %s\n", ui.StatusLabel(t.Status))
	fmt.Fprintf(w, "Priority: %s\n", ui.PriorityLabel(t.Priority))
	fmt.Fprintf(w, "Tags:     %s\n", formatTags(t.Tags))
	fmt.Fprintf(w, "Due:      %s\n", ui.FormatDue(t.DueDate, now))
	fmt.Fprintf(w, "Created:  %s (%s)\n", t.CreatedAt.Format("2006-01-02 15:04:05"), ui.FormatTimeAgo(t.CreatedAt, now))
	fmt.Fprintf(w, "Updated:  %s\n", t.UpdatedAt.Format("2006-01-02 15:04:05"))

	if t.Description != "" {
		fmt.Fprintf(w, "\nDescription:\n%s\n", formatTodoDescription(t.Description))
	}
}

func formatTodoDescription(value string) string {
	rendered := markdown.SafeRender(todoDetailLineWidth, 2, []byte(value))
	if rendered == nil {
		return "  -"
	}
	return string(rendered)
}
