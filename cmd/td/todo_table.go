package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/amonks/todopro/internal/ui"
	"github.com/amonks/todopro/todo"
)

// printTodoTable prints todos in a table format.
func printTodoTable(w io.Writer, todos []todo.Todo, now time.Time) {
	if len(todos) == 0 {
		fmt.Fprintln(w, "No todos found.")
		return
	}

	fmt.Fprint(w, formatTodoTable(todos, now))
}

func formatTodoTable(todos []todo.Todo, now time.Time) string {
	prefixLengths := todoIDPrefixLengths(todos)
	table := ui.NewTable([]string{"ID", "STATUS", "PRIORITY", "DUE", "AGE", "TITLE", "TAGS"}, len(todos))
	for _, t := range todos {
		table.AddRow(
			highlightID(t.ID, prefixLengths[strings.ToLower(t.ID)]),
			ui.StatusLabel(t.Status),
			ui.PriorityLabel(t.Priority),
			formatDueCell(t, now),
			formatTodoAge(t, now),
			t.Title,
			formatTags(t.Tags),
		)
	}
	return table.String()
}

func formatTodoAge(item todo.Todo, now time.Time) string {
	age, ok := todo.AgeData(item, now)
	if !ok {
		return "-"
	}
	return ui.FormatDurationShort(age)
}

func formatDueCell(item todo.Todo, now time.Time) string {
	if item.DueDate == nil {
		return "-"
	}
	due := item.DueDate.Format(ui.DateLayout)
	if todo.IsOverdue(item, now) {
		return ui.Overdue(due)
	}
	return due
}

func formatTags(tags []string) string {
	if len(tags) == 0 {
		return "-"
	}
	return strings.Join(tags, ", ")
}
