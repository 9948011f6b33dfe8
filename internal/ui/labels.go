package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/amonks/todopro/todo"
)

var (
	statusStyles = map[todo.Status]lipgloss.Style{
		todo.StatusTodo:       lipgloss.NewStyle().Foreground(lipgloss.Color("250")),
		todo.StatusInProgress: lipgloss.NewStyle().Foreground(lipgloss.Color("33")),
		todo.StatusDone:       lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
	}
	priorityStyles = map[todo.Priority]lipgloss.Style{
		todo.PriorityLow:    lipgloss.NewStyle().Foreground(lipgloss.Color("244")),
		todo.PriorityMedium: lipgloss.NewStyle().Foreground(lipgloss.Color("3")),
		todo.PriorityHigh:   lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true),
	}
	overdueStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
)

// StatusLabel renders a status the way people say it, e.g. "in progress".
func StatusLabel(status todo.Status) string {
	style, ok := statusStyles[status]
	if !ok {
		return string(status)
	}
	return style.Render(status.Label())
}

// PriorityLabel renders a priority.
func PriorityLabel(priority todo.Priority) string {
	style, ok := priorityStyles[priority]
	if !ok {
		return string(priority)
	}
	return style.Render(string(priority))
}

// Overdue highlights text for an overdue todo.
func Overdue(text string) string {
	return overdueStyle.Render(text)
}
