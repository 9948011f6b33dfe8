package boardtui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/mattn/go-runewidth"

	"github.com/amonks/todopro/board"
	"github.com/amonks/todopro/internal/markdown"
	internalstrings "github.com/amonks/todopro/internal/strings"
	"github.com/amonks/todopro/internal/ui"
	"github.com/amonks/todopro/todo"
)

const (
	defaultWidth  = 100
	defaultHeight = 30
)

const boardHelp = "h/l column  j/k move  space grab  H/L drag  enter open  c new  d delete  / search  f status  p priority  o sort  n/b page  +/- size  tab list  ? help  q quit"

const listHelp = "j/k move  s status  enter open  c new  d delete  / search  f status  p priority  o sort  n/b page  +/- size  tab board  ? help  q quit"

func (m model) View() string {
	width := m.width
	if width <= 0 {
		width = defaultWidth
	}
	height := m.height
	if height <= 0 {
		height = defaultHeight
	}

	var body string
	switch {
	case m.showHelp:
		body = m.helpView(width)
	case m.confirmDelete != nil:
		body = m.confirmView(width)
	case m.showDetail:
		body = m.detailView(width)
	case m.mode == modeList:
		body = m.listView(width, height-4)
	default:
		body = m.boardView(width, height-4)
	}

	sections := []string{m.headerView(width), body, m.statusView(width), m.footerView(width)}
	return strings.Join(sections, "\n")
}

func (m model) headerView(width int) string {
	boardTab := modeIdleStyle.Render("Board")
	listTab := modeIdleStyle.Render("List")
	if m.mode == modeList {
		listTab = modeActiveStyle.Render("List")
	} else {
		boardTab = modeActiveStyle.Render("Board")
	}

	d := m.controller.Descriptor()
	parts := []string{}
	if d.Search != "" {
		parts = append(parts, fmt.Sprintf("search %q", d.Search))
	}
	parts = append(parts,
		"status "+describeFilter(d.Status),
		"priority "+describeFilter(d.Priority),
		fmt.Sprintf("sort %s %s", d.SortBy, d.SortOrder),
		pageSummary(m.state.Page.Page, m.state.Page.TotalPages, m.state.Page.TotalItems),
		fmt.Sprintf("%d per page", d.ItemsPerPage),
	)
	if m.state.Loading {
		parts = append(parts, "Loading...")
	}
	if m.state.Pending {
		parts = append(parts, "Saving...")
	}

	line := boardTab + listTab + " " + strings.Join(parts, "  ")
	return headerStyle.Width(width).Render(ansi.Truncate(line, width, ""))
}

func pageSummary(page, totalPages, totalItems int) string {
	if totalPages < 1 {
		totalPages = 1
	}
	if page < 1 {
		page = 1
	}
	return fmt.Sprintf("page %d/%d (%d)", page, totalPages, totalItems)
}

func (m model) boardView(width, height int) string {
	columns := board.Columns(m.state.Page.Items)
	columnWidth := max(width/len(columns)-4, 12)
	rendered := make([]string, len(columns))
	for i, column := range columns {
		lines := []string{labelStyle.Render(fmt.Sprintf("%s (%d)", column.Status.Label(), len(column.Items)))}
		for j, item := range column.Items {
			line := cardLine(item)
			if m.grab != nil && item.ID == m.grab.id {
				line = "» " + line
			}
			line = ansi.Truncate(line, columnWidth, "...")
			if i == m.column && j == m.index {
				line = selectedStyle.Render(line)
			}
			lines = append(lines, line)
		}
		if len(column.Items) == 0 {
			lines = append(lines, valueMuted.Render("empty"))
		}
		style := columnStyle
		if i == m.column {
			style = columnActiveStyle
		}
		rendered[i] = style.Width(columnWidth).Height(max(height-2, 1)).Render(strings.Join(lines, "\n"))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, rendered...)
}

func cardLine(item todo.Todo) string {
	marker := map[todo.Priority]string{
		todo.PriorityHigh:   "!",
		todo.PriorityMedium: "-",
		todo.PriorityLow:    ".",
	}[item.Priority]
	if marker == "" {
		marker = " "
	}
	return marker + " " + internalstrings.NormalizeWhitespace(item.Title)
}

func (m model) listView(width, height int) string {
	items := m.state.Page.Items
	if len(items) == 0 {
		if m.state.Loading {
			return valueMuted.Render("Loading...")
		}
		return valueMuted.Render("No todos found.")
	}
	now := time.Now()
	lines := make([]string, 0, len(items))
	for i, item := range items {
		line := strings.Join([]string{
			runewidth.FillRight(item.Status.Label(), 12),
			runewidth.FillRight(string(item.Priority), 7),
			runewidth.FillRight(ui.FormatDue(item.DueDate, now), 26),
			internalstrings.NormalizeWhitespace(item.Title),
		}, " ")
		line = ansi.Truncate(line, width, "...")
		if i == m.index {
			line = selectedStyle.Render(line)
		}
		lines = append(lines, line)
	}
	if len(lines) > height && height > 0 {
		start := min(max(m.index-height+1, 0), len(lines)-height)
		lines = lines[start : start+height]
	}
	return strings.Join(lines, "\n")
}

func (m model) detailView(width int) string {
	if m.state.LoadingOne {
		return valueMuted.Render("Loading...")
	}
	current := m.state.Current
	if current == nil || current.ID != m.selectedID {
		return valueMuted.Render("Todo not found")
	}
	now := time.Now()
	tags := "-"
	if len(current.Tags) > 0 {
		tags = strings.Join(current.Tags, ", ")
	}
	rows := [][2]string{
		{"ID", current.ID},
		{"Title", current.Title},
		{"Status", ui.StatusLabel(current.Status)},
		{"Priority", ui.PriorityLabel(current.Priority)},
		{"Tags", tags},
		{"Due", ui.FormatDue(current.DueDate, now)},
		{"Created", ui.FormatTimeAgo(current.CreatedAt, now)},
		{"Updated", ui.FormatTimeAgo(current.UpdatedAt, now)},
	}
	lines := make([]string, 0, len(rows)+2)
	for _, row := range rows {
		lines = append(lines, labelStyle.Render(fmt.Sprintf("%-9s", row[0]))+" "+row[1])
	}
	if current.Description != "" {
		lines = append(lines, "", string(markdown.SafeRender(max(width-4, 20), 2, []byte(current.Description))))
	}
	return strings.Join(lines, "\n")
}

func (m model) confirmView(width int) string {
	text := fmt.Sprintf("Delete %q?\n\nThis action cannot be undone.\n\ny confirm   n cancel", m.confirmDelete.Title)
	return modalStyle.Width(min(width-4, 60)).Render(text)
}

func (m model) helpView(width int) string {
	keys := [][2]string{
		{"h/l, arrows", "select column"},
		{"j/k, arrows", "select todo"},
		{"space", "grab a todo; h/l carry it, space drops, esc puts it back"},
		{"H/L, shift+arrows", "move todo to the neighbouring column"},
		{"s", "cycle status (list view)"},
		{"enter", "show details"},
		{"c", "create a todo"},
		{"d", "delete the selected todo"},
		{"/", "search"},
		{"f, p", "cycle status and priority filters"},
		{"o, O", "cycle sort key, flip order"},
		{"x", "clear filters"},
		{"n, b", "next and previous page"},
		{"+, -", "more or fewer todos per page"},
		{"r", "reload"},
		{"tab", "switch between board and list"},
		{"q", "quit"},
	}
	lines := make([]string, 0, len(keys))
	for _, key := range keys {
		lines = append(lines, labelStyle.Render(fmt.Sprintf("%-18s", key[0]))+" "+key[1])
	}
	return modalStyle.Width(min(width-4, 70)).Render(strings.Join(lines, "\n"))
}

func (m model) statusView(width int) string {
	switch m.prompt {
	case promptSearch:
		return "Search: " + m.input.View()
	case promptCreate:
		return "New todo: " + m.input.View()
	}
	text := m.status
	level := m.statusLevel
	if text == "" && m.state.Error != "" {
		text = m.state.Error
		level = statusError
	}
	text = ansi.Truncate(text, width, "...")
	switch level {
	case statusError:
		return statusErrorStyle.Render(text)
	case statusInfo:
		return statusSuccessStyle.Render(text)
	}
	return text
}

func (m model) footerView(width int) string {
	help := boardHelp
	if m.mode == modeList {
		help = listHelp
	}
	return valueMuted.Render(ansi.Truncate(help, width, "..."))
}
