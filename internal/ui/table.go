// Package ui formats todos for terminal output.
package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

const (
	tableCellMaxWidth = 50
	tableCellEllipsis = "..."
	tableColumnGap    = 2
)

var tableHeaderStyle = lipgloss.NewStyle().Bold(true)

// Table collects rows and renders them as aligned columns.
type Table struct {
	headers []string
	rows    [][]string
}

// NewTable returns a table with room for capacity rows.
func NewTable(headers []string, capacity int) *Table {
	return &Table{headers: headers, rows: make([][]string, 0, capacity)}
}

// AddRow appends a row. Cells are truncated to a readable width.
func (t *Table) AddRow(cells ...string) {
	row := make([]string, len(cells))
	for i, cell := range cells {
		row[i] = TruncateCell(cell)
	}
	t.rows = append(t.rows, row)
}

// Len returns the number of rows added so far.
func (t *Table) Len() int {
	return len(t.rows)
}

// String renders the table.
func (t *Table) String() string {
	return FormatTable(t.headers, t.rows)
}

// FormatTable renders headers and rows as columns separated by two spaces.
// The last cell of each line is not padded.
func FormatTable(headers []string, rows [][]string) string {
	widths := make([]int, len(headers))
	for i, header := range headers {
		widths[i] = lipgloss.Width(normalizeCell(header))
	}
	for _, row := range rows {
		for i, cell := range row {
			if i >= len(widths) {
				break
			}
			if w := lipgloss.Width(normalizeCell(cell)); w > widths[i] {
				widths[i] = w
			}
		}
	}

	var builder strings.Builder
	writeRow := func(row []string, style *lipgloss.Style) {
		for i, cell := range row {
			cell = normalizeCell(cell)
			padding := 0
			if i < len(row)-1 && i < len(widths) {
				padding = widths[i] - lipgloss.Width(cell) + tableColumnGap
			}
			if style != nil {
				cell = style.Render(cell)
			}
			builder.WriteString(cell)
			builder.WriteString(strings.Repeat(" ", padding))
		}
		builder.WriteByte('\n')
	}

	writeRow(headers, &tableHeaderStyle)
	for _, row := range rows {
		writeRow(row, nil)
	}
	return builder.String()
}

// TruncateCell flattens line breaks and limits value to the cell width,
// keeping any ANSI styling intact.
func TruncateCell(value string) string {
	value = normalizeCell(value)
	if lipgloss.Width(value) <= tableCellMaxWidth {
		return value
	}
	return ansi.Truncate(value, tableCellMaxWidth, tableCellEllipsis)
}

func normalizeCell(value string) string {
	return strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ", "\t", " ").Replace(value)
}
