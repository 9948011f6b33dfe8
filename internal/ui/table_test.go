package ui

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
)

func TestTruncateCellCountsRunes(t *testing.T) {
	value := strings.Repeat("a", tableCellMaxWidth-1) + "é"

	got := TruncateCell(value)

	if got != value {
		t.Fatalf("expected value to remain untruncated, got %q", got)
	}
}

func TestTruncateCellNormalizesLineBreaks(t *testing.T) {
	got := TruncateCell("Hello\nWorld\r\nAgain\tTab")

	if got != "Hello World Again Tab" {
		t.Fatalf("expected line breaks to normalize, got %q", got)
	}
}

func TestTruncateCellIgnoresANSICodes(t *testing.T) {
	value := "\x1b[1m\x1b[36m" + strings.Repeat("a", tableCellMaxWidth) + "\x1b[0m"

	got := TruncateCell(value)

	if got != value {
		t.Fatalf("expected value to remain untruncated, got %q", got)
	}
}

func TestTruncateCellAddsEllipsis(t *testing.T) {
	got := TruncateCell(strings.Repeat("b", tableCellMaxWidth+10))

	if lipgloss.Width(got) != tableCellMaxWidth {
		t.Fatalf("expected width %d, got %d", tableCellMaxWidth, lipgloss.Width(got))
	}
	if !strings.HasSuffix(got, tableCellEllipsis) {
		t.Fatalf("expected ellipsis suffix, got %q", got)
	}
}

func TestFormatTableAlignsColumns(t *testing.T) {
	table := NewTable([]string{"ID", "TITLE", "STATUS"}, 2)
	table.AddRow("a", "Write docs", "todo")
	table.AddRow("bbb", "Ship", "done")

	got := table.String()

	expected := "ID   TITLE       STATUS\n" +
		"a    Write docs  todo\n" +
		"bbb  Ship        done\n"
	if got != expected {
		t.Fatalf("unexpected table:\n%q\nexpected:\n%q", got, expected)
	}
	if table.Len() != 2 {
		t.Fatalf("expected 2 rows, got %d", table.Len())
	}
}

func TestFormatTableNormalizesLineBreaks(t *testing.T) {
	got := FormatTable([]string{"COL", "X"}, [][]string{{"Hello\nWorld", "y"}})

	expected := "COL          X\nHello World  y\n"
	if got != expected {
		t.Fatalf("expected normalized table output, got %q", got)
	}
}
