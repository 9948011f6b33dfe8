package main

import (
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"

	"github.com/amonks/todopro/todo"
)

func TestDescriptionAliasUsesSingleFlag(t *testing.T) {
	var description string
	cmd := &cobra.Command{Use: "example"}
	addFlagAliases(cmd)
	cmd.Flags().StringVarP(&description, "description", "d", "", "Example description")

	if err := cmd.Flags().Set("desc", "Hello"); err != nil {
		t.Fatalf("set desc alias: %v", err)
	}
	if description != "Hello" {
		t.Fatalf("expected description to be set via alias, got %q", description)
	}
	if !cmd.Flags().Changed("description") {
		t.Fatal("expected description flag to be marked as changed")
	}
	if usage := cmd.Flags().FlagUsages(); strings.Contains(usage, "--desc ") {
		t.Fatalf("did not expect alias to appear in usage, got %q", usage)
	}
}

func TestResolveDescriptionReadsStdin(t *testing.T) {
	got, err := resolveDescription("-", strings.NewReader("from stdin\n"))
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if got != "from stdin" {
		t.Fatalf("expected trimmed stdin, got %q", got)
	}

	got, err = resolveDescription("inline", strings.NewReader("ignored"))
	if err != nil || got != "inline" {
		t.Fatalf("expected inline value, got %q, %v", got, err)
	}
}

func TestParseDue(t *testing.T) {
	due, err := parseDue("2030-01-15")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if want := time.Date(2030, 1, 15, 0, 0, 0, 0, time.UTC); !due.Equal(want) {
		t.Fatalf("expected %v, got %v", want, due)
	}

	if due, err := parseDue("  "); err != nil || due != nil {
		t.Fatalf("expected blank to mean no due date, got %v, %v", due, err)
	}
	if _, err := parseDue("15/01/2030"); err == nil {
		t.Fatal("expected an error for a non-ISO date")
	}
}

func TestParseOptionalFilters(t *testing.T) {
	status, err := parseOptionalStatus("In Progress")
	if err != nil || status == nil || *status != todo.StatusInProgress {
		t.Fatalf("expected in_progress, got %v, %v", status, err)
	}
	if status, err := parseOptionalStatus(""); err != nil || status != nil {
		t.Fatalf("expected no filter, got %v, %v", status, err)
	}
	if _, err := parseOptionalPriority("urgent"); err == nil {
		t.Fatal("expected an error for an unknown priority")
	}
}

func TestEditorRequested(t *testing.T) {
	cases := []struct {
		name        string
		args        []string
		titleArg    bool
		interactive bool
		want        bool
		wantErr     bool
	}{
		{name: "no fields on a terminal", interactive: true, want: true},
		{name: "no fields without a terminal"},
		{name: "field flag on a terminal", args: []string{"--priority", "high"}, interactive: true},
		{name: "positional title on a terminal", titleArg: true, interactive: true},
		{name: "alias counts as a field", args: []string{"--desc", "notes"}, interactive: true},
		{name: "edit with fields", args: []string{"--title", "x", "--edit"}, interactive: true, want: true},
		{name: "edit without a terminal", args: []string{"-e"}, want: true},
		{name: "no-edit on a terminal", args: []string{"--no-edit"}, interactive: true},
		{name: "edit and no-edit", args: []string{"--edit", "--no-edit"}, interactive: true, wantErr: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cmd := newUpdateTestCmd(t, tc.args...)
			got, err := editorRequested(cmd, tc.titleArg, tc.interactive)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected an error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Fatalf("expected %v, got %v", tc.want, got)
			}
		})
	}
}
