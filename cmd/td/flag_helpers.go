package main

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	internalstrings "github.com/amonks/todopro/internal/strings"
	"github.com/amonks/todopro/internal/ui"
	"github.com/amonks/todopro/todo"
)

var flagAliases = map[string]string{
	"desc":     "description",
	"per-page": "items-per-page",
	"tag":      "tags",
}

func addFlagAliases(cmds ...*cobra.Command) {
	for _, cmd := range cmds {
		setFlagAliases(cmd.Flags(), flagAliases)
	}
}

func setFlagAliases(flags *pflag.FlagSet, aliases map[string]string) {
	normalize := flags.GetNormalizeFunc()
	flags.SetNormalizeFunc(func(f *pflag.FlagSet, name string) pflag.NormalizedName {
		if alias, ok := aliases[name]; ok {
			name = alias
		}
		return normalize(f, name)
	})
}

func hasChangedFlags(cmd *cobra.Command, flags ...string) bool {
	for _, flag := range flags {
		if cmd.Flags().Changed(flag) {
			return true
		}
	}
	return false
}

// todoFieldFlags set a todo field on td create and td update.
var todoFieldFlags = []string{"title", "description", "status", "priority", "tags", "due"}

func registerEditorFlags(cmd *cobra.Command) {
	cmd.Flags().BoolP("edit", "e", false, "Open $EDITOR (default on a terminal when no field is given)")
	cmd.Flags().Bool("no-edit", false, "Never open $EDITOR")
}

// editorRequested decides whether create or update opens $EDITOR. --edit and
// --no-edit are explicit. Otherwise the editor opens on a terminal when no
// todo field was given, either as a flag or as a positional title.
func editorRequested(cmd *cobra.Command, hasTitleArg, interactive bool) (bool, error) {
	edit, _ := cmd.Flags().GetBool("edit")
	noEdit, _ := cmd.Flags().GetBool("no-edit")
	switch {
	case edit && noEdit:
		return false, errors.New("--edit and --no-edit cannot be used together")
	case edit:
		return true, nil
	case noEdit:
		return false, nil
	}
	return interactive && !hasTitleArg && !hasChangedFlags(cmd, todoFieldFlags...), nil
}

// resolveDescription replaces "-" with the contents of stdin.
func resolveDescription(value string, stdin io.Reader) (string, error) {
	if value != "-" {
		return value, nil
	}
	data, err := io.ReadAll(stdin)
	if err != nil {
		return "", fmt.Errorf("read description from stdin: %w", err)
	}
	return internalstrings.TrimTrailingNewlines(string(data)), nil
}

// parseDue reads a YYYY-MM-DD date as midnight UTC.
func parseDue(value string) (*time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	due, err := time.ParseInLocation(ui.DateLayout, value, time.UTC)
	if err != nil {
		return nil, fmt.Errorf("invalid due date %q: expected YYYY-MM-DD", value)
	}
	return &due, nil
}

func parseOptionalStatus(value string) (*todo.Status, error) {
	if strings.TrimSpace(value) == "" {
		return nil, nil
	}
	status, err := todo.ParseStatus(value)
	if err != nil {
		return nil, err
	}
	return &status, nil
}

func parseOptionalPriority(value string) (*todo.Priority, error) {
	if strings.TrimSpace(value) == "" {
		return nil, nil
	}
	priority, err := todo.ParsePriority(value)
	if err != nil {
		return nil, err
	}
	return &priority, nil
}
