// Package editor opens todos in the user's editor for td create and td update.
package editor

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"golang.org/x/term"
)

const fallbackEditor = "vi"

// IsInteractive reports whether stdin is a terminal.
func IsInteractive() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// command resolves the editor invocation from $VISUAL, then $EDITOR, then vi.
// Values may carry arguments, as in "code --wait".
func command(getenv func(string) string) []string {
	for _, key := range []string{"VISUAL", "EDITOR"} {
		if fields := strings.Fields(getenv(key)); len(fields) > 0 {
			return fields
		}
	}
	return []string{fallbackEditor}
}

// Edit opens path in the editor and waits for it to exit.
func Edit(path string) error {
	argv := append(command(os.Getenv), path)
	cmd := exec.Command(argv[0], argv[1:]...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	err := cmd.Run()
	var exitErr *exec.ExitError
	switch {
	case err == nil:
		return nil
	case errors.As(err, &exitErr):
		return fmt.Errorf("%s exited with status %d; todo not saved", argv[0], exitErr.ExitCode())
	default:
		return fmt.Errorf("run editor %s: %w", argv[0], err)
	}
}
