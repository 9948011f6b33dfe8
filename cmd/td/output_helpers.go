package main

import (
	"encoding/json"
	"fmt"
	"io"
)

func encodeJSON(w io.Writer, value any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(value)
}

// printNotifier shows board notifications as single lines.
type printNotifier struct {
	out    io.Writer
	errOut io.Writer
}

func (n printNotifier) Success(title, description string) {
	fmt.Fprintln(n.out, joinNotification(title, description))
}

func (n printNotifier) Error(title, description string) {
	fmt.Fprintln(n.errOut, joinNotification(title, description))
}

func joinNotification(title, description string) string {
	if description == "" {
		return title
	}
	return title + " " + description
}
