// Package strings holds the text clean-ups shared by the CLI, config and
// credential layers.
package strings

import (
	"strings"
)

// NormalizeWhitespace collapses runs of whitespace into single spaces.
func NormalizeWhitespace(value string) string {
	fields := strings.Fields(value)
	if len(fields) == 0 {
		return ""
	}
	return strings.Join(fields, " ")
}

// NormalizeNewlines replaces CRLF and CR with LF.
func NormalizeNewlines(value string) string {
	if value == "" {
		return value
	}
	value = strings.ReplaceAll(value, "\r\n", "\n")
	return strings.ReplaceAll(value, "\r", "\n")
}

// TrimTrailingNewlines removes trailing CR/LF characters.
func TrimTrailingNewlines(value string) string {
	return strings.TrimRight(value, "\r\n")
}

// NormalizeServerURL trims whitespace and trailing slashes so that
// "http://host/" and "http://host" name the same gateway.
func NormalizeServerURL(value string) string {
	return strings.TrimRight(strings.TrimSpace(value), "/")
}
