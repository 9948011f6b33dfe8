package todo

import "strings"

// normalizeEnum lowercases the value and folds the label spellings
// ("in progress", "in-progress") onto the wire form.
func normalizeEnum(value string) string {
	value = strings.ToLower(strings.TrimSpace(value))
	value = strings.ReplaceAll(value, "-", "_")
	return strings.Join(strings.Fields(value), "_")
}
