// Package ids matches todo ids by prefix and finds the shortest prefix that
// still names one todo.
package ids

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNoMatch is returned when no id starts with the prefix.
	ErrNoMatch = errors.New("no todo id matches")

	// ErrAmbiguous is returned when more than one id starts with the prefix.
	ErrAmbiguous = errors.New("ambiguous todo id prefix")
)

// UniquePrefixLengths returns the shortest unique prefix length for each ID,
// keyed by the lowercased ID.
func UniquePrefixLengths(ids []string) map[string]int {
	uniqueIDs := normalizeUnique(ids)
	lengths := make(map[string]int, len(uniqueIDs))
	for _, id := range uniqueIDs {
		lengths[id] = uniquePrefixLength(id, uniqueIDs)
	}
	return lengths
}

// MatchPrefix returns the one id that equals prefix or starts with it,
// ignoring case. An exact match wins over longer ids sharing the prefix.
func MatchPrefix(ids []string, prefix string) (string, error) {
	needle := strings.ToLower(strings.TrimSpace(prefix))
	if needle == "" {
		return "", fmt.Errorf("%w %q", ErrNoMatch, prefix)
	}

	var matches []string
	for _, id := range ids {
		lower := strings.ToLower(id)
		if lower == needle {
			return id, nil
		}
		if strings.HasPrefix(lower, needle) {
			matches = append(matches, id)
		}
	}
	switch len(matches) {
	case 0:
		return "", fmt.Errorf("%w %q", ErrNoMatch, prefix)
	case 1:
		return matches[0], nil
	default:
		return "", fmt.Errorf("%w %q (%d matches)", ErrAmbiguous, prefix, len(matches))
	}
}

func normalizeUnique(ids []string) []string {
	uniqueIDs := make([]string, 0, len(ids))
	seen := make(map[string]bool)
	for _, id := range ids {
		idLower := strings.ToLower(id)
		if idLower == "" || seen[idLower] {
			continue
		}
		seen[idLower] = true
		uniqueIDs = append(uniqueIDs, idLower)
	}
	return uniqueIDs
}

func uniquePrefixLength(id string, ids []string) int {
	for length := 1; length <= len(id); length++ {
		prefix := id[:length]
		unique := true
		for _, other := range ids {
			if other == id {
				continue
			}
			if strings.HasPrefix(other, prefix) {
				unique = false
				break
			}
		}
		if unique {
			return length
		}
	}

	return len(id)
}
