package todo

import "strings"

// AddTag returns tags with tag appended, unless it is blank or already present.
// The input slice is never modified.
func AddTag(tags []string, tag string) []string {
	tag = strings.TrimSpace(tag)
	result := append([]string{}, tags...)
	if tag == "" || HasTag(tags, tag) {
		return result
	}
	return append(result, tag)
}

// RemoveTag returns tags without any entry equal to tag.
func RemoveTag(tags []string, tag string) []string {
	result := make([]string, 0, len(tags))
	for _, existing := range tags {
		if existing == tag {
			continue
		}
		result = append(result, existing)
	}
	return result
}

// HasTag reports whether tags contains tag exactly.
func HasTag(tags []string, tag string) bool {
	for _, existing := range tags {
		if existing == tag {
			return true
		}
	}
	return false
}

// NormalizeTags trims each tag, drops blanks, and keeps the first occurrence of duplicates.
func NormalizeTags(tags []string) []string {
	if tags == nil {
		return nil
	}
	result := make([]string, 0, len(tags))
	for _, tag := range tags {
		result = AddTag(result, tag)
	}
	return result
}
