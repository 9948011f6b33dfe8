package gateway

import (
	"strings"

	"github.com/amonks/todopro/collection"
	"github.com/amonks/todopro/query"
	"github.com/amonks/todopro/todo"
)

// Select applies a descriptor to the full set of todos: search, status and
// priority filters, then the sort, then the page slice. Pages past the end
// are empty rather than an error.
func Select(items []todo.Todo, d query.Descriptor) collection.ListResult {
	perPage := d.ItemsPerPage
	if perPage < 1 {
		perPage = query.DefaultItemsPerPage
	}
	page := d.Page
	if page < 1 {
		page = 1
	}

	matched := make([]todo.Todo, 0, len(items))
	for _, item := range items {
		if Matches(item, d) {
			matched = append(matched, item.Clone())
		}
	}
	sortBy := d.SortBy
	if sortBy == "" {
		sortBy = query.DefaultSortBy
	}
	sortOrder := d.SortOrder
	if sortOrder == "" {
		sortOrder = query.DefaultSortOrder
	}
	todo.Sort(matched, sortBy, sortOrder)

	start := (page - 1) * perPage
	if start > len(matched) {
		start = len(matched)
	}
	end := start + perPage
	if end > len(matched) {
		end = len(matched)
	}
	return collection.ListResult{
		Items:        matched[start:end:end],
		Total:        len(matched),
		Page:         page,
		ItemsPerPage: perPage,
	}
}

// Matches reports whether item passes the descriptor's filters. Search is a
// case-insensitive substring match on the title, the description, or any tag.
func Matches(item todo.Todo, d query.Descriptor) bool {
	if d.Status != nil && *d.Status != "" && item.Status != *d.Status {
		return false
	}
	if d.Priority != nil && *d.Priority != "" && item.Priority != *d.Priority {
		return false
	}
	search := strings.ToLower(strings.TrimSpace(d.Search))
	if search == "" {
		return true
	}
	if strings.Contains(strings.ToLower(item.Title), search) ||
		strings.Contains(strings.ToLower(item.Description), search) {
		return true
	}
	for _, tag := range item.Tags {
		if strings.Contains(strings.ToLower(tag), search) {
			return true
		}
	}
	return false
}
