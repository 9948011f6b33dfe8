// Package query owns the pagination, filter, and sort parameters of a todo list
// request and decides when a change to them triggers a reload.
package query

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/amonks/todopro/todo"
)

const (
	// DefaultItemsPerPage is the page size used when none is configured.
	DefaultItemsPerPage = 10
	// DefaultSortBy is the initial sort key.
	DefaultSortBy = todo.SortByCreatedAt
	// DefaultSortOrder is the initial sort direction.
	DefaultSortOrder = todo.SortDesc
)

// Wire names of the list query parameters.
const (
	ParamPage         = "page"
	ParamItemsPerPage = "items-per-page"
	ParamSearch       = "search"
	ParamStatus       = "status"
	ParamPriority     = "priority"
	ParamSortBy       = "sortBy"
	ParamSortOrder    = "sortOrder"
)

// Descriptor is the full set of parameters for one list request.
type Descriptor struct {
	Page         int
	ItemsPerPage int
	Search       string
	Status       *todo.Status
	Priority     *todo.Priority
	SortBy       todo.SortKey
	SortOrder    todo.SortOrder
}

// Filters is the filter portion of a descriptor. Nil and empty values mean "no filter".
type Filters struct {
	Search   string
	Status   *todo.Status
	Priority *todo.Priority
}

// Default returns page 1, the default page size, newest first, no filters.
func Default() Descriptor {
	return DefaultWithPageSize(DefaultItemsPerPage)
}

// DefaultWithPageSize is Default with a configured page size.
func DefaultWithPageSize(itemsPerPage int) Descriptor {
	if itemsPerPage < 1 {
		itemsPerPage = DefaultItemsPerPage
	}
	return Descriptor{
		Page:         1,
		ItemsPerPage: itemsPerPage,
		SortBy:       DefaultSortBy,
		SortOrder:    DefaultSortOrder,
	}
}

// Filters returns the filter portion of the descriptor.
func (d Descriptor) Filters() Filters {
	return Filters{
		Search:   d.Search,
		Status:   copyStatus(d.Status),
		Priority: copyPriority(d.Priority),
	}
}

// WithFilters replaces the filter portion and resets the page to 1.
func (d Descriptor) WithFilters(filters Filters) Descriptor {
	d = d.Clone()
	d.Page = 1
	d.Search = strings.TrimSpace(filters.Search)
	d.Status = copyStatus(filters.Status)
	d.Priority = copyPriority(filters.Priority)
	return d
}

// WithSort replaces the sort portion and resets the page to 1.
func (d Descriptor) WithSort(sortBy todo.SortKey, sortOrder todo.SortOrder) Descriptor {
	d = d.Clone()
	d.Page = 1
	d.SortBy = sortBy
	d.SortOrder = sortOrder
	return d
}

// WithPage changes only the page number.
func (d Descriptor) WithPage(page int) Descriptor {
	d = d.Clone()
	d.Page = page
	return d
}

// Clone returns a copy that shares no pointers with d.
func (d Descriptor) Clone() Descriptor {
	d.Status = copyStatus(d.Status)
	d.Priority = copyPriority(d.Priority)
	return d
}

// Equal reports whether two descriptors request the same page.
func (d Descriptor) Equal(other Descriptor) bool {
	return d.Page == other.Page &&
		d.ItemsPerPage == other.ItemsPerPage &&
		d.Search == other.Search &&
		equalPtr(d.Status, other.Status) &&
		equalPtr(d.Priority, other.Priority) &&
		d.SortBy == other.SortBy &&
		d.SortOrder == other.SortOrder
}

// Values encodes the descriptor as list query parameters, omitting unset values.
func (d Descriptor) Values() url.Values {
	values := url.Values{}
	if d.Page > 0 {
		values.Set(ParamPage, strconv.Itoa(d.Page))
	}
	if d.ItemsPerPage > 0 {
		values.Set(ParamItemsPerPage, strconv.Itoa(d.ItemsPerPage))
	}
	if d.Search != "" {
		values.Set(ParamSearch, d.Search)
	}
	if d.Status != nil && *d.Status != "" {
		values.Set(ParamStatus, string(*d.Status))
	}
	if d.Priority != nil && *d.Priority != "" {
		values.Set(ParamPriority, string(*d.Priority))
	}
	if d.SortBy != "" {
		values.Set(ParamSortBy, string(d.SortBy))
	}
	if d.SortOrder != "" {
		values.Set(ParamSortOrder, string(d.SortOrder))
	}
	return values
}

// Parse decodes list query parameters. Missing or malformed values fall back to
// the defaults; unknown status and priority values are kept so that they match
// nothing, the way the gateway has always treated them.
func Parse(values url.Values) Descriptor {
	d := Default()
	if page, err := strconv.Atoi(values.Get(ParamPage)); err == nil && page > 0 {
		d.Page = page
	}
	if perPage, err := strconv.Atoi(values.Get(ParamItemsPerPage)); err == nil && perPage > 0 {
		d.ItemsPerPage = perPage
	}
	d.Search = strings.TrimSpace(values.Get(ParamSearch))
	if status := values.Get(ParamStatus); status != "" {
		d.Status = todo.StatusPtr(todo.Status(status))
	}
	if priority := values.Get(ParamPriority); priority != "" {
		d.Priority = todo.PriorityPtr(todo.Priority(priority))
	}
	if key, err := todo.ParseSortKey(values.Get(ParamSortBy)); err == nil {
		d.SortBy = key
	}
	if order, err := todo.ParseSortOrder(values.Get(ParamSortOrder)); err == nil {
		d.SortOrder = order
	}
	return d
}

// TotalPages is ceil(totalItems / itemsPerPage), with a non-positive page size
// treated as DefaultItemsPerPage.
func TotalPages(totalItems, itemsPerPage int) int {
	if itemsPerPage < 1 {
		itemsPerPage = DefaultItemsPerPage
	}
	if totalItems <= 0 {
		return 0
	}
	return (totalItems + itemsPerPage - 1) / itemsPerPage
}

func copyStatus(status *todo.Status) *todo.Status {
	if status == nil {
		return nil
	}
	return todo.StatusPtr(*status)
}

func copyPriority(priority *todo.Priority) *todo.Priority {
	if priority == nil {
		return nil
	}
	return todo.PriorityPtr(*priority)
}

func equalPtr[T comparable](a, b *T) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
