package collection

import (
	"time"

	"github.com/amonks/todopro/todo"
)

// Page is the currently displayed page of todos.
type Page struct {
	Items        []todo.Todo
	Page         int
	ItemsPerPage int
	TotalItems   int
	TotalPages   int
}

func (p Page) clone() Page {
	p.Items = todo.CloneAll(p.Items)
	return p
}

func (p Page) index(id string) int {
	for i, item := range p.Items {
		if item.ID == id {
			return i
		}
	}
	return -1
}

// State is a read-only copy of everything the store holds.
type State struct {
	Page Page

	// Loading is true while any list request is in flight.
	Loading bool
	// Pending is true while any create, update, or delete is in flight.
	Pending bool
	// LoadingOne is true while a single-record fetch is in flight.
	LoadingOne bool

	// Error is the last reported error message, or "".
	Error string

	// Current is the record fetched by FetchOne.
	Current *todo.Todo
}

func (s State) clone() State {
	s.Page = s.Page.clone()
	if s.Current != nil {
		current := s.Current.Clone()
		s.Current = &current
	}
	return s
}

// LedgerEntry records a speculative change so that it can be rolled back.
type LedgerEntry struct {
	// Original is the record as it was before the first outstanding speculative change.
	Original todo.Todo
	// Updated is the record as currently displayed.
	Updated   todo.Todo
	CreatedAt time.Time
}

func (e LedgerEntry) clone() LedgerEntry {
	e.Original = e.Original.Clone()
	e.Updated = e.Updated.Clone()
	return e
}
