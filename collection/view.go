package collection

import "github.com/amonks/todopro/todo"

// Snapshot returns a deep copy of the store's state.
func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.clone()
}

// Items returns a copy of the displayed page's records.
func (s *Store) Items() []todo.Todo {
	s.mu.Lock()
	defer s.mu.Unlock()
	return todo.CloneAll(s.state.Page.Items)
}

// Page returns a copy of the displayed page.
func (s *Store) Page() Page {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Page.clone()
}

// Find returns the displayed record with the given id, or the record last
// fetched by FetchOne when it has that id.
func (s *Store) Find(id string) (todo.Todo, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.state.Page.index(id); i >= 0 {
		return s.state.Page.Items[i].Clone(), true
	}
	if s.state.Current != nil && s.state.Current.ID == id {
		return s.state.Current.Clone(), true
	}
	return todo.Todo{}, false
}

// Ledger returns the outstanding speculative change for id, if any.
func (s *Store) Ledger(id string) (LedgerEntry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.ledger[id]
	if !ok {
		return LedgerEntry{}, false
	}
	return entry.clone(), true
}

// Loading reports whether a list request is in flight.
func (s *Store) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Loading
}

// Pending reports whether any create, update, or delete is in flight.
func (s *Store) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Pending
}

// LoadingOne reports whether a single-record fetch is in flight.
func (s *Store) LoadingOne() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.LoadingOne
}

// Err returns the last reported error message.
func (s *Store) Err() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Error
}

// Current returns the record last fetched by FetchOne.
func (s *Store) Current() (todo.Todo, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.Current == nil {
		return todo.Todo{}, false
	}
	return s.state.Current.Clone(), true
}

// Subscribe registers fn to receive a snapshot after every change. Callbacks
// run on the goroutine that made the change, after the store's lock is
// released. The returned function unregisters fn.
func (s *Store) Subscribe(fn func(State)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextSub
	s.nextSub++
	s.subscribers[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subscribers, id)
	}
}
