// Package collection holds the client copy of one page of todos and performs
// every write to the gateway, including speculative changes that are rolled
// back when the write fails.
package collection

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/amonks/todopro/internal/logging"
	"github.com/amonks/todopro/query"
	"github.com/amonks/todopro/todo"
	"github.com/charmbracelet/log"
)

// Fallback messages reported when a gateway error carries no message.
const (
	MessageFetchTodos = "Failed to fetch todos"
	MessageFetchTodo  = "Failed to fetch todo"
	MessageAddTodo    = "Failed to add todo"
	MessageUpdateTodo = "Failed to update todo"
	MessageDeleteTodo = "Failed to delete todo"
)

// ErrNoGateway is returned when a store is used without a gateway.
var ErrNoGateway = errors.New("collection store has no gateway")

// Options configures a Store.
type Options struct {
	Logger *log.Logger
	// Clock stamps ledger entries. Defaults to time.Now.
	Clock func() time.Time
	// ItemsPerPage is used to compute total pages when a response omits its
	// page size. Zero means query.DefaultItemsPerPage.
	ItemsPerPage int
	// DiscardStaleLoads drops list responses that resolve after a newer Load
	// was issued. When false the last response to resolve wins.
	DiscardStaleLoads bool
}

// Store is the single source of truth for the displayed page. All methods are
// safe for concurrent use; no lock is held while the gateway is called.
type Store struct {
	gateway      Gateway
	logger       *log.Logger
	clock        func() time.Time
	itemsPerPage int
	discardStale bool

	mu          sync.Mutex
	state       State
	ledger      map[string]LedgerEntry
	loads       int
	mutations   int
	fetches     int
	loadSeq     uint64
	subscribers map[int]func(State)
	nextSub     int
}

// New creates an empty store backed by gateway.
func New(gateway Gateway, opts Options) *Store {
	logger := opts.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	clock := opts.Clock
	if clock == nil {
		clock = time.Now
	}
	itemsPerPage := opts.ItemsPerPage
	if itemsPerPage < 1 {
		itemsPerPage = query.DefaultItemsPerPage
	}
	return &Store{
		gateway:      gateway,
		logger:       logger,
		clock:        clock,
		itemsPerPage: itemsPerPage,
		discardStale: opts.DiscardStaleLoads,
		state:        State{Page: Page{Page: 1, ItemsPerPage: itemsPerPage}},
		ledger:       make(map[string]LedgerEntry),
		subscribers:  make(map[int]func(State)),
	}
}

// Load fetches the page d describes. On success the page is replaced
// wholesale; on failure the previous page stays and the error is recorded.
func (s *Store) Load(ctx context.Context, d query.Descriptor) error {
	if s.gateway == nil {
		return ErrNoGateway
	}

	var token uint64
	s.mutate(func() {
		s.loadSeq++
		token = s.loadSeq
		s.loads++
		s.state.Loading = true
		s.state.Error = ""
	})

	s.logger.Debug("list todos", "page", d.Page, "query", d.Values().Encode())
	result, err := s.gateway.List(ctx, d)

	s.mutate(func() {
		s.loads--
		s.state.Loading = s.loads > 0
		if s.discardStale && token != s.loadSeq {
			s.logger.Debug("discard stale list response", "page", d.Page)
			return
		}
		if err != nil {
			s.state.Error = errorMessage(err, MessageFetchTodos)
			return
		}
		s.state.Page = s.pageFrom(result)
	})
	if err != nil {
		return fmt.Errorf("load todos: %w", err)
	}
	return nil
}

func (s *Store) pageFrom(result ListResult) Page {
	perPage := result.ItemsPerPage
	if perPage < 1 {
		perPage = s.itemsPerPage
	}
	page := result.Page
	if page < 1 {
		page = 1
	}
	items := todo.CloneAll(result.Items)
	if items == nil {
		items = []todo.Todo{}
	}
	return Page{
		Items:        items,
		Page:         page,
		ItemsPerPage: perPage,
		TotalItems:   result.Total,
		TotalPages:   query.TotalPages(result.Total, perPage),
	}
}

// Create submits a new todo and prepends the server's record to the page.
// Totals are left as they were until the next Load.
func (s *Store) Create(ctx context.Context, input todo.NewTodo) (todo.Todo, error) {
	if s.gateway == nil {
		return todo.Todo{}, ErrNoGateway
	}

	s.beginMutation()
	created, err := s.gateway.Create(ctx, input)
	s.mutate(func() {
		s.endMutationLocked()
		if err != nil {
			s.state.Error = errorMessage(err, MessageAddTodo)
			return
		}
		s.state.Page.Items = append([]todo.Todo{created.Clone()}, s.state.Page.Items...)
	})
	if err != nil {
		return todo.Todo{}, fmt.Errorf("create todo: %w", err)
	}
	s.logger.Debug("created todo", "id", created.ID)
	return created.Clone(), nil
}

// Update submits a patch. On success the record is replaced in place by the
// server's version and any ledger entry for it is cleared. On failure a ledger
// entry, if present, is rolled back.
func (s *Store) Update(ctx context.Context, patch todo.Patch) (todo.Todo, error) {
	if s.gateway == nil {
		return todo.Todo{}, ErrNoGateway
	}
	if patch.ID == "" {
		return todo.Todo{}, todo.ErrMissingID
	}

	s.beginMutation()
	updated, err := s.gateway.Update(ctx, patch)
	s.mutate(func() {
		s.endMutationLocked()
		if err != nil {
			s.state.Error = errorMessage(err, MessageUpdateTodo)
			s.rollbackLocked(patch.ID)
			return
		}
		if i := s.state.Page.index(updated.ID); i >= 0 {
			s.state.Page.Items[i] = updated.Clone()
		}
		if s.state.Current != nil && s.state.Current.ID == updated.ID {
			current := updated.Clone()
			s.state.Current = &current
		}
		delete(s.ledger, patch.ID)
	})
	if err != nil {
		return todo.Todo{}, fmt.Errorf("update todo %s: %w", patch.ID, err)
	}
	s.logger.Debug("updated todo", "id", updated.ID)
	return updated.Clone(), nil
}

// Delete removes a todo. The page loses the record; totals are left alone.
func (s *Store) Delete(ctx context.Context, id string) error {
	if s.gateway == nil {
		return ErrNoGateway
	}

	s.beginMutation()
	err := s.gateway.Delete(ctx, id)
	s.mutate(func() {
		s.endMutationLocked()
		if err != nil {
			s.state.Error = errorMessage(err, MessageDeleteTodo)
			return
		}
		if i := s.state.Page.index(id); i >= 0 {
			s.state.Page.Items = append(s.state.Page.Items[:i:i], s.state.Page.Items[i+1:]...)
		}
		delete(s.ledger, id)
	})
	if err != nil {
		return fmt.Errorf("delete todo %s: %w", id, err)
	}
	s.logger.Debug("deleted todo", "id", id)
	return nil
}

// FetchOne loads a single record into the current-record slot. It has its
// own loading flag and does not touch the page.
func (s *Store) FetchOne(ctx context.Context, id string) (todo.Todo, error) {
	if s.gateway == nil {
		return todo.Todo{}, ErrNoGateway
	}

	s.mutate(func() {
		s.fetches++
		s.state.LoadingOne = true
		s.state.Error = ""
	})
	fetched, err := s.gateway.Get(ctx, id)
	s.mutate(func() {
		s.fetches--
		s.state.LoadingOne = s.fetches > 0
		if err != nil {
			s.state.Error = errorMessage(err, MessageFetchTodo)
			s.state.Current = nil
			return
		}
		current := fetched.Clone()
		s.state.Current = &current
	})
	if err != nil {
		return todo.Todo{}, fmt.Errorf("fetch todo %s: %w", id, err)
	}
	return fetched.Clone(), nil
}

// ApplyOptimistic merges patch into the displayed record with the given id
// and records a ledger entry so that a failed Update can roll it back. It
// reports false, and changes nothing, when the id is not on the page.
//
// A second call for the same id before the first resolves keeps the
// original snapshot from the first call.
func (s *Store) ApplyOptimistic(id string, patch todo.Patch) bool {
	applied := false
	s.mutate(func() {
		i := s.state.Page.index(id)
		if i < 0 {
			return
		}
		current := s.state.Page.Items[i]
		updated := patch.Apply(current)
		updated.ID = current.ID

		original := current.Clone()
		if existing, ok := s.ledger[id]; ok {
			original = existing.Original
		}
		s.ledger[id] = LedgerEntry{
			Original:  original,
			Updated:   updated.Clone(),
			CreatedAt: s.clock(),
		}
		s.state.Page.Items[i] = updated
		applied = true
	})
	if applied {
		s.logger.Debug("applied optimistic update", "id", id)
	}
	return applied
}

// Rollback restores the ledger's original snapshot for id and drops the
// entry. It reports whether an entry existed.
func (s *Store) Rollback(id string) bool {
	rolledBack := false
	s.mutate(func() {
		rolledBack = s.rollbackLocked(id)
	})
	return rolledBack
}

func (s *Store) rollbackLocked(id string) bool {
	entry, ok := s.ledger[id]
	if !ok {
		return false
	}
	if i := s.state.Page.index(id); i >= 0 {
		s.state.Page.Items[i] = entry.Original.Clone()
	}
	delete(s.ledger, id)
	s.logger.Debug("rolled back optimistic update", "id", id)
	return true
}

// ClearError forgets the last reported error.
func (s *Store) ClearError() {
	s.mutate(func() {
		s.state.Error = ""
	})
}

func (s *Store) beginMutation() {
	s.mutate(func() {
		s.mutations++
		s.state.Pending = true
	})
}

func (s *Store) endMutationLocked() {
	s.mutations--
	s.state.Pending = s.mutations > 0
}

// mutate runs change under the lock and then notifies subscribers with a
// snapshot taken before the lock was released.
func (s *Store) mutate(change func()) {
	s.mu.Lock()
	change()
	snapshot := s.state.clone()
	subscribers := make([]func(State), 0, len(s.subscribers))
	for _, fn := range s.subscribers {
		subscribers = append(subscribers, fn)
	}
	s.mu.Unlock()

	for _, fn := range subscribers {
		fn(snapshot)
	}
}

func errorMessage(err error, fallback string) string {
	var message interface{ UserMessage() string }
	if errors.As(err, &message) && message.UserMessage() != "" {
		return message.UserMessage()
	}
	if err.Error() == "" {
		return fallback
	}
	return err.Error()
}
