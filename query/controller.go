package query

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/amonks/todopro/internal/logging"
	"github.com/amonks/todopro/todo"
	"github.com/charmbracelet/log"
)

var (
	// ErrInvalidPage is returned by SetPage for page numbers below 1.
	ErrInvalidPage = errors.New("page must be at least 1")

	// ErrInvalidPageSize is returned by SetItemsPerPage for sizes below 1.
	ErrInvalidPageSize = errors.New("items per page must be at least 1")

	// ErrInvalidSort is returned by SetSort for unknown keys or directions.
	ErrInvalidSort = errors.New("invalid sort")
)

// Loader fetches the page a descriptor names. *collection.Store implements it.
type Loader interface {
	Load(ctx context.Context, d Descriptor) error
}

// ControllerOptions configures a Controller.
type ControllerOptions struct {
	// ItemsPerPage is the page size used by the defaults. Zero means DefaultItemsPerPage.
	ItemsPerPage int
	// Initial overrides the starting descriptor.
	Initial *Descriptor
	Logger  *log.Logger
}

// Controller owns the current descriptor. Every setter updates the descriptor
// before it returns and then asks the loader for the new page.
type Controller struct {
	loader   Loader
	defaults Descriptor
	logger   *log.Logger

	mu      sync.Mutex
	current Descriptor
}

// NewController creates a controller starting from the defaults.
func NewController(loader Loader, opts ControllerOptions) *Controller {
	defaults := DefaultWithPageSize(opts.ItemsPerPage)
	current := defaults
	if opts.Initial != nil {
		current = opts.Initial.Clone()
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	return &Controller{
		loader:   loader,
		defaults: defaults,
		logger:   logger,
		current:  current,
	}
}

// Descriptor returns a copy of the current descriptor.
func (c *Controller) Descriptor() Descriptor {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current.Clone()
}

// Refresh reloads the current descriptor without changing it.
func (c *Controller) Refresh(ctx context.Context) error {
	return c.load(ctx, c.Descriptor())
}

// SetFilters replaces the filters, resets the page to 1, and reloads.
func (c *Controller) SetFilters(ctx context.Context, filters Filters) error {
	if filters.Status != nil && !filters.Status.IsValid() {
		return fmt.Errorf("%w: %q", todo.ErrInvalidStatus, *filters.Status)
	}
	if filters.Priority != nil && !filters.Priority.IsValid() {
		return fmt.Errorf("%w: %q", todo.ErrInvalidPriority, *filters.Priority)
	}
	return c.update(ctx, func(d Descriptor) Descriptor {
		return d.WithFilters(filters)
	})
}

// SetSort replaces the sort, resets the page to 1, and reloads.
func (c *Controller) SetSort(ctx context.Context, sortBy todo.SortKey, sortOrder todo.SortOrder) error {
	if !sortBy.IsValid() || !sortOrder.IsValid() {
		return fmt.Errorf("%w: %q %q", ErrInvalidSort, sortBy, sortOrder)
	}
	return c.update(ctx, func(d Descriptor) Descriptor {
		return d.WithSort(sortBy, sortOrder)
	})
}

// ClearFilters restores the defaults and reloads.
func (c *Controller) ClearFilters(ctx context.Context) error {
	return c.update(ctx, func(Descriptor) Descriptor {
		return c.defaults.Clone()
	})
}

// SetPage changes only the page number and reloads. Pages below 1 are rejected
// without a request; pages past the last one are still requested.
func (c *Controller) SetPage(ctx context.Context, page int) error {
	if page < 1 {
		return fmt.Errorf("%w: %d", ErrInvalidPage, page)
	}
	return c.update(ctx, func(d Descriptor) Descriptor {
		return d.WithPage(page)
	})
}

// SetItemsPerPage changes the page size, resets the page to 1, and reloads.
func (c *Controller) SetItemsPerPage(ctx context.Context, itemsPerPage int) error {
	if itemsPerPage < 1 {
		return fmt.Errorf("%w: %d", ErrInvalidPageSize, itemsPerPage)
	}
	return c.update(ctx, func(d Descriptor) Descriptor {
		d = d.WithPage(1)
		d.ItemsPerPage = itemsPerPage
		return d
	})
}

func (c *Controller) update(ctx context.Context, change func(Descriptor) Descriptor) error {
	c.mu.Lock()
	c.current = change(c.current.Clone())
	next := c.current.Clone()
	c.mu.Unlock()

	return c.load(ctx, next)
}

func (c *Controller) load(ctx context.Context, d Descriptor) error {
	c.logger.Debug("load todos", "page", d.Page, "query", d.Values().Encode())
	if c.loader == nil {
		return nil
	}
	return c.loader.Load(ctx, d)
}
