// Package board turns board and list gestures into store mutations and
// reports their outcome.
package board

import (
	"context"
	"fmt"

	"github.com/amonks/todopro/internal/logging"
	"github.com/amonks/todopro/todo"
	"github.com/charmbracelet/log"
)

// Notification titles and descriptions.
const (
	TitleMoved         = "Todo moved!"
	TitleMoveFailed    = "Failed to move todo"
	DetailMoveFailed   = "There was an error moving your todo. Please try again."
	TitleStatusUpdated = "Status updated!"
	TitleStatusFailed  = "Failed to update status"
	DetailStatusFailed = "There was an error updating the todo status. Please try again."
	TitleCreated       = "Todo created successfully!"
	TitleCreateFailed  = "Failed to create todo"
	DetailCreateFailed = "There was an error creating your todo. Please try again."
	TitleUpdated       = "Todo updated successfully!"
	TitleUpdateFailed  = "Failed to update todo"
	DetailUpdateFailed = "There was an error updating your todo. Please try again."
	TitleDeleted       = "Todo deleted successfully!"
	TitleDeleteFailed  = "Failed to delete todo"
	DetailDeleteFailed = "There was an error deleting your todo. Please try again."
	TitleInvalidTodo   = "Invalid todo"
)

// Store is the part of the collection store the coordinator drives.
// *collection.Store implements it.
type Store interface {
	Find(id string) (todo.Todo, bool)
	ApplyOptimistic(id string, patch todo.Patch) bool
	Create(ctx context.Context, input todo.NewTodo) (todo.Todo, error)
	Update(ctx context.Context, patch todo.Patch) (todo.Todo, error)
	Delete(ctx context.Context, id string) error
}

// Location is one end of a drag: a status column and a position in it.
type Location struct {
	DroppableID todo.Status
	Index       int
}

// DropResult describes a completed drag. Destination is nil when the drop
// was cancelled.
type DropResult struct {
	DraggableID string
	Source      Location
	Destination *Location
}

// IsNoop reports whether the drop changes nothing.
func (r DropResult) IsNoop() bool {
	if r.Destination == nil {
		return true
	}
	return r.Destination.DroppableID == r.Source.DroppableID &&
		r.Destination.Index == r.Source.Index
}

// Coordinator applies board gestures to a store.
type Coordinator struct {
	store    Store
	notifier Notifier
	logger   *log.Logger
}

// NewCoordinator creates a coordinator. A nil notifier discards notifications.
func NewCoordinator(store Store, notifier Notifier, logger *log.Logger) *Coordinator {
	if notifier == nil {
		notifier = LogNotifier{}
	}
	if logger == nil {
		logger = logging.Discard()
	}
	return &Coordinator{store: store, notifier: notifier, logger: logger}
}

// OnDragComplete moves the dragged todo to the destination column. The move
// is shown immediately and rolled back by the store if the update fails.
// Reordering within a column is not persisted.
func (c *Coordinator) OnDragComplete(ctx context.Context, result DropResult) error {
	if result.IsNoop() {
		return nil
	}
	status := result.Destination.DroppableID
	if !status.IsValid() {
		c.logger.Warn("drop on unknown column", "id", result.DraggableID, "column", status)
		return nil
	}
	if status == result.Source.DroppableID {
		c.logger.Debug("reorder within column", "id", result.DraggableID, "from", result.Source.Index, "to", result.Destination.Index)
	}

	title := c.title(result.DraggableID)
	patch := todo.Patch{ID: result.DraggableID, Status: todo.StatusPtr(status)}

	applied := c.store.ApplyOptimistic(result.DraggableID, todo.Patch{Status: todo.StatusPtr(status)})
	c.logger.Debug("drag applied", "id", result.DraggableID, "status", status, "optimistic", applied)

	if _, err := c.store.Update(ctx, patch); err != nil {
		c.logger.Debug("drag rolled back", "id", result.DraggableID, "err", err)
		c.notifier.Error(TitleMoveFailed, DetailMoveFailed)
		return err
	}
	c.logger.Debug("drag committed", "id", result.DraggableID, "status", status)
	c.notifier.Success(TitleMoved, movedDescription(title, status))
	return nil
}

// ChangeStatus sets a todo's status without a speculative update, as the
// list view's status picker does.
func (c *Coordinator) ChangeStatus(ctx context.Context, id string, status todo.Status) error {
	if err := todo.ValidateStatus(status); err != nil {
		c.notifier.Error(TitleStatusFailed, DetailStatusFailed)
		return err
	}
	title := c.title(id)
	if _, err := c.store.Update(ctx, todo.Patch{ID: id, Status: todo.StatusPtr(status)}); err != nil {
		c.notifier.Error(TitleStatusFailed, DetailStatusFailed)
		return err
	}
	c.notifier.Success(TitleStatusUpdated, movedDescription(title, status))
	return nil
}

// Create validates input and submits it. Invalid input never reaches the store.
func (c *Coordinator) Create(ctx context.Context, input todo.NewTodo) (todo.Todo, error) {
	input = input.Normalize()
	if err := input.Validate(); err != nil {
		c.notifier.Error(TitleInvalidTodo, err.Error())
		return todo.Todo{}, err
	}
	created, err := c.store.Create(ctx, input)
	if err != nil {
		c.notifier.Error(TitleCreateFailed, DetailCreateFailed)
		return todo.Todo{}, err
	}
	c.notifier.Success(TitleCreated, fmt.Sprintf("\"%s\" has been added to your %s list.", created.Title, created.Status.Label()))
	return created, nil
}

// Edit validates a patch and submits it.
func (c *Coordinator) Edit(ctx context.Context, patch todo.Patch) (todo.Todo, error) {
	patch = patch.Normalize()
	if err := patch.Validate(); err != nil {
		c.notifier.Error(TitleInvalidTodo, err.Error())
		return todo.Todo{}, err
	}
	updated, err := c.store.Update(ctx, patch)
	if err != nil {
		c.notifier.Error(TitleUpdateFailed, DetailUpdateFailed)
		return todo.Todo{}, err
	}
	c.notifier.Success(TitleUpdated, fmt.Sprintf("\"%s\" has been updated.", updated.Title))
	return updated, nil
}

// Delete removes a todo.
func (c *Coordinator) Delete(ctx context.Context, id string) error {
	title := c.title(id)
	if err := c.store.Delete(ctx, id); err != nil {
		c.notifier.Error(TitleDeleteFailed, DetailDeleteFailed)
		return err
	}
	if title == "" {
		c.notifier.Success(TitleDeleted, "Todo has been removed.")
	} else {
		c.notifier.Success(TitleDeleted, fmt.Sprintf("\"%s\" has been removed.", title))
	}
	return nil
}

func (c *Coordinator) title(id string) string {
	item, ok := c.store.Find(id)
	if !ok {
		return ""
	}
	return item.Title
}

func movedDescription(title string, status todo.Status) string {
	if title == "" {
		return fmt.Sprintf("Todo moved to %s.", status.Label())
	}
	return fmt.Sprintf("\"%s\" moved to %s.", title, status.Label())
}
