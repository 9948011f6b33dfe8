package collection

import (
	"context"

	"github.com/amonks/todopro/query"
	"github.com/amonks/todopro/todo"
)

// ListResult is one page as the gateway returns it.
type ListResult struct {
	Items        []todo.Todo `json:"items"`
	Total        int         `json:"total"`
	Page         int         `json:"page"`
	ItemsPerPage int         `json:"itemsPerPage"`
}

// Gateway is the remote todo service the store reads from and writes to.
// Errors should carry a message fit to show a user.
type Gateway interface {
	List(ctx context.Context, d query.Descriptor) (ListResult, error)
	Get(ctx context.Context, id string) (todo.Todo, error)
	Create(ctx context.Context, input todo.NewTodo) (todo.Todo, error)
	Update(ctx context.Context, patch todo.Patch) (todo.Todo, error)
	Delete(ctx context.Context, id string) error
}
