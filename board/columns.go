package board

import "github.com/amonks/todopro/todo"

// Column is one status column of the board.
type Column = todo.Group

// Columns groups items into the board's columns. It is recomputed from the
// flat list on every call and never cached.
func Columns(items []todo.Todo) []Column {
	return todo.GroupByStatus(items)
}

// Locate finds the column and index of the todo with the given id.
func Locate(columns []Column, id string) (Location, bool) {
	for _, column := range columns {
		for i, item := range column.Items {
			if item.ID == id {
				return Location{DroppableID: column.Status, Index: i}, true
			}
		}
	}
	return Location{}, false
}

// Shift returns the drop that moves the todo with the given id by delta
// columns, landing at the top of the target column. It reports false when the
// id is unknown or the move would leave the board.
func Shift(columns []Column, id string, delta int) (DropResult, bool) {
	source, ok := Locate(columns, id)
	if !ok {
		return DropResult{}, false
	}
	target := -1
	for i, column := range columns {
		if column.Status == source.DroppableID {
			target = i + delta
			break
		}
	}
	if target < 0 || target >= len(columns) {
		return DropResult{}, false
	}
	return DropResult{
		DraggableID: id,
		Source:      source,
		Destination: &Location{DroppableID: columns[target].Status, Index: 0},
	}, true
}
