package main

import (
	"context"

	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"github.com/amonks/todopro/collection"
	"github.com/amonks/todopro/internal/ids"
	"github.com/amonks/todopro/query"
	"github.com/amonks/todopro/todo"
)

// resolvePageSize is the page size used to scan every todo for an id prefix.
const resolvePageSize = 100

var idPrefixStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("6"))

// resolveTodoIDs expands id prefixes to full ids. Full UUIDs are passed
// through without a request; anything else is matched against every todo.
func resolveTodoIDs(ctx context.Context, gw collection.Gateway, args []string) ([]string, error) {
	var all []string
	loaded := false
	resolved := make([]string, 0, len(args))
	for _, arg := range args {
		if uuid.Validate(arg) == nil {
			resolved = append(resolved, arg)
			continue
		}
		if !loaded {
			var err error
			if all, err = listAllIDs(ctx, gw); err != nil {
				return nil, explain(err)
			}
			loaded = true
		}
		id, err := ids.MatchPrefix(all, arg)
		if err != nil {
			return nil, err
		}
		resolved = append(resolved, id)
	}
	return resolved, nil
}

func resolveTodoID(ctx context.Context, gw collection.Gateway, arg string) (string, error) {
	resolved, err := resolveTodoIDs(ctx, gw, []string{arg})
	if err != nil {
		return "", err
	}
	return resolved[0], nil
}

func listAllIDs(ctx context.Context, gw collection.Gateway) ([]string, error) {
	d := query.DefaultWithPageSize(resolvePageSize)
	var all []string
	for {
		result, err := gw.List(ctx, d)
		if err != nil {
			return nil, err
		}
		for _, item := range result.Items {
			all = append(all, item.ID)
		}
		if len(result.Items) == 0 || len(all) >= result.Total {
			return all, nil
		}
		d = d.WithPage(d.Page + 1)
	}
}

// todoIDPrefixLengths returns the shortest prefix that tells each listed id apart.
func todoIDPrefixLengths(todos []todo.Todo) map[string]int {
	list := make([]string, 0, len(todos))
	for _, item := range todos {
		list = append(list, item.ID)
	}
	return ids.UniquePrefixLengths(list)
}

// highlightID emphasizes the first prefix characters of id.
func highlightID(id string, prefix int) string {
	if prefix <= 0 || prefix > len(id) {
		return id
	}
	return idPrefixStyle.Render(id[:prefix]) + id[prefix:]
}
