package todo

// Group is one status column of a board.
type Group struct {
	Status Status
	Items  []Todo
}

// GroupByStatus partitions items into the three status columns in board order,
// keeping each item's relative position. Items with an unknown status are dropped.
// The result is computed fresh on every call and shares no memory with items.
func GroupByStatus(items []Todo) []Group {
	statuses := ValidStatuses()
	groups := make([]Group, len(statuses))
	index := make(map[Status]int, len(statuses))
	for i, status := range statuses {
		groups[i] = Group{Status: status, Items: []Todo{}}
		index[status] = i
	}
	for _, item := range items {
		i, ok := index[item.Status]
		if !ok {
			continue
		}
		groups[i].Items = append(groups[i].Items, item.Clone())
	}
	return groups
}
