package gateway

import (
	"context"
	"fmt"
	"time"

	"github.com/amonks/todopro/todo"
)

type seedTodo struct {
	title       string
	description string
	status      todo.Status
	priority    todo.Priority
	tags        []string
	age         time.Duration
	due         time.Duration // relative to now; 0 means no due date
}

var seedTodos = []seedTodo{
	{"Set up project repository", "Create the repository and push the initial commit.", todo.StatusDone, todo.PriorityHigh, []string{"setup"}, 240 * time.Hour, 0},
	{"Write onboarding guide", "Cover **local setup**, the board, and filters.", todo.StatusInProgress, todo.PriorityMedium, []string{"docs"}, 200 * time.Hour, 72 * time.Hour},
	{"Design login screen", "", todo.StatusDone, todo.PriorityMedium, []string{"design", "auth"}, 190 * time.Hour, 0},
	{"Fix pagination bug", "Page two repeats the last item of page one.", todo.StatusTodo, todo.PriorityHigh, []string{"bug"}, 170 * time.Hour, 24 * time.Hour},
	{"Buy groceries", "Milk, eggs, bread.", todo.StatusTodo, todo.PriorityLow, []string{"personal"}, 150 * time.Hour, 48 * time.Hour},
	{"Review pull requests", "", todo.StatusInProgress, todo.PriorityHigh, []string{"review"}, 130 * time.Hour, 0},
	{"Plan sprint", "Pick the stories for the next two weeks.", todo.StatusTodo, todo.PriorityMedium, []string{"planning"}, 110 * time.Hour, -24 * time.Hour},
	{"Update dependencies", "", todo.StatusTodo, todo.PriorityLow, []string{"maintenance"}, 90 * time.Hour, 0},
	{"Add dark mode", "Respect the system setting.", todo.StatusTodo, todo.PriorityMedium, []string{"design", "feature"}, 70 * time.Hour, 240 * time.Hour},
	{"Write release notes", "", todo.StatusInProgress, todo.PriorityLow, []string{"docs"}, 50 * time.Hour, 96 * time.Hour},
	{"Call the dentist", "", todo.StatusTodo, todo.PriorityMedium, []string{"personal"}, 30 * time.Hour, 0},
	{"Archive old tickets", "Anything untouched for six months.", todo.StatusDone, todo.PriorityLow, []string{"maintenance"}, 10 * time.Hour, 0},
}

// SeedTodos returns the development data set, timestamped relative to now,
// oldest first.
func SeedTodos(now time.Time, newID func() string) []todo.Todo {
	items := make([]todo.Todo, 0, len(seedTodos))
	for _, seed := range seedTodos {
		created := now.Add(-seed.age)
		item := todo.NewTodo{
			Title:       seed.title,
			Description: seed.description,
			Status:      seed.status,
			Priority:    seed.priority,
			Tags:        seed.tags,
		}.Build(newID(), created)
		if seed.due != 0 {
			due := now.Add(seed.due).Truncate(time.Hour)
			item.DueDate = &due
		}
		items = append(items, item)
	}
	return items
}

// Seed stores the development data set in repo.
func Seed(ctx context.Context, repo Repository, now time.Time, newID func() string) error {
	for _, item := range SeedTodos(now, newID) {
		if err := repo.Create(ctx, item); err != nil {
			return fmt.Errorf("seed %q: %w", item.Title, err)
		}
	}
	return nil
}
