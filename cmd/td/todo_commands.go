package main

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/amonks/todopro/board"
	"github.com/amonks/todopro/collection"
	"github.com/amonks/todopro/internal/editor"
	"github.com/amonks/todopro/query"
	"github.com/amonks/todopro/todo"
)

// bulkConcurrency bounds how many requests a multi-id command has in flight.
const bulkConcurrency = 4

var listCmd = &cobra.Command{
	Use:     "list",
	Short:   "List one page of todos",
	Aliases: []string{"ls"},
	Args:    cobra.NoArgs,
	RunE:    runList,
}

var (
	listSearch   string
	listStatus   string
	listPriority string
	listSortBy   string
	listOrder    string
	listPage     int
	listPerPage  int
	listJSON     bool
)

var showCmd = &cobra.Command{
	Use:   "show <id>...",
	Short: "Show detailed information about todos",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runShow,
}

var showJSON bool

var createCmd = &cobra.Command{
	Use:     "create [title]",
	Short:   "Create a todo",
	Aliases: []string{"add"},
	Args:    cobra.MaximumNArgs(1),
	RunE:    runCreate,
}

var (
	createTitle       string
	createDescription string
	createStatus      string
	createPriority    string
	createTags        []string
	createDue         string
	createJSON        bool
)

var updateCmd = &cobra.Command{
	Use:     "update <id>",
	Short:   "Change a todo's fields",
	Aliases: []string{"edit"},
	Args:    cobra.ExactArgs(1),
	RunE:    runUpdate,
}

var (
	updateTitle       string
	updateDescription string
	updateStatus      string
	updatePriority    string
	updateTags        []string
	updateDue         string
	updateJSON        bool
)

var moveCmd = &cobra.Command{
	Use:   "move <id>... --to <status>",
	Short: "Move todos to another board column",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runMove,
}

var moveTo string

var deleteCmd = &cobra.Command{
	Use:     "delete <id>...",
	Short:   "Delete todos",
	Aliases: []string{"rm"},
	Args:    cobra.MinimumNArgs(1),
	RunE:    runDelete,
}

var tagCmd = &cobra.Command{
	Use:   "tag",
	Short: "Add or remove a todo's tags",
}

var tagAddCmd = &cobra.Command{
	Use:   "add <id> <tag>...",
	Short: "Add tags to a todo",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTag(cmd, args[0], args[1:], todo.AddTag)
	},
}

var tagRemoveCmd = &cobra.Command{
	Use:     "rm <id> <tag>...",
	Short:   "Remove tags from a todo",
	Aliases: []string{"remove"},
	Args:    cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTag(cmd, args[0], args[1:], todo.RemoveTag)
	},
}

func init() {
	rootCmd.AddCommand(listCmd, showCmd, createCmd, updateCmd, moveCmd, deleteCmd, tagCmd)
	tagCmd.AddCommand(tagAddCmd, tagRemoveCmd)
	addFlagAliases(listCmd, createCmd, updateCmd)

	registerListFlags(listCmd)

	showCmd.Flags().BoolVar(&showJSON, "json", false, "Output as JSON")

	createCmd.Flags().StringVar(&createTitle, "title", "", "Todo title")
	createCmd.Flags().StringVarP(&createDescription, "description", "d", "", "Description (use '-' to read from stdin)")
	createCmd.Flags().StringVar(&createStatus, "status", string(todo.StatusTodo), "Status (todo, in_progress, done)")
	createCmd.Flags().StringVar(&createPriority, "priority", string(todo.PriorityMedium), "Priority (low, medium, high)")
	createCmd.Flags().StringArrayVarP(&createTags, "tags", "t", nil, "Tag (repeatable)")
	createCmd.Flags().StringVar(&createDue, "due", "", "Due date (YYYY-MM-DD)")
	createCmd.Flags().BoolVar(&createJSON, "json", false, "Output as JSON")
	registerEditorFlags(createCmd)

	registerUpdateFlags(updateCmd)

	moveCmd.Flags().StringVar(&moveTo, "to", "", "Destination status (todo, in_progress, done)")
	_ = moveCmd.MarkFlagRequired("to")
}

func registerListFlags(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringVarP(&listSearch, "search", "s", "", "Match title, description, or tags")
	flags.StringVar(&listStatus, "status", "", "Filter by status (todo, in_progress, done)")
	flags.StringVar(&listPriority, "priority", "", "Filter by priority (low, medium, high)")
	flags.StringVar(&listSortBy, "sort", string(query.DefaultSortBy), "Sort by createdAt, dueDate, priority, or title")
	flags.StringVar(&listOrder, "order", string(query.DefaultSortOrder), "Sort order (asc, desc)")
	flags.IntVarP(&listPage, "page", "p", 1, "Page number")
	flags.IntVar(&listPerPage, "items-per-page", 0, "Todos per page (default from config)")
	flags.BoolVar(&listJSON, "json", false, "Output as JSON")
}

func registerUpdateFlags(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringVar(&updateTitle, "title", "", "New title")
	flags.StringVarP(&updateDescription, "description", "d", "", "New description (use '-' to read from stdin)")
	flags.StringVar(&updateStatus, "status", "", "New status")
	flags.StringVar(&updatePriority, "priority", "", "New priority")
	flags.StringArrayVarP(&updateTags, "tags", "t", nil, "Replace tags (repeatable)")
	flags.StringVar(&updateDue, "due", "", "New due date (YYYY-MM-DD)")
	flags.BoolVar(&updateJSON, "json", false, "Output as JSON")
	registerEditorFlags(cmd)
}

func listDescriptor(cmd *cobra.Command, itemsPerPage int) (query.Descriptor, error) {
	if cmd.Flags().Changed("items-per-page") {
		if listPerPage < 1 {
			return query.Descriptor{}, query.ErrInvalidPageSize
		}
		itemsPerPage = listPerPage
	}
	if listPage < 1 {
		return query.Descriptor{}, query.ErrInvalidPage
	}

	status, err := parseOptionalStatus(listStatus)
	if err != nil {
		return query.Descriptor{}, err
	}
	priority, err := parseOptionalPriority(listPriority)
	if err != nil {
		return query.Descriptor{}, err
	}
	sortBy, err := todo.ParseSortKey(listSortBy)
	if err != nil {
		return query.Descriptor{}, err
	}
	order, err := todo.ParseSortOrder(listOrder)
	if err != nil {
		return query.Descriptor{}, err
	}

	d := query.DefaultWithPageSize(itemsPerPage).
		WithFilters(query.Filters{Search: listSearch, Status: status, Priority: priority}).
		WithSort(sortBy, order).
		WithPage(listPage)
	return d, nil
}

func runList(cmd *cobra.Command, _ []string) error {
	a, err := loadApp(cmd)
	if err != nil {
		return err
	}
	d, err := listDescriptor(cmd, a.cfg.Client.ItemsPerPage)
	if err != nil {
		return err
	}

	store := a.newStore()
	controller := query.NewController(store, query.ControllerOptions{
		ItemsPerPage: a.cfg.Client.ItemsPerPage,
		Initial:      &d,
		Logger:       a.logger,
	})
	if err := controller.Refresh(cmd.Context()); err != nil {
		return explain(err)
	}

	page := store.Page()
	out := cmd.OutOrStdout()
	if listJSON {
		return encodeJSON(out, collection.ListResult{
			Items:        page.Items,
			Total:        page.TotalItems,
			Page:         page.Page,
			ItemsPerPage: page.ItemsPerPage,
		})
	}
	printTodoTable(out, page.Items, time.Now())
	fmt.Fprintln(out, pageSummary(page))
	return nil
}

func pageSummary(page collection.Page) string {
	noun := "todos"
	if page.TotalItems == 1 {
		noun = "todo"
	}
	return fmt.Sprintf("Page %d of %d (%d %s)", page.Page, max(page.TotalPages, 1), page.TotalItems, noun)
}

func runShow(cmd *cobra.Command, args []string) error {
	a, err := loadApp(cmd)
	if err != nil {
		return err
	}
	store := a.newStore()
	resolved, err := resolveTodoIDs(cmd.Context(), a.client, args)
	if err != nil {
		return err
	}

	items := make([]todo.Todo, 0, len(resolved))
	for _, id := range resolved {
		item, err := store.FetchOne(cmd.Context(), id)
		if err != nil {
			return explain(err)
		}
		items = append(items, item)
	}

	out := cmd.OutOrStdout()
	if showJSON {
		return encodeJSON(out, items)
	}
	now := time.Now()
	for i, item := range items {
		if i > 0 {
			fmt.Fprintln(out)
		}
		printTodoDetail(out, item, now)
	}
	return nil
}

func runCreate(cmd *cobra.Command, args []string) error {
	input, err := createInput(cmd, args)
	if err != nil {
		return err
	}

	a, err := loadApp(cmd)
	if err != nil {
		return err
	}
	store := a.newStore()
	out := cmd.OutOrStdout()
	notices := out
	if createJSON {
		notices = cmd.ErrOrStderr()
	}
	coordinator := a.newCoordinator(store, notices, cmd.ErrOrStderr())

	created, err := coordinator.Create(cmd.Context(), input)
	if err != nil {
		return explain(err)
	}
	if createJSON {
		return encodeJSON(out, created)
	}
	fmt.Fprintf(out, "Created todo %s\n", created.ID)
	return nil
}

// createInput builds the create body from the flags, or from $EDITOR
// prefilled with them.
func createInput(cmd *cobra.Command, args []string) (todo.NewTodo, error) {
	title := createTitle
	if len(args) == 1 {
		if cmd.Flags().Changed("title") {
			return todo.NewTodo{}, fmt.Errorf("title given both as an argument and with --title")
		}
		title = args[0]
	}
	description, err := resolveDescription(createDescription, cmd.InOrStdin())
	if err != nil {
		return todo.NewTodo{}, err
	}
	status, err := todo.ParseStatus(createStatus)
	if err != nil {
		return todo.NewTodo{}, err
	}
	priority, err := todo.ParsePriority(createPriority)
	if err != nil {
		return todo.NewTodo{}, err
	}
	due, err := parseDue(createDue)
	if err != nil {
		return todo.NewTodo{}, err
	}
	input := todo.NewTodo{
		Title:       title,
		Description: description,
		Status:      status,
		Priority:    priority,
		Tags:        createTags,
		DueDate:     due,
	}

	useEditor, err := editorRequested(cmd, len(args) > 0, editor.IsInteractive())
	if err != nil || !useEditor {
		return input, err
	}
	data := editor.DefaultCreateData()
	data.Title = input.Title
	data.Description = input.Description
	data.Status = string(input.Status)
	data.Priority = string(input.Priority)
	data.Tags = input.Tags
	if due != nil {
		data.Due = due.Format(editor.DateLayout)
	}
	parsed, err := editor.EditTodoWithData(data)
	if err != nil {
		return todo.NewTodo{}, err
	}
	return parsed.NewTodo(), nil
}

func updatePatch(cmd *cobra.Command, id string) (todo.Patch, error) {
	patch := todo.Patch{ID: id}
	if cmd.Flags().Changed("title") {
		patch.Title = todo.StringPtr(updateTitle)
	}
	if cmd.Flags().Changed("description") {
		description, err := resolveDescription(updateDescription, cmd.InOrStdin())
		if err != nil {
			return todo.Patch{}, err
		}
		patch.Description = todo.StringPtr(description)
	}
	if cmd.Flags().Changed("status") {
		status, err := todo.ParseStatus(updateStatus)
		if err != nil {
			return todo.Patch{}, err
		}
		patch.Status = todo.StatusPtr(status)
	}
	if cmd.Flags().Changed("priority") {
		priority, err := todo.ParsePriority(updatePriority)
		if err != nil {
			return todo.Patch{}, err
		}
		patch.Priority = todo.PriorityPtr(priority)
	}
	if cmd.Flags().Changed("tags") {
		patch.Tags = todo.TagsPtr(updateTags)
	}
	if cmd.Flags().Changed("due") {
		due, err := parseDue(updateDue)
		if err != nil {
			return todo.Patch{}, err
		}
		if due == nil {
			return todo.Patch{}, fmt.Errorf("due dates cannot be cleared")
		}
		patch.DueDate = due
	}
	if patch.IsEmpty() {
		return todo.Patch{}, fmt.Errorf("nothing to update: pass at least one of --title, --description, --status, --priority, --tags, --due")
	}
	return patch, nil
}

func runUpdate(cmd *cobra.Command, args []string) error {
	useEditor, err := editorRequested(cmd, false, editor.IsInteractive())
	if err != nil {
		return err
	}

	var patch todo.Patch
	if !useEditor {
		if patch, err = updatePatch(cmd, args[0]); err != nil {
			return err
		}
	}

	a, err := loadApp(cmd)
	if err != nil {
		return err
	}
	id, err := resolveTodoID(cmd.Context(), a.client, args[0])
	if err != nil {
		return err
	}
	patch.ID = id
	store := a.newStore()
	if useEditor {
		existing, err := store.FetchOne(cmd.Context(), id)
		if err != nil {
			return explain(err)
		}
		parsed, err := editor.EditTodoWithData(editor.DataFromTodo(existing))
		if err != nil {
			return err
		}
		patch = parsed.Patch(existing.ID)
	}
	out := cmd.OutOrStdout()
	notices := out
	if updateJSON {
		notices = cmd.ErrOrStderr()
	}
	coordinator := a.newCoordinator(store, notices, cmd.ErrOrStderr())

	updated, err := coordinator.Edit(cmd.Context(), patch)
	if err != nil {
		return explain(err)
	}
	if updateJSON {
		return encodeJSON(out, updated)
	}
	return nil
}

// runMove drags each todo to the destination column. Every id gets its own
// store so that the notification can name the todo it moved.
func runMove(cmd *cobra.Command, args []string) error {
	status, err := todo.ParseStatus(moveTo)
	if err != nil {
		return err
	}
	a, err := loadApp(cmd)
	if err != nil {
		return err
	}

	resolved, err := resolveTodoIDs(cmd.Context(), a.client, args)
	if err != nil {
		return err
	}

	notifier := &lockedNotifier{next: printNotifier{out: cmd.OutOrStdout(), errOut: cmd.ErrOrStderr()}}
	return forEachID(cmd.Context(), resolved, func(ctx context.Context, id string) error {
		store := a.newStore()
		item, err := store.FetchOne(ctx, id)
		if err != nil {
			return err
		}
		if item.Status == status {
			notifier.Success("Todo unchanged.", fmt.Sprintf("\"%s\" is already in %s.", item.Title, status.Label()))
			return nil
		}
		coordinator := board.NewCoordinator(store, notifier, a.logger)
		return coordinator.OnDragComplete(ctx, board.DropResult{
			DraggableID: id,
			Source:      board.Location{DroppableID: item.Status},
			Destination: &board.Location{DroppableID: status},
		})
	})
}

func runDelete(cmd *cobra.Command, args []string) error {
	a, err := loadApp(cmd)
	if err != nil {
		return err
	}

	resolved, err := resolveTodoIDs(cmd.Context(), a.client, args)
	if err != nil {
		return err
	}

	notifier := &lockedNotifier{next: printNotifier{out: cmd.OutOrStdout(), errOut: cmd.ErrOrStderr()}}
	return forEachID(cmd.Context(), resolved, func(ctx context.Context, id string) error {
		store := a.newStore()
		if _, err := store.FetchOne(ctx, id); err != nil {
			return err
		}
		return board.NewCoordinator(store, notifier, a.logger).Delete(ctx, id)
	})
}

func runTag(cmd *cobra.Command, arg string, tags []string, change func([]string, string) []string) error {
	a, err := loadApp(cmd)
	if err != nil {
		return err
	}
	id, err := resolveTodoID(cmd.Context(), a.client, arg)
	if err != nil {
		return err
	}
	store := a.newStore()
	item, err := store.FetchOne(cmd.Context(), id)
	if err != nil {
		return explain(err)
	}

	next := item.Tags
	for _, tag := range tags {
		next = change(next, tag)
	}
	if strings.Join(next, "\x00") == strings.Join(item.Tags, "\x00") {
		fmt.Fprintf(cmd.OutOrStdout(), "Tags unchanged: %s\n", formatTags(item.Tags))
		return nil
	}

	coordinator := a.newCoordinator(store, cmd.OutOrStdout(), cmd.ErrOrStderr())
	updated, err := coordinator.Edit(cmd.Context(), todo.Patch{ID: id, Tags: todo.TagsPtr(next)})
	if err != nil {
		return explain(err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Tags: %s\n", formatTags(updated.Tags))
	return nil
}

// forEachID runs fn for every id with bounded concurrency and returns the
// first error.
func forEachID(ctx context.Context, ids []string, fn func(context.Context, string) error) error {
	group, ctx := errgroup.WithContext(ctx)
	group.SetLimit(bulkConcurrency)
	for _, id := range ids {
		group.Go(func() error {
			return fn(ctx, id)
		})
	}
	return explain(group.Wait())
}

// lockedNotifier serializes notifications from concurrent gestures.
type lockedNotifier struct {
	mu   sync.Mutex
	next board.Notifier
}

func (n *lockedNotifier) Success(title, description string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.next.Success(title, description)
}

func (n *lockedNotifier) Error(title, description string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.next.Error(title, description)
}
