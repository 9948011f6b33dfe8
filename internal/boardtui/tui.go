// Package boardtui is the interactive board and list view for td.
package boardtui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/amonks/todopro/board"
	"github.com/amonks/todopro/collection"
	"github.com/amonks/todopro/internal/logging"
	"github.com/amonks/todopro/query"
	"github.com/amonks/todopro/todo"
)

type viewMode int

const (
	modeBoard viewMode = iota
	modeList
)

type promptKind int

const (
	promptNone promptKind = iota
	promptSearch
	promptCreate
)

type statusLevel int

const (
	statusNone statusLevel = iota
	statusInfo
	statusError
)

// Page sizes reachable with + and -.
const (
	pageSizeStep = 5
	minPageSize  = 5
	maxPageSize  = 50
)

// Options wires the view to a store and its controller.
type Options struct {
	Store      *collection.Store
	Controller *query.Controller
	Logger     *log.Logger
	// ListView starts in the list view instead of the board.
	ListView bool
}

type model struct {
	ctx         context.Context
	store       *collection.Store
	controller  *query.Controller
	coordinator *board.Coordinator
	notes       *board.Recorder
	changes     chan struct{}

	state      collection.State
	mode       viewMode
	selectedID string
	column     int
	index      int

	// grab is the card picked up with space, previewed in other columns
	// until it is dropped or put back.
	grab *grabState

	prompt        promptKind
	input         textinput.Model
	confirmDelete *todo.Todo
	showDetail    bool
	showHelp      bool

	status      string
	statusLevel statusLevel
	width       int
	height      int
}

type grabState struct {
	id     string
	source board.Location
}

// Run shows the board until the user quits or ctx is done.
func Run(ctx context.Context, opts Options) error {
	if opts.Store == nil || opts.Controller == nil {
		return errors.New("store and controller are required")
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	m, unsubscribe := newModel(ctx, opts)
	defer unsubscribe()
	program := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := program.Run()
	return err
}

func newModel(ctx context.Context, opts Options) (model, func()) {
	logger := opts.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	notes := &board.Recorder{}
	changes := make(chan struct{}, 1)
	unsubscribe := opts.Store.Subscribe(func(collection.State) {
		select {
		case changes <- struct{}{}:
		default:
		}
	})

	input := textinput.New()
	input.Prompt = ""
	input.CharLimit = todo.MaxTitleLength
	input.Cursor.SetMode(cursor.CursorStatic)

	m := model{
		ctx:         ctx,
		store:       opts.Store,
		controller:  opts.Controller,
		coordinator: board.NewCoordinator(opts.Store, notes, logger),
		notes:       notes,
		changes:     changes,
		state:       opts.Store.Snapshot(),
		input:       input,
	}
	if opts.ListView {
		m.mode = modeList
	}
	return m, unsubscribe
}

type changedMsg struct{}

type actionDoneMsg struct {
	err error
}

type fetchedMsg struct {
	err error
}

func (m model) Init() tea.Cmd {
	return tea.Batch(m.waitForChange(), m.run(m.controller.Refresh))
}

// waitForChange blocks until the store changes. It gives up once the
// program's context is done.
func (m model) waitForChange() tea.Cmd {
	ctx := m.ctx
	changes := m.changes
	return func() tea.Msg {
		select {
		case <-changes:
			return changedMsg{}
		case <-ctx.Done():
			return nil
		}
	}
}

// run performs a blocking store or controller call off the UI goroutine.
func (m model) run(fn func(context.Context) error) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		return actionDoneMsg{err: fn(ctx)}
	}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.input.Width = max(msg.Width-20, 10)
		return m, nil
	case changedMsg:
		m.syncState()
		return m, m.waitForChange()
	case actionDoneMsg:
		m.syncState()
		m.takeNotes(msg.err)
		return m, nil
	case fetchedMsg:
		m.syncState()
		if msg.err != nil {
			m.showDetail = false
			m.setStatus(msg.err.Error(), statusError)
		}
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	if m.prompt != promptNone {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

// syncState copies the store's state and keeps the cursor on the selected todo.
func (m *model) syncState() {
	m.state = m.store.Snapshot()
	columns := board.Columns(m.state.Page.Items)
	if m.selectedID != "" {
		if loc, ok := board.Locate(columns, m.selectedID); ok {
			m.column = columnIndex(loc.DroppableID)
			m.index = loc.Index
			if m.mode == modeList {
				m.index = indexOf(m.state.Page.Items, m.selectedID)
			}
			return
		}
	}
	m.clampCursor()
	if item, ok := m.cursorItem(); ok {
		m.selectedID = item.ID
	} else {
		m.selectedID = ""
	}
}

func (m *model) takeNotes(err error) {
	notes := m.notes.Drain()
	if len(notes) > 0 {
		last := notes[len(notes)-1]
		level := statusInfo
		if last.Kind == "error" {
			level = statusError
		}
		m.setStatus(strings.TrimSpace(last.Title+" "+last.Description), level)
		return
	}
	if err != nil {
		m.setStatus(err.Error(), statusError)
	}
}

func (m *model) setStatus(text string, level statusLevel) {
	m.status = text
	m.statusLevel = level
}

func (m model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	if key == "ctrl+c" {
		return m, tea.Quit
	}
	if m.prompt != promptNone {
		return m.handlePromptKey(msg)
	}
	if m.confirmDelete != nil {
		return m.handleConfirmKey(key)
	}
	if m.showHelp {
		if key == "?" || key == "esc" || key == "q" {
			m.showHelp = false
		}
		return m, nil
	}
	if m.showDetail {
		if key == "esc" || key == "enter" || key == "q" {
			m.showDetail = false
		}
		return m, nil
	}
	if m.grab != nil {
		return m.handleGrabKey(key)
	}

	switch key {
	case "q":
		return m, tea.Quit
	case "?":
		m.showHelp = true
	case "tab":
		m.toggleMode()
	case "up", "k":
		m.moveCursor(0, -1)
	case "down", "j":
		m.moveCursor(0, 1)
	case "left", "h":
		m.moveCursor(-1, 0)
	case "right", "l":
		m.moveCursor(1, 0)
	case "shift+left", "H", "<":
		return m, m.shiftSelected(-1)
	case "shift+right", "L", ">":
		return m, m.shiftSelected(1)
	case " ":
		m.pickUp()
	case "s":
		return m, m.cycleSelectedStatus()
	case "enter":
		return m.openDetail()
	case "c":
		return m.openPrompt(promptCreate, "")
	case "/":
		return m.openPrompt(promptSearch, m.controller.Descriptor().Search)
	case "f":
		return m, m.cycleStatusFilter()
	case "p":
		return m, m.cyclePriorityFilter()
	case "o":
		return m, m.cycleSort()
	case "O":
		return m, m.flipOrder()
	case "x":
		return m, m.run(m.controller.ClearFilters)
	case "n", "pgdown":
		return m, m.turnPage(1)
	case "b", "pgup":
		return m, m.turnPage(-1)
	case "r":
		return m, m.run(m.controller.Refresh)
	case "+", "=":
		return m, m.resizePage(pageSizeStep)
	case "-":
		return m, m.resizePage(-pageSizeStep)
	case "d":
		if item, ok := m.cursorItem(); ok {
			m.confirmDelete = &item
		}
	case "esc":
		m.setStatus("", statusNone)
		m.store.ClearError()
	}
	return m, nil
}

func (m model) handlePromptKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.prompt = promptNone
		m.input.Blur()
		return m, nil
	case "enter":
		value := m.input.Value()
		kind := m.prompt
		m.prompt = promptNone
		m.input.Blur()
		if kind == promptSearch {
			return m, m.search(value)
		}
		return m, m.create(value)
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m model) handleConfirmKey(key string) (tea.Model, tea.Cmd) {
	target := m.confirmDelete
	switch key {
	case "y", "enter":
		m.confirmDelete = nil
		id := target.ID
		return m, m.run(func(ctx context.Context) error {
			return m.coordinator.Delete(ctx, id)
		})
	case "n", "esc", "q":
		m.confirmDelete = nil
	}
	return m, nil
}

func (m model) openPrompt(kind promptKind, value string) (tea.Model, tea.Cmd) {
	m.prompt = kind
	m.input.SetValue(value)
	m.input.CursorEnd()
	return m, m.input.Focus()
}

func (m model) openDetail() (tea.Model, tea.Cmd) {
	item, ok := m.cursorItem()
	if !ok {
		return m, nil
	}
	m.showDetail = true
	ctx := m.ctx
	store := m.store
	return m, func() tea.Msg {
		_, err := store.FetchOne(ctx, item.ID)
		return fetchedMsg{err: err}
	}
}

func (m *model) toggleMode() {
	if m.mode == modeBoard {
		m.mode = modeList
	} else {
		m.mode = modeBoard
	}
	m.syncState()
}

// moveCursor moves the selection. On the list view only dy applies.
func (m *model) moveCursor(dx, dy int) {
	if m.mode == modeList {
		m.index += dy
	} else {
		if dx != 0 {
			m.column += dx
			m.index = 0
		}
		m.index += dy
	}
	m.clampCursor()
	if item, ok := m.cursorItem(); ok {
		m.selectedID = item.ID
	}
}

func (m *model) clampCursor() {
	if m.mode == modeList {
		m.index = clamp(m.index, 0, len(m.state.Page.Items)-1)
		return
	}
	columns := board.Columns(m.state.Page.Items)
	m.column = clamp(m.column, 0, len(columns)-1)
	m.index = clamp(m.index, 0, len(columns[m.column].Items)-1)
}

func (m model) cursorItem() (todo.Todo, bool) {
	if m.mode == modeList {
		items := m.state.Page.Items
		if m.index < 0 || m.index >= len(items) {
			return todo.Todo{}, false
		}
		return items[m.index], true
	}
	columns := board.Columns(m.state.Page.Items)
	if m.column < 0 || m.column >= len(columns) {
		return todo.Todo{}, false
	}
	items := columns[m.column].Items
	if m.index < 0 || m.index >= len(items) {
		return todo.Todo{}, false
	}
	return items[m.index], true
}

// handleGrabKey moves, drops, or puts back the grabbed card. Other keys are
// ignored until the card is let go.
func (m model) handleGrabKey(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "left", "h":
		m.previewGrab(-1)
	case "right", "l":
		m.previewGrab(1)
	case " ", "enter":
		return m.dropGrab()
	case "esc", "q":
		m.cancelGrab()
	}
	return m, nil
}

// pickUp grabs the selected card. Drags wait for in-flight saves.
func (m *model) pickUp() {
	if m.mode != modeBoard || m.state.Pending {
		return
	}
	item, ok := m.cursorItem()
	if !ok {
		return
	}
	source, ok := board.Locate(board.Columns(m.state.Page.Items), item.ID)
	if !ok {
		return
	}
	m.grab = &grabState{id: item.ID, source: source}
	m.setStatus(fmt.Sprintf("Moving %q: h/l column  space drop  esc cancel", item.Title), statusInfo)
}

// previewGrab shows the grabbed card in the neighbouring column without
// saving it. Back in its own column the card is restored exactly.
func (m *model) previewGrab(delta int) {
	item, ok := m.store.Find(m.grab.id)
	if !ok {
		m.grab = nil
		m.syncState()
		return
	}
	statuses := todo.ValidStatuses()
	target := columnIndex(item.Status) + delta
	if target < 0 || target >= len(statuses) {
		return
	}
	if statuses[target] == m.grab.source.DroppableID {
		m.store.Rollback(m.grab.id)
	} else {
		m.store.ApplyOptimistic(m.grab.id, todo.Patch{Status: todo.StatusPtr(statuses[target])})
	}
	m.syncState()
}

func (m model) dropGrab() (tea.Model, tea.Cmd) {
	grab := m.grab
	m.grab = nil
	m.setStatus("", statusNone)
	m.syncState()
	destination, ok := board.Locate(board.Columns(m.state.Page.Items), grab.id)
	if !ok || destination.DroppableID == grab.source.DroppableID {
		m.store.Rollback(grab.id)
		m.syncState()
		return m, nil
	}
	drop := board.DropResult{DraggableID: grab.id, Source: grab.source, Destination: &destination}
	return m, m.run(func(ctx context.Context) error {
		return m.coordinator.OnDragComplete(ctx, drop)
	})
}

func (m *model) cancelGrab() {
	id := m.grab.id
	m.grab = nil
	m.store.Rollback(id)
	m.syncState()
	m.setStatus("Move cancelled.", statusInfo)
}

// shiftSelected drags the selected todo to the neighbouring column.
// Drags wait for in-flight saves.
func (m model) shiftSelected(delta int) tea.Cmd {
	if m.state.Pending {
		return nil
	}
	item, ok := m.cursorItem()
	if !ok {
		return nil
	}
	drop, ok := board.Shift(board.Columns(m.state.Page.Items), item.ID, delta)
	if !ok {
		return nil
	}
	return m.run(func(ctx context.Context) error {
		return m.coordinator.OnDragComplete(ctx, drop)
	})
}

// cycleSelectedStatus is the list view's status picker.
func (m model) cycleSelectedStatus() tea.Cmd {
	item, ok := m.cursorItem()
	if !ok {
		return nil
	}
	next := nextStatus(item.Status)
	return m.run(func(ctx context.Context) error {
		return m.coordinator.ChangeStatus(ctx, item.ID, next)
	})
}

func (m model) create(title string) tea.Cmd {
	input := todo.NewTodo{Title: title}
	if m.mode == modeBoard {
		input.Status = todo.ValidStatuses()[clamp(m.column, 0, len(todo.ValidStatuses())-1)]
	}
	return m.run(func(ctx context.Context) error {
		_, err := m.coordinator.Create(ctx, input)
		return err
	})
}

func (m model) search(value string) tea.Cmd {
	filters := m.controller.Descriptor().Filters()
	filters.Search = value
	return m.run(func(ctx context.Context) error {
		return m.controller.SetFilters(ctx, filters)
	})
}

func (m model) cycleStatusFilter() tea.Cmd {
	filters := m.controller.Descriptor().Filters()
	filters.Status = nextStatusFilter(filters.Status)
	return m.run(func(ctx context.Context) error {
		return m.controller.SetFilters(ctx, filters)
	})
}

func (m model) cyclePriorityFilter() tea.Cmd {
	filters := m.controller.Descriptor().Filters()
	filters.Priority = nextPriorityFilter(filters.Priority)
	return m.run(func(ctx context.Context) error {
		return m.controller.SetFilters(ctx, filters)
	})
}

func (m model) cycleSort() tea.Cmd {
	d := m.controller.Descriptor()
	keys := todo.ValidSortKeys()
	next := keys[0]
	for i, key := range keys {
		if key == d.SortBy {
			next = keys[(i+1)%len(keys)]
		}
	}
	return m.run(func(ctx context.Context) error {
		return m.controller.SetSort(ctx, next, d.SortOrder)
	})
}

func (m model) flipOrder() tea.Cmd {
	d := m.controller.Descriptor()
	order := todo.SortAsc
	if d.SortOrder == todo.SortAsc {
		order = todo.SortDesc
	}
	return m.run(func(ctx context.Context) error {
		return m.controller.SetSort(ctx, d.SortBy, order)
	})
}

func (m model) turnPage(delta int) tea.Cmd {
	page := m.controller.Descriptor().Page + delta
	if page < 1 || (delta > 0 && page > m.state.Page.TotalPages) {
		return nil
	}
	return m.run(func(ctx context.Context) error {
		return m.controller.SetPage(ctx, page)
	})
}

func (m model) resizePage(delta int) tea.Cmd {
	size := m.controller.Descriptor().ItemsPerPage + delta
	if size < minPageSize || size > maxPageSize {
		return nil
	}
	return m.run(func(ctx context.Context) error {
		return m.controller.SetItemsPerPage(ctx, size)
	})
}

func nextStatus(status todo.Status) todo.Status {
	statuses := todo.ValidStatuses()
	for i, candidate := range statuses {
		if candidate == status {
			return statuses[(i+1)%len(statuses)]
		}
	}
	return statuses[0]
}

func nextStatusFilter(current *todo.Status) *todo.Status {
	if current == nil {
		return todo.StatusPtr(todo.ValidStatuses()[0])
	}
	statuses := todo.ValidStatuses()
	for i, candidate := range statuses {
		if candidate == *current && i+1 < len(statuses) {
			return todo.StatusPtr(statuses[i+1])
		}
	}
	return nil
}

func nextPriorityFilter(current *todo.Priority) *todo.Priority {
	if current == nil {
		return todo.PriorityPtr(todo.ValidPriorities()[0])
	}
	priorities := todo.ValidPriorities()
	for i, candidate := range priorities {
		if candidate == *current && i+1 < len(priorities) {
			return todo.PriorityPtr(priorities[i+1])
		}
	}
	return nil
}

func columnIndex(status todo.Status) int {
	for i, candidate := range todo.ValidStatuses() {
		if candidate == status {
			return i
		}
	}
	return 0
}

func indexOf(items []todo.Todo, id string) int {
	for i, item := range items {
		if item.ID == id {
			return i
		}
	}
	return 0
}

func clamp(value, low, high int) int {
	if high < low {
		return low
	}
	return min(max(value, low), high)
}

func describeFilter[T ~string](value *T) string {
	if value == nil {
		return "any"
	}
	return fmt.Sprint(*value)
}
