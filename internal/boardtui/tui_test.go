package boardtui

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/amonks/todopro/board"
	"github.com/amonks/todopro/collection"
	"github.com/amonks/todopro/query"
	"github.com/amonks/todopro/todo"
)

var testNow = time.Date(2026, 1, 20, 10, 30, 0, 0, time.UTC)

// fakeGateway keeps todos in a slice and filters by search only.
type fakeGateway struct {
	items     []todo.Todo
	updateErr error
}

func (g *fakeGateway) List(_ context.Context, d query.Descriptor) (collection.ListResult, error) {
	var matched []todo.Todo
	for _, item := range g.items {
		if d.Search != "" && !strings.Contains(strings.ToLower(item.Title), strings.ToLower(d.Search)) {
			continue
		}
		matched = append(matched, item)
	}
	return collection.ListResult{Items: matched, Total: len(matched), Page: d.Page, ItemsPerPage: d.ItemsPerPage}, nil
}

func (g *fakeGateway) Get(_ context.Context, id string) (todo.Todo, error) {
	for _, item := range g.items {
		if item.ID == id {
			return item, nil
		}
	}
	return todo.Todo{}, errors.New("Todo not found")
}

func (g *fakeGateway) Create(_ context.Context, input todo.NewTodo) (todo.Todo, error) {
	created := input.Build("new", testNow)
	g.items = append([]todo.Todo{created}, g.items...)
	return created, nil
}

func (g *fakeGateway) Update(_ context.Context, patch todo.Patch) (todo.Todo, error) {
	if g.updateErr != nil {
		return todo.Todo{}, g.updateErr
	}
	for i, item := range g.items {
		if item.ID == patch.ID {
			g.items[i] = patch.Apply(item)
			return g.items[i], nil
		}
	}
	return todo.Todo{}, errors.New("Todo not found")
}

func (g *fakeGateway) Delete(_ context.Context, id string) error {
	for i, item := range g.items {
		if item.ID == id {
			g.items = append(g.items[:i], g.items[i+1:]...)
			return nil
		}
	}
	return errors.New("Todo not found")
}

func useASCIIRenderer(t *testing.T) {
	t.Helper()
	previous := lipgloss.ColorProfile()
	lipgloss.SetColorProfile(termenv.Ascii)
	t.Cleanup(func() {
		lipgloss.SetColorProfile(previous)
	})
}

func newTestModel(t *testing.T, gw *fakeGateway) (model, *collection.Store) {
	t.Helper()
	store := collection.New(gw, collection.Options{Clock: func() time.Time { return testNow }})
	controller := query.NewController(store, query.ControllerOptions{})
	if err := controller.Refresh(context.Background()); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	m, unsubscribe := newModel(context.Background(), Options{Store: store, Controller: controller})
	t.Cleanup(unsubscribe)
	m.width = 100
	m.height = 24
	m.syncState()
	return m, store
}

func sampleGateway() *fakeGateway {
	return &fakeGateway{items: []todo.Todo{
		{ID: "1", Title: "Buy milk", Status: todo.StatusTodo, Priority: todo.PriorityLow, Tags: []string{}, CreatedAt: testNow},
		{ID: "2", Title: "Write report", Status: todo.StatusTodo, Priority: todo.PriorityHigh, Tags: []string{}, CreatedAt: testNow},
		{ID: "3", Title: "Review pull request", Status: todo.StatusInProgress, Priority: todo.PriorityMedium, Tags: []string{}, CreatedAt: testNow},
	}}
}

func keyMsg(key string) tea.KeyMsg {
	switch key {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)}
}

// press sends one key and runs any command it returns until the store settles.
func press(t *testing.T, m model, key string) model {
	t.Helper()
	next, cmd := m.Update(keyMsg(key))
	m = next.(model)
	if cmd == nil {
		return m
	}
	msg := cmd()
	switch msg.(type) {
	case actionDoneMsg, fetchedMsg:
		next, _ = m.Update(msg)
		m = next.(model)
	}
	return m
}

func find(t *testing.T, store *collection.Store, id string) todo.Todo {
	t.Helper()
	item, ok := store.Find(id)
	if !ok {
		t.Fatalf("todo %s not in store", id)
	}
	return item
}

func TestCursorMovesWithinBoard(t *testing.T) {
	m, _ := newTestModel(t, sampleGateway())

	if m.selectedID != "1" {
		t.Fatalf("expected first todo selected, got %q", m.selectedID)
	}
	m = press(t, m, "j")
	if m.selectedID != "2" {
		t.Fatalf("expected j to select 2, got %q", m.selectedID)
	}
	m = press(t, m, "j")
	if m.selectedID != "2" {
		t.Fatalf("expected cursor to stop at column end, got %q", m.selectedID)
	}
	m = press(t, m, "l")
	if m.column != 1 || m.selectedID != "3" {
		t.Fatalf("expected l to select column 1, got column %d id %q", m.column, m.selectedID)
	}
	m = press(t, m, "l")
	if m.column != 2 || m.selectedID != "3" {
		t.Fatalf("expected empty done column to keep selection, got column %d id %q", m.column, m.selectedID)
	}
	m = press(t, m, "l")
	if m.column != 2 {
		t.Fatalf("expected cursor to stop at last column, got %d", m.column)
	}
}

func TestDragRightMovesTodo(t *testing.T) {
	m, store := newTestModel(t, sampleGateway())

	m = press(t, m, "L")

	if got := find(t, store, "1").Status; got != todo.StatusInProgress {
		t.Fatalf("expected in_progress, got %s", got)
	}
	if m.statusLevel != statusInfo || !strings.Contains(m.status, board.TitleMoved) {
		t.Fatalf("expected success status, got %q", m.status)
	}
	if !strings.Contains(m.status, `"Buy milk" moved to in progress`) {
		t.Fatalf("expected move description, got %q", m.status)
	}
	if m.column != 1 || m.selectedID != "1" {
		t.Fatalf("expected cursor to follow the todo, got column %d id %q", m.column, m.selectedID)
	}
}

func TestFailedDragRollsBack(t *testing.T) {
	gw := sampleGateway()
	gw.updateErr = errors.New("boom")
	m, store := newTestModel(t, gw)

	m = press(t, m, "L")

	if got := find(t, store, "1").Status; got != todo.StatusTodo {
		t.Fatalf("expected rollback to todo, got %s", got)
	}
	if m.statusLevel != statusError || !strings.Contains(m.status, board.TitleMoveFailed) {
		t.Fatalf("expected failure status, got %q", m.status)
	}
	if _, ok := store.Ledger("1"); ok {
		t.Fatalf("expected ledger entry to be cleared")
	}
}

func TestDragOffBoardIsIgnored(t *testing.T) {
	m, store := newTestModel(t, sampleGateway())

	m = press(t, m, "H")

	if got := find(t, store, "1").Status; got != todo.StatusTodo {
		t.Fatalf("expected status unchanged, got %s", got)
	}
	if m.status != "" {
		t.Fatalf("expected no status, got %q", m.status)
	}
}

func TestListViewCyclesStatus(t *testing.T) {
	m, store := newTestModel(t, sampleGateway())

	m = press(t, m, "tab")
	if m.mode != modeList {
		t.Fatalf("expected list mode")
	}
	m = press(t, m, "s")

	if got := find(t, store, "1").Status; got != todo.StatusInProgress {
		t.Fatalf("expected in_progress, got %s", got)
	}
	if !strings.Contains(m.status, board.TitleStatusUpdated) {
		t.Fatalf("expected status update message, got %q", m.status)
	}
}

func TestSearchPromptFiltersList(t *testing.T) {
	useASCIIRenderer(t)
	m, store := newTestModel(t, sampleGateway())

	m = press(t, m, "/")
	if m.prompt != promptSearch {
		t.Fatalf("expected search prompt")
	}
	m = press(t, m, "milk")
	m = press(t, m, "enter")

	if got := m.controller.Descriptor().Search; got != "milk" {
		t.Fatalf("expected search milk, got %q", got)
	}
	if items := store.Items(); len(items) != 1 || items[0].ID != "1" {
		t.Fatalf("expected only Buy milk, got %+v", items)
	}
	if !strings.Contains(m.View(), `search "milk"`) {
		t.Fatalf("expected header to show the search")
	}
}

func TestNextPageStopsAtLastPage(t *testing.T) {
	m, _ := newTestModel(t, sampleGateway())

	_, cmd := m.Update(keyMsg("n"))
	if cmd != nil {
		t.Fatalf("expected no page change on the only page")
	}
	_, cmd = m.Update(keyMsg("b"))
	if cmd != nil {
		t.Fatalf("expected no page change before page 1")
	}
}

func TestCreateUsesSelectedColumn(t *testing.T) {
	m, store := newTestModel(t, sampleGateway())

	m = press(t, m, "l")
	m = press(t, m, "c")
	m = press(t, m, "Plan sprint")
	m = press(t, m, "enter")

	created := find(t, store, "new")
	if created.Status != todo.StatusInProgress {
		t.Fatalf("expected new todo in progress, got %s", created.Status)
	}
	if !strings.Contains(m.status, board.TitleCreated) {
		t.Fatalf("expected created message, got %q", m.status)
	}
}

func TestDeleteAsksFirst(t *testing.T) {
	useASCIIRenderer(t)
	m, store := newTestModel(t, sampleGateway())

	m = press(t, m, "d")
	if m.confirmDelete == nil || !strings.Contains(m.View(), `Delete "Buy milk"?`) {
		t.Fatalf("expected confirmation")
	}
	m = press(t, m, "n")
	if _, ok := store.Find("1"); !ok {
		t.Fatalf("expected todo kept after cancel")
	}

	m = press(t, m, "d")
	m = press(t, m, "y")
	if _, ok := store.Find("1"); ok {
		t.Fatalf("expected todo deleted")
	}
	if m.selectedID != "2" {
		t.Fatalf("expected selection to move to 2, got %q", m.selectedID)
	}
}

func TestDetailShowsFetchedTodo(t *testing.T) {
	useASCIIRenderer(t)
	gw := sampleGateway()
	gw.items[0].Description = "Two litres, semi-skimmed."
	m, _ := newTestModel(t, gw)

	m = press(t, m, "enter")
	if !m.showDetail {
		t.Fatalf("expected detail pane")
	}
	view := m.View()
	if !strings.Contains(view, "Buy milk") || !strings.Contains(view, "Two litres") {
		t.Fatalf("expected detail view, got:\n%s", view)
	}
	m = press(t, m, "esc")
	if m.showDetail {
		t.Fatalf("expected esc to close the detail pane")
	}
}

func TestBoardViewShowsColumns(t *testing.T) {
	useASCIIRenderer(t)
	m, _ := newTestModel(t, sampleGateway())

	view := m.View()
	for _, want := range []string{"todo (2)", "in progress (1)", "done (0)", "! Write report", "page 1/1 (3)"} {
		if !strings.Contains(view, want) {
			t.Fatalf("expected %q in view:\n%s", want, view)
		}
	}
}

func TestGrabPreviewsThenDrops(t *testing.T) {
	useASCIIRenderer(t)
	gw := sampleGateway()
	m, store := newTestModel(t, gw)

	m = press(t, m, " ")
	if m.grab == nil || m.grab.id != "1" {
		t.Fatalf("expected todo 1 grabbed, got %+v", m.grab)
	}
	m = press(t, m, "l")
	if got := find(t, store, "1").Status; got != todo.StatusInProgress {
		t.Fatalf("expected preview in in_progress, got %s", got)
	}
	if _, ok := store.Ledger("1"); !ok {
		t.Fatalf("expected a ledger entry while carrying the card")
	}
	if gw.items[0].Status != todo.StatusTodo {
		t.Fatalf("expected no save before the drop, got %s", gw.items[0].Status)
	}
	if view := m.View(); !strings.Contains(view, "» . Buy milk") {
		t.Fatalf("expected grabbed marker in view:\n%s", view)
	}

	m = press(t, m, " ")
	if m.grab != nil {
		t.Fatalf("expected card to be dropped")
	}
	if gw.items[0].Status != todo.StatusInProgress {
		t.Fatalf("expected drop to save in_progress, got %s", gw.items[0].Status)
	}
	if _, ok := store.Ledger("1"); ok {
		t.Fatalf("expected ledger entry to be cleared after the save")
	}
	if !strings.Contains(m.status, `"Buy milk" moved to in progress`) {
		t.Fatalf("expected move notification, got %q", m.status)
	}
}

func TestGrabCancelPutsCardBack(t *testing.T) {
	gw := sampleGateway()
	m, store := newTestModel(t, gw)

	m = press(t, m, " ")
	m = press(t, m, "l")
	m = press(t, m, "l")
	if got := find(t, store, "1").Status; got != todo.StatusDone {
		t.Fatalf("expected preview in done, got %s", got)
	}
	m = press(t, m, "esc")

	if m.grab != nil {
		t.Fatalf("expected grab to end")
	}
	if got := find(t, store, "1").Status; got != todo.StatusTodo {
		t.Fatalf("expected card back in todo, got %s", got)
	}
	if _, ok := store.Ledger("1"); ok {
		t.Fatalf("expected ledger entry to be rolled back")
	}
	if gw.items[0].Status != todo.StatusTodo {
		t.Fatalf("expected nothing saved, got %s", gw.items[0].Status)
	}
	if m.status != "Move cancelled." {
		t.Fatalf("expected cancel status, got %q", m.status)
	}
}

func TestGrabReturnedToSourceDropsNothing(t *testing.T) {
	gw := sampleGateway()
	gw.updateErr = errors.New("should not be called")
	m, store := newTestModel(t, gw)

	m = press(t, m, " ")
	m = press(t, m, "l")
	m = press(t, m, "h")
	if _, ok := store.Ledger("1"); ok {
		t.Fatalf("expected ledger entry to be rolled back on return")
	}
	next, cmd := m.Update(keyMsg(" "))
	m = next.(model)
	if cmd != nil {
		t.Fatalf("expected no save for a card dropped where it started")
	}
	if got := find(t, store, "1").Status; got != todo.StatusTodo {
		t.Fatalf("expected todo, got %s", got)
	}
}

func TestGrabFailedSaveRollsBack(t *testing.T) {
	gw := sampleGateway()
	gw.updateErr = errors.New("boom")
	m, store := newTestModel(t, gw)

	m = press(t, m, " ")
	m = press(t, m, "l")
	m = press(t, m, " ")

	if got := find(t, store, "1").Status; got != todo.StatusTodo {
		t.Fatalf("expected rollback to todo, got %s", got)
	}
	if _, ok := store.Ledger("1"); ok {
		t.Fatalf("expected ledger entry to be removed")
	}
	if m.statusLevel != statusError {
		t.Fatalf("expected error status, got %q", m.status)
	}
}

func TestDragWaitsForPendingSave(t *testing.T) {
	gw := sampleGateway()
	m, store := newTestModel(t, gw)
	m.state.Pending = true

	next, cmd := m.Update(keyMsg("L"))
	m = next.(model)
	if cmd != nil {
		t.Fatalf("expected no drag while a save is pending")
	}
	next, _ = m.Update(keyMsg(" "))
	m = next.(model)
	if m.grab != nil {
		t.Fatalf("expected no grab while a save is pending")
	}
	if got := find(t, store, "1").Status; got != todo.StatusTodo {
		t.Fatalf("expected todo to stay put, got %s", got)
	}
}

func TestPageSizeKeys(t *testing.T) {
	useASCIIRenderer(t)
	m, _ := newTestModel(t, sampleGateway())

	m = press(t, m, "+")
	if got := m.controller.Descriptor().ItemsPerPage; got != 15 {
		t.Fatalf("expected 15 per page, got %d", got)
	}
	if !strings.Contains(m.View(), "15 per page") {
		t.Fatalf("expected page size in header:\n%s", m.View())
	}
	m = press(t, m, "-")
	m = press(t, m, "-")
	if got := m.controller.Descriptor().ItemsPerPage; got != 5 {
		t.Fatalf("expected 5 per page, got %d", got)
	}
	next, cmd := m.Update(keyMsg("-"))
	m = next.(model)
	if cmd != nil {
		t.Fatalf("expected no load below the smallest page size")
	}
	if got := m.controller.Descriptor().Page; got != 1 {
		t.Fatalf("expected page 1 after resizing, got %d", got)
	}
}

func TestWaitForChangeStopsWithContext(t *testing.T) {
	m, _ := newTestModel(t, sampleGateway())
	ctx, cancel := context.WithCancel(context.Background())
	m.ctx = ctx
	cmd := m.waitForChange()

	done := make(chan tea.Msg, 1)
	go func() { done <- cmd() }()
	cancel()

	select {
	case msg := <-done:
		if msg != nil {
			t.Fatalf("expected no message after cancel, got %T", msg)
		}
	case <-time.After(time.Second):
		t.Fatalf("waitForChange did not return after cancel")
	}
}

func TestCardLineFlattensTitle(t *testing.T) {
	item := todo.Todo{Title: "Buy\nmilk   today", Priority: todo.PriorityHigh}
	if got := cardLine(item); got != "! Buy milk today" {
		t.Fatalf("cardLine = %q", got)
	}
}
