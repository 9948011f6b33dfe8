package credentials

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/amonks/todopro/gateway"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	return NewStore(filepath.Join(t.TempDir(), "state", "session.json"))
}

func TestGetMissingFile(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Get("http://localhost:8765")
	if !errors.Is(err, ErrNotLoggedIn) {
		t.Fatalf("expected ErrNotLoggedIn, got %v", err)
	}
}

func TestPutGetRoundTrip(t *testing.T) {
	store := newTestStore(t)
	saved := Session{
		Server:  "http://localhost:8765/",
		Token:   "Bearer abc",
		User:    gateway.User{ID: "1", Name: "John Doe", Email: "john.doe@example.com"},
		SavedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}

	if err := store.Put(saved); err != nil {
		t.Fatalf("put: %v", err)
	}

	got, err := store.Get("http://localhost:8765")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	saved.Server = "http://localhost:8765"
	if diff := cmp.Diff(saved, got); diff != "" {
		t.Fatalf("session mismatch (-want +got):\n%s", diff)
	}

	info, err := os.Stat(store.Path())
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Fatalf("expected mode 0600, got %o", perm)
	}
}

func TestSessionsArePerServer(t *testing.T) {
	store := newTestStore(t)

	if err := store.Put(Session{Server: "http://b", Token: "Bearer b"}); err != nil {
		t.Fatalf("put b: %v", err)
	}
	if err := store.Put(Session{Server: "http://a", Token: "Bearer a"}); err != nil {
		t.Fatalf("put a: %v", err)
	}

	servers, err := store.Servers()
	if err != nil {
		t.Fatalf("servers: %v", err)
	}
	if diff := cmp.Diff([]string{"http://a", "http://b"}, servers); diff != "" {
		t.Fatalf("servers mismatch (-want +got):\n%s", diff)
	}

	if err := store.Delete("http://a"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := store.Get("http://a"); !errors.Is(err, ErrNotLoggedIn) {
		t.Fatalf("expected ErrNotLoggedIn after delete, got %v", err)
	}
	if got, err := store.Get("http://b"); err != nil || got.Token != "Bearer b" {
		t.Fatalf("expected b to survive, got %+v, %v", got, err)
	}
}

func TestDeleteMissingIsNoop(t *testing.T) {
	store := newTestStore(t)
	if err := store.Delete("http://nowhere"); err != nil {
		t.Fatalf("expected nil, got %v", err)
	}
	if _, err := os.Stat(store.Path()); !os.IsNotExist(err) {
		t.Fatalf("expected no file to be written, got %v", err)
	}
}

func TestPutRequiresToken(t *testing.T) {
	store := newTestStore(t)
	if err := store.Put(Session{Server: "http://a"}); err == nil {
		t.Fatal("expected error for empty token")
	}
}

func TestCorruptFile(t *testing.T) {
	store := newTestStore(t)
	if err := os.MkdirAll(filepath.Dir(store.Path()), 0o700); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(store.Path(), []byte("{"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := store.Get("http://a"); err == nil {
		t.Fatal("expected unmarshal error")
	}
}
