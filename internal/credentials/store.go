// Package credentials persists login sessions for the td CLI, one per gateway.
package credentials

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/natefinch/atomic"

	"github.com/amonks/todopro/gateway"
	internalstrings "github.com/amonks/todopro/internal/strings"
)

// ErrNotLoggedIn is returned when no session is stored for a server.
var ErrNotLoggedIn = errors.New("not logged in")

// Session is a saved login for one gateway.
type Session struct {
	Server  string       `json:"server"`
	Token   string       `json:"token"`
	User    gateway.User `json:"user"`
	SavedAt time.Time    `json:"savedAt"`
}

type file struct {
	Sessions map[string]Session `json:"sessions"`
}

// Store reads and writes the credentials file.
type Store struct {
	path string
}

// NewStore creates a store backed by the file at path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Path returns the credentials file location.
func (s *Store) Path() string {
	return s.path
}

// Get returns the session saved for server.
func (s *Store) Get(server string) (Session, error) {
	f, err := s.load()
	if err != nil {
		return Session{}, err
	}
	session, ok := f.Sessions[serverKey(server)]
	if !ok || session.Token == "" {
		return Session{}, fmt.Errorf("%w to %s", ErrNotLoggedIn, server)
	}
	return session, nil
}

// Servers lists the servers with saved sessions in sorted order.
func (s *Store) Servers() ([]string, error) {
	f, err := s.load()
	if err != nil {
		return nil, err
	}
	servers := make([]string, 0, len(f.Sessions))
	for server := range f.Sessions {
		servers = append(servers, server)
	}
	sort.Strings(servers)
	return servers, nil
}

// Put saves session, replacing any earlier session for the same server.
func (s *Store) Put(session Session) error {
	if strings.TrimSpace(session.Token) == "" {
		return errors.New("session token is required")
	}
	f, err := s.load()
	if err != nil {
		return err
	}
	session.Server = serverKey(session.Server)
	f.Sessions[session.Server] = session
	return s.save(f)
}

// Delete forgets the session for server. Deleting a missing session is not an error.
func (s *Store) Delete(server string) error {
	f, err := s.load()
	if err != nil {
		return err
	}
	key := serverKey(server)
	if _, ok := f.Sessions[key]; !ok {
		return nil
	}
	delete(f.Sessions, key)
	return s.save(f)
}

func (s *Store) load() (*file, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return &file{Sessions: make(map[string]Session)}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read credentials file: %w", err)
	}

	var f file
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("unmarshal credentials: %w", err)
	}
	if f.Sessions == nil {
		f.Sessions = make(map[string]Session)
	}
	return &f, nil
}

func (s *Store) save(f *file) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("create credentials dir: %w", err)
	}

	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal credentials: %w", err)
	}

	if err := atomic.WriteFile(s.path, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("write credentials file: %w", err)
	}
	// atomic.WriteFile keeps the mode of an existing file but not for new ones.
	if err := os.Chmod(s.path, 0o600); err != nil {
		return fmt.Errorf("set credentials permissions: %w", err)
	}
	return nil
}

func serverKey(server string) string {
	return internalstrings.NormalizeServerURL(server)
}
