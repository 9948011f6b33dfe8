package board

import (
	"sync"

	"github.com/charmbracelet/log"
)

// Notifier shows transient feedback after a user action.
type Notifier interface {
	Success(title, description string)
	Error(title, description string)
}

// LogNotifier reports notifications through a logger.
type LogNotifier struct {
	Logger *log.Logger
}

// Success logs at info level.
func (n LogNotifier) Success(title, description string) {
	if n.Logger == nil {
		return
	}
	n.Logger.Info(title, "detail", description)
}

// Error logs at error level.
func (n LogNotifier) Error(title, description string) {
	if n.Logger == nil {
		return
	}
	n.Logger.Error(title, "detail", description)
}

// Notification is one message recorded by a Recorder.
type Notification struct {
	Kind        string // "success" or "error"
	Title       string
	Description string
}

// Recorder keeps notifications in memory so that a caller can show them later.
type Recorder struct {
	mu    sync.Mutex
	items []Notification
}

// Success records a success notification.
func (r *Recorder) Success(title, description string) {
	r.add(Notification{Kind: "success", Title: title, Description: description})
}

// Error records an error notification.
func (r *Recorder) Error(title, description string) {
	r.add(Notification{Kind: "error", Title: title, Description: description})
}

func (r *Recorder) add(n Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = append(r.items, n)
}

// Drain returns the recorded notifications and forgets them.
func (r *Recorder) Drain() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	items := r.items
	r.items = nil
	return items
}
