package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"strings"
	"time"

	"github.com/amonks/todopro/query"
	"github.com/amonks/todopro/todo"
	"github.com/charmbracelet/log"
	"github.com/google/uuid"
)

const (
	maxBodyBytes    = 1 << 20
	shutdownTimeout = 5 * time.Second
)

// Messages returned in error bodies.
const (
	MessageUnauthorized = "Unauthorized"
	MessageInvalidToken = "Invalid token"
	MessageNotFound     = "Todo not found"
	MessageInternal     = "Internal server error"
)

// ServerOptions configures a Server.
type ServerOptions struct {
	Repository Repository
	// Auth validates bearer tokens. When nil, any non-empty Authorization
	// header is accepted and the auth endpoints are not served.
	Auth   *Auth
	Logger *log.Logger
	Clock  func() time.Time
	NewID  func() string
	// Latency delays every response, to make loading states visible.
	Latency time.Duration
}

// Server is the development todo gateway.
type Server struct {
	repo    Repository
	auth    *Auth
	logger  *log.Logger
	clock   func() time.Time
	newID   func() string
	latency time.Duration
}

type contextKey struct{}

// NewServer creates a server.
func NewServer(opts ServerOptions) (*Server, error) {
	if opts.Repository == nil {
		return nil, errors.New("repository is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(os.Stderr)
		logger.SetPrefix("gateway")
	}
	clock := opts.Clock
	if clock == nil {
		clock = time.Now
	}
	newID := opts.NewID
	if newID == nil {
		newID = func() string { return uuid.NewString() }
	}
	return &Server{
		repo:    opts.Repository,
		auth:    opts.Auth,
		logger:  logger,
		clock:   clock,
		newID:   newID,
		latency: opts.Latency,
	}, nil
}

// Handler returns the HTTP handler for the gateway API.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("GET /todos", s.requireAuth(s.handleList))
	mux.Handle("GET /todos/{id}", s.requireAuth(s.handleGet))
	mux.Handle("POST /todos", s.requireAuth(s.handleCreate))
	mux.Handle("PATCH /todos/{id}", s.requireAuth(s.handleUpdate))
	mux.Handle("DELETE /todos/{id}", s.requireAuth(s.handleDelete))
	if s.auth != nil {
		mux.HandleFunc("POST /auth/login", s.handleLogin)
		mux.HandleFunc("POST /auth/register", s.handleRegister)
		mux.Handle("GET /auth/user", s.requireAuth(s.handleUser))
		mux.Handle("POST /auth/logout", s.requireAuth(s.handleLogout))
	}
	return s.recoverHandler(s.delay(mux))
}

// Serve runs the server on addr until ctx is done or an interrupt arrives.
func (s *Server) Serve(ctx context.Context, addr string) error {
	server := &http.Server{
		Addr:     addr,
		Handler:  s.Handler(),
		ErrorLog: s.logger.StandardLog(log.StandardLogOptions{ForceLevel: log.ErrorLevel}),
	}

	listenErrs := make(chan error, 1)
	go func() {
		listenErrs <- server.ListenAndServe()
	}()
	s.logger.Info("listening", "addr", addr)

	interrupts := make(chan os.Signal, 1)
	signal.Notify(interrupts, os.Interrupt)
	defer signal.Stop(interrupts)

	select {
	case err := <-listenErrs:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("server stopped", "err", err)
			return err
		}
		return nil
	case <-interrupts:
		s.logger.Info("interrupt received, shutting down")
	case <-ctx.Done():
		s.logger.Info("context done, shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	shutdownErr := server.Shutdown(shutdownCtx)
	cancel()
	listenErr := <-listenErrs
	if errors.Is(listenErr, http.ErrServerClosed) {
		listenErr = nil
	}
	return errors.Join(shutdownErr, listenErr)
}

type listResponse struct {
	Items        []todo.Todo `json:"items"`
	Total        int         `json:"total"`
	Page         int         `json:"page"`
	ItemsPerPage int         `json:"itemsPerPage"`
}

type deleteResponse struct {
	ID string `json:"id"`
}

type messageResponse struct {
	Message string `json:"message"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	d := query.Parse(r.URL.Query())
	result, err := s.repo.List(r.Context(), d)
	if err != nil {
		s.writeError(w, r, http.StatusInternalServerError, MessageInternal, err)
		return
	}
	items := result.Items
	if items == nil {
		items = []todo.Todo{}
	}
	writeJSON(w, http.StatusOK, listResponse{
		Items:        items,
		Total:        result.Total,
		Page:         result.Page,
		ItemsPerPage: result.ItemsPerPage,
	})
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	found, err := s.repo.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeRepoError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, found)
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(w, r)
	if err != nil {
		s.writeError(w, r, http.StatusBadRequest, err.Error(), err)
		return
	}
	if err := todo.ValidateNewTodoJSON(body); err != nil {
		s.writeError(w, r, http.StatusBadRequest, err.Error(), err)
		return
	}
	var input todo.NewTodo
	if err := json.Unmarshal(body, &input); err != nil {
		s.writeError(w, r, http.StatusBadRequest, err.Error(), err)
		return
	}
	input = input.Normalize()
	if err := input.Validate(); err != nil {
		s.writeError(w, r, http.StatusBadRequest, validationMessage(err), err)
		return
	}

	created := input.Build(s.newID(), s.clock().UTC())
	if err := s.repo.Create(r.Context(), created); err != nil {
		s.writeError(w, r, http.StatusInternalServerError, MessageInternal, err)
		return
	}
	s.logger.Debug("created todo", "id", created.ID)
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	body, err := readBody(w, r)
	if err != nil {
		s.writeError(w, r, http.StatusBadRequest, err.Error(), err)
		return
	}
	if err := todo.ValidatePatchJSON(body); err != nil {
		s.writeError(w, r, http.StatusBadRequest, err.Error(), err)
		return
	}
	var patch todo.Patch
	if err := json.Unmarshal(body, &patch); err != nil {
		s.writeError(w, r, http.StatusBadRequest, err.Error(), err)
		return
	}
	if patch.ID != "" && patch.ID != id {
		err := fmt.Errorf("body id %q does not match path id %q", patch.ID, id)
		s.writeError(w, r, http.StatusBadRequest, err.Error(), err)
		return
	}
	patch.ID = id
	patch = patch.Normalize()
	if err := patch.Validate(); err != nil {
		s.writeError(w, r, http.StatusBadRequest, validationMessage(err), err)
		return
	}

	updated, err := s.repo.Update(r.Context(), patch, s.clock().UTC())
	if err != nil {
		s.writeRepoError(w, r, err)
		return
	}
	s.logger.Debug("updated todo", "id", updated.ID)
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := s.repo.Delete(r.Context(), id); err != nil {
		s.writeRepoError(w, r, err)
		return
	}
	s.logger.Debug("deleted todo", "id", id)
	writeJSON(w, http.StatusOK, deleteResponse{ID: id})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var payload loginRequest
	if err := decodeJSON(w, r, &payload); err != nil {
		s.writeError(w, r, http.StatusBadRequest, err.Error(), err)
		return
	}
	session, err := s.auth.Login(payload.Email, payload.Password)
	if err != nil {
		message := err.Error()
		if errors.Is(err, ErrInvalidCredentials) {
			message = fmt.Sprintf("Invalid credentials - try {email: 'john.doe@example.com', password: '%s'}", DefaultPassword)
		}
		s.writeError(w, r, http.StatusUnauthorized, message, err)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var payload registerRequest
	if err := decodeJSON(w, r, &payload); err != nil {
		s.writeError(w, r, http.StatusBadRequest, err.Error(), err)
		return
	}
	session, err := s.auth.Register(payload.Name, payload.Email, payload.Password)
	if err != nil {
		status := http.StatusBadRequest
		message := err.Error()
		if errors.Is(err, ErrEmailTaken) {
			message = "Email already registered"
		}
		s.writeError(w, r, status, message, err)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

func (s *Server) handleUser(w http.ResponseWriter, r *http.Request) {
	user, _ := r.Context().Value(contextKey{}).(User)
	session, err := s.auth.Refresh(user)
	if err != nil {
		s.writeError(w, r, http.StatusInternalServerError, MessageInternal, err)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, messageResponse{Message: "Logged out successfully"})
}

func (s *Server) requireAuth(next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if strings.TrimSpace(header) == "" {
			s.writeError(w, r, http.StatusUnauthorized, MessageUnauthorized, ErrUnauthorized)
			return
		}
		if s.auth == nil {
			next(w, r)
			return
		}
		user, err := s.auth.Authenticate(header)
		if err != nil {
			s.writeError(w, r, http.StatusUnauthorized, MessageInvalidToken, err)
			return
		}
		next(w, r.WithContext(context.WithValue(r.Context(), contextKey{}, user)))
	})
}

func (s *Server) delay(next http.Handler) http.Handler {
	if s.latency <= 0 {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(s.latency):
		case <-r.Context().Done():
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) writeRepoError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, ErrNotFound) {
		s.writeError(w, r, http.StatusNotFound, MessageNotFound, err)
		return
	}
	s.writeError(w, r, http.StatusInternalServerError, MessageInternal, err)
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, status int, message string, err error) {
	s.logger.Warn("request failed", "method", r.Method, "path", r.URL.Path, "status", status, "err", err)
	writeJSON(w, status, messageResponse{Message: message})
}

func (s *Server) recoverHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writer := &responseTracker{ResponseWriter: w}
		defer func() {
			if recovered := recover(); recovered != nil {
				s.logger.Error("panic handling request", "method", r.Method, "path", r.URL.Path, "panic", recovered, "stack", string(debug.Stack()))
				if writer.wroteHeader {
					return
				}
				writeJSON(writer, http.StatusInternalServerError, messageResponse{Message: MessageInternal})
			}
		}()
		next.ServeHTTP(writer, r)
	})
}

// validationMessage turns a todo validation error into the message the
// create and edit forms show.
func validationMessage(err error) string {
	switch {
	case errors.Is(err, todo.ErrEmptyTitle):
		return "Title is required"
	case errors.Is(err, todo.ErrTitleTooShort):
		return "Title must be at least 3 characters"
	default:
		return err.Error()
	}
}

func readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	return body, nil
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dest any) error {
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dest); err != nil {
		return err
	}
	if decoder.More() {
		return fmt.Errorf("unexpected extra JSON data")
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

type responseTracker struct {
	http.ResponseWriter
	wroteHeader bool
}

func (w *responseTracker) WriteHeader(status int) {
	w.wroteHeader = true
	w.ResponseWriter.WriteHeader(status)
}

func (w *responseTracker) Write(data []byte) (int, error) {
	if !w.wroteHeader {
		w.wroteHeader = true
	}
	return w.ResponseWriter.Write(data)
}
