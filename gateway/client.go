package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/amonks/todopro/collection"
	"github.com/amonks/todopro/query"
	"github.com/amonks/todopro/todo"
)

// Fallback messages used when a response carries none.
const (
	MessageLogin    = "Login failed"
	MessageRegister = "Registration failed"
	MessageUser     = "Failed to fetch user"
	MessageLogout   = "Logout failed"
)

// DefaultTimeout bounds each client request.
const DefaultTimeout = 30 * time.Second

// Client calls a todo gateway over HTTP. It implements collection.Gateway.
type Client struct {
	baseURL string
	token   string
	client  *http.Client
}

var _ collection.Gateway = (*Client)(nil)

// NewClient creates a client for the given address or URL. token is sent
// verbatim as the Authorization header.
func NewClient(addr, token string) *Client {
	baseURL := strings.TrimRight(strings.TrimSpace(addr), "/")
	if !strings.HasPrefix(baseURL, "http://") && !strings.HasPrefix(baseURL, "https://") {
		baseURL = "http://" + baseURL
	}
	return &Client{baseURL: baseURL, token: token, client: &http.Client{Timeout: DefaultTimeout}}
}

// WithToken returns a copy of the client that sends token.
func (c *Client) WithToken(token string) *Client {
	copied := *c
	copied.token = token
	return &copied
}

// BaseURL returns the normalized server URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// List fetches one page of todos.
func (c *Client) List(ctx context.Context, d query.Descriptor) (collection.ListResult, error) {
	var result collection.ListResult
	path := "/todos"
	if encoded := d.Values().Encode(); encoded != "" {
		path += "?" + encoded
	}
	if err := c.do(ctx, http.MethodGet, path, nil, &result, collection.MessageFetchTodos); err != nil {
		return collection.ListResult{}, err
	}
	if result.Items == nil {
		result.Items = []todo.Todo{}
	}
	return result, nil
}

// Get fetches one todo.
func (c *Client) Get(ctx context.Context, id string) (todo.Todo, error) {
	var found todo.Todo
	if err := c.do(ctx, http.MethodGet, todoPath(id), nil, &found, collection.MessageFetchTodo); err != nil {
		return todo.Todo{}, err
	}
	return found, nil
}

// Create posts a new todo, with defaults filled in, and returns the server's record.
func (c *Client) Create(ctx context.Context, input todo.NewTodo) (todo.Todo, error) {
	var created todo.Todo
	if err := c.do(ctx, http.MethodPost, "/todos", input.Normalize(), &created, collection.MessageAddTodo); err != nil {
		return todo.Todo{}, err
	}
	return created, nil
}

// Update patches a todo and returns the server's record.
func (c *Client) Update(ctx context.Context, patch todo.Patch) (todo.Todo, error) {
	var updated todo.Todo
	if err := c.do(ctx, http.MethodPatch, todoPath(patch.ID), patch, &updated, collection.MessageUpdateTodo); err != nil {
		return todo.Todo{}, err
	}
	return updated, nil
}

// Delete removes a todo.
func (c *Client) Delete(ctx context.Context, id string) error {
	var response deleteResponse
	return c.do(ctx, http.MethodDelete, todoPath(id), nil, &response, collection.MessageDeleteTodo)
}

// Login exchanges credentials for a session.
func (c *Client) Login(ctx context.Context, email, password string) (Session, error) {
	var session Session
	err := c.do(ctx, http.MethodPost, "/auth/login", loginRequest{Email: email, Password: password}, &session, MessageLogin)
	return session, err
}

// Register creates an account.
func (c *Client) Register(ctx context.Context, name, email, password string) (Session, error) {
	var session Session
	err := c.do(ctx, http.MethodPost, "/auth/register", registerRequest{Name: name, Email: email, Password: password}, &session, MessageRegister)
	return session, err
}

// User returns the account the client's token belongs to.
func (c *Client) User(ctx context.Context) (Session, error) {
	var session Session
	err := c.do(ctx, http.MethodGet, "/auth/user", nil, &session, MessageUser)
	return session, err
}

// Logout ends the session on the server.
func (c *Client) Logout(ctx context.Context) error {
	var response messageResponse
	return c.do(ctx, http.MethodPost, "/auth/logout", struct{}{}, &response, MessageLogout)
}

func todoPath(id string) string {
	return "/todos/" + url.PathEscape(id)
}

func (c *Client) do(ctx context.Context, method, path string, payload any, dest any, fallback string) error {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return &StatusError{Message: fallback, Err: err}
		}
		body = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return &StatusError{Message: fallback, Err: err}
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", c.token)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return &StatusError{Message: fallback, Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return readErrorResponse(resp, fallback)
	}
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return &StatusError{Message: fallback, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

func readErrorResponse(resp *http.Response, fallback string) error {
	var payload messageResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err == nil && strings.TrimSpace(payload.Message) != "" {
		return &StatusError{Code: resp.StatusCode, Message: payload.Message}
	}
	return &StatusError{Code: resp.StatusCode, Message: fallback}
}
