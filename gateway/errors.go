package gateway

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrNotFound is returned when no todo or user has the requested id.
	ErrNotFound = errors.New("not found")

	// ErrUnauthorized is returned when a request has no valid credentials.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrEmailTaken is returned when registering an email that already has an account.
	ErrEmailTaken = errors.New("email already registered")

	// ErrInvalidCredentials is returned when a login does not match a user.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// StatusError is a failed gateway call. Code is the HTTP status, or 0 when
// the request never got a response.
type StatusError struct {
	Code    int
	Message string
	Err     error
}

func (e *StatusError) Error() string {
	if e.Code == 0 {
		if e.Err != nil {
			return fmt.Sprintf("%s: %v", e.Message, e.Err)
		}
		return e.Message
	}
	return fmt.Sprintf("%s (%d)", e.Message, e.Code)
}

// UserMessage returns the message meant for display.
func (e *StatusError) UserMessage() string {
	return e.Message
}

func (e *StatusError) Unwrap() error {
	return e.Err
}

// Is lets errors.Is match a StatusError against the sentinel for its code.
func (e *StatusError) Is(target error) bool {
	switch target {
	case ErrNotFound:
		return e.Code == http.StatusNotFound
	case ErrUnauthorized:
		return e.Code == http.StatusUnauthorized
	}
	return false
}
