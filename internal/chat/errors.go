package chat

import (
	"errors"
	"fmt"
)

// Sentinel errors for remote responders.
var (
	ErrNotConfigured = errors.New("chat: responder not configured")
	ErrUnauthorized  = errors.New("chat: rejected credentials")
	ErrRateLimited   = errors.New("chat: rate limited by provider")
	ErrServer        = errors.New("chat: provider error")
	ErrEmptyResponse = errors.New("chat: empty response")
)

// Error wraps a provider failure with the operation that produced it.
type Error struct {
	Provider string
	Op       string
	Status   int
	Err      error
}

func (e *Error) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s %s [%d]: %v", e.Provider, e.Op, e.Status, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Provider, e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func wrapError(provider, op string, status int, err error) error {
	return &Error{Provider: provider, Op: op, Status: status, Err: err}
}

// statusError maps an HTTP status to a sentinel.
func statusError(status int) error {
	switch {
	case status == 401 || status == 403:
		return ErrUnauthorized
	case status == 429:
		return ErrRateLimited
	default:
		return ErrServer
	}
}
