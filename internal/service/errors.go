package service

import (
	"errors"
	"fmt"
)

var (
	// ErrSessionExpired is terminal for the current session: renewal failed
	// (or a renewed token was rejected again) and the session was torn down.
	ErrSessionExpired = errors.New("session expired")

	// ErrNotAuthenticated is returned by operations that need an active
	// session when none exists.
	ErrNotAuthenticated = errors.New("not authenticated")

	// ErrInvalidScore rejects completion scores outside 0..100 before any
	// network call is made.
	ErrInvalidScore = errors.New("score must be between 0 and 100")

	// ErrCacheClosed is returned by a progress cache that has been disposed.
	ErrCacheClosed = errors.New("progress cache is closed")
)

// AuthError is a recoverable authentication failure: bad credentials or a
// duplicate registration. Message is safe to show to the user.
type AuthError struct {
	Message string
	Err     error
}

func (e *AuthError) Error() string { return e.Message }

func (e *AuthError) Unwrap() error { return e.Err }

// FetchError is a transient progress fetch failure; the cache keeps its
// previous contents and the caller may retry.
type FetchError struct {
	Err error
}

func (e *FetchError) Error() string { return fmt.Sprintf("fetch progress: %v", e.Err) }

func (e *FetchError) Unwrap() error { return e.Err }

// CompletionError means the backend rejected a topic completion; the
// optimistic cache entry has been rolled back.
type CompletionError struct {
	Message string
	Err     error
}

func (e *CompletionError) Error() string { return e.Message }

func (e *CompletionError) Unwrap() error { return e.Err }

// serverMessage extracts the backend-provided text from a transport error,
// or "" when the response was malformed or absent.
func serverMessage(err error) string {
	var m interface{ APIMessage() string }
	if errors.As(err, &m) {
		return m.APIMessage()
	}
	return ""
}

func messageOr(err error, fallback string) string {
	if msg := serverMessage(err); msg != "" {
		return msg
	}
	return fallback
}
