package internal

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidWindow is returned when a timeline window ends before it starts.
	ErrInvalidWindow = errors.New("invalid window: end precedes start")

	// ErrInvalidTask is returned when a scheduling task fails validation.
	ErrInvalidTask = errors.New("invalid task")

	// ErrNoSlotAvailable means neither the reasoner nor the fallback policy
	// produced a conflict-free slot within the lookahead window.
	ErrNoSlotAvailable = errors.New("no slot available in lookahead window")

	// ErrReasonerUnavailable marks a failed reasoning-service call. It is
	// always recovered internally via the fallback policy.
	ErrReasonerUnavailable = errors.New("reasoning service unavailable")
)

// SourceError wraps a read failure from one of the event sources.
// A single failing source does not abort aggregation; the error is
// surfaced as a timeline warning instead.
type SourceError struct {
	Source string
	Err    error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("source %s unavailable: %v", e.Source, e.Err)
}

func (e *SourceError) Unwrap() error { return e.Err }

// AppError is the error shape carried in API responses.
type AppError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func NewAppError(code int, msg string) *AppError {
	return &AppError{Code: code, Message: msg}
}

func (e *AppError) Error() string {
	return fmt.Sprintf("%d: %s", e.Code, e.Message)
}
