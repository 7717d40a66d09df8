package engine

import (
	"errors"
	"fmt"
)

// RuntimeError represents an error detected while driving a replay.
//
// Runtime errors include:
//   - Cancellation: the replay was abandoned before completing
//   - Tick limit: the replay did not complete within the allowed ticks
//   - Nondeterminism: two replays of the same input diverged
//   - Invalid command: Start was given a command that fails validation
type RuntimeError struct {
	// Code identifies the error category.
	Code RuntimeErrorCode

	// Message is a human-readable description.
	Message string

	// Tick is the tick at which the error was detected, if any.
	Tick int64

	// Details contains additional context.
	Details map[string]string
}

// RuntimeErrorCode categorizes runtime errors.
type RuntimeErrorCode string

const (
	// ErrCodeCancelled indicates the replay was cancelled.
	ErrCodeCancelled RuntimeErrorCode = "CANCELLED"

	// ErrCodeTickLimit indicates the replay exceeded its tick budget.
	ErrCodeTickLimit RuntimeErrorCode = "TICK_LIMIT"

	// ErrCodeNondeterministic indicates two replays produced different traces.
	ErrCodeNondeterministic RuntimeErrorCode = "NONDETERMINISTIC"

	// ErrCodeInvalidCommand indicates a command failed validation.
	ErrCodeInvalidCommand RuntimeErrorCode = "INVALID_COMMAND"
)

// Error implements the error interface.
func (e *RuntimeError) Error() string {
	if e.Tick > 0 {
		return fmt.Sprintf("%s: %s (tick=%d)", e.Code, e.Message, e.Tick)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// IsCancelled returns true if the error is a cancellation error.
// Uses errors.As to handle wrapped errors.
func IsCancelled(err error) bool {
	return hasCode(err, ErrCodeCancelled)
}

// IsTickLimit returns true if the replay ran out of ticks.
func IsTickLimit(err error) bool {
	return hasCode(err, ErrCodeTickLimit)
}

// IsNondeterministic returns true if two replays diverged.
func IsNondeterministic(err error) bool {
	return hasCode(err, ErrCodeNondeterministic)
}

func hasCode(err error, code RuntimeErrorCode) bool {
	var re *RuntimeError
	if errors.As(err, &re) {
		return re.Code == code
	}
	return false
}

// NewCancelledError creates a RuntimeError for a cancelled replay.
func NewCancelledError(tick int64, pending int) *RuntimeError {
	return &RuntimeError{
		Code:    ErrCodeCancelled,
		Message: "replay cancelled",
		Tick:    tick,
		Details: map[string]string{
			"pending": fmt.Sprintf("%d", pending),
		},
	}
}

// NewTickLimitError creates a RuntimeError for an exhausted tick budget.
func NewTickLimitError(ticks int64, pending int) *RuntimeError {
	return &RuntimeError{
		Code:    ErrCodeTickLimit,
		Message: fmt.Sprintf("replay did not complete within %d ticks", ticks),
		Tick:    ticks,
		Details: map[string]string{
			"pending": fmt.Sprintf("%d", pending),
		},
	}
}

// NewNondeterministicError creates a RuntimeError describing the first
// divergence between two traces.
func NewNondeterministicError(index int, first, second string) *RuntimeError {
	return &RuntimeError{
		Code:    ErrCodeNondeterministic,
		Message: fmt.Sprintf("replays diverged at entry %d", index),
		Details: map[string]string{
			"first":  first,
			"second": second,
		},
	}
}
