package cmdlog

import (
	"errors"
	"fmt"

	"github.com/openrails/openrails-sub024/internal/codec"
)

// ErrorCode categorizes persistence failures.
type ErrorCode string

const (
	// CodeIOFailure: the file could not be opened, read or written.
	CodeIOFailure ErrorCode = "IO_FAILURE"

	// CodeCorruptLog: the bytes did not decode to a valid command sequence.
	CodeCorruptLog ErrorCode = "CORRUPT_LOG"
)

// Error is returned by Save and Load. The log is unchanged when one is
// returned.
type Error struct {
	Code ErrorCode
	Op   string // "save" or "load"
	Path string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s %s: %v", e.Code, e.Op, e.Path, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsIOFailure reports whether err is an *Error with CodeIOFailure.
func IsIOFailure(err error) bool {
	var le *Error
	if errors.As(err, &le) {
		return le.Code == CodeIOFailure
	}
	return false
}

// IsCorruptLog reports whether err is an *Error with CodeCorruptLog or wraps
// codec.ErrCorruptLog.
func IsCorruptLog(err error) bool {
	var le *Error
	if errors.As(err, &le) && le.Code == CodeCorruptLog {
		return true
	}
	return errors.Is(err, codec.ErrCorruptLog)
}

func ioFailure(op, path string, err error) *Error {
	return &Error{Code: CodeIOFailure, Op: op, Path: path, Err: err}
}

func classify(op, path string, err error) *Error {
	if errors.Is(err, codec.ErrCorruptLog) {
		return &Error{Code: CodeCorruptLog, Op: op, Path: path, Err: err}
	}
	return ioFailure(op, path, err)
}
