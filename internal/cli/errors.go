package cli

import (
	"context"
	"errors"
	"os"

	"github.com/spf13/cobra"

	"github.com/openrails/openrails-sub024/internal/cmdlog"
	"github.com/openrails/openrails-sub024/internal/engine"
	"github.com/openrails/openrails-sub024/internal/store"
)

// Error codes used in JSON responses.
const (
	CodeInvalidInput     = "E_INVALID_INPUT"
	CodeIO               = "E_IO"
	CodeCorruptLog       = "E_CORRUPT_LOG"
	CodeStore            = "E_STORE"
	CodeSessionNotFound  = "E_SESSION_NOT_FOUND"
	CodeNondeterministic = "E_NONDETERMINISTIC"
	CodeReplayIncomplete = "E_REPLAY_INCOMPLETE"
	CodeTestFailed       = "E_TEST_FAILED"
)

// fail reports err in the configured format and returns it with an exit
// code. In text mode the error is only returned; main prints it.
func fail(cmd *cobra.Command, opts *RootOptions, exitCode int, code, message string, err error) error {
	if opts.Format == "json" {
		detail := ""
		if err != nil {
			detail = err.Error()
		}
		_ = opts.formatter(cmd).Error(code, message, detail)
	}
	return WrapExitError(exitCode, message, err)
}

// classify picks the JSON error code and exit code for err.
func classify(err error) (exitCode int, code string) {
	switch {
	case cmdlog.IsCorruptLog(err):
		return ExitCommandError, CodeCorruptLog
	case cmdlog.IsIOFailure(err), errors.Is(err, os.ErrNotExist):
		return ExitCommandError, CodeIO
	case errors.Is(err, store.ErrSessionNotFound):
		return ExitCommandError, CodeSessionNotFound
	case engine.IsNondeterministic(err):
		return ExitFailure, CodeNondeterministic
	case engine.IsTickLimit(err), engine.IsCancelled(err), errors.Is(err, context.Canceled):
		return ExitFailure, CodeReplayIncomplete
	}
	return ExitCommandError, CodeInvalidInput
}

// failWith classifies err and reports it.
func failWith(cmd *cobra.Command, opts *RootOptions, message string, err error) error {
	exitCode, code := classify(err)
	return fail(cmd, opts, exitCode, code, message, err)
}
