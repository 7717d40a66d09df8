package cmdlog

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/renameio/v2"

	"github.com/openrails/openrails-sub024/internal/codec"
	"github.com/openrails/openrails-sub024/internal/command"
)

// beforeRename runs between writing the temporary file and renaming it over
// the target. Tests use it to fail a save at the last moment.
var beforeRename func() error

// Save writes the entries, stable-sorted by time, to path in a single
// atomic replace. On success the in-memory entries take the sorted order;
// on failure a warning is logged and neither the entries nor the file at
// path change.
func (l *Log) Save(path string) error {
	sorted := l.Sorted()

	data, err := codec.Encode(sorted)
	if err != nil {
		return l.warn(ioFailure("save", path, err))
	}
	if err := writeFileAtomic(path, data, 0o644); err != nil {
		return l.warn(ioFailure("save", path, err))
	}

	l.entries = sorted
	l.logger.Info("command log saved", "path", path, "entries", len(sorted))
	return nil
}

// Load replaces the entries with the commands decoded from path. On failure
// a warning is logged and the entries are left as they were.
func (l *Log) Load(path string) error {
	cmds, lerr := readFile(path)
	if lerr != nil {
		return l.warn(lerr)
	}
	l.entries = cmds
	l.logger.Info("command log loaded", "path", path, "entries", len(cmds))
	return nil
}

// ReadFile decodes the command file at path without touching any log. The
// error, if any, is an *Error.
func ReadFile(path string) ([]command.Command, error) {
	cmds, lerr := readFile(path)
	if lerr != nil {
		return nil, lerr
	}
	return cmds, nil
}

func readFile(path string) ([]command.Command, *Error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, ioFailure("load", path, err)
	}
	defer f.Close()

	cmds, err := codec.Read(f)
	if err != nil {
		return nil, classify("load", path, err)
	}
	return cmds, nil
}

// WriteFile encodes cmds as given and writes them atomically to path.
func WriteFile(path string, cmds []command.Command) error {
	data, err := codec.Encode(cmds)
	if err != nil {
		return ioFailure("save", path, err)
	}
	if err := writeFileAtomic(path, data, 0o644); err != nil {
		return ioFailure("save", path, err)
	}
	return nil
}

func (l *Log) warn(e *Error) error {
	l.logger.Warn("command log "+e.Op+" failed", "path", e.Path, "code", string(e.Code), "error", e.Err)
	return e
}

// writeFileAtomic writes data to a pending file in the target directory
// and renames it over filename, so readers see either the old file or the
// complete new one.
func writeFileAtomic(filename string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(filename)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}

	pf, err := renameio.NewPendingFile(filename,
		renameio.WithTempDir(dir),
		renameio.WithPermissions(perm),
	)
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer pf.Cleanup()

	if _, err := pf.Write(data); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}

	if beforeRename != nil {
		if err := beforeRename(); err != nil {
			return err
		}
	}

	if err := pf.CloseAtomicallyReplace(); err != nil {
		return fmt.Errorf("replace %s: %w", filepath.Base(filename), err)
	}
	return nil
}
