package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/openrails/openrails-sub024/internal/command"
	"github.com/openrails/openrails-sub024/internal/testutil"
)

// createTestStore opens a fresh database with sequential ids and a fixed
// clock that moves one second per session.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	now := testutil.Epoch
	s, err := Open(filepath.Join(t.TempDir(), "test.db"),
		WithIDGenerator(testutil.NewSequentialIDs("session")),
		WithNow(func() time.Time {
			now = now.Add(time.Second)
			return now
		}),
	)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// sampleCommands covers every payload shape.
func sampleCommands() []command.Command {
	target := 0.75
	return []command.Command{
		command.Must(command.NewMarker(command.KindCabLight)).Stamp(0.5),
		command.Must(command.NewBoolean(command.KindHorn, true)).Stamp(1),
		command.Must(command.NewIndexed(command.KindInjector, 2, true)).Stamp(1.5),
		command.Must(command.NewContinuous(command.KindThrottle, 2, true, &target)),
		command.Must(command.NewContinuous(command.KindTrainBrake, 2.5, false, nil)),
		command.Must(command.NewPaused(3)).Stamp(4),
		command.Must(command.NewCamera("trackside")).Stamp(5),
		command.Must(command.NewSave("leg-2")).Stamp(6),
	}
}
