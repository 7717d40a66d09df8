package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openrails/openrails-sub024/internal/codec"
	"github.com/openrails/openrails-sub024/internal/command"
	"github.com/openrails/openrails-sub024/internal/testutil"
)

func TestSaveSession_RoundTrip(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	cmds := sampleCommands()

	id, err := s.SaveSession(ctx, "morning run", cmds)
	require.NoError(t, err)
	assert.Equal(t, "session-0001", id)

	sess, got, err := s.LoadSession(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, cmds, got)
	assert.Equal(t, Session{
		ID:           id,
		Name:         "morning run",
		CreatedAt:    testutil.Epoch.Add(time.Second),
		CommandCount: len(cmds),
		ReplayEndsAt: 6,
	}, sess)
}

func TestSaveSession_KeepsGivenOrder(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	cmds := []command.Command{
		command.Must(command.NewBoolean(command.KindBell, true)).Stamp(9),
		command.Must(command.NewBoolean(command.KindBell, false)).Stamp(3),
	}

	id, err := s.SaveSession(ctx, "unsorted", cmds)
	require.NoError(t, err)

	sess, got, err := s.LoadSession(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, cmds, got)
	assert.Equal(t, 9.0, sess.ReplayEndsAt, "latest time, not last")
}

func TestSaveSession_Empty(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	id, err := s.SaveSession(ctx, "nothing", nil)
	require.NoError(t, err)

	sess, got, err := s.LoadSession(ctx, id)
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Equal(t, 0, sess.CommandCount)
	assert.Equal(t, 0.0, sess.ReplayEndsAt)
}

func TestSaveSession_InvalidCommandWritesNothing(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	_, err := s.SaveSession(ctx, "broken", []command.Command{
		command.Must(command.NewBoolean(command.KindHorn, true)).Stamp(1),
		{},
	})
	require.Error(t, err)

	sessions, err := s.ListSessions(ctx)
	require.NoError(t, err)
	assert.Empty(t, sessions)

	var rows int
	require.NoError(t, s.DB().QueryRow("SELECT COUNT(*) FROM commands").Scan(&rows))
	assert.Equal(t, 0, rows, "transaction rolled back")
}

func TestSaveSession_DefaultIDsAreUUIDv7(t *testing.T) {
	s, err := Open(t.TempDir() + "/uuid.db")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	id, err := s.SaveSession(context.Background(), "x", nil)
	require.NoError(t, err)

	parsed, err := uuid.Parse(id)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(7), parsed.Version())
}

func TestLoadSession_NotFound(t *testing.T) {
	s := createTestStore(t)

	_, _, err := s.LoadSession(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrSessionNotFound))
}

func TestLoadSession_DetectsTamperedRow(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	id, err := s.SaveSession(ctx, "tampered", sampleCommands())
	require.NoError(t, err)

	_, err = s.DB().Exec("UPDATE commands SET time = 99 WHERE session_id = ? AND seq = 2", id)
	require.NoError(t, err)

	_, _, err = s.LoadSession(ctx, id)
	require.Error(t, err)
	assert.ErrorIs(t, err, codec.ErrCorruptLog)
	assert.Contains(t, err.Error(), "command 1")
}

func TestLoadSession_DetectsCorruptPayload(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	id, err := s.SaveSession(ctx, "garbled", sampleCommands())
	require.NoError(t, err)

	_, err = s.DB().Exec("UPDATE commands SET payload = x'FF00' WHERE session_id = ? AND seq = 1", id)
	require.NoError(t, err)

	_, _, err = s.LoadSession(ctx, id)
	assert.ErrorIs(t, err, codec.ErrCorruptLog)
}

func TestListSessions_OldestFirst(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	for _, name := range []string{"first", "second", "third"} {
		_, err := s.SaveSession(ctx, name, sampleCommands()[:2])
		require.NoError(t, err)
	}

	sessions, err := s.ListSessions(ctx)
	require.NoError(t, err)
	require.Len(t, sessions, 3)
	assert.Equal(t, "first", sessions[0].Name)
	assert.Equal(t, "second", sessions[1].Name)
	assert.Equal(t, "third", sessions[2].Name)
	assert.Equal(t, 2, sessions[2].CommandCount)
	assert.True(t, sessions[0].CreatedAt.Before(sessions[1].CreatedAt))
}

func TestListSessions_Empty(t *testing.T) {
	s := createTestStore(t)

	sessions, err := s.ListSessions(context.Background())
	require.NoError(t, err)
	assert.Empty(t, sessions)
}

func TestDeleteSession_CascadesToCommands(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	keep, err := s.SaveSession(ctx, "keep", sampleCommands())
	require.NoError(t, err)
	drop, err := s.SaveSession(ctx, "drop", sampleCommands())
	require.NoError(t, err)

	require.NoError(t, s.DeleteSession(ctx, drop))

	var rows int
	require.NoError(t, s.DB().QueryRow("SELECT COUNT(*) FROM commands WHERE session_id = ?", drop).Scan(&rows))
	assert.Equal(t, 0, rows)

	_, got, err := s.LoadSession(ctx, keep)
	require.NoError(t, err)
	assert.Len(t, got, len(sampleCommands()))

	err = s.DeleteSession(ctx, drop)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestGetSession(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	id, err := s.SaveSession(ctx, "meta", sampleCommands())
	require.NoError(t, err)

	sess, err := s.GetSession(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "meta", sess.Name)
	assert.Equal(t, 8, sess.CommandCount)
}

func TestKindCounts(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	cmds := append(sampleCommands(), command.Must(command.NewBoolean(command.KindHorn, false)).Stamp(7))
	id, err := s.SaveSession(ctx, "counts", cmds)
	require.NoError(t, err)

	counts, err := s.KindCounts(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 2, counts[command.KindHorn])
	assert.Equal(t, 1, counts[command.KindThrottle])
	assert.Equal(t, 1, counts[command.KindCameraView])
	assert.NotContains(t, counts, command.KindBell)

	_, err = s.KindCounts(ctx, "missing")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}
