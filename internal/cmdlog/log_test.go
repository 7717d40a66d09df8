package cmdlog

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openrails/openrails-sub024/internal/command"
	"github.com/openrails/openrails-sub024/internal/testutil"
)

func TestNew_Defaults(t *testing.T) {
	l := New(testutil.NewManualClock(0))

	assert.Equal(t, 0, l.Len())
	assert.Equal(t, DefaultConfig(), l.Config())
	assert.True(t, math.IsInf(l.ReplayEndsAt(), 1))
	assert.Equal(t, PauseBefore, l.PauseState())
	assert.False(t, l.CameraSuspended())
}

func TestRecord_StampsWithSimulatedTime(t *testing.T) {
	f := newFixture()
	f.clock.Set(12.5)

	got := f.log.Record(command.Must(command.NewBoolean(command.KindBell, true)))

	assert.Equal(t, 12.5, got.Time())
	assert.True(t, got.Stamped())
	assert.Equal(t, []command.Command{got}, f.log.Entries())
}

func TestRecord_KeepsContinuousStartTime(t *testing.T) {
	f := newFixture()
	f.clock.Set(10)
	f.log.Record(command.Must(command.NewBoolean(command.KindHorn, true)))

	// A gesture that began at 8 is only recorded once the control is released.
	f.clock.Set(11)
	target := 0.3
	f.log.Record(command.Must(command.NewContinuous(command.KindThrottle, 8, true, &target)))

	entries := f.log.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, []float64{10, 8}, []float64{entries[0].Time(), entries[1].Time()}, "recording order kept")

	sorted := f.log.Sorted()
	assert.Equal(t, []float64{8, 10}, []float64{sorted[0].Time(), sorted[1].Time()})
	assert.Equal(t, 10.0, f.log.Entries()[0].Time(), "Sorted does not reorder entries")
}

func TestRecord_NilClock(t *testing.T) {
	l := New(nil, WithLogger(discardLogger()))
	got := l.Record(command.Must(command.NewMarker(command.KindHeadlight)))
	assert.Equal(t, 0.0, got.Time())
}

func TestEntries_ReturnsCopy(t *testing.T) {
	f := newFixture()
	f.log.Record(horn(1, true))

	entries := f.log.Entries()
	entries[0] = horn(99, false)

	assert.Equal(t, 1.0, f.log.Entries()[0].Time())
}

func TestReset(t *testing.T) {
	f := newFixture()
	f.log.Record(horn(1, true))
	f.log.SetReplayEndsAt(20)
	f.log.SetPauseState(PauseDuring)
	f.log.SuspendCamera(true)

	f.log.Reset()

	assert.Equal(t, 0, f.log.Len())
	assert.True(t, math.IsInf(f.log.ReplayEndsAt(), 1))
	assert.Equal(t, PauseBefore, f.log.PauseState())
	assert.False(t, f.log.CameraSuspended())
}

func TestPauseState_String(t *testing.T) {
	assert.Equal(t, "before", PauseBefore.String())
	assert.Equal(t, "due", PauseDue.String())
	assert.Equal(t, "during", PauseDuring.String())
	assert.Equal(t, "done", PauseDone.String())
}

func TestConfig_Validate(t *testing.T) {
	require.NoError(t, DefaultConfig().Validate())
	require.NoError(t, Config{}.Validate())

	for _, cfg := range []Config{
		{PauseMargin: -0.1},
		{CompletionDelay: -1},
		{PreEndMargin: -5},
	} {
		assert.Error(t, cfg.Validate(), "%+v", cfg)
	}
}

func TestQueue_SortsStableCopy(t *testing.T) {
	in := []command.Command{horn(3, true), horn(1, true), horn(3, false), horn(2, true)}
	q := NewQueue(in)

	assert.Equal(t, 3.0, in[0].Time(), "input untouched")
	assert.Equal(t, 4, q.Len())

	last, ok := q.Last()
	require.True(t, ok)
	assert.Equal(t, horn(3, false), last)

	var got []command.Command
	for !q.Empty() {
		c, ok := q.Pop()
		require.True(t, ok)
		got = append(got, c)
	}
	assert.Equal(t, []command.Command{horn(1, true), horn(2, true), horn(3, true), horn(3, false)}, got)

	_, ok = q.Pop()
	assert.False(t, ok)
}

func TestQueue_PeekAndRemaining(t *testing.T) {
	q := NewQueue([]command.Command{horn(2, true), horn(1, true)})

	head, ok := q.Peek()
	require.True(t, ok)
	assert.Equal(t, 1.0, head.Time())
	assert.Equal(t, 2, q.Len(), "peek does not remove")

	rem := q.Remaining()
	rem[0] = horn(50, false)
	head, _ = q.Peek()
	assert.Equal(t, 1.0, head.Time())

	q.Clear()
	assert.True(t, q.Empty())
	assert.Empty(t, q.Remaining())
}

func TestQueue_NilSafe(t *testing.T) {
	var q *Queue

	assert.NotPanics(t, func() {
		_, ok := q.Peek()
		assert.False(t, ok)
		_, ok = q.Pop()
		assert.False(t, ok)
		_, ok = q.Last()
		assert.False(t, ok)
		assert.Equal(t, 0, q.Len())
		assert.True(t, q.Empty())
		assert.Nil(t, q.Remaining())
		q.Clear()
	})
}
