package engine

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openrails/openrails-sub024/internal/command"
)

func sampleSession() []command.Command {
	half := 0.5
	return []command.Command{
		horn(1, true),
		command.Must(command.NewContinuous(command.KindThrottle, 1.5, true, &half)),
		command.Must(command.NewIndexed(command.KindSwitchThrow, 3, true)).Stamp(2),
		command.Must(command.NewPaused(0.5)).Stamp(2.5),
		command.Must(command.NewCamera("cab")).Stamp(3),
		horn(3, false),
		command.Must(command.NewSave("leg-1")).Stamp(4),
	}
}

func TestReplay_AppliesEveryCommand(t *testing.T) {
	e, journal, err := Replay(context.Background(), sampleSession(), ClockTrace{DT: 0.1})
	require.NoError(t, err)

	assert.True(t, e.Completed())
	assert.Equal(t, []string{
		"horn set on",
		"throttle increase to 0.5",
		"switch-throw set #3 on",
		"paused resume",
		`camera-view view "cab"`,
		"horn set off",
		`save save "leg-1"`,
	}, journal.Lines())
}

func TestReplay_TickLimit(t *testing.T) {
	cmds := []command.Command{command.Must(command.NewCamera("cab")).Stamp(1)}

	_, _, err := Replay(context.Background(), cmds, ClockTrace{DT: 0.5, MaxTicks: 10}, WithSuspendCamera(true))
	require.Error(t, err)
	assert.True(t, IsTickLimit(err))
}

func TestClockTrace_Defaults(t *testing.T) {
	ct := ClockTrace{DT: 0.5}
	assert.Equal(t, 500*time.Millisecond, ct.wallPerTick())
	assert.Equal(t, int64(DefaultMaxTicks), ct.maxTicks())

	ct = ClockTrace{DT: 0.5, WallPerTick: time.Second, MaxTicks: 7}
	assert.Equal(t, time.Second, ct.wallPerTick())
	assert.Equal(t, int64(7), ct.maxTicks())
}

func TestVerifyDeterminism_SameInputSameTrace(t *testing.T) {
	err := VerifyDeterminism(context.Background(), sampleSession(), ClockTrace{DT: 0.1})
	assert.NoError(t, err)
}

func TestVerifyDeterminism_DetectsDivergence(t *testing.T) {
	runs := 0
	flaky := func(e *Engine) {
		runs++
		if runs == 2 {
			e.pauseHold = 50
		}
	}

	err := VerifyDeterminism(context.Background(), sampleSession(), ClockTrace{DT: 0.1}, flaky)
	require.Error(t, err)
	assert.True(t, IsNondeterministic(err))

	var re *RuntimeError
	require.ErrorAs(t, err, &re)
	assert.NotEqual(t, re.Details["first"], re.Details["second"])
}

func TestVerifyDeterminism_PropagatesReplayErrors(t *testing.T) {
	err := VerifyDeterminism(context.Background(), []command.Command{{}}, ClockTrace{DT: 0.1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "first replay")
}
