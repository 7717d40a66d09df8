package harness

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func hornScenario() *Scenario {
	return &Scenario{
		Name:        "horn",
		Description: "two horn commands",
		AutoPause:   ptr(false),
		Commands: []Step{
			{At: 1, Kind: "horn", On: true},
			{At: 2, Kind: "horn", On: false},
		},
		Ticks: Ticks{DT: 0.5},
		Assertions: []Assertion{
			{Type: AssertCompletes},
		},
	}
}

func TestRun_AppliesInOrder(t *testing.T) {
	result, err := Run(hornScenario())
	require.NoError(t, err)

	assert.True(t, result.Pass, "errors: %v", result.Errors)
	assert.Equal(t, []string{
		"tick 2 at 00:00:01.0: 00:00:01.0 horn on",
		"tick 4 at 00:00:02.0: 00:00:02.0 horn off",
	}, result.Trace)
	assert.Equal(t, []string{"horn set on", "horn set off"}, result.Calls)
	assert.True(t, result.Completed)
	assert.Equal(t, int64(9), result.CompletedAt)
}

func TestRun_EmptyBindLeavesEverythingUnbound(t *testing.T) {
	s := hornScenario()
	s.Bind = []string{}

	result, err := Run(s)
	require.NoError(t, err)

	assert.Empty(t, result.Calls)
	require.Len(t, result.Trace, 2)
	assert.True(t, strings.HasSuffix(result.Trace[0], "(unbound)"))
}

func TestRun_CountStopsEarly(t *testing.T) {
	s := hornScenario()
	s.Ticks.Count = 3
	s.Assertions = []Assertion{{Type: AssertCompletes, Expect: ptr(false)}}

	result, err := Run(s)
	require.NoError(t, err)

	assert.True(t, result.Pass, "errors: %v", result.Errors)
	assert.False(t, result.Completed)
	assert.Len(t, result.Trace, 1)
}

func TestRun_LimitStopsRunaway(t *testing.T) {
	s := hornScenario()
	s.Commands = append(s.Commands, Step{At: 3, Kind: "camera-view", View: "cab"})
	s.Ticks.Limit = 50
	s.Ticks.SuspendCamera = []Range{{From: 1, To: 1000}}

	result, err := Run(s)
	require.NoError(t, err)

	assert.False(t, result.Pass)
	assert.False(t, result.Completed)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "replay did not complete")
}

func TestRun_ReportsFailedAssertions(t *testing.T) {
	s := hornScenario()
	s.Assertions = []Assertion{
		{Type: AssertAppliedCount, Kind: "horn", Count: 3},
		{Type: AssertNotApplied, Kind: "horn"},
		{Type: AssertAppliedOrder, Kinds: []string{"bell", "horn"}},
		{Type: AssertCallsContain, Call: "bell set on"},
		{Type: AssertPauseDueAfter, After: ptr(100.0)},
		{Type: AssertCompletes, Expect: ptr(false)},
	}

	result, err := Run(s)
	require.NoError(t, err)

	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 6)
	assert.Contains(t, result.Errors[0], "horn applied 3 time(s)")
	assert.Contains(t, result.Errors[1], "horn applied 0 time(s)")
	assert.Contains(t, result.Errors[2], "bell never applied")
	assert.Contains(t, result.Errors[3], `receiver call "bell set on"`)
	assert.Contains(t, result.Errors[4], "due at")
	assert.Contains(t, result.Errors[5], "replay completed at tick 9")
}

func TestRun_InvalidCommand(t *testing.T) {
	s := hornScenario()
	s.Commands = []Step{{At: 1, Kind: "whistle"}}

	_, err := Run(s)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "whistle")
}

func TestAssertionError_Format(t *testing.T) {
	err := &AssertionError{
		Type:     AssertAppliedCount,
		Expected: "horn applied 1 time(s)",
		Actual:   "applied 0 time(s)",
	}

	msg := err.Error()
	assert.Contains(t, msg, "Assertion failed: applied_count")
	assert.Contains(t, msg, "(nothing applied)")
}

func TestAssertAppliedOrder_WrongOrder(t *testing.T) {
	s := hornScenario()
	s.Commands = []Step{
		{At: 1, Kind: "bell", On: true},
		{At: 2, Kind: "horn", On: true},
	}
	s.Assertions = []Assertion{{Type: AssertAppliedOrder, Kinds: []string{"horn", "bell"}}}

	result, err := Run(s)
	require.NoError(t, err)

	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "horn (pos 2) should be before bell (pos 1)")
}
