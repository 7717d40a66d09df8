package harness

import (
	"fmt"
	"strings"

	"github.com/openrails/openrails-sub024/internal/cmdlog"
	"github.com/openrails/openrails-sub024/internal/command"
	"github.com/openrails/openrails-sub024/internal/engine"
)

// AssertionError describes a failed assertion with the applied trace for
// context.
type AssertionError struct {
	Type     string
	Expected string
	Actual   string
	Trace    []string
}

func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	fmt.Fprintf(&buf, "\nApplied trace:\n")
	if len(e.Trace) == 0 {
		fmt.Fprintf(&buf, "  (nothing applied)\n")
	}
	for i, line := range e.Trace {
		fmt.Fprintf(&buf, "  [%d] %s\n", i+1, line)
	}
	return buf.String()
}

// EvaluateAssertions checks every assertion against result and returns one
// message per failure.
func EvaluateAssertions(result *Result, assertions []Assertion) []string {
	var errs []string
	for _, a := range assertions {
		var err error
		switch a.Type {
		case AssertAppliedOrder:
			err = assertAppliedOrder(result, a)
		case AssertAppliedCount:
			err = assertAppliedCount(result, a)
		case AssertNotApplied:
			err = assertAppliedCount(result, Assertion{Type: AssertNotApplied, Kind: a.Kind})
		case AssertPauseDueAfter:
			err = assertPauseDueAfter(result, a)
		case AssertCompletes:
			err = assertCompletes(result, a)
		case AssertCallsContain:
			err = assertCallsContain(result, a)
		default:
			err = fmt.Errorf("unknown assertion type %q", a.Type)
		}
		if err != nil {
			errs = append(errs, err.Error())
		}
	}
	return errs
}

// assertAppliedOrder checks that the kinds were first applied in the given
// order. Other commands may come in between.
func assertAppliedOrder(result *Result, a Assertion) error {
	positions := make(map[string]int, len(a.Kinds))
	for i, entry := range result.applied {
		name := entry.Command.Kind().String()
		if _, seen := positions[name]; !seen {
			positions[name] = i + 1
		}
	}

	for _, k := range a.Kinds {
		if positions[k] == 0 {
			return &AssertionError{
				Type:     a.Type,
				Expected: fmt.Sprintf("all kinds applied: %v", a.Kinds),
				Actual:   fmt.Sprintf("%s never applied", k),
				Trace:    result.Trace,
			}
		}
	}
	for i := 1; i < len(a.Kinds); i++ {
		prev, curr := a.Kinds[i-1], a.Kinds[i]
		if positions[prev] >= positions[curr] {
			return &AssertionError{
				Type:     a.Type,
				Expected: fmt.Sprintf("kinds in order: %v", a.Kinds),
				Actual: fmt.Sprintf("%s (pos %d) should be before %s (pos %d)",
					prev, positions[prev], curr, positions[curr]),
				Trace: result.Trace,
			}
		}
	}
	return nil
}

func assertAppliedCount(result *Result, a Assertion) error {
	count := 0
	for _, entry := range result.applied {
		if entry.Command.Kind().String() == a.Kind {
			count++
		}
	}
	if count == a.Count {
		return nil
	}
	return &AssertionError{
		Type:     a.Type,
		Expected: fmt.Sprintf("%s applied %d time(s)", a.Kind, a.Count),
		Actual:   fmt.Sprintf("applied %d time(s)", count),
		Trace:    result.Trace,
	}
}

func assertPauseDueAfter(result *Result, a Assertion) error {
	due, ok := findTransition(result.pauses, cmdlog.PauseDue)
	if !ok {
		return &AssertionError{
			Type:     a.Type,
			Expected: fmt.Sprintf("pause due after %s", command.FormatTime(*a.After)),
			Actual:   "pause never became due",
			Trace:    result.Trace,
		}
	}
	if due.Time > *a.After {
		return nil
	}
	return &AssertionError{
		Type:     a.Type,
		Expected: fmt.Sprintf("pause due after %s", command.FormatTime(*a.After)),
		Actual:   fmt.Sprintf("due at %s (tick %d)", command.FormatTime(due.Time), due.Tick),
		Trace:    result.Trace,
	}
}

func assertCompletes(result *Result, a Assertion) error {
	want := true
	if a.Expect != nil {
		want = *a.Expect
	}
	if result.Completed == want {
		return nil
	}
	actual := "replay did not complete"
	if result.Completed {
		actual = fmt.Sprintf("replay completed at tick %d", result.CompletedAt)
	}
	return &AssertionError{
		Type:     a.Type,
		Expected: fmt.Sprintf("completed=%t", want),
		Actual:   actual,
		Trace:    result.Trace,
	}
}

func assertCallsContain(result *Result, a Assertion) error {
	for _, call := range result.Calls {
		if call == a.Call {
			return nil
		}
	}
	return &AssertionError{
		Type:     a.Type,
		Expected: fmt.Sprintf("receiver call %q", a.Call),
		Actual:   fmt.Sprintf("calls were %v", result.Calls),
		Trace:    result.Trace,
	}
}

func findTransition(ts []engine.Transition, to cmdlog.PauseState) (engine.Transition, bool) {
	for _, tr := range ts {
		if tr.To == to {
			return tr, true
		}
	}
	return engine.Transition{}, false
}
