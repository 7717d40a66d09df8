package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
)

// Snapshot renders the parts of a result that must not change between
// runs: the applied trace, the pause transitions, the receiver calls and
// the completion tick.
func Snapshot(name string, r *Result) []byte {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "scenario: %s\n", name)

	section := func(title string, lines []string) {
		fmt.Fprintf(&buf, "%s:\n", title)
		for _, line := range lines {
			fmt.Fprintf(&buf, "  %s\n", line)
		}
	}
	section("applied", r.Trace)
	section("pause", r.Transitions)
	section("calls", r.Calls)

	if r.Completed {
		fmt.Fprintf(&buf, "completed: tick %d\n", r.CompletedAt)
	} else {
		fmt.Fprintf(&buf, "completed: no\n")
	}
	return buf.Bytes()
}

// RunWithGolden runs the scenario and compares its snapshot with
// testdata/golden/<name>.golden. Regenerate with:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}
	AssertGolden(t, scenario.Name, result)
	return result, nil
}

// AssertGolden compares an existing result with its golden file.
func AssertGolden(t *testing.T, name string, result *Result) {
	t.Helper()

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, Snapshot(name, result))
}

// GoldenPath returns where the golden file of a scenario file lives:
// golden/<file name>.golden next to it.
func GoldenPath(scenarioFile string) string {
	base := filepath.Base(scenarioFile)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(filepath.Dir(scenarioFile), "golden", name+".golden")
}

// WriteGolden writes data to path, creating the golden directory.
func WriteGolden(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create golden directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write golden file: %w", err)
	}
	return nil
}

// CompareGolden reports whether the golden file at path holds data.
func CompareGolden(path string, data []byte) (bool, error) {
	want, err := os.ReadFile(path)
	if err != nil {
		return false, fmt.Errorf("failed to read golden file: %w", err)
	}
	return bytes.Equal(want, data), nil
}
