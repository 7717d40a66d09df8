package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const passingScenario = `
name: horn-only
description: "one horn command replays and completes"
auto_pause: false
commands:
  - { at: 1, kind: horn, on: true }
ticks:
  dt: 0.5
assertions:
  - { type: applied_count, kind: horn, count: 1 }
  - { type: completes }
`

const failingScenario = `
name: wrong-count
description: "expects a horn command that was never recorded"
commands:
  - { at: 1, kind: bell, on: true }
ticks:
  dt: 0.5
assertions:
  - { type: applied_count, kind: horn, count: 1 }
`

func TestTestCommand_HarnessScenarios(t *testing.T) {
	dir := filepath.Join("..", "harness", "testdata", "scenarios")

	out, err := execute(t, NewTestCommand(&RootOptions{Format: "text"}), dir)
	require.NoError(t, err, "output: %s", out)
	assert.Contains(t, out, "✓ basic-replay")
	assert.Contains(t, out, "✓ camera-held-back")
	assert.Contains(t, out, "Test Summary: 4 passed, 0 failed, 4 total")
}

func TestTestCommand_UpdateThenCompare(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "horn-only.yaml", passingScenario)

	out, err := execute(t, NewTestCommand(&RootOptions{Format: "text"}), dir, "--update")
	require.NoError(t, err)
	assert.Contains(t, out, "✓ horn-only (golden updated)")

	golden, err := os.ReadFile(filepath.Join(dir, "golden", "horn-only.golden"))
	require.NoError(t, err)
	assert.Contains(t, string(golden), "scenario: horn-only")
	assert.Contains(t, string(golden), "horn set on")

	out, err = execute(t, NewTestCommand(&RootOptions{Format: "text"}), dir)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ All scenarios passed")
}

func TestTestCommand_GoldenMismatch(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "horn-only.yaml", passingScenario)
	writeFile(t, dir, "golden/horn-only.golden", "scenario: something else\n")

	out, err := execute(t, NewTestCommand(&RootOptions{Format: "text"}), dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "✗ horn-only")
	assert.Contains(t, out, "does not match golden file")
}

func TestTestCommand_FailingAssertionJSON(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "horn-only.yaml", passingScenario)
	writeFile(t, dir, "wrong-count.yaml", failingScenario)

	out, err := execute(t, NewTestCommand(&RootOptions{Format: "json"}), dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	resp, data := decodeResponse[TestResult](t, out)
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, CodeTestFailed, resp.Error.Code)
	assert.Equal(t, 1, data.Passed)
	assert.Equal(t, 1, data.Failed)
	assert.Equal(t, 2, data.Total)
	require.Len(t, data.Scenarios, 2)
	assert.True(t, data.Scenarios[0].Pass)
	assert.False(t, data.Scenarios[1].Pass)
	assert.NotEmpty(t, data.Scenarios[1].Errors)
}

func TestTestCommand_Filter(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "horn-only.yaml", passingScenario)
	writeFile(t, dir, "wrong-count.yaml", failingScenario)

	out, err := execute(t, NewTestCommand(&RootOptions{Format: "text"}), dir, "--filter", "horn-*")
	require.NoError(t, err)
	assert.Contains(t, out, "1 passed, 0 failed, 1 total")
}

func TestTestCommand_LoadError(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "broken.yaml", "name: broken\n")

	out, err := execute(t, NewTestCommand(&RootOptions{Format: "text"}), dir)
	require.Error(t, err)
	assert.Contains(t, out, "✗ broken.yaml")
	assert.Contains(t, out, "failed to load scenario")
}

func TestTestCommand_NoScenarios(t *testing.T) {
	out, err := execute(t, NewTestCommand(&RootOptions{Format: "text"}), t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, "No scenarios found.\n", out)

	out, err = execute(t, NewTestCommand(&RootOptions{Format: "json"}), t.TempDir())
	require.NoError(t, err)
	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
}

func TestTestCommand_MissingDirectory(t *testing.T) {
	_, err := execute(t, NewTestCommand(&RootOptions{Format: "text"}), filepath.Join(t.TempDir(), "nope"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "scenarios directory not found")
}
