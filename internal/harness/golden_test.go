package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Regenerate with:
//
//	go test ./internal/harness -run TestRunWithGolden -update
func TestRunWithGolden_Scenarios(t *testing.T) {
	files, err := FindScenarios("testdata/scenarios", "")
	require.NoError(t, err)
	require.Len(t, files, 4)

	for _, file := range files {
		scenario, err := LoadScenario(file)
		require.NoError(t, err, file)

		t.Run(scenario.Name, func(t *testing.T) {
			result, err := RunWithGolden(t, scenario)
			require.NoError(t, err)
			assert.True(t, result.Pass, "errors: %v", result.Errors)
		})
	}
}

func TestRunWithGolden_IsRepeatable(t *testing.T) {
	scenario, err := LoadScenario("testdata/scenarios/basic-replay.yaml")
	require.NoError(t, err)

	first, err := Run(scenario)
	require.NoError(t, err)
	second, err := Run(scenario)
	require.NoError(t, err)

	assert.Equal(t, Snapshot(scenario.Name, first), Snapshot(scenario.Name, second))
}

func TestSnapshot_Incomplete(t *testing.T) {
	r := NewResult()
	r.Calls = append(r.Calls, "horn set on")

	got := string(Snapshot("partial", r))
	assert.Equal(t, "scenario: partial\napplied:\npause:\ncalls:\n  horn set on\ncompleted: no\n", got)
}

func TestGoldenPath(t *testing.T) {
	assert.Equal(t,
		filepath.Join("scenarios", "golden", "basic.golden"),
		GoldenPath(filepath.Join("scenarios", "basic.yaml")),
	)
}

func TestWriteAndCompareGolden(t *testing.T) {
	path := filepath.Join(t.TempDir(), "golden", "x.golden")

	_, err := CompareGolden(path, []byte("a"))
	require.Error(t, err, "missing golden file")

	require.NoError(t, WriteGolden(path, []byte("scenario: x\n")))

	match, err := CompareGolden(path, []byte("scenario: x\n"))
	require.NoError(t, err)
	assert.True(t, match)

	match, err = CompareGolden(path, []byte("scenario: y\n"))
	require.NoError(t, err)
	assert.False(t, match)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "scenario: x\n", string(data))
}
