package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openrails/openrails-sub024/internal/command"
)

const sampleScript = `
name: morning-run
commands:
  - { at: 1, kind: horn, on: true }
  - { at: 3, kind: throttle, increase: true, target: 0.8 }
  - { at: 4, kind: train-brake, start: 3.5 }
  - { at: 4.5, kind: injector, index: 2, on: false }
  - { at: 5, kind: cab-light }
  - { at: 6, kind: paused, duration: 2 }
  - { at: 7, kind: camera-view, view: cab }
  - { at: 8, kind: save, stem: leg-2 }
`

func TestParseScript(t *testing.T) {
	s, err := ParseScript([]byte(sampleScript))
	require.NoError(t, err)
	assert.Equal(t, "morning-run", s.Name)

	cmds, err := BuildCommands(s.Commands)
	require.NoError(t, err)

	var got []string
	for _, c := range cmds {
		got = append(got, c.Describe())
	}
	assert.Equal(t, []string{
		"00:00:01.0 horn on",
		"00:00:03.0 throttle increase to 0.8",
		"00:00:03.5 train-brake decrease",
		"00:00:04.5 injector #2 off",
		"00:00:05.0 cab-light",
		"00:00:06.0 paused for 2s",
		`00:00:07.0 camera-view "cab"`,
		`00:00:08.0 save "leg-2"`,
	}, got)
}

func TestParseScript_Errors(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"unknown field", "commands:\n  - { at: 1, kind: horn, volume: 3 }\n", "volume"},
		{"unknown kind", "commands:\n  - { at: 1, kind: whistle }\n", "whistle"},
		{"empty", "name: nothing\n", "commands list is required"},
		{"bad payload", "commands:\n  - { at: 1, kind: paused, duration: -1 }\n", "commands[0]"},
		{"empty save stem", "commands:\n  - { at: 1, kind: save }\n", "save stem is empty"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseScript([]byte(tt.body))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadScript(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleScript), 0644))

	s, err := LoadScript(path)
	require.NoError(t, err)
	assert.Len(t, s.Commands, 8)

	_, err = LoadScript(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestStep_BuildLeavesTimeToTheLog(t *testing.T) {
	c, err := Step{At: 5, Kind: "bell", On: true}.Build()
	require.NoError(t, err)
	assert.False(t, c.Stamped())

	c, err = Step{At: 5, Kind: "reverser", Increase: true}.Build()
	require.NoError(t, err)
	assert.True(t, c.Stamped())
	assert.Equal(t, 5.0, c.Time(), "continuous start defaults to at")
}

func TestRecord_StampsOnTheSimulatedClock(t *testing.T) {
	start := 2.5
	log, err := Record([]Step{
		{At: 3, Kind: "bell", On: true},
		{At: 1, Kind: "horn", On: true},
		{At: 3, Kind: "dynamic-brake", Increase: true, Start: &start},
		{At: 0.3, Kind: "headlight"},
	})
	require.NoError(t, err)

	entries := log.Entries()
	require.Len(t, entries, 4)
	assert.Equal(t, command.KindHeadlight, entries[0].Kind())
	assert.Equal(t, 0.3, entries[0].Time())
	assert.Equal(t, command.KindHorn, entries[1].Kind())
	assert.Equal(t, 1.0, entries[1].Time())
	assert.Equal(t, command.KindBell, entries[2].Kind(), "ties keep script order")
	assert.Equal(t, 3.0, entries[2].Time())
	assert.Equal(t, command.KindDynamicBrake, entries[3].Kind())
	assert.Equal(t, 2.5, entries[3].Time(), "continuous changes are backdated")

	sorted := log.Sorted()
	assert.Equal(t, command.KindDynamicBrake, sorted[2].Kind())
}

func TestRecord_InvalidStep(t *testing.T) {
	_, err := Record([]Step{{At: 1, Kind: "camera-view"}, {At: 2, Kind: "nope"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "commands[1]")
}
