package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openrails/openrails-sub024/internal/cmdlog"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cmdlog.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestLoad_DefaultValues(t *testing.T) {
	t.Cleanup(viper.Reset)

	s, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "info", s.LogLevel)
	assert.Equal(t, "", s.LogFile)
	assert.Equal(t, 0.5, s.Replay.PauseMargin)
	assert.Equal(t, 2.0, s.Replay.CompletionDelay)
	assert.Equal(t, 5.0, s.Replay.PreEndMargin)
	assert.Equal(t, 0.05, s.Replay.Tick)
	assert.True(t, s.Replay.AutoPause)
	assert.Equal(t, int64(1_000_000), s.Replay.MaxTicks)
	assert.Equal(t, "./cmdlog.db", s.Store.Path)
	assert.Equal(t, cmdlog.DefaultConfig(), s.ReplayConfig())
}

func TestLoad_WithValidConfigFile(t *testing.T) {
	t.Cleanup(viper.Reset)

	path := writeConfig(t, `
logLevel: debug
replay:
  pauseMargin: 0.25
  tick: 0.1
  autoPause: false
store:
  path: /var/lib/cmdlog/sessions.db
`)

	s, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", s.LogLevel)
	assert.Equal(t, 0.25, s.Replay.PauseMargin)
	assert.Equal(t, 2.0, s.Replay.CompletionDelay, "unset keys keep defaults")
	assert.Equal(t, 0.1, s.Replay.Tick)
	assert.False(t, s.Replay.AutoPause)
	assert.Equal(t, "/var/lib/cmdlog/sessions.db", s.Store.Path)
	assert.Equal(t, "debug", GetString("logLevel"))
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Cleanup(viper.Reset)
	t.Setenv("CMDLOG_REPLAY_PREENDMARGIN", "8")
	t.Setenv("CMDLOG_LOGLEVEL", "warn")

	s, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 8.0, s.Replay.PreEndMargin)
	assert.Equal(t, "warn", s.LogLevel)
	assert.Equal(t, 8.0, GetFloat("replay.preEndMargin"))
}

func TestLoad_MissingFile(t *testing.T) {
	t.Cleanup(viper.Reset)

	_, err := Load("/nonexistent/path/cmdlog.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error reading config file")
}

func TestLoad_RejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"negative margin", "replay:\n  pauseMargin: -1\n", "pauseMargin"},
		{"zero tick", "replay:\n  tick: 0\n", "tick"},
		{"unknown level", "logLevel: loud\n", "logLevel"},
		{"empty store path", "store:\n  path: \"\"\n", "path"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Cleanup(viper.Reset)

			_, err := Load(writeConfig(t, tt.body))
			require.Error(t, err)
			assert.Contains(t, err.Error(), "invalid config")
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestValidate(t *testing.T) {
	valid := Settings{
		LogLevel: "error",
		Replay:   ReplaySettings{Tick: 1, MaxTicks: 10},
		Store:    StoreSettings{Path: "x.db"},
	}
	require.NoError(t, Validate(valid))

	bad := valid
	bad.Replay.MaxTicks = -1
	assert.Error(t, Validate(bad))
}

func TestGetBool(t *testing.T) {
	t.Cleanup(viper.Reset)
	viper.Set("replay.autoPause", false)
	assert.False(t, GetBool("replay.autoPause"))
}
