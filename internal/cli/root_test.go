package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// execute runs cmd with args and returns what it wrote to stdout.
func execute(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()
	t.Cleanup(viper.Reset)
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "cmdlog", cmd.Use)
	assert.Contains(t, cmd.Long, "replays them deterministically")
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	commands := []string{"record", "inspect", "replay", "import", "sessions", "export", "test"}

	for _, cmdName := range commands {
		t.Run(cmdName, func(t *testing.T) {
			subCmd, _, err := cmd.Find([]string{cmdName})
			require.NoError(t, err, "Command %s should exist", cmdName)
			require.NotNil(t, subCmd)
			assert.Equal(t, cmdName, subCmd.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	verboseFlag := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verboseFlag)
	assert.Equal(t, "v", verboseFlag.Shorthand)
	assert.Equal(t, "false", verboseFlag.DefValue)

	formatFlag := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, formatFlag)
	assert.Equal(t, "text", formatFlag.DefValue)

	require.NotNil(t, cmd.PersistentFlags().Lookup("config"))
	require.NotNil(t, cmd.PersistentFlags().Lookup("log-file"))
}

func TestRecordCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	recordCmd, _, err := cmd.Find([]string{"record"})
	require.NoError(t, err)

	outputFlag := recordCmd.Flags().Lookup("output")
	require.NotNil(t, outputFlag)
	assert.Equal(t, "o", outputFlag.Shorthand)
}

func TestReplayCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	replayCmd, _, err := cmd.Find([]string{"replay"})
	require.NoError(t, err)

	for _, name := range []string{"verify", "save", "suspend-camera", "realtime", "dt", "max-ticks"} {
		assert.NotNil(t, replayCmd.Flags().Lookup(name), "flag %s", name)
	}
	assert.Equal(t, "0", replayCmd.Flags().Lookup("dt").DefValue)
}

func TestSetup_InvalidFormat(t *testing.T) {
	t.Cleanup(viper.Reset)
	opts := &RootOptions{Format: "xml"}

	err := opts.Setup(&cobra.Command{})
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "invalid format")
}

func TestSetup_InvalidConfig(t *testing.T) {
	t.Cleanup(viper.Reset)
	path := writeFile(t, t.TempDir(), "cmdlog.yaml", "replay:\n  tick: -1\n")
	opts := &RootOptions{Format: "text", ConfigFile: path}

	err := opts.Setup(&cobra.Command{})
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "failed to load config")
}

func TestSetup_LogFileReceivesJSON(t *testing.T) {
	t.Cleanup(viper.Reset)
	logPath := filepath.Join(t.TempDir(), "logs", "cmdlog.log")
	opts := &RootOptions{Format: "text", LogFile: logPath}

	require.NoError(t, opts.Setup(&cobra.Command{}))
	opts.Logger.Info("hello", "n", 1)
	require.NoError(t, opts.Close())

	data, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"message":"hello"`)
	assert.Contains(t, string(data), `"n":1`)
}

func TestSetup_RunsOnce(t *testing.T) {
	t.Cleanup(viper.Reset)
	opts := &RootOptions{Format: "text"}
	require.NoError(t, opts.Setup(&cobra.Command{}))
	logger := opts.Logger

	opts.Format = "xml"
	require.NoError(t, opts.Setup(&cobra.Command{}))
	assert.Same(t, logger, opts.Logger)
}
