package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openrails/openrails-sub024/internal/command"
)

func TestFingerprint_Stable(t *testing.T) {
	lines := []string{"tick 2 at 00:00:01.0: 00:00:01.0 horn on"}

	a := Fingerprint(lines)
	assert.Len(t, a, 64)
	assert.Equal(t, a, Fingerprint([]string{"tick 2 at 00:00:01.0: 00:00:01.0 horn on"}))
	assert.NotEqual(t, a, Fingerprint(nil))
}

func TestFingerprint_LineBoundaries(t *testing.T) {
	assert.NotEqual(t, Fingerprint([]string{"ab", "c"}), Fingerprint([]string{"a", "bc"}))
}

func TestEngine_FingerprintMatchesAcrossReplays(t *testing.T) {
	cmds := []command.Command{
		command.Must(command.NewBoolean(command.KindHorn, true)).Stamp(1),
		command.Must(command.NewBoolean(command.KindBell, true)).Stamp(2),
	}
	ct := ClockTrace{DT: 0.5}

	first, _, err := Replay(context.Background(), cmds, ct)
	require.NoError(t, err)
	second, _, err := Replay(context.Background(), cmds, ct)
	require.NoError(t, err)

	assert.Equal(t, first.Fingerprint(), second.Fingerprint())
	assert.Equal(t, Fingerprint(first.TraceLines()), first.Fingerprint())
}
