package probe

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/twardoch/pedalboard-pluginary/internal/model"
)

type fakeAuvalRunner struct {
	out string
	err error
}

func (r fakeAuvalRunner) Run(ctx context.Context) (string, error) { return r.out, r.err }

func TestScanAudioUnitsParsesLines(t *testing.T) {
	out := "aufx dely adec - Apple: AUDelay (1.0)\n" +
		"not a matching line\n" +
		"aufx dyna adec - Apple: AUDynamicsProcessor (1.0)\n"
	candidates, err := scanAudioUnits(fakeAuvalRunner{out: out})
	require.NoError(t, err)
	require.Len(t, candidates, 2)
	assert.Equal(t, "AUDelay", candidates[0].TentativeName)
	assert.Equal(t, model.PluginTypeAUFX, candidates[0].PluginType)
}

func TestScanAudioUnitsSwallowsRunnerError(t *testing.T) {
	candidates, err := scanAudioUnits(fakeAuvalRunner{err: errors.New("auval: command not found")})
	require.NoError(t, err)
	assert.Empty(t, candidates)
}

func TestScanAudioUnitsNilRunnerDoesNotPanic(t *testing.T) {
	// The default runner will try to exec "auval", which fails fast on any
	// non-macOS test host; the important behavior is that it returns
	// cleanly instead of panicking or erroring out the whole probe.
	_, err := scanAudioUnits(nil)
	assert.NoError(t, err)
}
