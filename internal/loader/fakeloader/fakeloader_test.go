package fakeloader

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/twardoch/pedalboard-pluginary/internal/model"
)

func TestOpenDefaultBehaviorSucceeds(t *testing.T) {
	l := New(nil)
	h, err := l.Open("/plugins/Unknown.vst3", "Unknown")
	require.NoError(t, err)

	name, ok := l.Name(h)
	assert.True(t, ok)
	assert.Equal(t, "Unknown", name)
}

func TestOpenErrBehavior(t *testing.T) {
	l := New(map[string]Behavior{
		"/plugins/Crasher.vst3": {Err: ErrBoom},
	})
	_, err := l.Open("/plugins/Crasher.vst3", "Crasher")
	assert.ErrorIs(t, err, ErrBoom)
}

func TestOpenContextHangRespectsCancellation(t *testing.T) {
	l := New(map[string]Behavior{
		"/plugins/Hung.vst3": {Hang: true},
	})
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := l.OpenContext(ctx, "/plugins/Hung.vst3", "Hung")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestParametersReturnsConfiguredValues(t *testing.T) {
	params := map[string]model.ParameterValue{"gain": model.FloatValue(0.5)}
	l := New(map[string]Behavior{
		"/plugins/Gain.vst3": {Params: params, Manufacturer: "Acme"},
	})
	h, err := l.Open("/plugins/Gain.vst3", "Gain")
	require.NoError(t, err)

	got, err := l.Parameters(h)
	require.NoError(t, err)
	assert.Equal(t, params, got)

	manufacturer, ok := l.Manufacturer(h)
	assert.True(t, ok)
	assert.Equal(t, "Acme", manufacturer)
}

func TestSleepBehaviorBlocksThenSucceeds(t *testing.T) {
	b := SleepBehavior(10*time.Millisecond, nil)
	l := New(map[string]Behavior{"/plugins/Slow.vst3": b})

	start := time.Now()
	_, err := l.Open("/plugins/Slow.vst3", "Slow")
	require.NoError(t, err)
	assert.GreaterOrEqual(t, time.Since(start), 10*time.Millisecond)
}
