package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParameterValueJSONRoundTrip(t *testing.T) {
	cases := []ParameterValue{
		FloatValue(0.5),
		BoolValue(true),
		TextValue("sawtooth"),
	}
	for _, pv := range cases {
		data, err := json.Marshal(pv)
		require.NoError(t, err)

		var decoded ParameterValue
		require.NoError(t, json.Unmarshal(data, &decoded))
		assert.Equal(t, pv.Kind, decoded.Kind)
		assert.Equal(t, pv.Raw(), decoded.Raw())
	}
}

func TestPluginRecordJSONRoundTrip(t *testing.T) {
	rec := PluginRecord{
		ID:           RecordID(PluginTypeVST3, "Massive"),
		Name:         "Massive",
		Path:         "/plugins/Massive.vst3",
		Filename:     "Massive.vst3",
		PluginType:   PluginTypeVST3,
		Manufacturer: "Native Instruments",
		Parameters: map[string]PluginParameter{
			"cutoff": {Name: "cutoff", Value: FloatValue(0.75)},
			"bypass": {Name: "bypass", Value: BoolValue(false)},
		},
		FileMtime: 1700000000,
	}

	data, err := json.Marshal(rec)
	require.NoError(t, err)

	var decoded PluginRecord
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, rec, decoded)
}

func TestRecordIDFormat(t *testing.T) {
	assert.Equal(t, "vst3/Serum", RecordID(PluginTypeVST3, "Serum"))
	assert.Equal(t, "aufx/AUSampler", RecordID(PluginTypeAUFX, "AUSampler"))
}

func TestJournalStatusIsTerminal(t *testing.T) {
	assert.False(t, StatusPending.IsTerminal())
	assert.False(t, StatusScanning.IsTerminal())
	assert.True(t, StatusSuccess.IsTerminal())
	assert.True(t, StatusFailed.IsTerminal())
	assert.True(t, StatusTimeout.IsTerminal())
}
