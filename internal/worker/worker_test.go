package worker

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/twardoch/pedalboard-pluginary/internal/journal"
	"github.com/twardoch/pedalboard-pluginary/internal/loader/fakeloader"
	"github.com/twardoch/pedalboard-pluginary/internal/model"
)

func openTestJournal(t *testing.T, candidates []model.Candidate) *journal.Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "journal.db")
	j, err := journal.Open(path)
	require.NoError(t, err)
	require.NoError(t, j.AddPending(candidates, time.Now().Unix()))
	t.Cleanup(func() { j.Close() })
	return j
}

func TestRunSuccessWritesRecord(t *testing.T) {
	candidates := []model.Candidate{{Path: "/plugins/Good.vst3", TentativeName: "Good", PluginType: model.PluginTypeVST3}}
	j := openTestJournal(t, candidates)

	ld := fakeloader.New(map[string]fakeloader.Behavior{
		"/plugins/Good.vst3": {
			Manufacturer: "Acme",
			Params:       map[string]model.ParameterValue{"gain": model.FloatValue(1)},
		},
	})

	req := Request{Path: "/plugins/Good.vst3", TentativeName: "Good", PluginType: model.PluginTypeVST3}
	require.NoError(t, Run(req, j, ld))

	status, err := j.GetStatus(req.Path)
	require.NoError(t, err)
	assert.Equal(t, model.StatusSuccess, status)

	rows, err := j.GetByStatus(model.StatusSuccess)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Acme", rows[0].Record.Manufacturer)
}

func TestRunLoadErrorWritesFailed(t *testing.T) {
	candidates := []model.Candidate{{Path: "/plugins/Bad.vst3", TentativeName: "Bad", PluginType: model.PluginTypeVST3}}
	j := openTestJournal(t, candidates)

	ld := fakeloader.New(map[string]fakeloader.Behavior{
		"/plugins/Bad.vst3": {Err: fakeloader.ErrBoom},
	})

	req := Request{Path: "/plugins/Bad.vst3", TentativeName: "Bad", PluginType: model.PluginTypeVST3}
	require.NoError(t, Run(req, j, ld))

	status, err := j.GetStatus(req.Path)
	require.NoError(t, err)
	assert.Equal(t, model.StatusFailed, status)

	rows, err := j.GetByStatus(model.StatusFailed)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Contains(t, rows[0].ErrorMessage, "boom")
}

func TestRecordIDDerivedFromFileStem(t *testing.T) {
	candidates := []model.Candidate{{Path: "/plugins/My Synth.vst3", TentativeName: "My Synth", PluginType: model.PluginTypeVST3}}
	j := openTestJournal(t, candidates)
	ld := fakeloader.New(nil)

	req := Request{Path: "/plugins/My Synth.vst3", TentativeName: "My Synth", PluginType: model.PluginTypeVST3}
	require.NoError(t, Run(req, j, ld))

	rows, err := j.GetByStatus(model.StatusSuccess)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "vst3/My Synth", rows[0].Record.ID)
}
