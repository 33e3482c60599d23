package journal

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/twardoch/pedalboard-pluginary/internal/model"
	"github.com/twardoch/pedalboard-pluginary/internal/pluginerr"
)

func openTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "journal.db")
	s, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s, path
}

func TestExistsBeforeAndAfterOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.db")
	assert.False(t, Exists(path))

	s, err := Open(path)
	require.NoError(t, err)
	defer s.Close()
	assert.True(t, Exists(path))
}

func TestAddPendingIsIdempotent(t *testing.T) {
	s, _ := openTestStore(t)
	candidates := []model.Candidate{
		{Path: "/plugins/A.vst3", TentativeName: "A", PluginType: model.PluginTypeVST3},
		{Path: "/plugins/B.vst3", TentativeName: "B", PluginType: model.PluginTypeVST3},
	}
	now := time.Now().Unix()
	require.NoError(t, s.AddPending(candidates, now))
	require.NoError(t, s.AddPending(candidates, now+1)) // repeat: must not duplicate or overwrite

	entries, err := s.GetByStatus(model.StatusPending)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestUpdateToSuccessRoundTripsRecord(t *testing.T) {
	s, _ := openTestStore(t)
	candidates := []model.Candidate{{Path: "/plugins/A.vst3", TentativeName: "A", PluginType: model.PluginTypeVST3}}
	now := time.Now().Unix()
	require.NoError(t, s.AddPending(candidates, now))

	rec := &model.PluginRecord{
		ID:         model.RecordID(model.PluginTypeVST3, "A"),
		Name:       "A",
		Path:       "/plugins/A.vst3",
		Filename:   "A.vst3",
		PluginType: model.PluginTypeVST3,
		Parameters: map[string]model.PluginParameter{"gain": {Name: "gain", Value: model.FloatValue(1)}},
	}
	require.NoError(t, s.Update("/plugins/A.vst3", model.StatusSuccess, rec, "", now))

	entries, err := s.GetByStatus(model.StatusSuccess)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, rec, entries[0].Record)
}

func TestUpdateToFailedCarriesErrorMessage(t *testing.T) {
	s, _ := openTestStore(t)
	candidates := []model.Candidate{{Path: "/plugins/A.vst3", TentativeName: "A", PluginType: model.PluginTypeVST3}}
	now := time.Now().Unix()
	require.NoError(t, s.AddPending(candidates, now))
	require.NoError(t, s.Update("/plugins/A.vst3", model.StatusFailed, nil, "load failed: bad header", now))

	entries, err := s.GetByStatus(model.StatusFailed)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "load failed: bad header", entries[0].ErrorMessage)
}

func TestUpdateUnknownRowErrors(t *testing.T) {
	s, _ := openTestStore(t)
	err := s.Update("/plugins/Nope.vst3", model.StatusFailed, nil, "x", time.Now().Unix())
	assert.Error(t, err)
}

func TestGetStatus(t *testing.T) {
	s, _ := openTestStore(t)
	candidates := []model.Candidate{{Path: "/plugins/A.vst3", TentativeName: "A", PluginType: model.PluginTypeVST3}}
	now := time.Now().Unix()
	require.NoError(t, s.AddPending(candidates, now))

	status, err := s.GetStatus("/plugins/A.vst3")
	require.NoError(t, err)
	assert.Equal(t, model.StatusPending, status)

	_, err = s.GetStatus("/plugins/Missing.vst3")
	assert.Error(t, err)
}

func TestSummary(t *testing.T) {
	s, _ := openTestStore(t)
	now := time.Now().Unix()
	candidates := []model.Candidate{
		{Path: "/plugins/A.vst3", TentativeName: "A", PluginType: model.PluginTypeVST3},
		{Path: "/plugins/B.vst3", TentativeName: "B", PluginType: model.PluginTypeVST3},
	}
	require.NoError(t, s.AddPending(candidates, now))
	require.NoError(t, s.Update("/plugins/A.vst3", model.StatusSuccess, &model.PluginRecord{
		ID: "vst3/A", Name: "A", Path: "/plugins/A.vst3", Filename: "A.vst3", PluginType: model.PluginTypeVST3,
		Parameters: map[string]model.PluginParameter{},
	}, "", now))
	require.NoError(t, s.Update("/plugins/B.vst3", model.StatusFailed, nil, "boom", now))

	summary, err := s.Summary()
	require.NoError(t, err)
	assert.Equal(t, 1, summary[model.StatusSuccess])
	assert.Equal(t, 1, summary[model.StatusFailed])
}

func TestOpenRejectsIncompatibleSchemaVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.db")
	s, err := Open(path)
	require.NoError(t, err)
	_, execErr := s.db.Exec(`UPDATE journal_meta SET value = '999' WHERE key = 'version'`)
	require.NoError(t, execErr)
	require.NoError(t, s.Close())

	_, err = Open(path)
	require.Error(t, err)
	assert.True(t, pluginerr.Is(err, pluginerr.CodeIncompatibleSchema))
}

func TestDropRemovesFileAndSidecars(t *testing.T) {
	s, path := openTestStore(t)
	require.NoError(t, Drop(path, s))
	assert.False(t, Exists(path))

	// Closing an already-closed store must not panic or be called again.
	require.NoError(t, Drop(path, nil))
}
