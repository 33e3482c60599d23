package ignore

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadSeedsMissingFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ignores.json")

	s, err := Load(path)
	require.NoError(t, err)
	assert.Empty(t, s.All())
	assert.FileExists(t, path)
}

func TestAddRemovePersist(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ignores.json")

	s, err := Load(path)
	require.NoError(t, err)

	require.NoError(t, s.Add("vst3/Broken"))
	assert.True(t, s.Contains("vst3/Broken"))

	reloaded, err := Load(path)
	require.NoError(t, err)
	assert.True(t, reloaded.Contains("vst3/Broken"))

	require.NoError(t, s.Remove("vst3/Broken"))
	assert.False(t, s.Contains("vst3/Broken"))

	reloaded2, err := Load(path)
	require.NoError(t, err)
	assert.False(t, reloaded2.Contains("vst3/Broken"))
}
