package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	v := New("")
	cfg, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, 0, cfg.Concurrency)
	assert.Equal(t, 30*time.Second, cfg.Timeout)
	assert.Empty(t, cfg.ExtraDirs)
}

func TestLoadFromConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pluginary.yaml")
	contents := "concurrency: 4\ntimeout: 45s\nextra_dirs:\n  - /opt/vst3\n"
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))

	v := New(path)
	cfg, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, 4, cfg.Concurrency)
	assert.Equal(t, 45*time.Second, cfg.Timeout)
	assert.Equal(t, []string{"/opt/vst3"}, cfg.ExtraDirs)
}

func TestEnvironmentOverridesDefaults(t *testing.T) {
	t.Setenv("PLUGINARY_CONCURRENCY", "8")
	v := New("")
	cfg, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, 8, cfg.Concurrency)
}
