package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultMatchesVMBuiltins(t *testing.T) {
	cfg := Default()
	assert.Equal(t, DefaultMaxStackSlots, cfg.VM.MaxStackSlots)
	assert.Equal(t, DefaultMaxCallFrames, cfg.VM.MaxCallFrames)
}

func TestLoadFillsUnsetFieldsWithDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ember.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[vm]
max_stack_slots = 1024
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 1024, cfg.VM.MaxStackSlots)
	assert.Equal(t, DefaultMaxCallFrames, cfg.VM.MaxCallFrames)
}

func TestLoadRejectsMalformedTOML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ember.toml")
	require.NoError(t, os.WriteFile(path, []byte(`not = [valid`), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestFindWalksUpToParentDirectory(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "ember.toml"), []byte(`[vm]`), 0o644))

	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0o755))

	path, found, err := Find(nested)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, filepath.Join(root, "ember.toml"), path)
}

func TestFindReturnsNotFoundWhenNoManifestExists(t *testing.T) {
	dir := t.TempDir()
	_, found, err := Find(dir)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestLoadFromDirFallsBackToDefaultConfig(t *testing.T) {
	dir := t.TempDir()
	cfg, err := LoadFromDir(dir)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}
