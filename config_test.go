package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".envdb.yaml")
	writeFile(t, path, "target_env: config/.env.local\nlog_level: debug\nlog_format: json\n")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "config", ".env.local"), cfg.TargetEnv)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
}

func TestLoadConfigDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".envdb.yaml")
	writeFile(t, path, "{}\n")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, Config{TargetEnv: ".env", LogLevel: "warn", LogFormat: "text"}, cfg)
}

func TestLoadConfigAbsoluteTargetEnv(t *testing.T) {
	dir := t.TempDir()
	abs := filepath.Join(t.TempDir(), "shared.env")
	path := filepath.Join(dir, ".envdb.yaml")
	writeFile(t, path, "target_env: "+abs+"\n")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, abs, cfg.TargetEnv)
}

func TestLoadConfigErrors(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{name: "bad yaml", content: "target_env: [\n", wantErr: "parse config"},
		{name: "bad level", content: "log_level: loud\n", wantErr: `unknown log level "loud"`},
		{name: "bad format", content: "log_format: xml\n", wantErr: `unknown log_format "xml"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, tt.name+".yaml")
			writeFile(t, path, tt.content)
			_, err := LoadConfig(path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
			assert.Contains(t, err.Error(), path)
		})
	}
}

func TestLoadConfigMissingExplicitPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nope.yaml")
	_, err := LoadConfig(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no config found at "+path)
}

func TestFindConfig(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "a", "b", "c")
	require.NoError(t, os.MkdirAll(nested, 0o755))

	t.Run("none found", func(t *testing.T) {
		found, err := FindConfig(nested)
		require.NoError(t, err)
		// A stray config above the temp dir would also be acceptable, but it
		// must never be one of ours.
		if found != "" {
			assert.NotContains(t, found, root)
		}
	})

	t.Run("found in ancestor", func(t *testing.T) {
		want := filepath.Join(root, "a", ".envdb.yaml")
		writeFile(t, want, "target_env: .env\n")
		found, err := FindConfig(nested)
		require.NoError(t, err)
		assert.Equal(t, want, found)
	})

	t.Run("nearest wins", func(t *testing.T) {
		want := filepath.Join(nested, ".envdb.yaml")
		writeFile(t, want, "target_env: .env\n")
		found, err := FindConfig(nested)
		require.NoError(t, err)
		assert.Equal(t, want, found)
	})
}

func TestLoadConfigDiscovers(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, ".envdb.yaml"), "target_env: .env.dev\n")
	sub := filepath.Join(dir, "sub")
	require.NoError(t, os.MkdirAll(sub, 0o755))
	oldWd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(sub))
	t.Cleanup(func() { _ = os.Chdir(oldWd) })

	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, ".env.dev"), cfg.TargetEnv)
}
