package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeConfig is a test helper that writes a bootstrap.yaml with the
// given content into a fresh temp checkout and returns the checkout root.
func writeConfig(t *testing.T, content string) string {
	t.Helper()

	dir := t.TempDir()
	err := os.WriteFile(filepath.Join(dir, DefaultFileName), []byte(content), 0644)
	require.NoError(t, err)
	return dir
}

// TestDefault verifies the built-in configuration reproduces the
// original installer's fixed values.
func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "3.12", cfg.PythonVersion)
	assert.Equal(t, "venv", cfg.VenvDir)
	assert.Equal(t, "requirements.txt", cfg.Requirements)
	assert.Equal(t, "webui.py", cfg.WebUIEntry)
	assert.Equal(t, "settings.json", cfg.SettingsFile)
	assert.Equal(t, 7860, cfg.UIPort)
	assert.NoError(t, cfg.Validate())
}

// TestLoadMissingFileUsesDefaults verifies a checkout without a config
// file loads cleanly with defaults — config is strictly optional.
func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(t.TempDir(), "")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

// TestLoadExplicitMissingFileFails verifies an explicitly requested
// config path that does not exist is reported as an error rather than
// silently falling back to defaults.
func TestLoadExplicitMissingFileFails(t *testing.T) {
	_, err := Load(t.TempDir(), filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

// TestLoadPartialOverlay verifies a partial YAML file only overrides
// the keys it mentions, with everything else defaulted.
func TestLoadPartialOverlay(t *testing.T) {
	root := writeConfig(t, "python_version: \"3.11\"\nvenv_dir: .venv\n")

	cfg, err := Load(root, "")
	require.NoError(t, err)

	assert.Equal(t, "3.11", cfg.PythonVersion)
	assert.Equal(t, ".venv", cfg.VenvDir)
	// Untouched keys keep their defaults.
	assert.Equal(t, "requirements.txt", cfg.Requirements)
	assert.Equal(t, "webui.py", cfg.WebUIEntry)
	assert.Equal(t, 7860, cfg.UIPort)
}

// TestLoadSandboxOverrides verifies sandbox image and name prefix
// overrides, plus the derived default image.
func TestLoadSandboxOverrides(t *testing.T) {
	root := writeConfig(t, "sandbox:\n  image: python:3.12-bookworm\n  name_prefix: mv\n")

	cfg, err := Load(root, "")
	require.NoError(t, err)
	assert.Equal(t, "python:3.12-bookworm", cfg.SandboxImage())
	assert.Equal(t, "mv", cfg.Sandbox.NamePrefix)

	// Without an explicit image, the image is derived from the version.
	cfg = Default()
	cfg.PythonVersion = "3.11"
	assert.Equal(t, "python:3.11-slim", cfg.SandboxImage())
}

// TestLoadInvalid exercises rejection of configs the bootstrap sequence
// cannot work with.
func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "bad version", content: "python_version: latest\n"},
		{name: "patch version", content: "python_version: \"3.12.1\"\n"},
		{name: "bad port", content: "ui_port: 70000\n"},
		{name: "malformed yaml", content: "python_version: [\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := writeConfig(t, tt.content)
			_, err := Load(root, "")
			assert.Error(t, err)
		})
	}
}

// TestPathResolution verifies relative paths resolve against the
// checkout root while absolute paths pass through untouched.
func TestPathResolution(t *testing.T) {
	cfg := Default()
	root := string(filepath.Separator) + filepath.Join("srv", "mugen")

	assert.Equal(t, filepath.Join(root, "venv"), cfg.VenvPath(root))
	assert.Equal(t, filepath.Join(root, "requirements.txt"), cfg.RequirementsPath(root))
	assert.Equal(t, filepath.Join(root, "webui.py"), cfg.WebUIEntryPath(root))
	assert.Equal(t, filepath.Join(root, "settings.json"), cfg.SettingsPath(root))

	abs := string(filepath.Separator) + filepath.Join("opt", "reqs.txt")
	cfg.Requirements = abs
	assert.Equal(t, abs, cfg.RequirementsPath(root))
}
