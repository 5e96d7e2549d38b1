// Package config loads the optional bootstrap configuration file.
//
// A checkout may carry a bootstrap.yaml next to requirements.txt to
// override the defaults (required Python version, venv directory,
// manifest path, webui entry point, sandbox image). A missing file is
// not an error — the defaults reproduce the original installer's fixed
// paths exactly, so most checkouts need no config at all.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/mugen-webui/mugen-bootstrap/internal/model"
)

// DefaultFileName is the config file probed in the checkout root when
// --config is not given.
const DefaultFileName = "bootstrap.yaml"

// Config holds the bootstrap settings for one checkout.
// Zero values are filled in by applyDefaults after loading, so a partial
// YAML file only overrides the keys it mentions.
type Config struct {
	// PythonVersion is the exact major.minor interpreter version the
	// gate requires (e.g. "3.12"). Exact-match semantics: neither an
	// older nor a newer minor satisfies the gate.
	PythonVersion string `yaml:"python_version"`

	// VenvDir is the virtual environment directory, relative to the
	// checkout root unless absolute.
	VenvDir string `yaml:"venv_dir"`

	// Requirements is the dependency manifest path, relative to the
	// checkout root unless absolute.
	Requirements string `yaml:"requirements"`

	// WebUIEntry is the script the run command launches with the venv
	// interpreter.
	WebUIEntry string `yaml:"webui_entry"`

	// SettingsFile is the webui settings store managed by the settings
	// command.
	SettingsFile string `yaml:"settings_file"`

	// UIPort is the preferred port for the webui. The run command falls
	// back to a free port when it is taken.
	UIPort int `yaml:"ui_port"`

	// Sandbox configures container-based bootstrapping (--container).
	Sandbox SandboxConfig `yaml:"sandbox"`
}

// SandboxConfig configures the Docker sandbox used when the required
// interpreter is provisioned in a container instead of on the host.
type SandboxConfig struct {
	// Image is the interpreter image. Empty means the default image for
	// the configured Python version ("python:<version>-slim").
	Image string `yaml:"image"`

	// NamePrefix is prepended to sandbox container names.
	NamePrefix string `yaml:"name_prefix"`
}

// Default returns the built-in configuration. The values mirror the
// original installer: Python 3.12, ./venv, ./requirements.txt.
func Default() *Config {
	return &Config{
		PythonVersion: "3.12",
		VenvDir:       "venv",
		Requirements:  "requirements.txt",
		WebUIEntry:    "webui.py",
		SettingsFile:  "settings.json",
		UIPort:        7860, // gradio's default listen port
		Sandbox: SandboxConfig{
			NamePrefix: "mugen-sandbox",
		},
	}
}

// Load reads the config file at path. When path is empty, the default
// file name is probed in the checkout root; a missing default file
// yields the built-in configuration. An explicitly given path that does
// not exist is an error.
func Load(checkoutRoot, path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = filepath.Join(checkoutRoot, DefaultFileName)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			// No config file — use defaults. This is the normal case.
			cfg := Default()
			return cfg, cfg.Validate()
		}
		return nil, model.WrapCLIError(model.ExitGeneralError,
			fmt.Sprintf("failed to read config file %s", path), err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, model.WrapCLIError(model.ExitGeneralError,
			fmt.Sprintf("failed to parse config file %s", path), err)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, model.WrapCLIError(model.ExitGeneralError,
			fmt.Sprintf("invalid config file %s", path), err)
	}
	return cfg, nil
}

// applyDefaults fills zero-valued fields with the built-in defaults so
// a partial YAML file behaves as an overlay.
func (c *Config) applyDefaults() {
	def := Default()
	if c.PythonVersion == "" {
		c.PythonVersion = def.PythonVersion
	}
	if c.VenvDir == "" {
		c.VenvDir = def.VenvDir
	}
	if c.Requirements == "" {
		c.Requirements = def.Requirements
	}
	if c.WebUIEntry == "" {
		c.WebUIEntry = def.WebUIEntry
	}
	if c.SettingsFile == "" {
		c.SettingsFile = def.SettingsFile
	}
	if c.UIPort == 0 {
		c.UIPort = def.UIPort
	}
	if c.Sandbox.NamePrefix == "" {
		c.Sandbox.NamePrefix = def.Sandbox.NamePrefix
	}
}

// Validate checks the configuration for values the bootstrap sequence
// cannot work with.
func (c *Config) Validate() error {
	if err := model.ValidateVersionSpec(c.PythonVersion); err != nil {
		return err
	}
	if strings.TrimSpace(c.VenvDir) == "" {
		return fmt.Errorf("venv_dir must not be empty")
	}
	if strings.TrimSpace(c.Requirements) == "" {
		return fmt.Errorf("requirements must not be empty")
	}
	if c.UIPort < 1 || c.UIPort > 65535 {
		return fmt.Errorf("ui_port %d out of range (1-65535)", c.UIPort)
	}
	return nil
}

// SandboxImage returns the configured sandbox image, or the default
// image derived from the required Python version.
func (c *Config) SandboxImage() string {
	if c.Sandbox.Image != "" {
		return c.Sandbox.Image
	}
	return "python:" + c.PythonVersion + "-slim"
}

// VenvPath resolves the venv directory against the checkout root.
func (c *Config) VenvPath(checkoutRoot string) string {
	return resolve(checkoutRoot, c.VenvDir)
}

// RequirementsPath resolves the manifest path against the checkout root.
func (c *Config) RequirementsPath(checkoutRoot string) string {
	return resolve(checkoutRoot, c.Requirements)
}

// WebUIEntryPath resolves the webui entry point against the checkout root.
func (c *Config) WebUIEntryPath(checkoutRoot string) string {
	return resolve(checkoutRoot, c.WebUIEntry)
}

// SettingsPath resolves the settings file against the checkout root.
func (c *Config) SettingsPath(checkoutRoot string) string {
	return resolve(checkoutRoot, c.SettingsFile)
}

// resolve joins a possibly-relative path onto the checkout root.
// Absolute paths are kept as-is so users can point outside the checkout.
func resolve(root, path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(root, path)
}
