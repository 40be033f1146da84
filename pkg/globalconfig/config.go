// Package globalconfig provides global configuration management for dsetup.
// Configuration is stored at $XDG_CONFIG_HOME/dsetup/config.yaml.
package globalconfig

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/natefinch/atomic"
	"gopkg.in/yaml.v3"

	"github.com/jaspreet-dot-casa/desktop-setup/pkg/scaffold"
)

// Version is the current config schema version.
const Version = "1.0"

var (
	// ErrNotInitialized is returned when config doesn't exist.
	ErrNotInitialized = errors.New("dsetup not initialized: run 'dsetup init <manifest>' first")
	// ErrManifestNotFound is returned when the configured manifest path doesn't exist.
	ErrManifestNotFound = errors.New("configured manifest does not exist")
)

// Config represents the global dsetup configuration.
type Config struct {
	Version      string         `yaml:"version"`
	ManifestPath string         `yaml:"manifest_path,omitempty"` // Set by `dsetup init`
	CacheDir     string         `yaml:"cache_dir"`               // Downloaded .deb files and keys
	UseSudo      bool           `yaml:"use_sudo"`
	Scaffold     ScaffoldConfig `yaml:"scaffold"`
	Fzf          FzfConfig      `yaml:"fzf"`
	Preferences  Preferences    `yaml:"preferences"`
}

// ScaffoldConfig overrides the fields written into new script headers.
type ScaffoldConfig struct {
	Author        string `yaml:"author"`
	License       string `yaml:"license"`
	ScriptVersion string `yaml:"script_version"`
	Editor        string `yaml:"editor"`
}

// FzfConfig locates the fzf checkout the shell fragments point at.
type FzfConfig struct {
	Dir string `yaml:"dir"`
}

// Preferences represents user preferences.
type Preferences struct {
	AssumeYes bool `yaml:"assume_yes"` // Skip the provision confirmation
}

// NewConfig creates a new Config with defaults.
func NewConfig() *Config {
	return &Config{
		Version:  Version,
		CacheDir: DefaultCacheDir(),
		UseSudo:  true,
		Scaffold: ScaffoldConfig{
			Author:        scaffold.DefaultAuthor,
			License:       scaffold.DefaultLicense,
			ScriptVersion: scaffold.DefaultVersion,
			Editor:        scaffold.DefaultEditor,
		},
		Fzf: FzfConfig{Dir: DefaultFzfDir()},
	}
}

// Load loads the config from GetConfigPath.
// Returns ErrNotInitialized if the config doesn't exist.
func Load() (*Config, error) {
	return LoadFrom(GetConfigPath())
}

// LoadFrom loads the config at path. Empty fields take their defaults.
func LoadFrom(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotInitialized
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := NewConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	cfg.applyDefaults()

	return cfg, nil
}

// LoadOrCreate loads the config if it exists, or creates a new one.
// Unlike Load(), this doesn't require the config to be initialized.
func LoadOrCreate() (*Config, error) {
	cfg, err := Load()
	if err != nil {
		if errors.Is(err, ErrNotInitialized) {
			return NewConfig(), nil
		}
		return nil, err
	}
	return cfg, nil
}

// Save saves the config to GetConfigPath.
func (c *Config) Save() error {
	if err := EnsureConfigDir(); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	return c.SaveTo(GetConfigPath())
}

// SaveTo atomically writes the config to path.
func (c *Config) SaveTo(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := atomic.WriteFile(path, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	if err := os.Chmod(path, 0600); err != nil {
		return fmt.Errorf("failed to set config permissions: %w", err)
	}

	return nil
}

// SetManifestPath sets and validates the manifest path.
func (c *Config) SetManifestPath(path string) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("failed to resolve path: %w", err)
	}

	info, err := os.Stat(absPath)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("path does not exist: %s", absPath)
		}
		return fmt.Errorf("failed to access path: %w", err)
	}

	if info.IsDir() {
		return fmt.Errorf("manifest path is a directory: %s", absPath)
	}

	c.ManifestPath = absPath
	return nil
}

// Manifest returns the configured manifest path and validates it exists.
// It returns an empty path and no error when none is configured.
func (c *Config) Manifest() (string, error) {
	if c.ManifestPath == "" {
		return "", nil
	}
	if _, err := os.Stat(c.ManifestPath); err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%w: %s", ErrManifestNotFound, c.ManifestPath)
		}
		return "", fmt.Errorf("failed to access manifest: %w", err)
	}
	return c.ManifestPath, nil
}

// ApplyScaffold copies the scaffold overrides onto s.
func (c *Config) ApplyScaffold(s *scaffold.Scaffolder) {
	if c.Scaffold.Author != "" {
		s.Author = c.Scaffold.Author
	}
	if c.Scaffold.License != "" {
		s.License = c.Scaffold.License
	}
	if c.Scaffold.ScriptVersion != "" {
		s.Version = c.Scaffold.ScriptVersion
	}
	if c.Scaffold.Editor != "" {
		s.Editor = c.Scaffold.Editor
	}
}

func (c *Config) applyDefaults() {
	if c.Version == "" {
		c.Version = Version
	}
	if c.CacheDir == "" {
		c.CacheDir = DefaultCacheDir()
	}
	c.CacheDir = expandHome(c.CacheDir)
	if c.Fzf.Dir == "" {
		c.Fzf.Dir = DefaultFzfDir()
	}
}

// expandHome makes a relative or ~/ path absolute under the home directory.
func expandHome(path string) string {
	if path == "~" {
		return xdg.Home
	}
	if rest, ok := strings.CutPrefix(path, "~/"); ok {
		return filepath.Join(xdg.Home, rest)
	}
	if !filepath.IsAbs(path) {
		return filepath.Join(xdg.Home, path)
	}
	return path
}
