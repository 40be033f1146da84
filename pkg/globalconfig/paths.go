package globalconfig

import (
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
)

const (
	// ConfigDirName is the name of the dsetup directory under each XDG base dir.
	ConfigDirName = "dsetup"
	// ConfigFileName is the name of the main config file.
	ConfigFileName = "config.yaml"
	// RunsDirName holds saved provision reports under the state dir.
	RunsDirName = "runs"
)

// GetConfigDir returns the config directory path ($XDG_CONFIG_HOME/dsetup).
func GetConfigDir() string {
	return filepath.Join(xdg.ConfigHome, ConfigDirName)
}

// GetConfigPath returns the full path to the config file.
func GetConfigPath() string {
	return filepath.Join(GetConfigDir(), ConfigFileName)
}

// GetStateDir returns the state directory ($XDG_STATE_HOME/dsetup).
func GetStateDir() string {
	return filepath.Join(xdg.StateHome, ConfigDirName)
}

// GetRunsDir returns where provision reports are stored.
func GetRunsDir() string {
	return filepath.Join(GetStateDir(), RunsDirName)
}

// DefaultCacheDir returns the default download cache ($XDG_CACHE_HOME/dsetup).
func DefaultCacheDir() string {
	return filepath.Join(xdg.CacheHome, ConfigDirName)
}

// DefaultFzfDir returns the default fzf checkout (~/.fzf).
func DefaultFzfDir() string {
	return filepath.Join(xdg.Home, ".fzf")
}

// EnsureConfigDir creates the config directory if it doesn't exist.
func EnsureConfigDir() error {
	return os.MkdirAll(GetConfigDir(), 0755)
}
