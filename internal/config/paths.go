package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

const (
	// EnvConfigPath names an explicit config file
	EnvConfigPath = "GRAPHIO_CONFIG"
	// ConfigFileName is looked up in the working directory
	ConfigFileName = "graphio.yaml"
	// ConfigDirName is the directory under the user and system config roots
	ConfigDirName = "graphio"
)

// searchPaths lists candidate config files, highest priority first
func searchPaths() []string {
	var paths []string
	if env := os.Getenv(EnvConfigPath); env != "" {
		paths = append(paths, env)
	}
	paths = append(paths, ConfigFileName)
	if dir := userConfigDir(); dir != "" {
		paths = append(paths, filepath.Join(dir, ConfigDirName, "config.yaml"))
	}
	return append(paths, filepath.Join("/etc", ConfigDirName, "config.yaml"))
}

// userConfigDir is $XDG_CONFIG_HOME, else ~/.config
func userConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return xdg
	}
	if home := os.Getenv("HOME"); home != "" {
		return filepath.Join(home, ".config")
	}
	return ""
}

// FindConfigPath returns the first existing file of the search order
// documented on the package, or "" when there is none.
func FindConfigPath() string {
	for _, path := range searchPaths() {
		if info, err := os.Stat(path); err != nil || info.IsDir() {
			continue
		}
		if abs, err := filepath.Abs(path); err == nil {
			return abs
		}
		return path
	}
	return ""
}

// DefaultConfigPath is where a new config file goes: the user config
// directory, or the working directory when there is none.
func DefaultConfigPath() string {
	if dir := userConfigDir(); dir != "" {
		return filepath.Join(dir, ConfigDirName, "config.yaml")
	}
	return ConfigFileName
}

// EnsureConfigDir creates the directory holding configPath
func EnsureConfigDir(configPath string) error {
	return os.MkdirAll(filepath.Dir(configPath), 0755)
}

// ErrConfigExists is returned by Init when the target file is present
var ErrConfigExists = errors.New("config file already exists")

// Init writes DefaultConfig to path, or to DefaultConfigPath when path
// is empty. An existing file is never overwritten.
func Init(path string) (string, error) {
	if path == "" {
		path = DefaultConfigPath()
	}
	if _, err := os.Stat(path); err == nil {
		return path, fmt.Errorf("%w: %s", ErrConfigExists, path)
	}
	return path, DefaultConfig().Save(path)
}
