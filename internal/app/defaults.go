package app

import (
	"fmt"
	"os"
	"path/filepath"
)

// GetDefaults returns application default paths, checking environment variables first.
// Environment variables:
//   - JOURNEYD_CONFIG_PATH: config file location (default: ~/.config/journeyd.toml)
//   - JOURNEYD_HOME: base directory for journeyd data (default: ~/.local/share/journeyd)
func GetDefaults() (map[string]string, error) {
	configPath, err := getConfigPath()
	if err != nil {
		return nil, err
	}

	baseDir, err := getBaseDir()
	if err != nil {
		return nil, err
	}

	return map[string]string{
		"config_path": configPath,
		"base_dir":    baseDir,
		"data_dir":    filepath.Join(baseDir, "data"),
		"log_dir":     filepath.Join(baseDir, "log"),
	}, nil
}

// getConfigPath returns the config file path, checking JOURNEYD_CONFIG_PATH
// env var first, then falling back to the default ~/.config/journeyd.toml.
func getConfigPath() (string, error) {
	if path := os.Getenv("JOURNEYD_CONFIG_PATH"); path != "" {
		return path, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", "journeyd.toml"), nil
}

// getBaseDir returns the base directory for journeyd data, checking
// JOURNEYD_HOME env var first, then falling back to the XDG default
// ~/.local/share/journeyd.
func getBaseDir() (string, error) {
	if path := os.Getenv("JOURNEYD_HOME"); path != "" {
		return path, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(homeDir, ".local", "share", "journeyd"), nil
}
