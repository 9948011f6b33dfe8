package paths

import (
	"fmt"
	"os"
	"path/filepath"
)

// HomeDir returns the current user's home directory.
func HomeDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home directory: %w", err)
	}
	return home, nil
}

// DefaultConfigDir returns the directory holding the global config.toml.
func DefaultConfigDir() (string, error) {
	home, err := HomeDir()
	if err != nil {
		return "", err
	}

	return filepath.Join(home, ".config", "todopro"), nil
}

// DefaultStateDir returns the default todopro state directory.
func DefaultStateDir() (string, error) {
	home, err := HomeDir()
	if err != nil {
		return "", err
	}

	return filepath.Join(home, ".local", "state", "todopro"), nil
}

// DefaultDatabasePath returns where `td serve` keeps its SQLite database
// when no path is configured.
func DefaultDatabasePath() (string, error) {
	home, err := HomeDir()
	if err != nil {
		return "", err
	}

	return filepath.Join(home, ".local", "share", "todopro", "todos.db"), nil
}

// DefaultCredentialsPath returns the file holding the saved login session.
func DefaultCredentialsPath() (string, error) {
	dir, err := DefaultStateDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "session.json"), nil
}
