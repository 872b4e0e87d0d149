// ABOUTME: Standard filesystem paths for easel configuration and data
// ABOUTME: Resolves ~/.easel/ for global and .easel/ for project-local paths

package config

import (
	"os"
	"path/filepath"
)

const (
	globalDirName  = ".easel"
	projectDirName = ".easel"
)

// GlobalDir returns the user-global config directory (~/.easel/).
func GlobalDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", globalDirName)
	}
	return filepath.Join(home, globalDirName)
}

// ProjectDir returns the project-local config directory (.easel/ in cwd).
func ProjectDir(projectRoot string) string {
	return filepath.Join(projectRoot, projectDirName)
}

// GlobalConfigFile returns the path to the global config file.
func GlobalConfigFile() string {
	return filepath.Join(GlobalDir(), "config.json")
}

// ProjectConfigFile returns the path to the project-local config file.
func ProjectConfigFile(projectRoot string) string {
	return filepath.Join(ProjectDir(projectRoot), "config.json")
}

// PrefsFile returns the path to the persisted UI preferences file.
func PrefsFile() string {
	return filepath.Join(GlobalDir(), "prefs.json")
}

// ProfilesFile returns the path to the backend profiles file.
func ProfilesFile() string {
	return filepath.Join(GlobalDir(), "profiles.yaml")
}

// LogFile returns the path to the client log file.
func LogFile() string {
	return filepath.Join(GlobalDir(), "easel.log")
}

// EnsureDir creates a directory and all parents if they don't exist.
// Uses 0o700 since the tree can hold backend credentials.
func EnsureDir(path string) error {
	return os.MkdirAll(path, 0o700)
}
