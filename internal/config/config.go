// ABOUTME: Settings loading with global + project config merge
// ABOUTME: JSON files under ~/.easel/ and .easel/; EASEL_BACKEND wins last

package config

import (
	"encoding/json"
	"fmt"
	"os"
)

// Settings holds the merged client configuration.
type Settings struct {
	BackendURL      string `json:"backendUrl,omitempty"`
	LogLevel        string `json:"logLevel,omitempty"`
	Markdown        *bool  `json:"markdown,omitempty"`
	HistoryPageSize int    `json:"historyPageSize,omitempty"`
}

// DefaultBackendURL is used when neither config nor environment names one.
const DefaultBackendURL = "http://localhost:8315"

// Load reads and merges global and project-local settings. Project settings
// override global settings; the EASEL_BACKEND environment variable overrides
// both for the backend URL.
func Load(projectRoot string) (*Settings, error) {
	global, err := loadFile(GlobalConfigFile())
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("loading global config: %w", err)
	}

	project, err := loadFile(ProjectConfigFile(projectRoot))
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("loading project config: %w", err)
	}

	merged := merge(global, project)
	if env := os.Getenv("EASEL_BACKEND"); env != "" {
		merged.BackendURL = env
	}
	if merged.BackendURL == "" {
		merged.BackendURL = DefaultBackendURL
	}
	return merged, nil
}

// RenderMarkdown reports the markdown toggle with its default of true.
func (s *Settings) RenderMarkdown() bool {
	if s.Markdown == nil {
		return true
	}
	return *s.Markdown
}

// loadFile reads a Settings from a JSON file. Returns zero Settings if file
// does not exist.
func loadFile(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return &Settings{}, err
	}
	var s Settings
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return &s, nil
}

// merge overlays project settings onto global settings. Non-zero project
// values win.
func merge(global, project *Settings) *Settings {
	if global == nil {
		global = &Settings{}
	}
	if project == nil {
		return global
	}

	result := *global

	if project.BackendURL != "" {
		result.BackendURL = project.BackendURL
	}
	if project.LogLevel != "" {
		result.LogLevel = project.LogLevel
	}
	if project.Markdown != nil {
		result.Markdown = project.Markdown
	}
	if project.HistoryPageSize != 0 {
		result.HistoryPageSize = project.HistoryPageSize
	}

	return &result
}
