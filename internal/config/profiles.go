// ABOUTME: Named backend profiles loaded from profiles.yaml
// ABOUTME: A profile bundles a backend URL with optional headers and log level

package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Profile is one named backend target.
type Profile struct {
	BackendURL string            `yaml:"backendUrl"`
	Headers    map[string]string `yaml:"headers,omitempty"`
	LogLevel   string            `yaml:"logLevel,omitempty"`
}

// Profiles is the parsed profiles.yaml.
type Profiles struct {
	Default  string             `yaml:"default,omitempty"`
	Profiles map[string]Profile `yaml:"profiles"`
}

// LoadProfiles reads profiles from the default location. A missing file
// yields an empty set.
func LoadProfiles() (*Profiles, error) {
	return LoadProfilesFrom(ProfilesFile())
}

// LoadProfilesFrom reads profiles from path. Split out for tests.
func LoadProfilesFrom(path string) (*Profiles, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return &Profiles{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading profiles: %w", err)
	}
	var p Profiles
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return &p, nil
}

// Select resolves a profile by name. An empty name selects the default
// profile when one is declared, otherwise no profile.
func (p *Profiles) Select(name string) (Profile, bool, error) {
	if name == "" {
		name = p.Default
	}
	if name == "" {
		return Profile{}, false, nil
	}
	prof, ok := p.Profiles[name]
	if !ok {
		return Profile{}, false, fmt.Errorf("unknown profile %q", name)
	}
	return prof, true, nil
}

// Apply overlays a profile onto settings. Profile values win.
func (p Profile) Apply(s *Settings) {
	if p.BackendURL != "" {
		s.BackendURL = p.BackendURL
	}
	if p.LogLevel != "" {
		s.LogLevel = p.LogLevel
	}
}
