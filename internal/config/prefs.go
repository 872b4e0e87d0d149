// ABOUTME: Persisted UI preferences as a flat string map in prefs.json
// ABOUTME: Written atomically via temp file + rename

package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

const prefLastWorkingFolder = "lastWorkingFolder"

// Prefs is a flat key-value store for small UI preferences that survive
// restarts (last working folder, picker state).
type Prefs struct {
	path   string
	values map[string]string
}

// LoadPrefs reads prefs from the default location. A missing file yields
// empty prefs.
func LoadPrefs() (*Prefs, error) {
	return LoadPrefsFrom(PrefsFile())
}

// LoadPrefsFrom reads prefs from path. Split out from LoadPrefs for tests.
func LoadPrefsFrom(path string) (*Prefs, error) {
	p := &Prefs{path: path, values: make(map[string]string)}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return p, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading prefs: %w", err)
	}
	if err := json.Unmarshal(data, &p.values); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return p, nil
}

// Get returns the value for key, or "" when unset.
func (p *Prefs) Get(key string) string {
	return p.values[key]
}

// Set stores key=value and persists immediately.
func (p *Prefs) Set(key, value string) error {
	p.values[key] = value
	return p.save()
}

// LastWorkingFolder returns the folder the user last attached files from.
func (p *Prefs) LastWorkingFolder() string {
	return p.Get(prefLastWorkingFolder)
}

// SetLastWorkingFolder persists the folder the user last attached files from.
func (p *Prefs) SetLastWorkingFolder(dir string) error {
	return p.Set(prefLastWorkingFolder, dir)
}

func (p *Prefs) save() error {
	if err := EnsureDir(filepath.Dir(p.path)); err != nil {
		return fmt.Errorf("creating prefs dir: %w", err)
	}
	data, err := json.MarshalIndent(p.values, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding prefs: %w", err)
	}
	tmp := p.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("writing prefs: %w", err)
	}
	if err := os.Rename(tmp, p.path); err != nil {
		return fmt.Errorf("replacing prefs: %w", err)
	}
	return nil
}
