// Package prefs stores the last-used convention file and edge-diagram folder
// between sessions. Preferences override the configured defaults and are only
// written on an explicit save.
package prefs

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"kerf/internal/config"
	"kerf/internal/fileutil"
)

// Prefs is the persisted preference set.
type Prefs struct {
	ConventionJSON string `json:"convention_json,omitempty"`
	EdgeDir        string `json:"edge_dir,omitempty"`
}

// Empty reports whether no preference is set.
func (p Prefs) Empty() bool {
	return strings.TrimSpace(p.ConventionJSON) == "" && strings.TrimSpace(p.EdgeDir) == ""
}

// Load reads preferences from path. A missing file yields empty preferences.
func Load(path string) (Prefs, error) {
	var p Prefs
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return p, nil
	}
	if err != nil {
		return p, fmt.Errorf("read preferences: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return p, nil
	}
	if err := json.Unmarshal(data, &p); err != nil {
		return p, fmt.Errorf("parse preferences %s: %w", path, err)
	}
	return p, nil
}

// Save writes preferences to path atomically.
func Save(path string, p Prefs) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create preferences directory: %w", err)
	}
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("encode preferences: %w", err)
	}
	if err := fileutil.WriteFileAtomic(path, append(data, '\n')); err != nil {
		return fmt.Errorf("write preferences: %w", err)
	}
	return nil
}

// Apply overrides cfg paths with the non-empty preferences.
func Apply(cfg *config.Config, p Prefs) error {
	if v := strings.TrimSpace(p.ConventionJSON); v != "" {
		expanded, err := config.ExpandPath(v)
		if err != nil {
			return fmt.Errorf("convention_json preference: %w", err)
		}
		cfg.Paths.ConventionJSON = expanded
	}
	if v := strings.TrimSpace(p.EdgeDir); v != "" {
		expanded, err := config.ExpandPath(v)
		if err != nil {
			return fmt.Errorf("edge_dir preference: %w", err)
		}
		cfg.Paths.EdgeDir = expanded
	}
	return nil
}

// LoadInto reads the preferences file named by cfg and applies it.
func LoadInto(cfg *config.Config) (Prefs, error) {
	p, err := Load(cfg.Paths.PrefsPath)
	if err != nil {
		return p, err
	}
	return p, Apply(cfg, p)
}
