package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// Prefs holds the device-local preferences that never travel to the
// server: the session token and the locally stored API key.
type Prefs struct {
	Token       string `json:"token,omitempty"`
	LocalAPIKey string `json:"localApiKey,omitempty"`
}

// PrefsPath returns the preferences file location under the user config
// directory.
func PrefsPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve config dir: %w", err)
	}
	return filepath.Join(dir, "finebank", "prefs.json"), nil
}

// LoadPrefs reads the preferences file. A missing file yields empty prefs.
func LoadPrefs() (Prefs, error) {
	path, err := PrefsPath()
	if err != nil {
		return Prefs{}, err
	}
	return loadPrefsFrom(path)
}

func loadPrefsFrom(path string) (Prefs, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Prefs{}, nil
	}
	if err != nil {
		return Prefs{}, fmt.Errorf("read prefs: %w", err)
	}
	var p Prefs
	if err := json.Unmarshal(data, &p); err != nil {
		return Prefs{}, fmt.Errorf("parse prefs: %w", err)
	}
	return p, nil
}

// Save writes the preferences file with owner-only permissions.
func (p Prefs) Save() error {
	path, err := PrefsPath()
	if err != nil {
		return err
	}
	return p.saveTo(path)
}

func (p Prefs) saveTo(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("create prefs dir: %w", err)
	}
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal prefs: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("write prefs: %w", err)
	}
	return nil
}
