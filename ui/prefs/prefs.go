// Package prefs provides JSON-based UI preferences such as the last
// directory used in file dialogs. The scene itself is never persisted.
package prefs

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
)

const prefsFile = "preferences.json"

// Preference keys. Only dialog locations are kept; every session starts
// with a fresh scene and the default frame.
const (
	KeyUploadDir = "lastUploadDirectory"
	KeyExportDir = "lastExportDirectory"
)

// Prefs stores preferences as a key-value map.
type Prefs struct {
	mu     sync.RWMutex
	values map[string]string
	path   string
}

// Load reads preferences from the user config directory. A missing or
// unreadable file yields empty preferences.
func Load() *Prefs {
	configDir, err := os.UserConfigDir()
	if err != nil {
		configDir = filepath.Join(os.Getenv("HOME"), ".config")
	}
	return LoadFrom(filepath.Join(configDir, "pico-compositor", prefsFile))
}

// LoadFrom reads preferences from path.
func LoadFrom(path string) *Prefs {
	p := &Prefs{values: make(map[string]string), path: path}
	data, err := os.ReadFile(path)
	if err != nil {
		return p
	}
	_ = json.Unmarshal(data, &p.values)
	return p
}

// Save writes preferences to disk.
func (p *Prefs) Save() error {
	p.mu.RLock()
	data, err := json.MarshalIndent(p.values, "", "  ")
	p.mu.RUnlock()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(p.path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(p.path, data, 0o644)
}

// String returns a preference, or "" if not set.
func (p *Prefs) String(key string) string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.values[key]
}

// SetString stores a preference.
func (p *Prefs) SetString(key, val string) {
	p.mu.Lock()
	p.values[key] = val
	p.mu.Unlock()
}

// Dir returns a remembered directory if it still exists.
func (p *Prefs) Dir(key string) string {
	dir := p.String(key)
	if dir == "" {
		return ""
	}
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		return ""
	}
	return dir
}

// RememberDir stores the directory containing filePath.
func (p *Prefs) RememberDir(key, filePath string) {
	p.SetString(key, filepath.Dir(filePath))
}
