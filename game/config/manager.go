package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/wricardo/santorini/game/engine"
	"github.com/wricardo/santorini/game/service"
	"gopkg.in/yaml.v3"
)

var (
	ErrConfigNotFound = service.ErrConfigNotFound
	ErrInvalidConfig  = engine.ErrInvalidConfig
	ErrInvalidName    = errors.New("invalid configuration name")
)

// DefaultPreset is the preset used when none is asked for
const DefaultPreset = "classic"

// presetExtensions lists the supported file types in lookup order
var presetExtensions = []string{".json", ".yaml", ".yml"}

// Manager handles table preset loading and caching
type Manager struct {
	configDir     string
	defaultConfig *engine.GameConfig
	configs       map[string]*engine.GameConfig
	mu            sync.RWMutex
}

// NewManager creates a new configuration manager
func NewManager(configDir string) (*Manager, error) {
	if _, err := os.Stat(configDir); os.IsNotExist(err) {
		return nil, fmt.Errorf("config directory does not exist: %s", configDir)
	}

	m := &Manager{
		configDir: configDir,
		configs:   make(map[string]*engine.GameConfig),
	}
	m.defaultConfig = m.loadDefaultConfig()
	return m, nil
}

// LoadConfig loads a preset by ID. The ID is the file name with or without
// its extension.
func (m *Manager) LoadConfig(name string) (*engine.GameConfig, error) {
	id, err := configID(name)
	if err != nil {
		return nil, err
	}

	m.mu.RLock()
	if config, exists := m.configs[id]; exists {
		m.mu.RUnlock()
		return config, nil
	}
	m.mu.RUnlock()

	m.mu.Lock()
	defer m.mu.Unlock()

	// Double-check after acquiring write lock
	if config, exists := m.configs[id]; exists {
		return config, nil
	}

	path, err := m.findFile(name)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config, err := ValidatePreset(path, data)
	if err != nil {
		return nil, err
	}

	m.configs[id] = config
	return config, nil
}

// ListConfigs returns information about all loadable presets. Files that
// fail validation are skipped.
func (m *Manager) ListConfigs() ([]*service.ConfigInfo, error) {
	entries, err := os.ReadDir(m.configDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read config directory: %w", err)
	}

	var configs []*service.ConfigInfo
	seen := make(map[string]bool)
	for _, entry := range entries {
		if entry.IsDir() || !supported(entry.Name()) {
			continue
		}
		id := strings.TrimSuffix(entry.Name(), filepath.Ext(entry.Name()))
		if seen[id] {
			continue
		}

		config, err := m.LoadConfig(entry.Name())
		if err != nil {
			log.Printf("Skipping preset %s: %v", entry.Name(), err)
			continue
		}
		seen[id] = true

		info := &service.ConfigInfo{
			Filename:    entry.Name(),
			ConfigID:    id,
			Name:        config.Name,
			Description: config.Description,
			Rows:        config.Rows,
			Cols:        config.Cols,
			Players:     len(config.Players),
		}
		for _, p := range config.Players {
			if p.God != "" {
				info.Gods = append(info.Gods, p.God)
			}
		}
		configs = append(configs, info)
	}

	return configs, nil
}

// GetDefault returns the default configuration
func (m *Manager) GetDefault() *engine.GameConfig {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.defaultConfig
}

// SetDefault sets the default configuration by name
func (m *Manager) SetDefault(name string) error {
	config, err := m.LoadConfig(name)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.defaultConfig = config
	return nil
}

// RefreshCache drops every cached preset and reloads the default
func (m *Manager) RefreshCache() {
	m.mu.Lock()
	m.configs = make(map[string]*engine.GameConfig)
	m.mu.Unlock()

	config := m.loadDefaultConfig()

	m.mu.Lock()
	m.defaultConfig = config
	m.mu.Unlock()
}

// loadDefaultConfig picks classic, then the first valid preset, then the
// built-in table
func (m *Manager) loadDefaultConfig() *engine.GameConfig {
	if config, err := m.LoadConfig(DefaultPreset); err == nil {
		return config
	}

	configs, err := m.ListConfigs()
	if err == nil && len(configs) > 0 {
		if config, err := m.LoadConfig(configs[0].Filename); err == nil {
			return config
		}
	}
	return m.createMinimalConfig()
}

// SaveConfig writes a preset to disk. A .yaml or .yml name is written as
// YAML, anything else as JSON.
func (m *Manager) SaveConfig(name string, config *engine.GameConfig) error {
	id, err := configID(name)
	if err != nil {
		return err
	}
	if err := engine.ValidateGameConfig(config); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	filename := name
	if !supported(filename) {
		filename = name + ".json"
	}

	var data []byte
	switch filepath.Ext(filename) {
	case ".yaml", ".yml":
		data, err = yaml.Marshal(config)
	default:
		data, err = json.MarshalIndent(config, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if _, err := ValidatePreset(filename, data); err != nil {
		return err
	}

	if err := os.WriteFile(filepath.Join(m.configDir, filename), data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	m.mu.Lock()
	m.configs[id] = config
	m.mu.Unlock()

	log.Printf("Saved preset %s", filename)
	return nil
}

// findFile resolves a preset ID to an existing file
func (m *Manager) findFile(name string) (string, error) {
	candidates := []string{name}
	if !supported(name) {
		candidates = candidates[:0]
		for _, ext := range presetExtensions {
			candidates = append(candidates, name+ext)
		}
	}
	for _, c := range candidates {
		path := filepath.Join(m.configDir, c)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrConfigNotFound, name)
}

// createMinimalConfig creates the built-in two player table
func (m *Manager) createMinimalConfig() *engine.GameConfig {
	config := engine.DefaultGameConfig()
	config.Name = "default"
	config.Description = "Built-in two player table"
	return config
}

func configID(name string) (string, error) {
	if name == "" || filepath.Base(name) != name || strings.HasPrefix(name, ".") {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	if supported(name) {
		return strings.TrimSuffix(name, filepath.Ext(name)), nil
	}
	return name, nil
}

func supported(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	for _, e := range presetExtensions {
		if ext == e {
			return true
		}
	}
	return false
}
