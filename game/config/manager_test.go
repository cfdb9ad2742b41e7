package config

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/wricardo/santorini/game/engine"
)

const classicJSON = `{
  "name": "classic",
  "description": "Two players on the standard board",
  "rows": 5,
  "cols": 5,
  "players": [{"name": "Blue"}, {"name": "White"}],
  "helpful_tokens": 1,
  "placement": "random"
}`

const trioYAML = `name: trio
description: Three players with gods
rows: 6
cols: 6
players:
  - name: Ann
    god: artemis
  - name: Bo
    god: demeter
  - name: Cy
helpful_tokens: 0
placement: manual
time_bank_seconds: 300
`

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write %s: %v", name, err)
	}
}

func createTestConfigDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	writeFile(t, dir, "classic.json", classicJSON)
	writeFile(t, dir, "trio.yaml", trioYAML)
	return dir
}

func TestNewManager(t *testing.T) {
	t.Run("missing directory", func(t *testing.T) {
		if _, err := NewManager(filepath.Join(t.TempDir(), "nope")); err == nil {
			t.Error("Expected error for a missing directory")
		}
	})

	t.Run("classic is the default", func(t *testing.T) {
		m, err := NewManager(createTestConfigDir(t))
		if err != nil {
			t.Fatalf("Failed to create manager: %v", err)
		}
		if got := m.GetDefault().Name; got != "classic" {
			t.Errorf("Expected classic default, got %s", got)
		}
	})

	t.Run("first preset when classic is missing", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, "trio.yaml", trioYAML)
		m, err := NewManager(dir)
		if err != nil {
			t.Fatal(err)
		}
		if got := m.GetDefault().Name; got != "trio" {
			t.Errorf("Expected trio default, got %s", got)
		}
	})

	t.Run("built-in table for an empty directory", func(t *testing.T) {
		m, err := NewManager(t.TempDir())
		if err != nil {
			t.Fatal(err)
		}
		def := m.GetDefault()
		if def.Name != "default" || def.Rows != 5 || len(def.Players) != 2 {
			t.Errorf("Unexpected built-in default %+v", def)
		}
	})
}

func TestManager_LoadConfig(t *testing.T) {
	dir := createTestConfigDir(t)
	writeFile(t, dir, "extra_field.json", `{"name": "x", "rows": 5, "cols": 5, "players": [{"name": "A"}, {"name": "B"}], "stamina": 3}`)
	writeFile(t, dir, "too_small.yaml", "name: tiny\nrows: 1\ncols: 5\nplayers: [{name: A}, {name: B}]\n")
	writeFile(t, dir, "bad_god.json", `{"name": "g", "rows": 5, "cols": 5, "players": [{"name": "A", "god": "hermes"}, {"name": "B"}]}`)
	writeFile(t, dir, "crowded.json", `{"name": "c", "rows": 2, "cols": 2, "players": [{"name": "A"}, {"name": "B"}, {"name": "C"}]}`)
	writeFile(t, dir, "broken.yml", "name: [unterminated\n")

	m, err := NewManager(dir)
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		preset  string
		wantErr error
	}{
		{"json by id", "classic", nil},
		{"json by file name", "classic.json", nil},
		{"yaml by id", "trio", nil},
		{"unknown property", "extra_field", ErrInvalidConfig},
		{"schema bounds", "too_small", ErrInvalidConfig},
		{"unknown god", "bad_god", engine.ErrUnknownGod},
		{"not enough ground", "crowded", engine.ErrNotEnoughGround},
		{"malformed yaml", "broken", ErrInvalidConfig},
		{"missing", "nothing", ErrConfigNotFound},
		{"path traversal", "../classic", ErrInvalidName},
		{"empty", "", ErrInvalidName},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config, err := m.LoadConfig(tt.preset)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("Expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Failed to load %s: %v", tt.preset, err)
			}
			if config.Name == "" || len(config.Players) < 2 {
				t.Errorf("Unexpected config %+v", config)
			}
		})
	}

	trio, _ := m.LoadConfig("trio")
	if trio.Placement != engine.PlacementManual || trio.TimeBankSeconds != 300 || trio.Players[1].God != "demeter" {
		t.Errorf("Unexpected YAML preset %+v", trio)
	}
}

func TestManager_ListConfigs(t *testing.T) {
	dir := createTestConfigDir(t)
	writeFile(t, dir, "invalid.json", `{"name": ""}`)
	writeFile(t, dir, "notes.txt", "not a preset")
	os.Mkdir(filepath.Join(dir, "nested"), 0755)

	m, err := NewManager(dir)
	if err != nil {
		t.Fatal(err)
	}

	configs, err := m.ListConfigs()
	if err != nil {
		t.Fatalf("Failed to list configs: %v", err)
	}
	if len(configs) != 2 {
		t.Fatalf("Expected 2 valid presets, got %d", len(configs))
	}

	byID := map[string]int{}
	for i, c := range configs {
		byID[c.ConfigID] = i
	}
	trio, ok := byID["trio"]
	if !ok {
		t.Fatal("Expected trio in the list")
	}
	info := configs[trio]
	if info.Filename != "trio.yaml" || info.Players != 3 || info.Rows != 6 || len(info.Gods) != 2 {
		t.Errorf("Unexpected trio info %+v", info)
	}
}

func TestManager_SaveConfig(t *testing.T) {
	dir := createTestConfigDir(t)
	m, err := NewManager(dir)
	if err != nil {
		t.Fatal(err)
	}

	config := engine.DefaultGameConfig()
	config.Name = "duel"
	config.Players[0].God = "zeus"

	t.Run("json", func(t *testing.T) {
		if err := m.SaveConfig("duel", config); err != nil {
			t.Fatalf("Failed to save: %v", err)
		}
		if _, err := os.Stat(filepath.Join(dir, "duel.json")); err != nil {
			t.Errorf("Expected duel.json on disk: %v", err)
		}
		loaded, err := m.LoadConfig("duel")
		if err != nil || loaded.Players[0].God != "zeus" {
			t.Errorf("Expected saved preset to load, got %+v (%v)", loaded, err)
		}
	})

	t.Run("yaml", func(t *testing.T) {
		if err := m.SaveConfig("duel_yaml.yaml", config); err != nil {
			t.Fatalf("Failed to save: %v", err)
		}
		data, err := os.ReadFile(filepath.Join(dir, "duel_yaml.yaml"))
		if err != nil {
			t.Fatal(err)
		}
		if _, err := ValidatePreset("duel_yaml.yaml", data); err != nil {
			t.Errorf("Expected the written YAML to validate: %v", err)
		}
	})

	t.Run("invalid", func(t *testing.T) {
		bad := engine.DefaultGameConfig()
		bad.Rows = 20
		if err := m.SaveConfig("bad", bad); !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("Expected ErrInvalidConfig, got %v", err)
		}
		if _, err := os.Stat(filepath.Join(dir, "bad.json")); !os.IsNotExist(err) {
			t.Error("Expected nothing written for an invalid preset")
		}
	})
}

func TestManager_SetDefaultAndRefresh(t *testing.T) {
	dir := createTestConfigDir(t)
	m, err := NewManager(dir)
	if err != nil {
		t.Fatal(err)
	}

	if err := m.SetDefault("trio"); err != nil {
		t.Fatalf("Failed to set default: %v", err)
	}
	if m.GetDefault().Name != "trio" {
		t.Errorf("Expected trio default, got %s", m.GetDefault().Name)
	}
	if err := m.SetDefault("nothing"); !errors.Is(err, ErrConfigNotFound) {
		t.Errorf("Expected ErrConfigNotFound, got %v", err)
	}

	writeFile(t, dir, "classic.json", `{"name": "classic v2", "rows": 5, "cols": 5, "players": [{"name": "A"}, {"name": "B"}]}`)
	if got, _ := m.LoadConfig("classic"); got.Name != "classic" {
		t.Errorf("Expected the cached preset before refresh, got %s", got.Name)
	}
	m.RefreshCache()
	if got := m.GetDefault().Name; got != "classic v2" {
		t.Errorf("Expected the reloaded classic default, got %s", got)
	}
}

func TestManager_ConcurrentAccess(t *testing.T) {
	m, err := NewManager(createTestConfigDir(t))
	if err != nil {
		t.Fatal(err)
	}

	var wg sync.WaitGroup
	errs := make(chan error, 40)
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			if _, err := m.LoadConfig("trio"); err != nil {
				errs <- err
			}
		}()
		go func() {
			defer wg.Done()
			if _, err := m.ListConfigs(); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Errorf("Unexpected error: %v", err)
	}
}

func TestValidatePreset(t *testing.T) {
	if _, err := ValidatePreset("classic.json", []byte(classicJSON)); err != nil {
		t.Errorf("Expected classic to validate: %v", err)
	}
	if _, err := ValidatePreset("trio.yaml", []byte(trioYAML)); err != nil {
		t.Errorf("Expected trio to validate: %v", err)
	}
	if _, err := ValidatePreset("bad.json", []byte(`{"name": "x", "rows": "five"}`)); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("Expected ErrInvalidConfig for a string row count, got %v", err)
	}
	if _, err := ValidatePreset("bad.yaml", []byte("name: x\nrows: 5\ncols: 5\nplayers: [{name: A}, {name: B}]\nplacement: draft\n")); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("Expected ErrInvalidConfig for an unknown placement, got %v", err)
	}
}
