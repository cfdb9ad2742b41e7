package config

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/wricardo/santorini/game/engine"
	"gopkg.in/yaml.v3"
)

//go:embed preset.schema.json
var presetSchemaJSON string

var presetSchema = jsonschema.MustCompileString("preset.schema.json", presetSchemaJSON)

// ValidatePreset checks a preset file against the preset schema and the
// engine's table rules, and returns the decoded configuration
func ValidatePreset(filename string, data []byte) (*engine.GameConfig, error) {
	doc, err := decodeDocument(filename, data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if err := presetSchema.Validate(doc); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidConfig, filepath.Base(filename), err)
	}

	config, err := engine.ParseGameConfig(filename, data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if err := engine.ValidateGameConfig(config); err != nil {
		if errors.Is(err, ErrInvalidConfig) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return config, nil
}

// decodeDocument turns a JSON or YAML file into the generic JSON value the
// schema validator expects
func decodeDocument(filename string, data []byte) (any, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".yaml", ".yml":
		var raw any
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", filepath.Base(filename), err)
		}
		// round trip so numbers and maps take their JSON shapes
		b, err := json.Marshal(raw)
		if err != nil {
			return nil, fmt.Errorf("failed to convert %s: %w", filepath.Base(filename), err)
		}
		data = b
	}

	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", filepath.Base(filename), err)
	}
	return doc, nil
}
