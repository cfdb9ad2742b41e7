package engine

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/wricardo/santorini/game/board"
	"gopkg.in/yaml.v3"
)

// ValidateGameConfig validates a game configuration for correctness and playability
func ValidateGameConfig(config *GameConfig) error {
	if config == nil {
		return fmt.Errorf("%w: config is nil", ErrInvalidConfig)
	}

	// Validate required fields
	if strings.TrimSpace(config.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidConfig)
	}

	// Validate board size
	if config.Rows < board.MinSize || config.Rows > board.MaxSize {
		return fmt.Errorf("%w: rows must be between %d and %d, got %d", ErrInvalidConfig, board.MinSize, board.MaxSize, config.Rows)
	}
	if config.Cols < board.MinSize || config.Cols > board.MaxSize {
		return fmt.Errorf("%w: cols must be between %d and %d, got %d", ErrInvalidConfig, board.MinSize, board.MaxSize, config.Cols)
	}

	// Validate seats
	if n := len(config.Players); n < MinPlayers || n > MaxPlayers {
		return fmt.Errorf("%w: players must be between %d and %d, got %d", ErrInvalidConfig, MinPlayers, MaxPlayers, n)
	}
	for i, p := range config.Players {
		if strings.TrimSpace(p.Name) == "" {
			return fmt.Errorf("%w: player %d needs a name", ErrInvalidConfig, i+1)
		}
		if _, err := LookupGod(p.God); err != nil {
			return fmt.Errorf("%w: player %d: %w", ErrInvalidConfig, i+1, err)
		}
	}

	switch config.Placement {
	case "", PlacementRandom, PlacementManual:
	default:
		return fmt.Errorf("%w: placement must be %q or %q, got %q", ErrInvalidConfig, PlacementRandom, PlacementManual, config.Placement)
	}

	if config.HelpfulTokens < 0 || config.HelpfulTokens > MaxHelpfulTokens {
		return fmt.Errorf("%w: helpful_tokens must be between 0 and %d, got %d", ErrInvalidConfig, MaxHelpfulTokens, config.HelpfulTokens)
	}
	if config.TimeBankSeconds < 0 || config.TimeBankSeconds > MaxTimeBank {
		return fmt.Errorf("%w: time_bank_seconds must be between 0 and %d, got %d", ErrInvalidConfig, MaxTimeBank, config.TimeBankSeconds)
	}

	// Every worker needs its own open space
	if need := len(config.Players) * WorkersPerPlayer; config.Rows*config.Cols < need {
		return fmt.Errorf("%w: %dx%d board has %d spaces for %d workers",
			ErrNotEnoughGround, config.Rows, config.Cols, config.Rows*config.Cols, need)
	}

	return nil
}

// DefaultGameConfig returns the classic two-player 5x5 table
func DefaultGameConfig() *GameConfig {
	return &GameConfig{
		Name:          "classic",
		Description:   "Classic two player game on a 5x5 board",
		Rows:          5,
		Cols:          5,
		Players:       []PlayerConfig{{Name: "Player 1"}, {Name: "Player 2"}},
		HelpfulTokens: 1,
		Placement:     PlacementRandom,
	}
}

// ParseGameConfig decodes a preset. YAML is used for .yaml and .yml names,
// JSON for everything else.
func ParseGameConfig(name string, data []byte) (*GameConfig, error) {
	var config GameConfig
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", name, err)
		}
	default:
		if err := json.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", name, err)
		}
	}
	return &config, nil
}

// LoadGameConfig loads and validates a preset file
func LoadGameConfig(filename string) (*GameConfig, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}

	config, err := ParseGameConfig(filename, data)
	if err != nil {
		return nil, err
	}

	if err := ValidateGameConfig(config); err != nil {
		return nil, err
	}

	return config, nil
}
