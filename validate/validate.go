// Package validate checks table preset files before a server loads them.
// For every JSON or YAML preset it checks:
//   - the preset schema (fields, types and ranges)
//   - the engine's table rules (known gods, placement mode, token and clock bounds)
//   - that every worker has its own open space
//   - that a table can actually be opened from it
package validate

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/wricardo/santorini/game/config"
	"github.com/wricardo/santorini/game/engine"
)

// dryRunSeed makes the opening check repeatable for random placement
const dryRunSeed = 1

// Result captures the outcome of validating a single file. Info is only
// filled for valid files.
type Result struct {
	File   string
	Valid  bool
	Errors []string
	Info   []string
}

// File loads and validates a single preset
func File(path string) Result {
	result := Result{File: filepath.Base(path), Valid: true}

	data, err := os.ReadFile(path)
	if err != nil {
		result.fail("Failed to read file: %v", err)
		return result
	}

	cfg, err := config.ValidatePreset(path, data)
	if err != nil {
		result.fail("%v", err)
		return result
	}

	opening, err := dryRun(cfg)
	if err != nil {
		result.fail("Cannot open a table: %v", err)
		return result
	}

	result.Info = append(result.Info,
		fmt.Sprintf("✓ Name: %s", cfg.Name),
		fmt.Sprintf("✓ Board: %dx%d", cfg.Rows, cfg.Cols),
		fmt.Sprintf("✓ Players: %s", describePlayers(cfg.Players)),
		fmt.Sprintf("✓ Placement: %s", placementOf(cfg)),
		fmt.Sprintf("✓ Helpful tokens: %d", cfg.HelpfulTokens),
	)
	if cfg.TimeBankSeconds > 0 {
		result.Info = append(result.Info, fmt.Sprintf("✓ Time bank: %ds", cfg.TimeBankSeconds))
	}
	result.Info = append(result.Info, opening)
	return result
}

// Dir validates every preset in a directory, in file name order
func Dir(dir string) ([]Result, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", dir, err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(entry.Name())) {
		case ".json", ".yaml", ".yml":
			files = append(files, filepath.Join(dir, entry.Name()))
		}
	}
	sort.Strings(files)

	results := make([]Result, 0, len(files))
	for _, file := range files {
		results = append(results, File(file))
	}
	return results, nil
}

// Report prints a concise report and returns whether every file is valid
func Report(w io.Writer, results []Result) bool {
	allValid := true
	for _, result := range results {
		fmt.Fprintf(w, "\n%s %s\n", strings.Repeat("=", 20), result.File)

		if result.Valid {
			fmt.Fprintln(w, "✅ VALID")
			for _, info := range result.Info {
				fmt.Fprintln(w, "  "+info)
			}
			continue
		}

		allValid = false
		fmt.Fprintln(w, "❌ INVALID")
		for _, e := range result.Errors {
			fmt.Fprintln(w, "  ❌ "+e)
		}
	}

	fmt.Fprintf(w, "\n%s\n", strings.Repeat("=", 40))
	switch {
	case len(results) == 0:
		fmt.Fprintln(w, "No presets found")
	case allValid:
		fmt.Fprintln(w, "✅ All presets are valid!")
	default:
		fmt.Fprintln(w, "❌ Some presets have errors")
	}
	return allValid
}

func (r *Result) fail(format string, args ...interface{}) {
	r.Valid = false
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

// dryRun opens a table from the preset and describes its first decision
func dryRun(cfg *engine.GameConfig) (string, error) {
	trial := *cfg
	trial.Players = append([]engine.PlayerConfig(nil), cfg.Players...)
	if trial.Seed == 0 {
		trial.Seed = dryRunSeed
	}

	e, err := engine.NewEngine(&trial)
	if err != nil {
		return "", err
	}
	if winner, over := e.Winner(); over {
		return "", fmt.Errorf("%s wins before the first turn", winner.Name)
	}

	switch e.Phase() {
	case engine.PhasePlace:
		open := 0
		for _, a := range e.LegalPlacements() {
			if a.Valid() {
				open++
			}
		}
		return fmt.Sprintf("✓ Opening: %s places first, %d open spaces", e.CurrentPlayer().Name, open), nil
	default:
		return fmt.Sprintf("✓ Opening: %s moves first", e.CurrentPlayer().Name), nil
	}
}

func describePlayers(players []engine.PlayerConfig) string {
	parts := make([]string, len(players))
	for i, p := range players {
		parts[i] = p.Name
		if p.God != "" {
			parts[i] += " (" + p.God + ")"
		}
	}
	return strings.Join(parts, ", ")
}

func placementOf(cfg *engine.GameConfig) engine.PlacementMode {
	if cfg.Placement == "" {
		return engine.PlacementRandom
	}
	return cfg.Placement
}
