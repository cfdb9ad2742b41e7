package validate

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writePreset(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write preset: %v", err)
	}
	return path
}

func TestFile(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name      string
		file      string
		content   string
		wantValid bool
		wantText  string
	}{
		{
			name: "valid json",
			file: "duel.json",
			content: `{
				"name": "duel",
				"description": "Artemis against Demeter",
				"rows": 5,
				"cols": 5,
				"players": [{"name": "Ann", "god": "artemis"}, {"name": "Bo", "god": "demeter"}],
				"helpful_tokens": 1,
				"placement": "manual"
			}`,
			wantValid: true,
			wantText:  "Ann places first, 25 open spaces",
		},
		{
			name: "valid yaml with a clock",
			file: "blitz.yaml",
			content: `name: blitz
rows: 5
cols: 5
players:
  - name: Ann
  - name: Bo
time_bank_seconds: 300
`,
			wantValid: true,
			wantText:  "Time bank: 300s",
		},
		{
			name:     "invalid json",
			file:     "broken.json",
			content:  `{"name": "broken", "rows": `,
			wantText: "failed to parse",
		},
		{
			name:     "schema violation",
			file:     "huge.json",
			content:  `{"name": "huge", "rows": 40, "cols": 5, "players": [{"name": "Ann"}, {"name": "Bo"}]}`,
			wantText: "invalid game configuration",
		},
		{
			name:     "unknown god",
			file:     "hermes.json",
			content:  `{"name": "hermes", "rows": 5, "cols": 5, "players": [{"name": "Ann", "god": "hermes"}, {"name": "Bo"}]}`,
			wantText: "unknown god",
		},
		{
			name:     "not enough ground",
			file:     "tiny.yaml",
			content:  "name: tiny\nrows: 2\ncols: 2\nplayers:\n  - name: Ann\n  - name: Bo\n  - name: Cy\n",
			wantText: "not enough open ground",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := File(writePreset(t, dir, tt.file, tt.content))

			if result.Valid != tt.wantValid {
				t.Fatalf("Expected valid=%t, got %+v", tt.wantValid, result)
			}
			if result.File != tt.file {
				t.Errorf("Expected file %s, got %s", tt.file, result.File)
			}
			text := strings.Join(append(result.Errors, result.Info...), "\n")
			if !strings.Contains(text, tt.wantText) {
				t.Errorf("Expected %q in:\n%s", tt.wantText, text)
			}
		})
	}
}

func TestFile_Missing(t *testing.T) {
	result := File(filepath.Join(t.TempDir(), "nope.json"))
	if result.Valid || len(result.Errors) == 0 || !strings.Contains(result.Errors[0], "Failed to read file") {
		t.Errorf("Expected a read failure, got %+v", result)
	}
}

func TestDirAndReport(t *testing.T) {
	dir := t.TempDir()
	writePreset(t, dir, "b.yml", "name: b\nrows: 5\ncols: 5\nplayers:\n  - name: Ann\n  - name: Bo\n")
	writePreset(t, dir, "a.json", `{"name": "a", "rows": 5, "cols": 5, "players": [{"name": "Ann"}, {"name": "Bo"}]}`)
	writePreset(t, dir, "notes.txt", "not a preset")
	if err := os.Mkdir(filepath.Join(dir, "sub"), 0755); err != nil {
		t.Fatal(err)
	}

	results, err := Dir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 2 || results[0].File != "a.json" || results[1].File != "b.yml" {
		t.Fatalf("Expected a.json and b.yml, got %+v", results)
	}

	var out bytes.Buffer
	if !Report(&out, results) {
		t.Errorf("Expected all presets to be valid:\n%s", out.String())
	}
	if !strings.Contains(out.String(), "All presets are valid") || !strings.Contains(out.String(), "moves first") {
		t.Errorf("Unexpected report:\n%s", out.String())
	}

	writePreset(t, dir, "c.json", `{"name": "c"}`)
	results, _ = Dir(dir)
	out.Reset()
	if Report(&out, results) {
		t.Error("Expected the report to fail")
	}
	if !strings.Contains(out.String(), "❌ INVALID") {
		t.Errorf("Expected the invalid marker:\n%s", out.String())
	}
}

func TestDir_Missing(t *testing.T) {
	if _, err := Dir("/non/existent/path"); err == nil {
		t.Error("Expected an error for a missing directory")
	}
}

func TestShippedPresets(t *testing.T) {
	results, err := Dir(filepath.Join("..", "configs"))
	if err != nil {
		t.Skipf("configs directory not available: %v", err)
	}
	for _, result := range results {
		if !result.Valid {
			t.Errorf("%s: %v", result.File, result.Errors)
		}
	}
}
