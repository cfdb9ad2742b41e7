package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/urfave/cli/v3"
	"github.com/wricardo/santorini/api"
	"github.com/wricardo/santorini/game/config"
	"github.com/wricardo/santorini/game/engine"
	"github.com/wricardo/santorini/game/service"
	"github.com/wricardo/santorini/game/session"
	"github.com/wricardo/santorini/transport/mcp"
)

func TestConstants(t *testing.T) {
	if Version == "" {
		t.Error("Version should not be empty")
	}
	if AppName != "Santorini Server" {
		t.Errorf("Unexpected app name %s", AppName)
	}
}

// runWithSettings runs the root command with args and returns the settings
// its action saw
func runWithSettings(t *testing.T, args ...string) (*config.Settings, error) {
	t.Helper()
	var seen *config.Settings
	cmd := newCommand()
	cmd.Action = func(ctx context.Context, c *cli.Command) error {
		s, err := loadSettings(c)
		seen = s
		return err
	}
	err := cmd.Run(context.Background(), append([]string{"santorini"}, args...))
	return seen, err
}

func TestFlagsOverrideEnvironment(t *testing.T) {
	t.Setenv("SANTORINI_PORT", "9000")
	t.Setenv("SANTORINI_CONFIG_DIR", "presets")

	settings, err := runWithSettings(t, "--port", "9191", "--session-ttl", "2h")
	if err != nil {
		t.Fatal(err)
	}
	if settings.Port != 9191 || settings.SessionTTL != 2*time.Hour {
		t.Errorf("Expected flags to win, got %+v", settings)
	}
	if settings.ConfigDir != "presets" {
		t.Errorf("Expected the environment to fill unset flags, got %s", settings.ConfigDir)
	}
	if settings.Addr() != "localhost:9191" {
		t.Errorf("Unexpected address %s", settings.Addr())
	}
}

func TestFlagsRejectZeroSweep(t *testing.T) {
	if _, err := runWithSettings(t, "--clock-sweep", "0s"); err == nil {
		t.Error("Expected an error for a zero sweep interval")
	}
}

func TestInitializeServices(t *testing.T) {
	if _, err := os.Stat("configs"); os.IsNotExist(err) {
		t.Skip("Skipping test - configs directory not found")
	}

	gameService, sessions, err := initializeServices(&config.Settings{ConfigDir: "configs", DefaultPreset: "blitz"})
	if err != nil {
		t.Fatalf("Failed to initialize services: %v", err)
	}

	info, err := gameService.CreateSession(context.Background(), "")
	if err != nil {
		t.Fatal(err)
	}
	if info.GameConfig == nil || info.GameConfig.TimeBankSeconds != 300 {
		t.Errorf("Expected the blitz preset to be the default, got %+v", info.GameConfig)
	}
	if sessions.Count() != 1 {
		t.Errorf("Expected one session, got %d", sessions.Count())
	}
}

func TestInitializeServices_Errors(t *testing.T) {
	if _, _, err := initializeServices(&config.Settings{ConfigDir: "/non/existent/path"}); err == nil {
		t.Error("Expected error for non-existent config directory")
	}

	_, _, err := initializeServices(&config.Settings{ConfigDir: t.TempDir(), DefaultPreset: "missing"})
	if err == nil {
		t.Error("Expected error for an unknown default preset")
	}
}

func TestHandler(t *testing.T) {
	configs, err := config.NewManager(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	gameService := service.NewGameService(session.NewManager(), configs)
	handler := newHandler(api.NewServer(gameService, nil), mcp.NewClient("http://127.0.0.1:1"))

	t.Run("api is mounted at the root", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest("GET", "/health", nil))
		if w.Code != http.StatusOK {
			t.Errorf("Expected 200, got %d", w.Code)
		}
	})

	t.Run("mcp only accepts POST", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest("GET", "/mcp", nil))
		if w.Code != http.StatusMethodNotAllowed {
			t.Errorf("Expected 405, got %d", w.Code)
		}
	})

	t.Run("mcp initialize", func(t *testing.T) {
		body := `{"jsonrpc":"2.0","id":1,"method":"initialize","params":{"protocolVersion":"2024-11-05","capabilities":{},"clientInfo":{"name":"test","version":"1.0"}}}`
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest("POST", "/mcp", strings.NewReader(body)))
		if w.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d", w.Code)
		}
		if !strings.Contains(w.Body.String(), "Santorini") {
			t.Errorf("Expected the server name in the response, got %s", w.Body.String())
		}
	})
}

func TestSweepClocks(t *testing.T) {
	dir := t.TempDir()
	preset := "name: timed\nrows: 5\ncols: 5\nplayers:\n  - name: Ann\n  - name: Bo\nseed: 3\ntime_bank_seconds: 5\n"
	if err := os.WriteFile(filepath.Join(dir, "timed.yaml"), []byte(preset), 0644); err != nil {
		t.Fatal(err)
	}
	configs, err := config.NewManager(dir)
	if err != nil {
		t.Fatal(err)
	}

	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	sessions := session.NewManagerWithClock(func() time.Time { return now })
	gameService := service.NewGameService(sessions, configs)
	ctx := context.Background()

	info, err := gameService.CreateSession(ctx, "timed")
	if err != nil {
		t.Fatal(err)
	}

	if n := sweepClocks(ctx, gameService, nil); n != 0 {
		t.Errorf("Expected no expiry yet, got %d", n)
	}

	now = now.Add(6 * time.Second)
	if n := sweepClocks(ctx, gameService, nil); n != 1 {
		t.Fatalf("Expected one expiry, got %d", n)
	}

	table, err := gameService.GetTableState(ctx, info.ID)
	if err != nil {
		t.Fatal(err)
	}
	if table.Phase != engine.PhaseGameOver || table.Winner == nil || *table.Winner == info.Table.CurrentPlayer {
		t.Errorf("Expected the other player to win on time, got %+v", table.GameState)
	}
}

func TestValidateCommand(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.json")
	bad := filepath.Join(dir, "bad.json")
	os.WriteFile(good, []byte(`{"name": "good", "rows": 5, "cols": 5, "players": [{"name": "Ann"}, {"name": "Bo"}]}`), 0644)
	os.WriteFile(bad, []byte(`{"name": "bad", "rows": 5}`), 0644)

	run := func(args ...string) error {
		cmd := newCommand()
		cmd.ExitErrHandler = func(context.Context, *cli.Command, error) {}
		return cmd.Run(context.Background(), append([]string{"santorini"}, args...))
	}

	if err := run("validate", good); err != nil {
		t.Errorf("Expected a valid preset to pass, got %v", err)
	}
	if err := run("validate", good, bad); err == nil {
		t.Error("Expected an invalid preset to fail")
	}
	if err := run("--config-dir", dir, "validate"); err == nil {
		t.Error("Expected the directory scan to report the invalid preset")
	}
}
