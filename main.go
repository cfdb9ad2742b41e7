// Command santorini serves Santorini tables.
//
// Commands:
//  1. "serve" (default) runs the HTTP server: REST API, WebSocket updates and an /mcp endpoint
//  2. "mcp" runs an MCP stdio server and spins up an internal HTTP API if none is available
//  3. "validate" checks preset files
//
// Settings come from SANTORINI_* environment variables (a .env file is
// loaded first); flags override them.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v3"
	"github.com/wricardo/santorini/api"
	"github.com/wricardo/santorini/game/config"
	"github.com/wricardo/santorini/game/service"
	"github.com/wricardo/santorini/game/session"
	"github.com/wricardo/santorini/transport/mcp"
	"github.com/wricardo/santorini/transport/websocket"
	"github.com/wricardo/santorini/validate"
)

// Version information
const (
	Version = "1.0.0"
	AppName = "Santorini Server"
)

// cleanupInterval is how often idle sessions are pruned
const cleanupInterval = time.Hour

func main() {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			log.Printf("Warning: Error loading .env file: %v", err)
		}
	} else {
		log.Println("Loaded environment variables from .env file")
	}

	if err := newCommand().Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

func newCommand() *cli.Command {
	return &cli.Command{
		Name:    "santorini",
		Usage:   AppName,
		Version: Version,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "host", Usage: "HTTP server host (SANTORINI_HOST)"},
			&cli.IntFlag{Name: "port", Usage: "HTTP server port (SANTORINI_PORT)"},
			&cli.StringFlag{Name: "config-dir", Usage: "Directory containing table presets (SANTORINI_CONFIG_DIR)"},
			&cli.StringFlag{Name: "default-preset", Usage: "Preset used when a session names none (SANTORINI_DEFAULT_PRESET)"},
			&cli.DurationFlag{Name: "session-ttl", Usage: "Drop sessions idle for longer than this (SANTORINI_SESSION_TTL)"},
			&cli.DurationFlag{Name: "clock-sweep", Usage: "How often turn clocks are checked (SANTORINI_CLOCK_SWEEP)"},
			&cli.StringFlag{Name: "api-url", Usage: "REST API the mcp command talks to (SANTORINI_API_URL)"},
			&cli.BoolFlag{Name: "debug", Usage: "Enable debug logging (SANTORINI_DEBUG)"},
		},
		Action: runServe,
		Commands: []*cli.Command{
			{
				Name:    "serve",
				Aliases: []string{"server", "http"},
				Usage:   "Run the HTTP server with API, WebSocket and MCP endpoint",
				Action:  runServe,
			},
			{
				Name:    "mcp",
				Aliases: []string{"stdio-mcp", "mcp-stdio"},
				Usage:   "Run an MCP stdio server, with an internal HTTP server when none is reachable",
				Action:  runMCP,
			},
			{
				Name:      "validate",
				Usage:     "Validate preset files (defaults to every preset in the config directory)",
				ArgsUsage: "[FILE...]",
				Action:    runValidate,
			},
		},
	}
}

// loadSettings reads the environment and applies the flags that were set
func loadSettings(cmd *cli.Command) (*config.Settings, error) {
	settings, err := config.LoadSettings()
	if err != nil {
		return nil, err
	}

	if cmd.IsSet("host") {
		settings.Host = cmd.String("host")
	}
	if cmd.IsSet("port") {
		settings.Port = int(cmd.Int("port"))
	}
	if cmd.IsSet("config-dir") {
		settings.ConfigDir = cmd.String("config-dir")
	}
	if cmd.IsSet("default-preset") {
		settings.DefaultPreset = cmd.String("default-preset")
	}
	if cmd.IsSet("session-ttl") {
		settings.SessionTTL = cmd.Duration("session-ttl")
	}
	if cmd.IsSet("clock-sweep") {
		settings.ClockSweep = cmd.Duration("clock-sweep")
		if settings.ClockSweep <= 0 {
			return nil, fmt.Errorf("clock sweep interval must be positive, got %s", settings.ClockSweep)
		}
	}
	if cmd.IsSet("api-url") {
		settings.APIURL = cmd.String("api-url")
	}
	if cmd.IsSet("debug") {
		settings.Debug = cmd.Bool("debug")
	}

	if settings.Debug {
		log.SetFlags(log.LstdFlags | log.Lshortfile)
	} else {
		log.SetFlags(log.LstdFlags)
	}
	return settings, nil
}

// initializeServices wires the session and config managers into the game service
func initializeServices(settings *config.Settings) (service.GameService, *session.Manager, error) {
	configManager, err := config.NewManager(settings.ConfigDir)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create config manager: %w", err)
	}
	if settings.DefaultPreset != "" && settings.DefaultPreset != config.DefaultPreset {
		if err := configManager.SetDefault(settings.DefaultPreset); err != nil {
			return nil, nil, fmt.Errorf("failed to select default preset: %w", err)
		}
	}

	sessionManager := session.NewManager()
	return service.NewGameService(sessionManager, configManager), sessionManager, nil
}

// newHandler combines the REST API and the /mcp endpoint
func newHandler(apiServer http.Handler, mcpClient *mcp.Client) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/", apiServer)

	mux.HandleFunc("/mcp", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "Failed to read request", http.StatusBadRequest)
			return
		}
		defer r.Body.Close()

		response := mcpClient.GetMCPServer().HandleMessage(r.Context(), body)

		w.Header().Set("Content-Type", "application/json")
		responseData, err := json.Marshal(response)
		if err != nil {
			http.Error(w, "Failed to marshal response", http.StatusInternalServerError)
			return
		}
		w.Write(responseData)
	})

	return mux
}

// sweepClocks delivers expired turn clocks and pushes the outcome to watchers
func sweepClocks(ctx context.Context, gameService service.GameService, hub *websocket.Hub) int {
	results, err := gameService.SweepClocks(ctx)
	if err != nil {
		log.Printf("Clock sweep failed: %v", err)
	}
	for _, res := range results {
		if hub != nil {
			hub.Publish(res)
		}
	}
	return len(results)
}

// clockRoutine sweeps turn clocks until ctx is done
func clockRoutine(ctx context.Context, gameService service.GameService, hub *websocket.Hub, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			sweepClocks(ctx, gameService, hub)
		}
	}
}

// sessionCleanupRoutine periodically removes sessions that have not been
// accessed within the retention window
func sessionCleanupRoutine(ctx context.Context, manager *session.Manager, ttl time.Duration) {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := manager.CleanupExpiredSessions(ttl); removed > 0 {
				log.Printf("Cleaned up %d expired sessions", removed)
			}
		}
	}
}

// runServe starts the HTTP server with REST API, WebSocket hub and /mcp endpoint
func runServe(ctx context.Context, cmd *cli.Command) error {
	settings, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	log.Printf("Starting %s v%s", AppName, Version)

	gameService, sessionManager, err := initializeServices(settings)
	if err != nil {
		return fmt.Errorf("failed to initialize services: %w", err)
	}

	hub := websocket.NewHub()
	go hub.Run()

	addr := settings.Addr()
	handler := newHandler(api.NewServer(gameService, hub), mcp.NewClient(fmt.Sprintf("http://%s", addr)))

	httpServer := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		clockRoutine(ctx, gameService, hub, settings.ClockSweep)
	}()
	go func() {
		defer wg.Done()
		sessionCleanupRoutine(ctx, sessionManager, settings.SessionTTL)
	}()

	serveErr := make(chan error, 1)
	go func() {
		log.Printf("HTTP server listening on %s", addr)
		log.Printf("REST API: http://%s/api", addr)
		log.Printf("WebSocket: ws://%s/ws?session=<session_id>", addr)
		log.Printf("MCP endpoint: http://%s/mcp", addr)

		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			stop()
			wg.Wait()
			return fmt.Errorf("HTTP server failed: %w", err)
		}
	case <-ctx.Done():
		log.Println("Shutting down...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
	}

	stop()
	wg.Wait()
	log.Println("Server stopped")
	return nil
}

// runMCP runs an MCP stdio server. It reuses the API at the configured base
// URL when it answers; otherwise it starts an internal HTTP API bound to a
// random loopback port and targets that.
func runMCP(ctx context.Context, cmd *cli.Command) error {
	settings, err := loadSettings(cmd)
	if err != nil {
		return err
	}

	// stdout carries the protocol
	log.SetOutput(os.Stderr)

	baseURL := settings.BaseURL()
	log.Printf("Checking for external API server at %s...", baseURL)

	testClient := &http.Client{Timeout: 2 * time.Second}
	resp, err := testClient.Get(baseURL + "/health")
	if err == nil {
		resp.Body.Close()
	}
	if err == nil && resp.StatusCode < 500 {
		log.Printf("External API server found at %s, using it for MCP", baseURL)
	} else {
		log.Printf("No external API server found, starting internal HTTP server")

		gameService, sessionManager, err := initializeServices(settings)
		if err != nil {
			return fmt.Errorf("failed to initialize services: %w", err)
		}

		listener, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			return fmt.Errorf("failed to get available port: %w", err)
		}
		internalAddr := listener.Addr().String()
		log.Printf("Starting internal HTTP server on %s for MCP stdio", internalAddr)

		hub := websocket.NewHub()
		go hub.Run()

		ctx, cancel := context.WithCancel(ctx)
		defer cancel()
		go clockRoutine(ctx, gameService, hub, settings.ClockSweep)
		go sessionCleanupRoutine(ctx, sessionManager, settings.SessionTTL)

		httpServer := &http.Server{Handler: api.NewServer(gameService, hub)}
		go func() {
			if err := httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Printf("Internal HTTP server error: %v", err)
			}
		}()
		defer httpServer.Close()

		baseURL = fmt.Sprintf("http://%s", internalAddr)
	}

	log.Printf("MCP stdio server ready (API at %s)", baseURL)
	return mcp.NewClient(baseURL).ServeStdio()
}

// runValidate validates the named preset files, or the whole config directory
func runValidate(ctx context.Context, cmd *cli.Command) error {
	settings, err := loadSettings(cmd)
	if err != nil {
		return err
	}

	var results []validate.Result
	if files := cmd.Args().Slice(); len(files) > 0 {
		for _, file := range files {
			results = append(results, validate.File(file))
		}
	} else {
		results, err = validate.Dir(settings.ConfigDir)
		if err != nil {
			return err
		}
	}

	if !validate.Report(os.Stdout, results) {
		return cli.Exit("", 1)
	}
	return nil
}
