// Command game2048 starts the 2048 game server.
//
// It supports two modes:
//  1. "server" (default) – runs the HTTP server exposing REST API, WebSocket, and an /mcp HTTP endpoint
//  2. "stdio-mcp" – runs an MCP stdio server and spins up an internal HTTP API if none is available
//
// Settings come from flags, their environment variables, a .env file and an
// optional TOML settings file (see package settings).
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"
	"golang.ngrok.com/ngrok"
	ngrokConfig "golang.ngrok.com/ngrok/config"

	"github.com/wricardo/mcp-training/game2048/api"
	"github.com/wricardo/mcp-training/game2048/game/config"
	"github.com/wricardo/mcp-training/game2048/game/ledger"
	"github.com/wricardo/mcp-training/game2048/game/service"
	"github.com/wricardo/mcp-training/game2048/game/session"
	"github.com/wricardo/mcp-training/game2048/logging"
	"github.com/wricardo/mcp-training/game2048/settings"
	"github.com/wricardo/mcp-training/game2048/transport/mcp"
	"github.com/wricardo/mcp-training/game2048/transport/websocket"
)

// Version information
const (
	Version = "1.0.0"
	AppName = "2048 Game Server"
)

const (
	defaultAPIURL   = "http://localhost:8080"
	cleanupInterval = time.Hour
	shutdownTimeout = 10 * time.Second
)

func main() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "Warning: error loading .env file: %v\n", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newCommand().Run(ctx, os.Args); err != nil {
		log.Error().Err(err).Msg("exiting")
		os.Exit(1)
	}
}

// newCommand builds the CLI. The root action runs the HTTP server.
func newCommand() *cli.Command {
	defaults := settings.Defaults()

	return &cli.Command{
		Name:    "game2048",
		Usage:   AppName,
		Version: Version,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "host", Value: defaults.Host, Usage: "HTTP server host", Sources: cli.EnvVars("HOST")},
			&cli.IntFlag{Name: "port", Value: defaults.Port, Usage: "HTTP server port", Sources: cli.EnvVars("PORT")},
			&cli.StringFlag{Name: "config-dir", Value: defaults.ConfigDir, Usage: "directory containing grid-size configs", Sources: cli.EnvVars("CONFIG_DIR")},
			&cli.StringFlag{Name: "data-dir", Value: defaults.DataDir, Usage: "directory for saved games and the score ledger", Sources: cli.EnvVars("DATA_DIR")},
			&cli.StringFlag{Name: "ledger", Value: defaults.LedgerBackend, Usage: "score ledger backend (file or sqlite)", Sources: cli.EnvVars("LEDGER_BACKEND")},
			&cli.StringFlag{Name: "log-level", Value: defaults.LogLevel, Usage: "log level (debug, info, warn, error)", Sources: cli.EnvVars("LOG_LEVEL")},
			&cli.StringFlag{Name: "log-format", Value: defaults.LogFormat, Usage: "log format (console or json)", Sources: cli.EnvVars("LOG_FORMAT")},
			&cli.BoolFlag{Name: "debug", Usage: "shorthand for --log-level debug"},
			&cli.DurationFlag{Name: "session-ttl", Value: defaults.SessionTTL, Usage: "drop sessions idle for longer than this (0 disables)", Sources: cli.EnvVars("SESSION_TTL")},
			&cli.StringFlag{Name: "settings", Value: settings.DefaultPath(), Usage: "TOML settings file", Sources: cli.EnvVars("GAME2048_SETTINGS")},
			&cli.BoolFlag{Name: "ngrok", Usage: "enable ngrok tunnel", Sources: cli.EnvVars("NGROK_ENABLED")},
			&cli.StringFlag{Name: "ngrok-auth", Usage: "ngrok auth token", Sources: cli.EnvVars("NGROK_AUTHTOKEN", "NGROK_AUTH_TOKEN")},
			&cli.StringFlag{Name: "ngrok-domain", Usage: "custom ngrok domain", Sources: cli.EnvVars("NGROK_DOMAIN")},
		},
		Action: runServerCommand,
		Commands: []*cli.Command{
			{
				Name:    "server",
				Aliases: []string{"http"},
				Usage:   "run HTTP server with API, WebSocket, and MCP endpoint",
				Action:  runServerCommand,
			},
			{
				Name:    "stdio-mcp",
				Aliases: []string{"mcp-stdio", "mcp"},
				Usage:   "run MCP stdio server, starting an internal HTTP API when none is reachable",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "api-url", Value: defaultAPIURL, Usage: "external API to reuse when it is reachable", Sources: cli.EnvVars("GAME2048_API_URL")},
				},
				Action: runStdioCommand,
			},
		},
	}
}

// settingFlags lists every flag that has a counterpart in the settings file
var settingFlags = []string{
	"host", "port", "config-dir", "data-dir", "ledger", "log-level", "log-format",
	"session-ttl", "ngrok", "ngrok-auth", "ngrok-domain",
}

// loadSettings merges flag values with the settings file. Explicit flags and
// environment variables win over the file.
func loadSettings(cmd *cli.Command) (settings.Settings, error) {
	s := settings.Settings{
		Host:          cmd.String("host"),
		Port:          int(cmd.Int("port")),
		ConfigDir:     cmd.String("config-dir"),
		DataDir:       cmd.String("data-dir"),
		LedgerBackend: cmd.String("ledger"),
		LogLevel:      cmd.String("log-level"),
		LogFormat:     cmd.String("log-format"),
		SessionTTL:    cmd.Duration("session-ttl"),
		Ngrok: settings.NgrokSettings{
			Enabled:   cmd.Bool("ngrok"),
			AuthToken: cmd.String("ngrok-auth"),
			Domain:    cmd.String("ngrok-domain"),
		},
	}

	changed := make(map[string]bool, len(settingFlags))
	for _, name := range settingFlags {
		changed[name] = cmd.IsSet(name)
	}

	path := cmd.String("settings")
	switch {
	case path == "":
	case settings.FileExists(path):
		fs, err := settings.LoadFile(path)
		if err != nil {
			return s, err
		}
		if err := s.ApplyFile(fs, changed); err != nil {
			return s, err
		}
	case cmd.IsSet("settings"):
		return s, fmt.Errorf("settings file %s not found", path)
	}

	if cmd.Bool("debug") {
		s.LogLevel = "debug"
	}
	return s, s.Validate()
}

// app holds the long-lived services shared by both modes
type app struct {
	settings settings.Settings
	configs  *config.Manager
	sessions *session.Manager
	scores   ledger.Ledger
	service  service.GameService
}

// initializeServices wires config, persistence, sessions and the game service.
// It also starts the config watcher and the idle session cleanup routine.
func initializeServices(ctx context.Context, s settings.Settings) (*app, error) {
	configManager, err := config.NewManager(s.ConfigDir)
	if err != nil {
		return nil, fmt.Errorf("failed to create config manager: %w", err)
	}
	if err := configManager.Watch(ctx, config.DefaultWatchDebounce); err != nil {
		log.Warn().Err(err).Msg("config hot reload disabled")
	}

	snapshots, err := session.NewFileSnapshotStore(s.DataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to create saved games store: %w", err)
	}

	scores, err := ledger.Open(s.LedgerBackend, s.LedgerPath())
	if err != nil {
		return nil, fmt.Errorf("failed to open score ledger: %w", err)
	}

	sessionManager := session.NewManager(snapshots, scores)
	gameService := service.NewGameService(sessionManager, configManager)

	if s.SessionTTL > 0 {
		go sessionCleanupRoutine(ctx, sessionManager, cleanupInterval, s.SessionTTL)
	}

	log.Info().
		Str("config_dir", s.ConfigDir).
		Str("data_dir", s.DataDir).
		Str("ledger", s.LedgerPath()).
		Msg("services initialized")

	return &app{
		settings: s,
		configs:  configManager,
		sessions: sessionManager,
		scores:   scores,
		service:  gameService,
	}, nil
}

// Close releases the score ledger
func (a *app) Close() error {
	return a.scores.Close()
}

// sessionCleanupRoutine periodically removes sessions that have not been
// accessed within ttl.
func sessionCleanupRoutine(ctx context.Context, manager *session.Manager, every, ttl time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := manager.CleanupExpiredSessions(ttl); removed > 0 {
				log.Info().Int("removed", removed).Msg("cleaned up expired sessions")
			}
		}
	}
}

// setup resolves settings, configures logging and builds the services
func setup(ctx context.Context, cmd *cli.Command, mode string) (*app, error) {
	s, err := loadSettings(cmd)
	if err != nil {
		return nil, err
	}
	if err := logging.Setup(s.LogLevel, s.LogFormat, os.Stderr); err != nil {
		return nil, err
	}
	log.Info().Str("version", Version).Str("mode", mode).Msgf("starting %s", AppName)

	return initializeServices(ctx, s)
}

func runServerCommand(ctx context.Context, cmd *cli.Command) error {
	a, err := setup(ctx, cmd, "server")
	if err != nil {
		return err
	}
	defer a.Close()
	return runHTTPServer(ctx, a)
}

func runStdioCommand(ctx context.Context, cmd *cli.Command) error {
	a, err := setup(ctx, cmd, "stdio-mcp")
	if err != nil {
		return err
	}
	defer a.Close()
	return runStdioMCP(ctx, a, cmd.String("api-url"))
}

// newMCPHandler serves single JSON-RPC messages over HTTP POST
func newMCPHandler(client *mcp.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
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

		response := client.GetMCPServer().HandleMessage(r.Context(), body)

		w.Header().Set("Content-Type", "application/json")
		responseData, err := json.Marshal(response)
		if err != nil {
			http.Error(w, "Failed to marshal response", http.StatusInternalServerError)
			return
		}
		w.Write(responseData)
	}
}

// newRootHandler mounts the REST API, WebSocket and the /mcp endpoint
func newRootHandler(a *app, hub *websocket.Hub, baseURL string) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/", api.NewServer(a.service, hub))
	mux.HandleFunc("/mcp", newMCPHandler(mcp.NewClient(baseURL)))
	return mux
}

// runHTTPServer serves until ctx is cancelled, then shuts down gracefully.
// If ngrok is enabled it also serves through a public tunnel.
func runHTTPServer(ctx context.Context, a *app) error {
	hub := websocket.NewHub()
	go hub.Run(ctx)

	addr := a.settings.Addr()
	handler := newRootHandler(a, hub, "http://"+addr)

	httpServer := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	var wg sync.WaitGroup
	serveErr := make(chan error, 1)

	wg.Add(1)
	go func() {
		defer wg.Done()

		log.Info().
			Str("addr", addr).
			Str("api", fmt.Sprintf("http://%s/api", addr)).
			Str("websocket", fmt.Sprintf("ws://%s/ws?session=<session_id>", addr)).
			Str("mcp", fmt.Sprintf("http://%s/mcp", addr)).
			Msg("HTTP server listening")

		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	if a.settings.Ngrok.Enabled {
		wg.Add(1)
		go func() {
			defer wg.Done()
			runNgrokTunnel(ctx, a.settings.Ngrok, handler)
		}()
	}

	var err error
	select {
	case <-ctx.Done():
		log.Info().Msg("shutting down")
	case err = <-serveErr:
		log.Error().Err(err).Msg("HTTP server failed")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if shutdownErr := httpServer.Shutdown(shutdownCtx); shutdownErr != nil {
		log.Error().Err(shutdownErr).Msg("HTTP server shutdown error")
	}

	wg.Wait()
	log.Info().Msg("server stopped")
	return err
}

// runNgrokTunnel exposes handler through ngrok until ctx is cancelled
func runNgrokTunnel(ctx context.Context, s settings.NgrokSettings, handler http.Handler) {
	if s.AuthToken == "" {
		log.Warn().Msg("ngrok enabled but no auth token provided (use --ngrok-auth, NGROK_AUTHTOKEN, or NGROK_AUTH_TOKEN)")
		return
	}

	var opts []ngrokConfig.HTTPEndpointOption
	if s.Domain != "" {
		opts = append(opts, ngrokConfig.WithDomain(s.Domain))
		log.Info().Str("domain", s.Domain).Msg("using custom ngrok domain")
	}

	log.Info().Msg("starting ngrok tunnel")
	tun, err := ngrok.Listen(ctx, ngrokConfig.HTTPEndpoint(opts...), ngrok.WithAuthtoken(s.AuthToken))
	if err != nil {
		log.Error().Err(err).Msg("failed to start ngrok tunnel")
		return
	}

	go func() {
		<-ctx.Done()
		if err := tun.Close(); err != nil {
			log.Error().Err(err).Msg("failed to close ngrok tunnel")
		}
	}()

	url := tun.URL()
	log.Info().
		Str("url", url).
		Str("api", url+"/api").
		Str("websocket", url+"/ws?session=<session_id>").
		Str("mcp", url+"/mcp").
		Msg("ngrok tunnel established")

	if err := http.Serve(tun, handler); err != nil && !errors.Is(err, http.ErrServerClosed) && ctx.Err() == nil {
		log.Error().Err(err).Msg("ngrok server error")
	}
	log.Info().Msg("ngrok tunnel closed")
}

// externalAPIAvailable reports whether an API server answers its health check at baseURL
func externalAPIAvailable(ctx context.Context, baseURL string) bool {
	if baseURL == "" {
		return false
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, strings.TrimSuffix(baseURL, "/")+"/api/health", nil)
	if err != nil {
		return false
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

// startInternalServer serves the API on a random loopback port and returns its base URL
func startInternalServer(ctx context.Context, a *app) (string, *http.Server, error) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return "", nil, fmt.Errorf("failed to get available port: %w", err)
	}
	baseURL := "http://" + listener.Addr().String()

	hub := websocket.NewHub()
	go hub.Run(ctx)

	httpServer := &http.Server{Handler: api.NewServer(a.service, hub)}
	go func() {
		if err := httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("internal HTTP server error")
		}
	}()

	return baseURL, httpServer, nil
}

// runStdioMCP runs an MCP stdio server. It reuses the API at externalURL when
// reachable and otherwise starts an internal one.
func runStdioMCP(ctx context.Context, a *app, externalURL string) error {
	baseURL := externalURL
	if externalAPIAvailable(ctx, externalURL) {
		log.Info().Str("url", externalURL).Msg("external API server found, using it for MCP")
	} else {
		log.Info().Msg("no external API server found, starting internal HTTP server")

		var httpServer *http.Server
		var err error
		baseURL, httpServer, err = startInternalServer(ctx, a)
		if err != nil {
			return err
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			httpServer.Shutdown(shutdownCtx)
		}()
		log.Info().Str("url", baseURL).Msg("internal HTTP server started")
	}

	log.Info().Str("api", baseURL).Msg("MCP stdio server ready")
	if err := server.ServeStdio(mcp.NewClient(baseURL).GetMCPServer()); err != nil {
		return fmt.Errorf("MCP stdio server error: %w", err)
	}
	return nil
}
