package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	retry "github.com/avast/retry-go/v4"
	"github.com/spf13/cobra"

	"colacheck/internal/config"
	"colacheck/internal/extract"
	"colacheck/internal/home"
	"colacheck/internal/server"
)

var (
	serveHost string
	servePort int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the colacheck server",
	Long: `Start the colacheck HTTP server.

The server accepts document uploads, dispatches them to the extraction
service with bounded concurrency, and serves verification results.

Endpoints:
  /health            - Basic server health check
  /ready             - Readiness check (includes extraction service)
  /api/documents     - Upload and inspect documents
  /api/results       - Verification results and CSV export

Examples:
  colacheck serve                    # Start on default port 8273
  colacheck serve --port 3000        # Start on custom port
  colacheck serve --host 0.0.0.0     # Bind to all interfaces`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		// Set up logger
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		}))

		// Get home directory
		h, err := home.New(homeDir)
		if err != nil {
			return err
		}
		if err := h.EnsureExists(); err != nil {
			return err
		}

		// Seed a default config on first run
		if cfgFile == "" && !h.ConfigExists() {
			if err := config.WriteDefault(h.ConfigPath()); err != nil {
				return err
			}
			logger.Info("wrote default config", "path", h.ConfigPath())
		}

		path := cfgFile
		if path == "" {
			path = h.ConfigPath()
		}
		cfgMgr, err := config.NewManager(path)
		if err != nil {
			return err
		}
		cfgMgr.WatchConfig()

		extractor, err := newExtractor(cfgMgr.Get(), logger)
		if err != nil {
			return err
		}

		// Wait for the extraction service before accepting work. Transient
		// startup failures are retried; bad credentials fail fast below.
		err = retry.Do(
			func() error { return extractor.HealthCheck(ctx) },
			retry.Context(ctx),
			retry.Attempts(5),
			retry.Delay(1*time.Second),
		)
		if err != nil {
			return fmt.Errorf("extraction service not reachable: %w", err)
		}
		logger.Info("extraction service ready", "client", extractor.Name())

		srv, err := server.New(server.Config{
			Host:          serveHost,
			Port:          servePort,
			Extractor:     extractor,
			ConfigManager: cfgMgr,
			Home:          h,
			Logger:        logger,
		})
		if err != nil {
			return err
		}

		// Start server (blocks until shutdown)
		return srv.Start(ctx)
	},
}

// newExtractor builds the extraction client named by the config.
func newExtractor(cfg *config.Config, logger *slog.Logger) (extract.Extractor, error) {
	switch cfg.Extraction.Type {
	case "mock":
		logger.Warn("using mock extraction client")
		return extract.NewMockExtractor(), nil
	case "openai", "":
		apiKey := cfg.APIKey()
		if apiKey == "" {
			return nil, fmt.Errorf("extraction API key not set (check OPENAI_API_KEY)")
		}
		return extract.NewOpenAIClient(extract.OpenAIConfig{
			APIKey:  apiKey,
			Model:   cfg.Extraction.Model,
			BaseURL: cfg.Extraction.BaseURL,
			Timeout: time.Duration(cfg.Extraction.TimeoutSeconds) * time.Second,
		}), nil
	default:
		return nil, fmt.Errorf("unknown extraction client type %q", cfg.Extraction.Type)
	}
}

func init() {
	serveCmd.Flags().StringVar(&serveHost, "host", "127.0.0.1", "Host to bind to")
	serveCmd.Flags().IntVar(&servePort, "port", 8273, "Port to listen on")

	rootCmd.AddCommand(serveCmd)
}
