package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"colacheck/internal/api"
	"colacheck/internal/config"
	"colacheck/internal/dispatch"
	"colacheck/internal/extract"
	"colacheck/internal/home"
	"colacheck/internal/records"
	"colacheck/internal/server/endpoints"
	"colacheck/internal/svcctx"
)

// Server is the main colacheck HTTP server. It owns the record store and the
// extraction dispatcher for the lifetime of the process.
type Server struct {
	httpServer *http.Server
	store      *records.Store
	dispatcher *dispatch.Dispatcher
	extractor  extract.Extractor
	configMgr  *config.Manager
	homeDir    *home.Dir
	logger     *slog.Logger

	// services holds all core services for context enrichment
	services *svcctx.Services

	// endpoints registry for HTTP routes
	endpointRegistry *api.Registry

	mu      sync.RWMutex
	running bool
}

// Config holds server configuration.
type Config struct {
	// Host is the address to bind to (default: 127.0.0.1)
	Host string
	// Port is the port to listen on (default: 8273)
	Port int
	// Extractor is the extraction-service client to dispatch against.
	Extractor extract.Extractor
	// ConfigManager provides configuration with hot-reload support
	ConfigManager *config.Manager
	// Home is the colacheck home directory
	Home *home.Dir
	// Logger is the structured logger to use
	Logger *slog.Logger
}

// New creates a new Server with the given configuration.
func New(cfg Config) (*Server, error) {
	if cfg.Host == "" {
		cfg.Host = "127.0.0.1"
	}
	if cfg.Port == 0 {
		cfg.Port = 8273
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Extractor == nil {
		return nil, errors.New("extractor is required")
	}

	store := records.NewStore()

	dispatcherCfg := dispatch.Config{Logger: cfg.Logger}
	if cfg.ConfigManager != nil {
		dc := cfg.ConfigManager.Get().Dispatcher
		dispatcherCfg.Workers = dc.Workers
		dispatcherCfg.QueueSize = dc.QueueSize
		dispatcherCfg.Timeout = time.Duration(dc.TimeoutSeconds) * time.Second
	}

	s := &Server{
		store:      store,
		dispatcher: dispatch.New(store, cfg.Extractor, dispatcherCfg),
		extractor:  cfg.Extractor,
		configMgr:  cfg.ConfigManager,
		homeDir:    cfg.Home,
		logger:     cfg.Logger,
	}

	s.services = &svcctx.Services{
		Store:         s.store,
		Dispatcher:    s.dispatcher,
		Extractor:     s.extractor,
		ConfigManager: s.configMgr,
		Logger:        s.logger,
		Home:          s.homeDir,
	}

	// Create endpoint registry and register all endpoints
	s.endpointRegistry = api.NewRegistry()
	for _, ep := range endpoints.All() {
		s.endpointRegistry.Register(ep)
	}

	// Set up HTTP server
	mux := http.NewServeMux()
	s.endpointRegistry.RegisterRoutes(mux, s.requireInit)

	s.httpServer = &http.Server{
		Addr:         net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
		Handler:      s.withServices(mux),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	return s, nil
}

// Start starts the dispatcher workers and the HTTP server.
// It blocks until the context is cancelled or an error occurs.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return errors.New("server already running")
	}
	s.running = true
	s.mu.Unlock()

	if s.homeDir != nil {
		if err := s.homeDir.EnsureExists(); err != nil {
			s.setNotRunning()
			return fmt.Errorf("failed to prepare home directory: %w", err)
		}
	}

	// Dispatcher workers stop when ctx is cancelled.
	s.dispatcher.Start(ctx)

	// Start HTTP server in goroutine
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting HTTP server", "addr", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	// Wait for context cancellation or error
	select {
	case <-ctx.Done():
		s.logger.Info("shutdown signal received")
	case err := <-errCh:
		if err != nil {
			s.setNotRunning()
			return fmt.Errorf("HTTP server error: %w", err)
		}
	}

	return s.shutdown()
}

// shutdown performs graceful shutdown of the HTTP server and waits for
// dispatcher workers to exit.
func (s *Server) shutdown() error {
	s.logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		s.logger.Error("HTTP server shutdown error", "error", err)
	}

	s.dispatcher.Wait()

	s.setNotRunning()
	s.logger.Info("server stopped")
	return nil
}

func (s *Server) setNotRunning() {
	s.mu.Lock()
	s.running = false
	s.mu.Unlock()
}

// IsRunning returns whether the server is currently running.
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}

// Store returns the record store.
func (s *Server) Store() *records.Store {
	return s.store
}

// Dispatcher returns the extraction dispatcher.
func (s *Server) Dispatcher() *dispatch.Dispatcher {
	return s.dispatcher
}

// Addr returns the server's listen address.
func (s *Server) Addr() string {
	return s.httpServer.Addr
}

// Handler returns the server's root HTTP handler, for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}
