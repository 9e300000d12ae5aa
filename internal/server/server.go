package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/studydeck/studydeck/internal/api"
	"github.com/studydeck/studydeck/internal/config"
	"github.com/studydeck/studydeck/internal/home"
	"github.com/studydeck/studydeck/internal/ingest"
	"github.com/studydeck/studydeck/internal/providers"
	"github.com/studydeck/studydeck/internal/quota"
	"github.com/studydeck/studydeck/internal/server/endpoints"
	"github.com/studydeck/studydeck/internal/studyset"
	"github.com/studydeck/studydeck/internal/svcctx"
)

// Server is the main Studydeck HTTP server. It owns the document
// library, study set store, quota store, and provider registry.
type Server struct {
	httpServer *http.Server
	homeDir    *home.Dir
	library    *ingest.Library
	setStore   *studyset.Store
	quotaStore quota.Store
	registry   *providers.Registry
	configMgr  *config.Manager
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
	// Port is the port to listen on (default: 8585)
	Port string
	// DataDir is the Studydeck home directory (default: ~/.studydeck)
	DataDir string
	// ConfigManager provides configuration with hot-reload support
	ConfigManager *config.Manager
	// Logger is the structured logger to use
	Logger *slog.Logger
}

// New creates a new Server with the given configuration.
func New(cfg Config) (*Server, error) {
	if cfg.Host == "" {
		cfg.Host = "127.0.0.1"
	}
	if cfg.Port == "" {
		cfg.Port = "8585"
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	homeDir, err := home.New(cfg.DataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve home directory: %w", err)
	}
	if err := homeDir.EnsureExists(); err != nil {
		return nil, fmt.Errorf("failed to create home directory: %w", err)
	}

	library, err := ingest.NewLibrary(homeDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load document library: %w", err)
	}
	setStore := studyset.NewStore(homeDir)

	// Create provider registry
	registry := providers.NewRegistry()
	registry.SetLogger(cfg.Logger)

	var appCfg *config.Config
	if cfg.ConfigManager != nil {
		appCfg = cfg.ConfigManager.Get()
		registry.Reload(appCfg.ToProviderRegistryConfig())

		// Watch for config changes
		cfg.ConfigManager.OnChange(func(c *config.Config) {
			registry.Reload(c.ToProviderRegistryConfig())
			cfg.Logger.Info("provider registry reloaded from config")
		})
	} else {
		appCfg = config.DefaultConfig()
	}

	quotaStore, err := newQuotaStore(appCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create quota store: %w", err)
	}

	s := &Server{
		homeDir:    homeDir,
		library:    library,
		setStore:   setStore,
		quotaStore: quotaStore,
		registry:   registry,
		configMgr:  cfg.ConfigManager,
		logger:     cfg.Logger,
	}

	s.services = &svcctx.Services{
		Registry:      registry,
		Library:       library,
		StudySetStore: setStore,
		QuotaStore:    quotaStore,
		ConfigManager: cfg.ConfigManager,
		Logger:        cfg.Logger,
		Home:          homeDir,
	}

	// Create endpoint registry and register all endpoints
	s.endpointRegistry = api.NewRegistry()
	for _, ep := range endpoints.All(endpoints.Config{
		QuotaMiddleware: quota.Middleware(quotaStore, cfg.Logger),
		QuotaBackend:    appCfg.Quota.Backend,
		QuotaLimit:      appCfg.Quota.Limit,
		SwaggerSpecPath: endpoints.GetSwaggerSpecPath(),
	}) {
		s.endpointRegistry.Register(ep)
	}

	// Set up HTTP server
	mux := http.NewServeMux()
	s.endpointRegistry.RegisterRoutes(mux, s.requireInit)

	s.httpServer = &http.Server{
		Addr:         net.JoinHostPort(cfg.Host, cfg.Port),
		Handler:      s.withServices(mux),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  120 * time.Second,
	}

	return s, nil
}

// newQuotaStore builds the quota backend named by the config.
func newQuotaStore(cfg *config.Config) (quota.Store, error) {
	qc := cfg.ToQuotaConfig()
	switch cfg.Quota.Backend {
	case "", "memory":
		return quota.NewMemoryStore(qc), nil
	case "redis":
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return quota.NewRedisStore(ctx, quota.RedisConfig{
			Addr:     cfg.Quota.RedisAddr,
			Password: config.ResolveEnvVars(cfg.Quota.RedisPassword),
			DB:       cfg.Quota.RedisDB,
			Quota:    qc,
		})
	default:
		return nil, fmt.Errorf("unknown quota backend %q", cfg.Quota.Backend)
	}
}

// Start starts the HTTP server.
// It blocks until the context is cancelled or an error occurs.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return errors.New("server already running")
	}
	s.running = true
	s.mu.Unlock()

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting HTTP server", "addr", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

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

// shutdown performs graceful shutdown of the HTTP server and quota store.
func (s *Server) shutdown() error {
	s.logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		s.logger.Error("HTTP server shutdown error", "error", err)
	}

	if closer, ok := s.quotaStore.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			s.logger.Error("quota store close error", "error", err)
		}
	}

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

// Addr returns the server's listen address.
func (s *Server) Addr() string {
	return s.httpServer.Addr
}

// Registry returns the provider registry.
func (s *Server) Registry() *providers.Registry {
	return s.registry
}

// Library returns the document library.
func (s *Server) Library() *ingest.Library {
	return s.library
}

// withServices wraps a handler to enrich the request context with services.
func (s *Server) withServices(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if s.services != nil {
			ctx = svcctx.WithServices(ctx, s.services)
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requireInit is middleware that ensures the server is fully initialized.
// Returns 503 Service Unavailable if the library or study set store
// aren't ready.
func (s *Server) requireInit(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.library == nil || s.setStore == nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"error":"server not fully initialized"}`))
			return
		}
		next(w, r)
	}
}
