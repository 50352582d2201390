// ABOUTME: Gateway orchestrator that wires the store, services, and TLS server
// ABOUTME: Manages the listener, session purge loop, and graceful shutdown

package gateway

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/2389/vault-gateway/internal/api"
	"github.com/2389/vault-gateway/internal/auth"
	"github.com/2389/vault-gateway/internal/config"
	"github.com/2389/vault-gateway/internal/store"
	"github.com/2389/vault-gateway/internal/vault"
)

// ErrMissingTLSMaterial is returned when the configured certificate or key
// file cannot be loaded. The server never falls back to plaintext HTTP.
var ErrMissingTLSMaterial = errors.New("TLS certificate and key are required")

// Gateway orchestrates the vault-gateway server components.
// It owns the store, the auth and vault services, and the HTTPS server.
type Gateway struct {
	config     *config.Config
	store      store.Store
	auth       *auth.Service
	vault      *vault.Service
	httpServer *http.Server
	logger     *slog.Logger
}

// initStore creates and returns a store based on config and environment.
func initStore(cfg *config.Config) (store.Store, error) {
	dbPath := cfg.Database.Path
	if envPath := os.Getenv("VAULT_GATEWAY_DB_PATH"); envPath != "" {
		dbPath = envPath
	}

	s, err := store.NewSQLiteStore(dbPath)
	if err != nil {
		return nil, fmt.Errorf("initializing store: %w", err)
	}
	return s, nil
}

// buildMux mounts the API handler and, when a docroot is configured, a
// static file server for everything outside /api/.
func buildMux(apiHandler *api.Handler, docroot string, logger *slog.Logger) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/api/", apiHandler)

	if docroot != "" {
		mux.Handle("/", http.FileServer(http.Dir(docroot)))
		logger.Info("static file serving enabled", "docroot", docroot)
	} else {
		mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
			http.NotFound(w, r)
		})
	}

	return mux
}

// New creates a new Gateway instance with the given configuration.
func New(cfg *config.Config, logger *slog.Logger) (*Gateway, error) {
	s, err := initStore(cfg)
	if err != nil {
		return nil, err
	}

	authService := auth.NewService(s, cfg.Auth.SessionTTL)
	vaultService := vault.NewService(s)
	apiHandler := api.NewHandler(authService, vaultService)

	gw := &Gateway{
		config: cfg,
		store:  s,
		auth:   authService,
		vault:  vaultService,
		logger: logger.With("component", "gateway"),
	}

	gw.httpServer = &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           buildMux(apiHandler, cfg.Server.Docroot, gw.logger),
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       30 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		ErrorLog:          slog.NewLogLogger(gw.logger.Handler(), slog.LevelWarn),
	}

	return gw, nil
}

// setupListener creates the TLS listener from the configured PEM material.
func (g *Gateway) setupListener() (net.Listener, error) {
	if g.config.Server.CertFile == "" || g.config.Server.KeyFile == "" {
		return nil, ErrMissingTLSMaterial
	}

	cert, err := tls.LoadX509KeyPair(g.config.Server.CertFile, g.config.Server.KeyFile)
	if err != nil {
		return nil, fmt.Errorf("loading TLS key pair %s/%s: %w",
			g.config.Server.CertFile, g.config.Server.KeyFile, ErrMissingTLSMaterial)
	}

	ln, err := net.Listen("tcp", g.config.Server.Addr)
	if err != nil {
		return nil, fmt.Errorf("listening on %s: %w", g.config.Server.Addr, err)
	}

	return tls.NewListener(ln, &tls.Config{
		Certificates: []tls.Certificate{cert},
		MinVersion:   tls.VersionTLS12,
	}), nil
}

// startServer serves on the listener in a goroutine, returning error channel.
func (g *Gateway) startServer(ln net.Listener) chan error {
	errCh := make(chan error, 1)

	go func() {
		g.logger.Info("HTTPS server listening", "addr", ln.Addr().String())
		if err := g.httpServer.Serve(ln); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("HTTPS server: %w", err)
		}
	}()

	return errCh
}

// startPurgeLoop sweeps expired sessions on the configured interval until
// the context is canceled.
func (g *Gateway) startPurgeLoop(ctx context.Context) {
	interval := g.config.Auth.PurgeInterval
	if interval <= 0 {
		interval = config.DefaultPurgeInterval
	}

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if _, err := g.auth.PurgeExpiredSessions(ctx); err != nil && ctx.Err() == nil {
					g.logger.Error("session purge failed", "error", err)
				}
			}
		}
	}()
}

// waitForShutdownSignal waits for context cancellation or a server error.
func (g *Gateway) waitForShutdownSignal(ctx context.Context, errCh chan error) error {
	select {
	case <-ctx.Done():
		g.logger.Info("context canceled, initiating shutdown")
		return nil
	case err := <-errCh:
		g.logger.Error("server error", "error", err)
		return err
	}
}

// Run starts the gateway server and blocks until the context is canceled.
// Returns nil on graceful shutdown (context canceled), or an error if the
// server fails.
func (g *Gateway) Run(ctx context.Context) error {
	ln, err := g.setupListener()
	if err != nil {
		_ = g.store.Close()
		return err
	}

	g.startPurgeLoop(ctx)
	errCh := g.startServer(ln)
	serverErr := g.waitForShutdownSignal(ctx, errCh)

	shutdownErr := g.gracefulShutdown()

	if serverErr != nil {
		return serverErr
	}
	return shutdownErr
}

// gracefulShutdown performs shutdown with a fresh context and timeout.
// Uses context.Background() intentionally since the original context is already canceled.
func (g *Gateway) gracefulShutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return g.Shutdown(ctx)
}

// Shutdown gracefully stops the server and releases resources.
func (g *Gateway) Shutdown(ctx context.Context) error {
	g.logger.Info("shutting down gateway")

	var errs []error
	if err := g.httpServer.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("HTTP shutdown: %w", err))
	}
	if err := g.store.Close(); err != nil {
		errs = append(errs, fmt.Errorf("store close: %w", err))
	}

	if len(errs) > 0 {
		return fmt.Errorf("shutdown errors: %v", errs)
	}
	return nil
}
