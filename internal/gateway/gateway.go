// ABOUTME: Gateway construction, dependency wiring, and server lifecycle
// ABOUTME: Builds registry, Genie client, handler, and the HTTP server

package gateway

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/relaykit/genie-relay/internal/bot"
	"github.com/relaykit/genie-relay/internal/config"
	"github.com/relaykit/genie-relay/internal/conversation"
	"github.com/relaykit/genie-relay/internal/genie"
	"github.com/relaykit/genie-relay/internal/session"
)

// Gateway owns the relay's components and its HTTP server.
type Gateway struct {
	config     *config.Config
	logger     *slog.Logger
	registry   session.Registry
	handler    *bot.Handler
	verifier   bot.TokenVerifier
	httpServer *http.Server
}

// New creates a gateway from configuration.
func New(cfg *config.Config, logger *slog.Logger) (*Gateway, error) {
	if logger == nil {
		logger = slog.Default()
	}

	registry, err := initRegistry(cfg)
	if err != nil {
		return nil, fmt.Errorf("creating session registry: %w", err)
	}

	genieClient := genie.NewClient(cfg.Genie.Host, cfg.Genie.Token, cfg.Genie.SpaceID, logger)
	resolver := conversation.New(genieClient, logger)
	connector := bot.NewHTTPConnector(logger)
	handler := bot.NewHandler(registry, resolver, connector, logger)

	var verifier bot.TokenVerifier
	if cfg.Transport.AppSecret != "" {
		verifier = bot.NewJWTVerifier(cfg.Transport.AppID, []byte(cfg.Transport.AppSecret))
	} else {
		logger.Warn("transport authentication disabled: no app_secret configured")
		verifier = bot.AllowAllVerifier{}
	}

	gw := &Gateway{
		config:   cfg,
		logger:   logger.With("component", "gateway"),
		registry: registry,
		handler:  handler,
		verifier: verifier,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/messages", gw.handleMessages)
	mux.HandleFunc("/health", gw.handleHealth)

	gw.httpServer = &http.Server{
		Addr:              cfg.Server.HTTPAddr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return gw, nil
}

// initRegistry builds the configured session registry backend.
func initRegistry(cfg *config.Config) (session.Registry, error) {
	switch cfg.Sessions.Backend {
	case config.SessionBackendSQLite:
		return session.NewSQLiteRegistry(cfg.Sessions.Path)
	default:
		return session.NewMemoryRegistry(cfg.Sessions.TTL, cfg.Sessions.MaxEntries), nil
	}
}

// Run serves HTTP until the context is canceled, then shuts down gracefully.
func (g *Gateway) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		g.logger.Info("HTTP server listening", "addr", g.httpServer.Addr)
		if err := g.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("HTTP server: %w", err)
		}
	}()

	var serverErr error
	select {
	case <-ctx.Done():
		g.logger.Info("context canceled, initiating shutdown")
	case serverErr = <-errCh:
		g.logger.Error("server error", "error", serverErr)
	}

	shutdownErr := g.gracefulShutdown()

	if serverErr != nil {
		return serverErr
	}
	return shutdownErr
}

// gracefulShutdown drains in-flight requests with a fresh context and closes
// the session registry. Uses context.Background() intentionally since the
// original context is already canceled.
func (g *Gateway) gracefulShutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := g.httpServer.Shutdown(ctx)
	if closeErr := g.registry.Close(); closeErr != nil && err == nil {
		err = closeErr
	}
	return err
}

// handleHealth returns 200 OK if the server is alive.
func (g *Gateway) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}
