package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/giantswarm/mcp-service-objects/internal/instrumentation"
	"github.com/giantswarm/mcp-service-objects/internal/server"
	"github.com/giantswarm/mcp-service-objects/internal/server/middleware"
)

// runStreamableHTTPServer serves the MCP endpoint and health checks until ctx
// is cancelled, then shuts down within config.ShutdownTimeout.
func runStreamableHTTPServer(ctx context.Context, mcpSrv *mcpserver.MCPServer, config ServeConfig, provider *instrumentation.Provider, sc *server.ServerContext) error {
	handler, healthChecker, err := newHTTPHandler(mcpSrv, config, provider, sc)
	if err != nil {
		return err
	}

	var metricsServer *server.MetricsServer
	if config.Metrics.Enabled && provider.Enabled() {
		metricsServer, err = startMetricsServer(config.Metrics, provider)
		if err != nil {
			return fmt.Errorf("failed to start metrics server: %w", err)
		}
	}

	httpServer := &http.Server{
		Addr:              config.HTTPAddr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      120 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	slog.Info("streamable HTTP server starting",
		slog.String("addr", config.HTTPAddr),
		slog.String("endpoint", config.HTTPEndpoint),
		slog.Any("health_endpoints", []string{"/healthz", "/readyz", "/healthz/detailed"}))

	serverDone := make(chan error, 1)
	go func() {
		defer close(serverDone)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverDone <- err
		}
	}()

	select {
	case <-ctx.Done():
		slog.Info("shutdown signal received, stopping HTTP server")
		healthChecker.SetReady(false)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), config.ShutdownTimeout)
		defer cancel()

		if metricsServer != nil {
			if err := metricsServer.Shutdown(shutdownCtx); err != nil {
				slog.Error("error shutting down metrics server", slog.Any("error", err))
			}
		}
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("error shutting down HTTP server: %w", err)
		}
	case err := <-serverDone:
		if metricsServer != nil {
			_ = metricsServer.Shutdown(context.Background())
		}
		if err != nil {
			return fmt.Errorf("HTTP server stopped with error: %w", err)
		}
		slog.Info("HTTP server stopped normally")
	}

	slog.Info("HTTP server gracefully stopped")
	return nil
}

// newHTTPHandler builds the routed and wrapped handler of the streamable
// HTTP transport.
func newHTTPHandler(mcpSrv *mcpserver.MCPServer, config ServeConfig, provider *instrumentation.Provider, sc *server.ServerContext) (http.Handler, *server.HealthChecker, error) {
	origins, err := middleware.ParseAllowedOrigins(config.AllowedOrigins)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid allowed origins: %w", err)
	}

	mux := http.NewServeMux()
	mux.Handle(config.HTTPEndpoint, mcpserver.NewStreamableHTTPServer(mcpSrv,
		mcpserver.WithEndpointPath(config.HTTPEndpoint),
	))

	healthChecker := server.NewHealthChecker(sc)
	healthChecker.RegisterHealthEndpoints(mux)

	var handler http.Handler = mux
	handler = middleware.CORS(origins)(handler)
	handler = middleware.SecurityHeaders(config.EnableHSTS)(handler)
	if provider.Enabled() {
		handler = middleware.HTTPMetrics(provider.Metrics())(handler)
	}
	return handler, healthChecker, nil
}

// startMetricsServer starts /metrics on its own listener in the background.
func startMetricsServer(config MetricsServeConfig, provider *instrumentation.Provider) (*server.MetricsServer, error) {
	metricsServer, err := server.NewMetricsServer(server.MetricsServerConfig{
		Addr:                    config.Addr,
		InstrumentationProvider: provider,
		Logger:                  slog.Default(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create metrics server: %w", err)
	}

	go func() {
		if err := metricsServer.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("metrics server error", slog.Any("error", err))
		}
	}()

	slog.Info("metrics server started", slog.String("addr", config.Addr), slog.String("endpoint", "/metrics"))
	return metricsServer, nil
}
