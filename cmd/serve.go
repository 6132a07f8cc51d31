package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/giantswarm/mcp-service-objects/internal/instrumentation"
	"github.com/giantswarm/mcp-service-objects/internal/server"
	"github.com/giantswarm/mcp-service-objects/internal/tools/objects"
)

func newServeCmd() *cobra.Command {
	config := ServeConfig{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP service objects server",
		Long: `Start the MCP server that lists the Kubernetes objects of a service
across the configured clusters.

Supports two transport types:
  - stdio: Standard input/output (default)
  - streamable-http: Streamable HTTP transport, with /healthz and /readyz

Clusters and client settings are read from the config file; see
'mcp-service-objects clusters' to check what is configured.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			loadServeEnv(cmd, &config)
			return runServe(cmd.Context(), config)
		},
	}

	cmd.Flags().StringVar(&config.Transport, "transport", transportStdio, "Transport type: stdio or streamable-http")
	cmd.Flags().StringVar(&config.HTTPAddr, "http-addr", ":8080", "HTTP server address (for streamable-http transport)")
	cmd.Flags().StringVar(&config.HTTPEndpoint, "http-endpoint", "/mcp", "HTTP endpoint path (for streamable-http transport)")
	cmd.Flags().IntVar(&config.ClusterConcurrency, "cluster-concurrency", 0, "Maximum clusters queried at once per request, 0 for no limit (can also be set via CLUSTER_CONCURRENCY env var)")
	cmd.Flags().DurationVar(&config.ShutdownTimeout, "shutdown-timeout", server.DefaultShutdownTimeout, "Graceful shutdown timeout for HTTP servers (can also be set via SHUTDOWN_TIMEOUT env var)")
	cmd.Flags().BoolVar(&config.EnableHSTS, "enable-hsts", false, "Always send Strict-Transport-Security, e.g. behind a TLS-terminating proxy (can also be set via ENABLE_HSTS env var)")
	cmd.Flags().StringVar(&config.AllowedOrigins, "allowed-origins", "", "Comma separated CORS origins for browser clients (can also be set via ALLOWED_ORIGINS env var)")
	cmd.Flags().BoolVar(&config.Metrics.Enabled, "enable-metrics", true, "Serve Prometheus metrics on a separate listener when instrumentation is enabled")
	cmd.Flags().StringVar(&config.Metrics.Addr, "metrics-addr", server.DefaultMetricsAddr, "Metrics server address (can also be set via METRICS_ADDR env var)")

	return cmd
}

func runServe(ctx context.Context, config ServeConfig) error {
	switch config.Transport {
	case transportStdio, transportStreamableHTTP:
	default:
		return fmt.Errorf("unsupported transport type: %s (supported: %s, %s)", config.Transport, transportStdio, transportStreamableHTTP)
	}

	if ctx == nil {
		ctx = context.Background()
	}
	shutdownCtx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	logger := slog.Default()

	instrumentationConfig := instrumentation.DefaultConfig()
	instrumentationConfig.ServiceVersion = rootCmd.Version
	provider, err := instrumentation.NewProvider(shutdownCtx, instrumentationConfig)
	if err != nil {
		return fmt.Errorf("failed to create instrumentation provider: %w", err)
	}
	defer func() {
		if err := provider.Shutdown(context.Background()); err != nil {
			logger.Error("error during instrumentation shutdown", slog.Any("error", err))
		}
	}()

	if provider.Enabled() {
		logger.Info("OpenTelemetry instrumentation enabled",
			slog.String("metrics_exporter", instrumentationConfig.MetricsExporter),
			slog.String("tracing_exporter", instrumentationConfig.TracingExporter))
	}

	stack, err := newObjectsStack(appConfig, stackOptions{
		logger:             logger,
		metrics:            provider.Metrics(),
		clusterConcurrency: config.ClusterConcurrency,
		version:            rootCmd.Version,
	})
	if err != nil {
		return err
	}
	if stack.locator.Len() == 0 {
		logger.Warn("no clusters configured; every request will return an empty result")
	}

	serverConfig := server.NewDefaultConfig()
	serverConfig.Version = rootCmd.Version
	serverConfig.LabelSelectorKey = appConfig.GetString(keyLabelSelectorKey)
	serverConfig.LogLevel = logLevel
	serverConfig.LogFormat = logFormat

	sc, err := server.NewServerContext(shutdownCtx,
		server.WithObjectsService(stack.handler),
		server.WithLocator(stack.locator),
		server.WithLogger(logger),
		server.WithConfig(serverConfig),
		server.WithInstrumentationProvider(provider),
	)
	if err != nil {
		return fmt.Errorf("failed to create server context: %w", err)
	}
	defer func() {
		if err := sc.Shutdown(); err != nil {
			logger.Error("error during server context shutdown", slog.Any("error", err))
		}
	}()

	mcpSrv := mcpserver.NewMCPServer(appName, rootCmd.Version,
		mcpserver.WithToolCapabilities(true),
	)
	if err := objects.RegisterObjectsTools(mcpSrv, sc); err != nil {
		return fmt.Errorf("failed to register objects tools: %w", err)
	}

	if config.Transport == transportStdio {
		return runStdioServer(mcpSrv)
	}
	logger.Info("starting MCP server", slog.String("transport", config.Transport))
	return runStreamableHTTPServer(shutdownCtx, mcpSrv, config, provider, sc)
}
