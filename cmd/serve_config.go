package cmd

import (
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/giantswarm/mcp-service-objects/internal/server"
)

// Transport type constants for the MCP server.
const (
	transportStdio          = "stdio"
	transportStreamableHTTP = "streamable-http"
)

// envValueTrue is the string value used to enable boolean environment variables.
const envValueTrue = "true"

// ServeConfig holds all configuration for the serve command.
type ServeConfig struct {
	Transport    string
	HTTPAddr     string
	HTTPEndpoint string

	// ClusterConcurrency bounds the clusters queried at once per request.
	ClusterConcurrency int
	ShutdownTimeout    time.Duration

	EnableHSTS     bool
	AllowedOrigins string

	Metrics MetricsServeConfig
}

// MetricsServeConfig configures the separate metrics listener.
type MetricsServeConfig struct {
	Enabled bool
	Addr    string
}

// loadServeEnv fills settings from the environment for flags the user did
// not set explicitly.
func loadServeEnv(cmd *cobra.Command, config *ServeConfig) {
	flags := cmd.Flags()

	if !flags.Changed("http-addr") {
		loadEnvIfSet(&config.HTTPAddr, "HTTP_ADDR")
	}
	if !flags.Changed("metrics-addr") {
		loadEnvIfSet(&config.Metrics.Addr, "METRICS_ADDR")
	}
	if !flags.Changed("enable-metrics") {
		if v := os.Getenv("METRICS_ENABLED"); v != "" {
			config.Metrics.Enabled = v == envValueTrue
		}
	}
	if !flags.Changed("cluster-concurrency") {
		if n, ok := parseIntEnv(os.Getenv("CLUSTER_CONCURRENCY"), "CLUSTER_CONCURRENCY"); ok {
			config.ClusterConcurrency = n
		}
	}
	if !flags.Changed("shutdown-timeout") {
		if d, ok := parseDurationEnv(os.Getenv("SHUTDOWN_TIMEOUT"), "SHUTDOWN_TIMEOUT"); ok {
			config.ShutdownTimeout = d
		}
	}
	if !flags.Changed("enable-hsts") && os.Getenv("ENABLE_HSTS") == envValueTrue {
		config.EnableHSTS = true
	}
	if !flags.Changed("allowed-origins") {
		loadEnvIfSet(&config.AllowedOrigins, "ALLOWED_ORIGINS")
	}

	if config.ShutdownTimeout <= 0 {
		config.ShutdownTimeout = server.DefaultShutdownTimeout
	}
}

// loadEnvIfSet overwrites target with a non-empty environment variable.
func loadEnvIfSet(target *string, envKey string) {
	if v := os.Getenv(envKey); v != "" {
		*target = v
	}
}

// parseDurationEnv parses a duration from an environment variable value.
// Invalid values are logged and ignored.
func parseDurationEnv(value, envName string) (time.Duration, bool) {
	if value == "" {
		return 0, false
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		slog.Warn("ignoring invalid duration", slog.String("env", envName), slog.String("value", value), slog.Any("error", err))
		return 0, false
	}
	return d, true
}

// parseIntEnv parses an integer from an environment variable value.
// Invalid values are logged and ignored.
func parseIntEnv(value, envName string) (int, bool) {
	if value == "" {
		return 0, false
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		slog.Warn("ignoring invalid integer", slog.String("env", envName), slog.String("value", value), slog.Any("error", err))
		return 0, false
	}
	return n, true
}
