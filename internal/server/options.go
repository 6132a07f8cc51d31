package server

import (
	"errors"
	"log/slog"

	"github.com/giantswarm/mcp-service-objects/internal/fanout"
	"github.com/giantswarm/mcp-service-objects/internal/instrumentation"
)

// Option is a functional option for configuring ServerContext.
type Option func(*ServerContext) error

// WithObjectsService sets the handler answering service object queries.
func WithObjectsService(objects ObjectsService) Option {
	return func(sc *ServerContext) error {
		if objects == nil {
			return ErrMissingObjectsService
		}
		sc.objects = objects
		return nil
	}
}

// WithLocator sets the cluster locator.
func WithLocator(locator fanout.ClusterLocator) Option {
	return func(sc *ServerContext) error {
		if locator == nil {
			return ErrMissingLocator
		}
		sc.locator = locator
		return nil
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(sc *ServerContext) error {
		if logger == nil {
			return ErrMissingLogger
		}
		sc.logger = logger
		return nil
	}
}

// WithConfig sets the configuration. The config is copied.
func WithConfig(config *Config) Option {
	return func(sc *ServerContext) error {
		if config == nil {
			return ErrMissingConfig
		}
		sc.config = config.Clone()
		return nil
	}
}

// WithServerName sets the server name in the configuration.
func WithServerName(name string) Option {
	return func(sc *ServerContext) error {
		if sc.config == nil {
			sc.config = NewDefaultConfig()
		}
		sc.config.ServerName = name
		return nil
	}
}

// WithVersion sets the reported server version.
func WithVersion(version string) Option {
	return func(sc *ServerContext) error {
		if sc.config == nil {
			sc.config = NewDefaultConfig()
		}
		sc.config.Version = version
		return nil
	}
}

// WithInstrumentationProvider sets the OpenTelemetry instrumentation provider.
func WithInstrumentationProvider(provider *instrumentation.Provider) Option {
	return func(sc *ServerContext) error {
		sc.instrumentationProvider = provider
		return nil
	}
}

// Error definitions for ServerContext validation.
var (
	ErrMissingObjectsService = errors.New("objects service is required")
	ErrMissingLocator        = errors.New("cluster locator is required")
	ErrMissingLogger         = errors.New("logger is required")
	ErrMissingConfig         = errors.New("configuration is required")
	ErrServerShutdown        = errors.New("server context has been shutdown")
)
