package server

import (
	"context"
	"log/slog"
	"sync"

	"github.com/giantswarm/mcp-service-objects/internal/fanout"
	"github.com/giantswarm/mcp-service-objects/internal/fetcher"
	"github.com/giantswarm/mcp-service-objects/internal/instrumentation"
)

// ObjectsService answers service object queries across clusters.
type ObjectsService interface {
	GetObjectsByServiceID(ctx context.Context, serviceID string, types []fetcher.ResourceType) (*fanout.ObjectsResponse, error)
	GetObjectsByServiceIDOnCluster(ctx context.Context, serviceID, clusterName string, types []fetcher.ResourceType) (*fanout.ObjectsResponse, error)
}

// ServerContext holds the dependencies shared by the MCP tools and the
// HTTP endpoints, and owns their lifecycle.
type ServerContext struct {
	objects ObjectsService
	locator fanout.ClusterLocator
	logger  *slog.Logger
	config  *Config

	instrumentationProvider *instrumentation.Provider

	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.RWMutex
	shutdown bool
}

// NewServerContext creates a ServerContext. Objects and locator are
// required; everything else has a default.
func NewServerContext(ctx context.Context, opts ...Option) (*ServerContext, error) {
	serverCtx, cancel := context.WithCancel(ctx)

	sc := &ServerContext{
		ctx:    serverCtx,
		cancel: cancel,
		config: NewDefaultConfig(),
		logger: slog.Default(),
	}

	for _, opt := range opts {
		if err := opt(sc); err != nil {
			cancel()
			return nil, err
		}
	}

	if err := sc.validate(); err != nil {
		cancel()
		return nil, err
	}

	return sc, nil
}

// Context returns the server context for cancellation and deadlines.
func (sc *ServerContext) Context() context.Context {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.ctx
}

// Objects returns the service objects handler.
func (sc *ServerContext) Objects() ObjectsService {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.objects
}

// Locator returns the cluster locator.
func (sc *ServerContext) Locator() fanout.ClusterLocator {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.locator
}

// Logger returns the logger.
func (sc *ServerContext) Logger() *slog.Logger {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.logger
}

// Config returns the server configuration.
func (sc *ServerContext) Config() *Config {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.config
}

// InstrumentationProvider returns the instrumentation provider, which may be nil.
func (sc *ServerContext) InstrumentationProvider() *instrumentation.Provider {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.instrumentationProvider
}

// Shutdown cancels the server context. It is safe to call more than once.
func (sc *ServerContext) Shutdown() error {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if sc.shutdown {
		return nil
	}

	sc.logger.Info("shutting down server context")
	if sc.cancel != nil {
		sc.cancel()
	}
	sc.shutdown = true
	return nil
}

// IsShutdown reports whether Shutdown has been called.
func (sc *ServerContext) IsShutdown() bool {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.shutdown
}

func (sc *ServerContext) validate() error {
	if sc.objects == nil {
		return ErrMissingObjectsService
	}
	if sc.locator == nil {
		return ErrMissingLocator
	}
	if sc.logger == nil {
		return ErrMissingLogger
	}
	if sc.config == nil {
		return ErrMissingConfig
	}
	return nil
}

// Config holds the server configuration.
type Config struct {
	ServerName string `json:"serverName"`
	Version    string `json:"version"`

	LabelSelectorKey string `json:"labelSelectorKey"`

	LogLevel  string `json:"logLevel"`
	LogFormat string `json:"logFormat"`
}

// NewDefaultConfig creates a configuration with defaults.
func NewDefaultConfig() *Config {
	return &Config{
		ServerName:       "mcp-service-objects",
		Version:          "dev",
		LabelSelectorKey: fetcher.DefaultLabelSelectorKey,
		LogLevel:         "info",
		LogFormat:        "text",
	}
}

// Clone returns a copy of the configuration.
func (c *Config) Clone() *Config {
	if c == nil {
		return nil
	}
	clone := *c
	return &clone
}
