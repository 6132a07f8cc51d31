package server

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/giantswarm/mcp-service-objects/internal/instrumentation"
)

const (
	// DefaultMetricsAddr is the listen address of the metrics server.
	DefaultMetricsAddr = ":9090"

	// DefaultShutdownTimeout bounds graceful shutdown of HTTP servers.
	DefaultShutdownTimeout = 30 * time.Second
)

// ErrMissingInstrumentationProvider is returned by NewMetricsServer
// without a provider.
var ErrMissingInstrumentationProvider = errors.New("instrumentation provider is required")

// MetricsServerConfig configures a MetricsServer.
type MetricsServerConfig struct {
	// Addr defaults to DefaultMetricsAddr.
	Addr                    string
	InstrumentationProvider *instrumentation.Provider
	Logger                  *slog.Logger
}

// MetricsServer serves /metrics on a port separate from the MCP endpoint so
// that scrapes never compete with tool traffic.
type MetricsServer struct {
	addr   string
	server *http.Server
	logger *slog.Logger

	mu       sync.Mutex
	listener net.Listener
}

// NewMetricsServer creates a MetricsServer.
func NewMetricsServer(config MetricsServerConfig) (*MetricsServer, error) {
	if config.InstrumentationProvider == nil {
		return nil, ErrMissingInstrumentationProvider
	}

	addr := config.Addr
	if addr == "" {
		addr = DefaultMetricsAddr
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", config.InstrumentationProvider.PrometheusHandler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	return &MetricsServer{
		addr:   addr,
		logger: logger,
		server: &http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}, nil
}

// Addr returns the configured listen address.
func (s *MetricsServer) Addr() string {
	return s.addr
}

// Start listens and serves until Shutdown. It returns http.ErrServerClosed
// after a graceful shutdown.
func (s *MetricsServer) Start() error {
	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.listener = listener
	s.mu.Unlock()

	s.logger.Info("metrics server listening", slog.String("addr", listener.Addr().String()))
	return s.server.Serve(listener)
}

// Shutdown stops the server gracefully. It is a no-op before Start.
func (s *MetricsServer) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	started := s.listener != nil
	s.mu.Unlock()

	if !started {
		return nil
	}
	return s.server.Shutdown(ctx)
}
