package fanout

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"

	"github.com/giantswarm/mcp-service-objects/internal/fetcher"
	"github.com/giantswarm/mcp-service-objects/internal/instrumentation"
	"github.com/giantswarm/mcp-service-objects/internal/k8s"
	"github.com/giantswarm/mcp-service-objects/internal/logging"
)

var (
	// ErrMissingLocator is returned by NewHandler without a cluster locator.
	ErrMissingLocator = errors.New("cluster locator is required")

	// ErrMissingFetcher is returned by NewHandler without an object fetcher.
	ErrMissingFetcher = errors.New("object fetcher is required")
)

// ClusterLocator lists the clusters to query.
type ClusterLocator interface {
	Clusters(ctx context.Context) ([]k8s.ClusterDetails, error)
	Lookup(name string) (k8s.ClusterDetails, error)
}

// ObjectFetcher fetches the objects of a service from one cluster.
type ObjectFetcher interface {
	FetchObjectsByServiceID(ctx context.Context, serviceID string, cluster k8s.ClusterDetails, types []fetcher.ResourceType) (*fetcher.ObjectsByServiceIDResponse, error)
}

// MetricsRecorder receives one observation per fan-out.
type MetricsRecorder interface {
	RecordFanout(ctx context.Context, status string, duration time.Duration)
}

// ClusterRef names a cluster in a response.
type ClusterRef struct {
	Name string `json:"name"`
}

// ClusterObjects is the outcome for one cluster.
type ClusterObjects struct {
	Cluster   ClusterRef              `json:"cluster"`
	Resources []fetcher.FetchResponse `json:"resources"`
	Errors    []fetcher.FetchError    `json:"errors"`
}

// ObjectsResponse holds one item per queried cluster, in locator order.
type ObjectsResponse struct {
	Items []ClusterObjects `json:"items"`
}

// HasErrors reports whether any cluster returned a per-type error.
func (r *ObjectsResponse) HasErrors() bool {
	return lo.SomeBy(r.Items, func(item ClusterObjects) bool { return len(item.Errors) > 0 })
}

// Handler runs a fetch against every located cluster.
type Handler struct {
	locator        ClusterLocator
	fetcher        ObjectFetcher
	logger         *slog.Logger
	metrics        MetricsRecorder
	maxConcurrency int
}

// Option configures a Handler.
type Option func(*Handler)

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(h *Handler) {
		if logger != nil {
			h.logger = logger
		}
	}
}

// WithMetrics sets the fan-out metrics recorder.
func WithMetrics(metrics MetricsRecorder) Option {
	return func(h *Handler) {
		h.metrics = metrics
	}
}

// WithMaxConcurrency bounds the number of clusters queried at once. Zero or
// negative means no bound.
func WithMaxConcurrency(n int) Option {
	return func(h *Handler) {
		h.maxConcurrency = n
	}
}

// NewHandler creates a Handler.
func NewHandler(locator ClusterLocator, f ObjectFetcher, opts ...Option) (*Handler, error) {
	if locator == nil {
		return nil, ErrMissingLocator
	}
	if f == nil {
		return nil, ErrMissingFetcher
	}

	h := &Handler{
		locator: locator,
		fetcher: f,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h, nil
}

// GetObjectsByServiceID fetches the objects of serviceID from every located
// cluster. An empty types list means every supported type. Unrecognised
// types fail the call before any cluster is contacted.
func (h *Handler) GetObjectsByServiceID(ctx context.Context, serviceID string, types []fetcher.ResourceType) (*ObjectsResponse, error) {
	types, err := normaliseTypes(types)
	if err != nil {
		return nil, err
	}

	clusters, err := h.locator.Clusters(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to locate clusters: %w", err)
	}

	return h.fetchAll(ctx, serviceID, clusters, types)
}

// GetObjectsByServiceIDOnCluster is GetObjectsByServiceID restricted to the
// cluster named clusterName.
func (h *Handler) GetObjectsByServiceIDOnCluster(ctx context.Context, serviceID, clusterName string, types []fetcher.ResourceType) (*ObjectsResponse, error) {
	types, err := normaliseTypes(types)
	if err != nil {
		return nil, err
	}

	cluster, err := h.locator.Lookup(clusterName)
	if err != nil {
		return nil, err
	}

	return h.fetchAll(ctx, serviceID, []k8s.ClusterDetails{cluster}, types)
}

func (h *Handler) fetchAll(ctx context.Context, serviceID string, clusters []k8s.ClusterDetails, types []fetcher.ResourceType) (*ObjectsResponse, error) {
	ctx, span := instrumentation.StartFanoutSpan(ctx, serviceID, len(clusters))
	defer span.End()

	start := time.Now()
	logger := logging.WithOperation(h.logger, "objects.fanout").With(logging.ServiceID(serviceID))

	items := make([]ClusterObjects, len(clusters))
	g, gctx := errgroup.WithContext(ctx)
	if h.maxConcurrency > 0 {
		g.SetLimit(h.maxConcurrency)
	}
	for i, cluster := range clusters {
		g.Go(func() error {
			resp, err := h.fetcher.FetchObjectsByServiceID(gctx, serviceID, cluster, types)
			if err != nil {
				return fmt.Errorf("cluster %q: %w", cluster.Name, err)
			}
			items[i] = ClusterObjects{
				Cluster:   ClusterRef{Name: cluster.Name},
				Resources: resp.Responses,
				Errors:    resp.Errors,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		instrumentation.SetSpanError(span, err)
		return nil, err
	}

	response := &ObjectsResponse{Items: items}

	status := instrumentation.StatusSuccess
	if response.HasErrors() {
		status = instrumentation.StatusPartial
	}
	if h.metrics != nil {
		h.metrics.RecordFanout(ctx, status, time.Since(start))
	}
	instrumentation.SetSpanSuccess(span)

	logger.Info("fetched service objects across clusters",
		slog.Int("clusters", len(clusters)),
		logging.Status(status),
		slog.Duration(logging.KeyDuration, time.Since(start)))

	return response, nil
}

// normaliseTypes validates types and defaults an empty list to every
// supported type.
func normaliseTypes(types []fetcher.ResourceType) ([]fetcher.ResourceType, error) {
	if len(types) == 0 {
		return fetcher.SupportedResourceTypes(), nil
	}
	for _, t := range types {
		if _, err := fetcher.ParseResourceType(string(t)); err != nil {
			return nil, err
		}
	}
	return lo.Uniq(types), nil
}
