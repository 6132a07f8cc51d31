package fetcher

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/labels"
	"k8s.io/apimachinery/pkg/runtime"

	"github.com/giantswarm/mcp-service-objects/internal/instrumentation"
	"github.com/giantswarm/mcp-service-objects/internal/k8s"
	"github.com/giantswarm/mcp-service-objects/internal/logging"
)

// DefaultLabelSelectorKey is the label that ties cluster objects to a service.
const DefaultLabelSelectorKey = "backstage.io/kubernetes-id"

var (
	// ErrMissingClientProvider is returned by New when no provider is given.
	ErrMissingClientProvider = errors.New("client provider is required")

	// ErrEmptyServiceID is returned when the service identifier is empty.
	ErrEmptyServiceID = errors.New("service id is required")
)

// MetricsRecorder receives one observation per listed resource type.
// It keeps the fetcher independent of a concrete metrics backend.
type MetricsRecorder interface {
	RecordResourceFetch(ctx context.Context, clusterName, resourceType, status, errorType string, duration time.Duration)
}

// Fetcher lists the objects belonging to a service across several resource
// types of one cluster and merges the outcomes into a single response.
type Fetcher struct {
	provider         ClientProvider
	logger           *slog.Logger
	metrics          MetricsRecorder
	labelSelectorKey string
	maxConcurrency   int
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(f *Fetcher) {
		if logger != nil {
			f.logger = logger
		}
	}
}

// WithMetrics sets the recorder for per-type fetch metrics.
func WithMetrics(metrics MetricsRecorder) Option {
	return func(f *Fetcher) {
		f.metrics = metrics
	}
}

// WithLabelSelectorKey overrides DefaultLabelSelectorKey.
func WithLabelSelectorKey(key string) Option {
	return func(f *Fetcher) {
		if key != "" {
			f.labelSelectorKey = key
		}
	}
}

// WithMaxConcurrency bounds the number of list calls in flight per fetch.
// Zero or negative means one goroutine per requested type.
func WithMaxConcurrency(n int) Option {
	return func(f *Fetcher) {
		f.maxConcurrency = n
	}
}

// New creates a Fetcher backed by provider.
func New(provider ClientProvider, opts ...Option) (*Fetcher, error) {
	if provider == nil {
		return nil, ErrMissingClientProvider
	}

	f := &Fetcher{
		provider:         provider,
		logger:           slog.Default(),
		labelSelectorKey: DefaultLabelSelectorKey,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f, nil
}

// outcome is the isolated result slot of one per-type list call.
type outcome struct {
	resources []runtime.Object
	err       *FetchError
}

// FetchObjectsByServiceID lists every requested resource type for serviceID
// on cluster. An unrecognised type fails the whole call before any client is
// resolved. After validation the call always succeeds: per-type failures are
// reported in the response's Errors, ordered canonically like Responses.
func (f *Fetcher) FetchObjectsByServiceID(ctx context.Context, serviceID string, cluster k8s.ClusterDetails, types []ResourceType) (*ObjectsByServiceIDResponse, error) {
	requested, err := canonicalise(types)
	if err != nil {
		return nil, err
	}
	if serviceID == "" {
		return nil, ErrEmptyServiceID
	}

	ctx, span := instrumentation.StartFetchSpan(ctx, cluster.Name, serviceID, len(requested))
	defer span.End()

	logger := logging.WithOperation(logging.WithCluster(f.logger, cluster.Name), "objects.fetch").
		With(logging.ServiceID(serviceID))

	opts := metav1.ListOptions{
		LabelSelector: labels.SelectorFromSet(labels.Set{f.labelSelectorKey: serviceID}).String(),
	}

	outcomes := make([]outcome, len(requested))
	var g errgroup.Group
	if f.maxConcurrency > 0 {
		g.SetLimit(f.maxConcurrency)
	}
	for i, info := range requested {
		g.Go(func() error {
			outcomes[i] = f.fetchOne(ctx, logger, cluster, info, opts)
			return nil
		})
	}
	// Branches never return errors, so Wait is only a barrier.
	_ = g.Wait()

	response := &ObjectsByServiceIDResponse{
		Responses: []FetchResponse{},
		Errors:    []FetchError{},
	}
	for i, o := range outcomes {
		if o.err != nil {
			response.Errors = append(response.Errors, *o.err)
			continue
		}
		response.Responses = append(response.Responses, FetchResponse{
			Type:      requested[i].Type,
			Resources: o.resources,
		})
	}

	logger.Debug("fetched service objects",
		slog.Int("responses", len(response.Responses)),
		slog.Int("errors", len(response.Errors)))

	if len(response.Errors) > 0 {
		instrumentation.AddSpanEvent(span, "partial_failure")
	} else {
		instrumentation.SetSpanSuccess(span)
	}
	return response, nil
}

func (f *Fetcher) fetchOne(ctx context.Context, logger *slog.Logger, cluster k8s.ClusterDetails, info resourceInfo, opts metav1.ListOptions) outcome {
	ctx, span := instrumentation.StartK8sSpan(ctx, instrumentation.OperationList, string(info.Type), metav1.NamespaceAll)
	defer span.End()

	start := time.Now()
	resources, err := info.list(ctx, f.provider, cluster, opts)
	duration := time.Since(start)

	if err != nil {
		var reqErr *RequestError
		if !errors.As(err, &reqErr) {
			err = &RequestError{Path: resourcePath(info.GVR), Err: err}
		}
		fetchErr := ClassifyError(err)

		instrumentation.SetSpanError(span, err)
		f.record(ctx, cluster.Name, info.Type, instrumentation.StatusError, string(fetchErr.ErrorType), duration)
		logger.Warn("failed to list resources",
			logging.ResourceType(string(info.Type)),
			slog.Int("status_code", fetchErr.StatusCode),
			logging.SanitizedErr(err))

		return outcome{err: &fetchErr}
	}

	instrumentation.SetSpanSuccess(span)
	f.record(ctx, cluster.Name, info.Type, instrumentation.StatusSuccess, "", duration)
	return outcome{resources: resources}
}

func (f *Fetcher) record(ctx context.Context, clusterName string, t ResourceType, status, errorType string, duration time.Duration) {
	if f.metrics == nil {
		return
	}
	f.metrics.RecordResourceFetch(ctx, clusterName, string(t), status, errorType, duration)
}

// canonicalise validates the requested types, drops duplicates and returns
// them in canonical order.
func canonicalise(types []ResourceType) ([]resourceInfo, error) {
	selected := make([]bool, len(resourceTable))
	for _, t := range types {
		_, idx, ok := lookupResource(t)
		if !ok {
			return nil, &UnrecognisedTypeError{Type: string(t)}
		}
		selected[idx] = true
	}

	requested := make([]resourceInfo, 0, len(types))
	for i, info := range resourceTable {
		if selected[i] {
			requested = append(requested, info)
		}
	}
	return requested, nil
}
