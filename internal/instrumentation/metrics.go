package instrumentation

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metric attribute keys
const (
	attrMethod       = "method"
	attrPath         = "path"
	attrStatus       = "status"
	attrResourceType = "resource_type"
	attrErrorType    = "error_type"
	attrCluster      = "cluster"
	attrClusterType  = "cluster_type"
	attrTool         = "tool"
)

var durationBuckets = []float64{0.001, 0.01, 0.1, 0.5, 1.0, 2.5, 5.0, 10.0}

// Metrics provides methods for recording observability metrics.
type Metrics struct {
	// HTTP metrics
	httpRequestsTotal   metric.Int64Counter
	httpRequestDuration metric.Float64Histogram

	// Per resource type list metrics
	fetchesTotal  metric.Int64Counter
	fetchDuration metric.Float64Histogram

	// Multi-cluster fan-out metrics
	fanoutTotal    metric.Int64Counter
	fanoutDuration metric.Float64Histogram

	// MCP tool metrics
	toolInvocationsTotal   metric.Int64Counter
	toolInvocationDuration metric.Float64Histogram

	// detailedLabels adds the raw cluster name next to the classified
	// cluster type.
	detailedLabels bool
}

// NewMetrics creates a new Metrics instance with all instruments initialized.
func NewMetrics(meter metric.Meter, detailedLabels bool) (*Metrics, error) {
	m := &Metrics{detailedLabels: detailedLabels}

	var err error

	m.httpRequestsTotal, err = meter.Int64Counter(
		"http_requests_total",
		metric.WithDescription("Total number of HTTP requests"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create http_requests_total counter: %w", err)
	}

	m.httpRequestDuration, err = meter.Float64Histogram(
		"http_request_duration_seconds",
		metric.WithDescription("HTTP request duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(durationBuckets...),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create http_request_duration_seconds histogram: %w", err)
	}

	m.fetchesTotal, err = meter.Int64Counter(
		"service_objects_fetches_total",
		metric.WithDescription("Total number of per resource type list calls"),
		metric.WithUnit("{fetch}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create service_objects_fetches_total counter: %w", err)
	}

	m.fetchDuration, err = meter.Float64Histogram(
		"service_objects_fetch_duration_seconds",
		metric.WithDescription("Duration of per resource type list calls in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(durationBuckets...),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create service_objects_fetch_duration_seconds histogram: %w", err)
	}

	m.fanoutTotal, err = meter.Int64Counter(
		"service_objects_fanouts_total",
		metric.WithDescription("Total number of multi-cluster fetches"),
		metric.WithUnit("{fanout}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create service_objects_fanouts_total counter: %w", err)
	}

	m.fanoutDuration, err = meter.Float64Histogram(
		"service_objects_fanout_duration_seconds",
		metric.WithDescription("Duration of multi-cluster fetches in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(durationBuckets...),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create service_objects_fanout_duration_seconds histogram: %w", err)
	}

	m.toolInvocationsTotal, err = meter.Int64Counter(
		"mcp_tool_invocations_total",
		metric.WithDescription("Total number of MCP tool invocations"),
		metric.WithUnit("{invocation}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create mcp_tool_invocations_total counter: %w", err)
	}

	m.toolInvocationDuration, err = meter.Float64Histogram(
		"mcp_tool_invocation_duration_seconds",
		metric.WithDescription("MCP tool invocation duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(durationBuckets...),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create mcp_tool_invocation_duration_seconds histogram: %w", err)
	}

	return m, nil
}

// RecordHTTPRequest records an HTTP request with method, path, status code, and duration.
func (m *Metrics) RecordHTTPRequest(ctx context.Context, method, path string, statusCode int, duration time.Duration) {
	if m == nil || m.httpRequestsTotal == nil || m.httpRequestDuration == nil {
		return
	}

	attrs := metric.WithAttributes(
		attribute.String(attrMethod, method),
		attribute.String(attrPath, path),
		attribute.String(attrStatus, strconv.Itoa(statusCode)),
	)

	m.httpRequestsTotal.Add(ctx, 1, attrs)
	m.httpRequestDuration.Record(ctx, duration.Seconds(), attrs)
}

// RecordResourceFetch records one list call for a resource type. errorType is
// empty for successful calls.
//
// The cluster is recorded as its classified type; the raw name is only added
// when detailed labels are enabled.
func (m *Metrics) RecordResourceFetch(ctx context.Context, clusterName, resourceType, status, errorType string, duration time.Duration) {
	if m == nil || m.fetchesTotal == nil || m.fetchDuration == nil {
		return
	}

	attrs := []attribute.KeyValue{
		attribute.String(attrResourceType, resourceType),
		attribute.String(attrStatus, status),
		attribute.String(attrClusterType, ClassifyClusterName(clusterName)),
	}
	if m.detailedLabels {
		attrs = append(attrs, attribute.String(attrCluster, clusterName))
	}

	m.fetchDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))

	attrs = append(attrs, attribute.String(attrErrorType, errorType))
	m.fetchesTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordFanout records one multi-cluster fetch. status is success when every
// cluster answered without per-type errors, partial otherwise.
func (m *Metrics) RecordFanout(ctx context.Context, status string, duration time.Duration) {
	if m == nil || m.fanoutTotal == nil || m.fanoutDuration == nil {
		return
	}

	attrs := metric.WithAttributes(attribute.String(attrStatus, status))
	m.fanoutTotal.Add(ctx, 1, attrs)
	m.fanoutDuration.Record(ctx, duration.Seconds(), attrs)
}

// RecordToolInvocation records an MCP tool call.
func (m *Metrics) RecordToolInvocation(ctx context.Context, tool, status string, duration time.Duration) {
	if m == nil || m.toolInvocationsTotal == nil || m.toolInvocationDuration == nil {
		return
	}

	attrs := metric.WithAttributes(
		attribute.String(attrTool, tool),
		attribute.String(attrStatus, status),
	)
	m.toolInvocationsTotal.Add(ctx, 1, attrs)
	m.toolInvocationDuration.Record(ctx, duration.Seconds(), attrs)
}
