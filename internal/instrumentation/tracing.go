package instrumentation

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TracerName is the instrumentation scope for tracers and meters.
const TracerName = "github.com/giantswarm/mcp-service-objects"

// Span attribute keys.
const (
	SpanAttrCluster      = "mcp.cluster"
	SpanAttrClusterType  = "mcp.cluster_type"
	SpanAttrClusterCount = "mcp.cluster_count"
	SpanAttrServiceID    = "mcp.service_id"
	SpanAttrTypeCount    = "mcp.resource_type_count"
	SpanAttrTool         = "mcp.tool"

	SpanAttrNamespace    = "k8s.namespace"
	SpanAttrResourceType = "k8s.resource_type"
	SpanAttrOperation    = "k8s.operation"
)

func tracer() trace.Tracer {
	return otel.GetTracerProvider().Tracer(TracerName)
}

// StartSpan starts a new span with the given name and attributes.
// The caller must end the span.
func StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return tracer().Start(ctx, name, trace.WithAttributes(attrs...))
}

// StartToolSpan starts a server span for an MCP tool invocation.
func StartToolSpan(ctx context.Context, toolName string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	allAttrs := append([]attribute.KeyValue{attribute.String(SpanAttrTool, toolName)}, attrs...)
	return tracer().Start(ctx, "tool."+toolName,
		trace.WithAttributes(allAttrs...),
		trace.WithSpanKind(trace.SpanKindServer),
	)
}

// StartFetchSpan starts the span covering one service fetch against one cluster.
func StartFetchSpan(ctx context.Context, clusterName, serviceID string, typeCount int) (context.Context, trace.Span) {
	return tracer().Start(ctx, "objects.fetch",
		trace.WithAttributes(
			attribute.String(SpanAttrCluster, clusterName),
			attribute.String(SpanAttrClusterType, ClassifyClusterName(clusterName)),
			attribute.String(SpanAttrServiceID, serviceID),
			attribute.Int(SpanAttrTypeCount, typeCount),
		),
	)
}

// StartFanoutSpan starts the span covering a fetch across several clusters.
func StartFanoutSpan(ctx context.Context, serviceID string, clusterCount int) (context.Context, trace.Span) {
	return tracer().Start(ctx, "objects.fanout",
		trace.WithAttributes(
			attribute.String(SpanAttrServiceID, serviceID),
			attribute.Int(SpanAttrClusterCount, clusterCount),
		),
	)
}

// StartK8sSpan starts a client span for a Kubernetes API call.
func StartK8sSpan(ctx context.Context, operation, resourceType, namespace string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	allAttrs := make([]attribute.KeyValue, 0, len(attrs)+3)
	allAttrs = append(allAttrs, attribute.String(SpanAttrOperation, operation))
	if resourceType != "" {
		allAttrs = append(allAttrs, attribute.String(SpanAttrResourceType, resourceType))
	}
	if namespace != "" {
		allAttrs = append(allAttrs, attribute.String(SpanAttrNamespace, namespace))
	}
	allAttrs = append(allAttrs, attrs...)

	return tracer().Start(ctx, "k8s."+operation,
		trace.WithAttributes(allAttrs...),
		trace.WithSpanKind(trace.SpanKindClient),
	)
}

// SetSpanError records err on the span and marks it failed. Nil is ignored.
func SetSpanError(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
}

// SetSpanSuccess sets the span status to OK.
func SetSpanSuccess(span trace.Span) {
	span.SetStatus(codes.Ok, "")
}

// AddSpanEvent adds an event to the span with optional attributes.
func AddSpanEvent(span trace.Span, name string, attrs ...attribute.KeyValue) {
	span.AddEvent(name, trace.WithAttributes(attrs...))
}

// GetTraceID returns the trace ID of the span in ctx, or "" if there is none.
func GetTraceID(ctx context.Context) string {
	sc := trace.SpanFromContext(ctx).SpanContext()
	if !sc.IsValid() {
		return ""
	}
	return sc.TraceID().String()
}
