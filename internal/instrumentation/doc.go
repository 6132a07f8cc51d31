// Package instrumentation wires OpenTelemetry metrics and tracing for the
// service objects server.
//
// # Metrics
//
//   - http_requests_total, http_request_duration_seconds: HTTP transport
//   - service_objects_fetches_total, service_objects_fetch_duration_seconds:
//     one observation per listed resource type, labelled with resource_type,
//     status, error_type and cluster_type
//   - service_objects_fanouts_total, service_objects_fanout_duration_seconds:
//     multi-cluster fetches
//   - mcp_tool_invocations_total, mcp_tool_invocation_duration_seconds
//
// Cluster names are reduced to a ClusterType unless METRICS_DETAILED_LABELS
// is set.
//
// # Tracing
//
// A fetch produces an objects.fetch span with one k8s.list child span per
// resource type. Multi-cluster fetches are wrapped in an objects.fanout span
// and MCP tool calls in a tool.<name> server span.
//
// # Configuration
//
// DefaultConfig reads INSTRUMENTATION_ENABLED, METRICS_EXPORTER,
// TRACING_EXPORTER, OTEL_EXPORTER_OTLP_ENDPOINT, OTEL_EXPORTER_OTLP_INSECURE,
// OTEL_TRACES_SAMPLER_ARG and OTEL_SERVICE_NAME:
//
//	provider, err := instrumentation.NewProvider(ctx, instrumentation.DefaultConfig())
//	if err != nil {
//		return err
//	}
//	defer provider.Shutdown(ctx)
//
//	provider.Metrics().RecordResourceFetch(ctx, "prod-eu", "pods", "success", "", time.Since(start))
package instrumentation
