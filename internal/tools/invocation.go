// Package tools provides shared plumbing for MCP tool handlers.
package tools

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/giantswarm/mcp-service-objects/internal/instrumentation"
	"github.com/giantswarm/mcp-service-objects/internal/logging"
	"github.com/giantswarm/mcp-service-objects/internal/server"
)

// ToolHandler is an MCP tool handler that receives the ServerContext.
type ToolHandler func(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error)

// WrapWithInvocationLogging adapts handler to mcp-go and wraps every call in
// a tool span, an invocation metric and a log line. A call on a shut down
// server context returns a tool error without reaching handler.
func WrapWithInvocationLogging(
	toolName string,
	handler ToolHandler,
	sc *server.ServerContext,
) func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		if sc.IsShutdown() {
			return mcp.NewToolResultError(server.ErrServerShutdown.Error()), nil
		}

		ctx, span := instrumentation.StartToolSpan(ctx, toolName)
		defer span.End()

		logger := logging.WithTool(sc.Logger(), toolName)
		start := time.Now()

		result, err := handler(ctx, request, sc)
		duration := time.Since(start)

		status := instrumentation.StatusSuccess
		switch {
		case err != nil:
			status = instrumentation.StatusError
			instrumentation.SetSpanError(span, err)
			logger.Error("tool invocation failed", logging.Err(err), slog.Duration(logging.KeyDuration, duration))
		case result != nil && result.IsError:
			status = instrumentation.StatusError
			msg := resultText(result)
			instrumentation.SetSpanError(span, errors.New(msg))
			logger.Warn("tool returned an error", slog.String("message", msg), slog.Duration(logging.KeyDuration, duration))
		default:
			instrumentation.SetSpanSuccess(span)
			logger.Info("tool invocation succeeded", slog.Duration(logging.KeyDuration, duration))
		}

		sc.InstrumentationProvider().Metrics().RecordToolInvocation(ctx, toolName, status, duration)

		return result, err
	}
}

// resultText returns the first text content of result.
func resultText(result *mcp.CallToolResult) string {
	for _, content := range result.Content {
		if text, ok := content.(mcp.TextContent); ok {
			return text.Text
		}
	}
	return ""
}
