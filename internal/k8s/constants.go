package k8s

import "time"

const (
	// Default client-side rate limits per cluster client
	DefaultQPSLimit   = 20.0
	DefaultBurstLimit = 30

	// DefaultTimeout bounds a single list request.
	DefaultTimeout = 30 * time.Second

	DefaultUserAgent = "mcp-service-objects"
)
