// Package cmd provides the command-line interface for mcp-service-objects.
//
// Command structure:
//
//	mcp-service-objects [flags]                  # Starts the MCP server (default)
//	mcp-service-objects serve [flags]            # Explicitly starts the MCP server
//	mcp-service-objects fetch <service-id>       # Lists a service's objects once
//	mcp-service-objects clusters                 # Lists the configured clusters
//	mcp-service-objects version                  # Shows version information
//	mcp-service-objects self-update              # Updates to latest release
//
// The serve command supports two transports:
//   - stdio: Standard input/output (default)
//   - streamable-http: Streamable HTTP, with health endpoints and an optional
//     Prometheus metrics listener
//
// Clusters, the label selector key and client rate limits come from a YAML
// config file (--config, default $HOME/.config/mcp-service-objects/config.yaml)
// and MCP_SERVICE_OBJECTS_* environment variables:
//
//	labelSelectorKey: backstage.io/kubernetes-id
//	maxConcurrency: 4
//	qps: 20
//	burst: 30
//	timeout: 30s
//	clientCacheTTL: 5m
//	clusters:
//	  - name: prod
//	    url: https://prod.example.com:6443
//	    authProvider: serviceAccount
//	    serviceAccountToken: ${PROD_TOKEN}
//	    caData: LS0tLS1CRUdJTi...
//
// Transport settings of serve can also be set through HTTP_ADDR,
// METRICS_ADDR, METRICS_ENABLED, CLUSTER_CONCURRENCY, SHUTDOWN_TIMEOUT,
// ENABLE_HSTS and ALLOWED_ORIGINS when the matching flag is not given.
package cmd
