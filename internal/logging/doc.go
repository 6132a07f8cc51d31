// Package logging provides structured logging helpers on top of log/slog.
//
// New builds the process logger from a Config. The remaining helpers keep
// attribute names consistent and strip sensitive values before they reach
// the logs:
//
//	logger := logging.WithOperation(slog.Default(), "objects.fetch")
//	logger.Info("listing resources",
//	    logging.ServiceID("checkout"),
//	    logging.ResourceType("pods"),
//	    logging.Host(cluster.URL))
//
// API server URLs have IP addresses redacted and tokens are only ever
// logged as a length indicator.
package logging
