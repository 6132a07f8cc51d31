// Package server holds the shared state of the MCP server and its HTTP
// side endpoints.
//
// ServerContext carries the objects handler, the cluster locator, the
// logger, the configuration and the instrumentation provider. Dependencies
// are injected with functional options and validated once:
//
//	sc, err := server.NewServerContext(ctx,
//		server.WithObjectsService(handler),
//		server.WithLocator(locator),
//		server.WithLogger(logger),
//		server.WithVersion(version),
//	)
//	if err != nil {
//		return err
//	}
//	defer sc.Shutdown()
//
// HealthChecker serves /healthz, /readyz and /healthz/detailed.
// MetricsServer exposes the Prometheus registry of an
// instrumentation.Provider on its own listener.
package server
