package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/viper"

	"github.com/giantswarm/mcp-service-objects/internal/clusters"
	"github.com/giantswarm/mcp-service-objects/internal/fanout"
	"github.com/giantswarm/mcp-service-objects/internal/fetcher"
	"github.com/giantswarm/mcp-service-objects/internal/instrumentation"
	"github.com/giantswarm/mcp-service-objects/internal/k8s"
)

// objectsStack is the fetch pipeline shared by serve and fetch.
type objectsStack struct {
	locator *clusters.ConfigLocator
	fetcher *fetcher.Fetcher
	handler *fanout.Handler
}

type stackOptions struct {
	logger             *slog.Logger
	metrics            *instrumentation.Metrics
	clusterConcurrency int
	version            string
}

// newObjectsStack wires locator, client provider, fetcher and fan-out
// handler from configuration.
func newObjectsStack(v *viper.Viper, opts stackOptions) (*objectsStack, error) {
	logger := opts.logger
	if logger == nil {
		logger = slog.Default()
	}

	locator, err := clusters.LoadFromViper(v)
	if err != nil {
		return nil, err
	}

	userAgent := k8s.DefaultUserAgent
	if opts.version != "" {
		userAgent += "/" + opts.version
	}
	provider := k8s.NewClientsetProvider(
		k8s.WithQPS(float32(v.GetFloat64(keyQPS))),
		k8s.WithBurst(v.GetInt(keyBurst)),
		k8s.WithTimeout(v.GetDuration(keyTimeout)),
		k8s.WithUserAgent(userAgent),
		k8s.WithClientCache(v.GetDuration(keyClientCacheTTL), k8s.DefaultClientCacheMaxEntries),
		k8s.WithProviderLogger(logger),
	)

	fetcherOpts := []fetcher.Option{
		fetcher.WithLogger(logger),
		fetcher.WithLabelSelectorKey(v.GetString(keyLabelSelectorKey)),
		fetcher.WithMaxConcurrency(v.GetInt(keyMaxConcurrency)),
	}
	if opts.metrics != nil {
		fetcherOpts = append(fetcherOpts, fetcher.WithMetrics(opts.metrics))
	}
	f, err := fetcher.New(provider, fetcherOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create fetcher: %w", err)
	}

	handlerOpts := []fanout.Option{
		fanout.WithLogger(logger),
		fanout.WithMaxConcurrency(opts.clusterConcurrency),
	}
	if opts.metrics != nil {
		handlerOpts = append(handlerOpts, fanout.WithMetrics(opts.metrics))
	}
	handler, err := fanout.NewHandler(locator, f, handlerOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create fan-out handler: %w", err)
	}

	logger.Debug("objects pipeline ready",
		slog.Int("clusters", locator.Len()),
		slog.String("label_selector_key", v.GetString(keyLabelSelectorKey)))

	return &objectsStack{locator: locator, fetcher: f, handler: handler}, nil
}
