package server

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/giantswarm/mcp-service-objects/internal/clusters"
	"github.com/giantswarm/mcp-service-objects/internal/fanout"
	"github.com/giantswarm/mcp-service-objects/internal/fetcher"
	"github.com/giantswarm/mcp-service-objects/internal/k8s"
)

type stubObjects struct{}

func (stubObjects) GetObjectsByServiceID(context.Context, string, []fetcher.ResourceType) (*fanout.ObjectsResponse, error) {
	return &fanout.ObjectsResponse{Items: []fanout.ClusterObjects{}}, nil
}

func (stubObjects) GetObjectsByServiceIDOnCluster(context.Context, string, string, []fetcher.ResourceType) (*fanout.ObjectsResponse, error) {
	return &fanout.ObjectsResponse{Items: []fanout.ClusterObjects{}}, nil
}

type failingLocator struct{}

func (failingLocator) Clusters(context.Context) ([]k8s.ClusterDetails, error) {
	return nil, errors.New("discovery unavailable")
}

func (failingLocator) Lookup(string) (k8s.ClusterDetails, error) {
	return k8s.ClusterDetails{}, clusters.ErrClusterNotFound
}

func testLocator(t *testing.T, names ...string) *clusters.ConfigLocator {
	t.Helper()
	details := make([]k8s.ClusterDetails, len(names))
	for i, name := range names {
		details[i] = k8s.ClusterDetails{Name: name, URL: "https://" + name + ".example.com"}
	}
	locator, err := clusters.NewConfigLocator(details)
	require.NoError(t, err)
	return locator
}

func newTestServerContext(t *testing.T, opts ...Option) *ServerContext {
	t.Helper()
	base := []Option{
		WithObjectsService(stubObjects{}),
		WithLocator(testLocator(t, "prod", "dev")),
	}
	sc, err := NewServerContext(context.Background(), append(base, opts...)...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = sc.Shutdown() })
	return sc
}
