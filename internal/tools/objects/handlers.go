package objects

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/samber/lo"

	"github.com/giantswarm/mcp-service-objects/internal/clusters"
	"github.com/giantswarm/mcp-service-objects/internal/fanout"
	"github.com/giantswarm/mcp-service-objects/internal/fetcher"
	"github.com/giantswarm/mcp-service-objects/internal/k8s"
	"github.com/giantswarm/mcp-service-objects/internal/logging"
	"github.com/giantswarm/mcp-service-objects/internal/server"
	"github.com/giantswarm/mcp-service-objects/internal/tools"
)

// ClusterInfo is one entry of the clusters list. The URL is sanitized.
type ClusterInfo struct {
	Name          string           `json:"name"`
	URL           string           `json:"url"`
	AuthProvider  k8s.AuthProvider `json:"authProvider"`
	SkipTLSVerify bool             `json:"skipTLSVerify,omitempty"`
}

// ResourceTypeInfo describes one supported resource type.
type ResourceTypeInfo struct {
	Type     fetcher.ResourceType   `json:"type"`
	Category fetcher.ClientCategory `json:"category"`
	Path     string                 `json:"path"`
}

func handleServiceObjects(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	serviceID, err := tools.RequiredStringArg(args, "serviceId")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	clusterName, err := tools.StringArg(args, "cluster")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	names, err := tools.StringSliceArg(args, "resourceTypes")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	types := lo.Map(names, func(name string, _ int) fetcher.ResourceType { return fetcher.ResourceType(name) })
	slim, err := tools.BoolArg(args, "slim", true)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var response *fanout.ObjectsResponse
	if clusterName != "" {
		response, err = sc.Objects().GetObjectsByServiceIDOnCluster(ctx, serviceID, clusterName, types)
	} else {
		response, err = sc.Objects().GetObjectsByServiceID(ctx, serviceID, types)
	}
	switch {
	case errors.Is(err, fetcher.ErrUnrecognisedType):
		return mcp.NewToolResultError(fmt.Sprintf("%v (supported: %v)", err, resourceTypeNames())), nil
	case errors.Is(err, clusters.ErrClusterNotFound):
		return mcp.NewToolResultError(fmt.Sprintf("cluster %q is not configured", clusterName)), nil
	case err != nil:
		return mcp.NewToolResultError(fmt.Sprintf("failed to fetch service objects: %v", err)), nil
	}

	if slim {
		response = slimResponse(response)
	}
	return jsonResult(response)
}

func handleClustersList(ctx context.Context, _ mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	located, err := sc.Locator().Clusters(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to list clusters: %v", err)), nil
	}

	infos := lo.Map(located, func(c k8s.ClusterDetails, _ int) ClusterInfo {
		return ClusterInfo{
			Name:          c.Name,
			URL:           logging.SanitizeHost(c.URL),
			AuthProvider:  c.EffectiveAuthProvider(),
			SkipTLSVerify: c.SkipTLSVerify,
		}
	})
	return jsonResult(map[string]any{"clusters": infos})
}

func handleResourceTypes(_ context.Context, _ mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	infos := lo.Map(fetcher.SupportedResourceTypes(), func(t fetcher.ResourceType, _ int) ResourceTypeInfo {
		category, _ := fetcher.CategoryFor(t)
		return ResourceTypeInfo{Type: t, Category: category, Path: fetcher.ResourcePath(t)}
	})
	return jsonResult(map[string]any{
		"labelSelectorKey": sc.Config().LabelSelectorKey,
		"resourceTypes":    infos,
	})
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}
