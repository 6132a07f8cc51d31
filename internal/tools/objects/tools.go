package objects

import (
	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/giantswarm/mcp-service-objects/internal/fetcher"
	"github.com/giantswarm/mcp-service-objects/internal/server"
	"github.com/giantswarm/mcp-service-objects/internal/tools"
)

// Tool names.
const (
	ToolServiceObjects = "kubernetes_service_objects"
	ToolClustersList   = "kubernetes_clusters_list"
	ToolResourceTypes  = "kubernetes_resource_types"
)

// RegisterObjectsTools registers the service object tools with s.
func RegisterObjectsTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	serviceObjectsTool := mcp.NewTool(ToolServiceObjects,
		mcp.WithDescription("List the Kubernetes objects (pods, services, deployments and more) labelled as belonging to a service, across the configured clusters"),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithString("serviceId",
			mcp.Required(),
			mcp.Description("Service identifier matched against the "+sc.Config().LabelSelectorKey+" label"),
		),
		mcp.WithString("cluster",
			mcp.Description("Name of a configured cluster (optional, all clusters when empty)"),
		),
		mcp.WithArray("resourceTypes",
			mcp.Description("Resource types to list (optional, all supported types when empty)"),
			mcp.Items(map[string]any{
				"type": "string",
				"enum": resourceTypeNames(),
			}),
		),
		mcp.WithBoolean("slim",
			mcp.Description("Drop managedFields and the last-applied-configuration annotation from objects (default true)"),
		),
	)
	s.AddTool(serviceObjectsTool, tools.WrapWithInvocationLogging(ToolServiceObjects, handleServiceObjects, sc))

	clustersTool := mcp.NewTool(ToolClustersList,
		mcp.WithDescription("List the configured Kubernetes clusters"),
		mcp.WithReadOnlyHintAnnotation(true),
	)
	s.AddTool(clustersTool, tools.WrapWithInvocationLogging(ToolClustersList, handleClustersList, sc))

	resourceTypesTool := mcp.NewTool(ToolResourceTypes,
		mcp.WithDescription("List the resource types that can be fetched for a service"),
		mcp.WithReadOnlyHintAnnotation(true),
	)
	s.AddTool(resourceTypesTool, tools.WrapWithInvocationLogging(ToolResourceTypes, handleResourceTypes, sc))

	return nil
}

func resourceTypeNames() []string {
	supported := fetcher.SupportedResourceTypes()
	names := make([]string, len(supported))
	for i, t := range supported {
		names[i] = string(t)
	}
	return names
}
