// Package objects registers the MCP tools that expose service objects:
// kubernetes_service_objects, kubernetes_clusters_list and
// kubernetes_resource_types.
package objects
