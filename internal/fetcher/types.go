package fetcher

import (
	appsv1 "k8s.io/api/apps/v1"
	autoscalingv1 "k8s.io/api/autoscaling/v1"
	corev1 "k8s.io/api/core/v1"
	networkingv1 "k8s.io/api/networking/v1"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/apimachinery/pkg/runtime/schema"
)

// ResourceType names a kind of cluster object the fetcher can list.
type ResourceType string

// Supported resource types. The declaration order of resourceTable is the
// canonical order used for every response.
const (
	ResourceTypePods                     ResourceType = "pods"
	ResourceTypeServices                 ResourceType = "services"
	ResourceTypeConfigMaps               ResourceType = "configmaps"
	ResourceTypeDeployments              ResourceType = "deployments"
	ResourceTypeReplicaSets              ResourceType = "replicasets"
	ResourceTypeHorizontalPodAutoscalers ResourceType = "horizontalpodautoscalers"
	ResourceTypeIngresses                ResourceType = "ingresses"
)

// ClientCategory identifies which typed client serves a resource type.
type ClientCategory string

const (
	ClientCategoryCore        ClientCategory = "core"
	ClientCategoryApps        ClientCategory = "apps"
	ClientCategoryAutoscaling ClientCategory = "autoscaling"
	ClientCategoryNetworking  ClientCategory = "networking"
)

// ErrorType classifies a failed list operation.
type ErrorType string

const (
	ErrorTypeUnauthorized ErrorType = "UNAUTHORIZED_ERROR"
	ErrorTypeSystem       ErrorType = "SYSTEM_ERROR"
	ErrorTypeUnknown      ErrorType = "UNKNOWN_ERROR"
)

// resourceInfo describes how a resource type is listed.
type resourceInfo struct {
	Type     ResourceType
	Category ClientCategory
	GVR      schema.GroupVersionResource
	list     listFunc
}

// resourceTable is ordered canonically.
var resourceTable = []resourceInfo{
	{ResourceTypePods, ClientCategoryCore, corev1.SchemeGroupVersion.WithResource("pods"), listPods},
	{ResourceTypeServices, ClientCategoryCore, corev1.SchemeGroupVersion.WithResource("services"), listServices},
	{ResourceTypeConfigMaps, ClientCategoryCore, corev1.SchemeGroupVersion.WithResource("configmaps"), listConfigMaps},
	{ResourceTypeDeployments, ClientCategoryApps, appsv1.SchemeGroupVersion.WithResource("deployments"), listDeployments},
	{ResourceTypeReplicaSets, ClientCategoryApps, appsv1.SchemeGroupVersion.WithResource("replicasets"), listReplicaSets},
	{ResourceTypeHorizontalPodAutoscalers, ClientCategoryAutoscaling, autoscalingv1.SchemeGroupVersion.WithResource("horizontalpodautoscalers"), listHorizontalPodAutoscalers},
	{ResourceTypeIngresses, ClientCategoryNetworking, networkingv1.SchemeGroupVersion.WithResource("ingresses"), listIngresses},
}

// lookupResource returns the table entry and its canonical index.
func lookupResource(t ResourceType) (resourceInfo, int, bool) {
	for i, info := range resourceTable {
		if info.Type == t {
			return info, i, true
		}
	}
	return resourceInfo{}, -1, false
}

// SupportedResourceTypes returns every supported resource type in canonical order.
func SupportedResourceTypes() []ResourceType {
	types := make([]ResourceType, len(resourceTable))
	for i, info := range resourceTable {
		types[i] = info.Type
	}
	return types
}

// ParseResourceType validates a resource type name.
func ParseResourceType(name string) (ResourceType, error) {
	t := ResourceType(name)
	if _, _, ok := lookupResource(t); !ok {
		return "", &UnrecognisedTypeError{Type: name}
	}
	return t, nil
}

// CategoryFor returns the client category serving t.
func CategoryFor(t ResourceType) (ClientCategory, bool) {
	info, _, ok := lookupResource(t)
	return info.Category, ok
}

// ResourcePath returns the cluster-wide list path for t, e.g. /api/v1/pods
// or /apis/apps/v1/deployments.
func ResourcePath(t ResourceType) string {
	info, _, ok := lookupResource(t)
	if !ok {
		return ""
	}
	return resourcePath(info.GVR)
}

func resourcePath(gvr schema.GroupVersionResource) string {
	if gvr.Group == "" {
		return "/api/" + gvr.Version + "/" + gvr.Resource
	}
	return "/apis/" + gvr.Group + "/" + gvr.Version + "/" + gvr.Resource
}

// ObjectsByServiceIDResponse is the combined, partially successful result of
// a fetch. Every requested type appears exactly once across Responses and Errors.
type ObjectsByServiceIDResponse struct {
	Responses []FetchResponse `json:"responses"`
	Errors    []FetchError    `json:"errors"`
}

// FetchResponse holds the objects listed for one resource type.
type FetchResponse struct {
	Type      ResourceType     `json:"type"`
	Resources []runtime.Object `json:"resources"`
}

// FetchError describes a failed list for one resource type.
type FetchError struct {
	ErrorType    ErrorType `json:"errorType"`
	ResourcePath string    `json:"resourcePath"`
	StatusCode   int       `json:"statusCode"`
}
