package objects

import (
	"k8s.io/apimachinery/pkg/api/meta"
	"k8s.io/apimachinery/pkg/runtime"

	"github.com/giantswarm/mcp-service-objects/internal/fanout"
	"github.com/giantswarm/mcp-service-objects/internal/fetcher"
)

// lastAppliedAnnotation duplicates the whole object as JSON.
const lastAppliedAnnotation = "kubectl.kubernetes.io/last-applied-configuration"

// slimResponse returns a copy of response whose objects carry no managed
// fields and no last-applied annotation. The input is left untouched.
func slimResponse(response *fanout.ObjectsResponse) *fanout.ObjectsResponse {
	if response == nil {
		return nil
	}

	out := &fanout.ObjectsResponse{Items: make([]fanout.ClusterObjects, len(response.Items))}
	for i, item := range response.Items {
		resources := make([]fetcher.FetchResponse, len(item.Resources))
		for j, r := range item.Resources {
			objs := make([]runtime.Object, len(r.Resources))
			for k, obj := range r.Resources {
				objs[k] = slimObject(obj)
			}
			resources[j] = fetcher.FetchResponse{Type: r.Type, Resources: objs}
		}
		out.Items[i] = fanout.ClusterObjects{
			Cluster:   item.Cluster,
			Resources: resources,
			Errors:    item.Errors,
		}
	}
	return out
}

func slimObject(obj runtime.Object) runtime.Object {
	if obj == nil {
		return nil
	}
	obj = obj.DeepCopyObject()

	accessor, err := meta.Accessor(obj)
	if err != nil {
		return obj
	}
	accessor.SetManagedFields(nil)
	if annotations := accessor.GetAnnotations(); annotations != nil {
		delete(annotations, lastAppliedAnnotation)
		if len(annotations) == 0 {
			annotations = nil
		}
		accessor.SetAnnotations(annotations)
	}
	return obj
}
