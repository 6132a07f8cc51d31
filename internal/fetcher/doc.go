// Package fetcher lists the Kubernetes objects that belong to one service on
// one cluster.
//
// A service owns every object carrying its identifier under the label
// backstage.io/kubernetes-id (configurable with WithLabelSelectorKey). For
// each requested ResourceType the Fetcher resolves the matching typed client
// and lists the type across all namespaces. The lists run concurrently and
// fail independently:
//
//	f, err := fetcher.New(k8s.NewClientsetProvider())
//	if err != nil {
//		return err
//	}
//	resp, err := f.FetchObjectsByServiceID(ctx, "checkout", cluster,
//		[]fetcher.ResourceType{fetcher.ResourceTypePods, fetcher.ResourceTypeIngresses})
//
// The only error FetchObjectsByServiceID returns is a validation error, such
// as an UnrecognisedTypeError, raised before any client is resolved. List
// failures end up in resp.Errors, classified by ClassifyError. Responses and
// Errors are both in canonical order, the order of SupportedResourceTypes.
package fetcher
