package fetcher

import (
	"context"

	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime"
	appsv1client "k8s.io/client-go/kubernetes/typed/apps/v1"
	autoscalingv1client "k8s.io/client-go/kubernetes/typed/autoscaling/v1"
	corev1client "k8s.io/client-go/kubernetes/typed/core/v1"
	networkingv1client "k8s.io/client-go/kubernetes/typed/networking/v1"

	"github.com/giantswarm/mcp-service-objects/internal/k8s"
)

// ClientProvider resolves the typed client for one client category of a
// cluster. Each call may construct a new client; the fetcher calls it once
// per requested resource type.
type ClientProvider interface {
	CoreClient(cluster k8s.ClusterDetails) (corev1client.CoreV1Interface, error)
	AppsClient(cluster k8s.ClusterDetails) (appsv1client.AppsV1Interface, error)
	AutoscalingClient(cluster k8s.ClusterDetails) (autoscalingv1client.AutoscalingV1Interface, error)
	NetworkingClient(cluster k8s.ClusterDetails) (networkingv1client.NetworkingV1Interface, error)
}

// listFunc resolves the category client and lists one resource type across
// all namespaces.
type listFunc func(ctx context.Context, p ClientProvider, cluster k8s.ClusterDetails, opts metav1.ListOptions) ([]runtime.Object, error)

func listPods(ctx context.Context, p ClientProvider, cluster k8s.ClusterDetails, opts metav1.ListOptions) ([]runtime.Object, error) {
	c, err := p.CoreClient(cluster)
	if err != nil {
		return nil, err
	}
	list, err := c.Pods(metav1.NamespaceAll).List(ctx, opts)
	if err != nil {
		return nil, err
	}
	return toObjects(list.Items), nil
}

func listServices(ctx context.Context, p ClientProvider, cluster k8s.ClusterDetails, opts metav1.ListOptions) ([]runtime.Object, error) {
	c, err := p.CoreClient(cluster)
	if err != nil {
		return nil, err
	}
	list, err := c.Services(metav1.NamespaceAll).List(ctx, opts)
	if err != nil {
		return nil, err
	}
	return toObjects(list.Items), nil
}

func listConfigMaps(ctx context.Context, p ClientProvider, cluster k8s.ClusterDetails, opts metav1.ListOptions) ([]runtime.Object, error) {
	c, err := p.CoreClient(cluster)
	if err != nil {
		return nil, err
	}
	list, err := c.ConfigMaps(metav1.NamespaceAll).List(ctx, opts)
	if err != nil {
		return nil, err
	}
	return toObjects(list.Items), nil
}

func listDeployments(ctx context.Context, p ClientProvider, cluster k8s.ClusterDetails, opts metav1.ListOptions) ([]runtime.Object, error) {
	c, err := p.AppsClient(cluster)
	if err != nil {
		return nil, err
	}
	list, err := c.Deployments(metav1.NamespaceAll).List(ctx, opts)
	if err != nil {
		return nil, err
	}
	return toObjects(list.Items), nil
}

func listReplicaSets(ctx context.Context, p ClientProvider, cluster k8s.ClusterDetails, opts metav1.ListOptions) ([]runtime.Object, error) {
	c, err := p.AppsClient(cluster)
	if err != nil {
		return nil, err
	}
	list, err := c.ReplicaSets(metav1.NamespaceAll).List(ctx, opts)
	if err != nil {
		return nil, err
	}
	return toObjects(list.Items), nil
}

func listHorizontalPodAutoscalers(ctx context.Context, p ClientProvider, cluster k8s.ClusterDetails, opts metav1.ListOptions) ([]runtime.Object, error) {
	c, err := p.AutoscalingClient(cluster)
	if err != nil {
		return nil, err
	}
	list, err := c.HorizontalPodAutoscalers(metav1.NamespaceAll).List(ctx, opts)
	if err != nil {
		return nil, err
	}
	return toObjects(list.Items), nil
}

func listIngresses(ctx context.Context, p ClientProvider, cluster k8s.ClusterDetails, opts metav1.ListOptions) ([]runtime.Object, error) {
	c, err := p.NetworkingClient(cluster)
	if err != nil {
		return nil, err
	}
	list, err := c.Ingresses(metav1.NamespaceAll).List(ctx, opts)
	if err != nil {
		return nil, err
	}
	return toObjects(list.Items), nil
}

// toObjects exposes list items as runtime.Objects without copying them.
func toObjects[T any, PT interface {
	*T
	runtime.Object
}](items []T) []runtime.Object {
	objects := make([]runtime.Object, len(items))
	for i := range items {
		objects[i] = PT(&items[i])
	}
	return objects
}
