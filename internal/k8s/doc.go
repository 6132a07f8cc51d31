// Package k8s describes the clusters the server talks to and builds typed
// Kubernetes clients for them.
//
// ClusterDetails carries the address and credential of one cluster. The
// ClientsetProvider turns those details into a rest.Config and hands out the
// typed clients for the core, apps, autoscaling and networking API groups:
//
//	provider := k8s.NewClientsetProvider(k8s.WithQPS(50), k8s.WithBurst(100))
//	core, err := provider.CoreClient(cluster)
//	if err != nil {
//		return err
//	}
//	pods, err := core.Pods(metav1.NamespaceAll).List(ctx, opts)
//
// Clientsets are cached per distinct ClusterDetails for DefaultClientCacheTTL.
package k8s
