package fetcher

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	appsv1 "k8s.io/api/apps/v1"
	autoscalingv1 "k8s.io/api/autoscaling/v1"
	corev1 "k8s.io/api/core/v1"
	networkingv1 "k8s.io/api/networking/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/client-go/kubernetes/fake"
	appsv1client "k8s.io/client-go/kubernetes/typed/apps/v1"
	autoscalingv1client "k8s.io/client-go/kubernetes/typed/autoscaling/v1"
	corev1client "k8s.io/client-go/kubernetes/typed/core/v1"
	networkingv1client "k8s.io/client-go/kubernetes/typed/networking/v1"
	k8stesting "k8s.io/client-go/testing"

	"github.com/giantswarm/mcp-service-objects/internal/k8s"
)

const testServiceID = "checkout"

var testCluster = k8s.ClusterDetails{
	Name:                "prod-eu",
	URL:                 "https://prod-eu.example.com",
	ServiceAccountToken: "token",
}

// testProvider serves typed clients from a fake clientset and counts how
// often each category is resolved.
type testProvider struct {
	clientset *fake.Clientset

	mu       sync.Mutex
	calls    map[ClientCategory]int
	clusters []string

	// failures makes resolution of a category fail.
	failures map[ClientCategory]error
	// onResolve runs outside the lock before the client is returned.
	onResolve func(ClientCategory) error
}

func newTestProvider(objects ...runtime.Object) *testProvider {
	return &testProvider{
		clientset: fake.NewClientset(objects...),
		calls:     map[ClientCategory]int{},
		failures:  map[ClientCategory]error{},
	}
}

func (p *testProvider) resolve(category ClientCategory, cluster k8s.ClusterDetails) error {
	p.mu.Lock()
	p.calls[category]++
	p.clusters = append(p.clusters, cluster.Name)
	err := p.failures[category]
	hook := p.onResolve
	p.mu.Unlock()

	if err != nil {
		return err
	}
	if hook != nil {
		return hook(category)
	}
	return nil
}

func (p *testProvider) callCount(category ClientCategory) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls[category]
}

func (p *testProvider) totalCalls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	total := 0
	for _, n := range p.calls {
		total += n
	}
	return total
}

func (p *testProvider) CoreClient(cluster k8s.ClusterDetails) (corev1client.CoreV1Interface, error) {
	if err := p.resolve(ClientCategoryCore, cluster); err != nil {
		return nil, err
	}
	return p.clientset.CoreV1(), nil
}

func (p *testProvider) AppsClient(cluster k8s.ClusterDetails) (appsv1client.AppsV1Interface, error) {
	if err := p.resolve(ClientCategoryApps, cluster); err != nil {
		return nil, err
	}
	return p.clientset.AppsV1(), nil
}

func (p *testProvider) AutoscalingClient(cluster k8s.ClusterDetails) (autoscalingv1client.AutoscalingV1Interface, error) {
	if err := p.resolve(ClientCategoryAutoscaling, cluster); err != nil {
		return nil, err
	}
	return p.clientset.AutoscalingV1(), nil
}

func (p *testProvider) NetworkingClient(cluster k8s.ClusterDetails) (networkingv1client.NetworkingV1Interface, error) {
	if err := p.resolve(ClientCategoryNetworking, cluster); err != nil {
		return nil, err
	}
	return p.clientset.NetworkingV1(), nil
}

// failList makes every list of resource return err.
func (p *testProvider) failList(resource string, err error) {
	p.clientset.PrependReactor("list", resource, func(k8stesting.Action) (bool, runtime.Object, error) {
		return true, nil, err
	})
}

type recordedFetch struct {
	cluster      string
	resourceType string
	status       string
	errorType    string
}

type recordingMetrics struct {
	mu      sync.Mutex
	fetches []recordedFetch
}

func (m *recordingMetrics) RecordResourceFetch(_ context.Context, clusterName, resourceType, status, errorType string, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fetches = append(m.fetches, recordedFetch{clusterName, resourceType, status, errorType})
}

func serviceLabels(id string) map[string]string {
	return map[string]string{DefaultLabelSelectorKey: id}
}

func meta(name, namespace string, labels map[string]string) metav1.ObjectMeta {
	return metav1.ObjectMeta{Name: name, Namespace: namespace, Labels: labels}
}

// clusterObjects returns one matching object per supported type plus a few
// objects belonging to other services.
func clusterObjects() []runtime.Object {
	own := serviceLabels(testServiceID)
	other := serviceLabels("billing")

	return []runtime.Object{
		&corev1.Pod{ObjectMeta: meta("checkout-7d9f-abc", "shop", own)},
		&corev1.Pod{ObjectMeta: meta("checkout-7d9f-def", "shop-canary", own)},
		&corev1.Pod{ObjectMeta: meta("billing-5c4b-xyz", "billing", other)},
		&corev1.Pod{ObjectMeta: meta("unlabelled", "default", nil)},
		&corev1.Service{ObjectMeta: meta("checkout", "shop", own)},
		&corev1.Service{ObjectMeta: meta("billing", "billing", other)},
		&corev1.ConfigMap{ObjectMeta: meta("checkout-config", "shop", own)},
		&appsv1.Deployment{ObjectMeta: meta("checkout", "shop", own)},
		&appsv1.ReplicaSet{ObjectMeta: meta("checkout-7d9f", "shop", own)},
		&autoscalingv1.HorizontalPodAutoscaler{ObjectMeta: meta("checkout", "shop", own)},
		&networkingv1.Ingress{ObjectMeta: meta("checkout", "shop", own)},
		&networkingv1.Ingress{ObjectMeta: meta("billing", "billing", other)},
	}
}

func responseTypes(resp *ObjectsByServiceIDResponse) []ResourceType {
	types := make([]ResourceType, len(resp.Responses))
	for i, r := range resp.Responses {
		types[i] = r.Type
	}
	return types
}

func objectNames(t *testing.T, objects []runtime.Object) []string {
	t.Helper()
	names := make([]string, 0, len(objects))
	for _, obj := range objects {
		accessor, ok := obj.(metav1.Object)
		require.True(t, ok, "object %T has no metadata", obj)
		names = append(names, accessor.GetNamespace()+"/"+accessor.GetName())
	}
	return names
}

func newTestFetcher(t *testing.T, provider ClientProvider, opts ...Option) *Fetcher {
	t.Helper()
	f, err := New(provider, opts...)
	require.NoError(t, err)
	return f
}

func TestNew(t *testing.T) {
	_, err := New(nil)
	assert.ErrorIs(t, err, ErrMissingClientProvider)

	f, err := New(newTestProvider())
	require.NoError(t, err)
	assert.Equal(t, DefaultLabelSelectorKey, f.labelSelectorKey)
	assert.NotNil(t, f.logger)
	assert.Zero(t, f.maxConcurrency)

	f, err = New(newTestProvider(),
		WithLabelSelectorKey("app.kubernetes.io/part-of"),
		WithLabelSelectorKey(""),
		WithMaxConcurrency(2),
		WithLogger(nil),
	)
	require.NoError(t, err)
	assert.Equal(t, "app.kubernetes.io/part-of", f.labelSelectorKey)
	assert.Equal(t, 2, f.maxConcurrency)
	assert.NotNil(t, f.logger)
}

func TestFetchObjectsByServiceID_AllTypes(t *testing.T) {
	provider := newTestProvider(clusterObjects()...)
	f := newTestFetcher(t, provider)

	resp, err := f.FetchObjectsByServiceID(context.Background(), testServiceID, testCluster, SupportedResourceTypes())
	require.NoError(t, err)

	assert.Empty(t, resp.Errors)
	assert.Equal(t, SupportedResourceTypes(), responseTypes(resp))

	expected := map[ResourceType][]string{
		ResourceTypePods:                     {"shop/checkout-7d9f-abc", "shop-canary/checkout-7d9f-def"},
		ResourceTypeServices:                 {"shop/checkout"},
		ResourceTypeConfigMaps:               {"shop/checkout-config"},
		ResourceTypeDeployments:              {"shop/checkout"},
		ResourceTypeReplicaSets:              {"shop/checkout-7d9f"},
		ResourceTypeHorizontalPodAutoscalers: {"shop/checkout"},
		ResourceTypeIngresses:                {"shop/checkout"},
	}
	for _, r := range resp.Responses {
		assert.ElementsMatch(t, expected[r.Type], objectNames(t, r.Resources), "resources for %s", r.Type)
	}
}

func TestFetchObjectsByServiceID_PartialFailure(t *testing.T) {
	provider := newTestProvider(clusterObjects()...)
	provider.failList("services", apierrors.NewUnauthorized("token expired"))
	provider.failList("deployments", apierrors.NewInternalError(errors.New("etcd unavailable")))
	provider.failList("ingresses", &apierrors.StatusError{ErrStatus: metav1.Status{Code: 900}})

	f := newTestFetcher(t, provider)

	resp, err := f.FetchObjectsByServiceID(context.Background(), testServiceID, testCluster, SupportedResourceTypes())
	require.NoError(t, err)

	assert.Equal(t, []ResourceType{
		ResourceTypePods,
		ResourceTypeConfigMaps,
		ResourceTypeReplicaSets,
		ResourceTypeHorizontalPodAutoscalers,
	}, responseTypes(resp))

	assert.Equal(t, []FetchError{
		{ErrorType: ErrorTypeUnauthorized, ResourcePath: "/api/v1/services", StatusCode: 401},
		{ErrorType: ErrorTypeSystem, ResourcePath: "/apis/apps/v1/deployments", StatusCode: 500},
		{ErrorType: ErrorTypeUnknown, ResourcePath: "/apis/networking.k8s.io/v1/ingresses", StatusCode: 900},
	}, resp.Errors)
}

func TestFetchObjectsByServiceID_RepeatedCallsMatch(t *testing.T) {
	provider := newTestProvider(clusterObjects()...)
	provider.failList("services", apierrors.NewUnauthorized("token expired"))
	provider.failList("ingresses", apierrors.NewInternalError(errors.New("etcd unavailable")))

	f := newTestFetcher(t, provider)
	categories := []ClientCategory{ClientCategoryCore, ClientCategoryApps, ClientCategoryAutoscaling, ClientCategoryNetworking}

	first, err := f.FetchObjectsByServiceID(context.Background(), testServiceID, testCluster, SupportedResourceTypes())
	require.NoError(t, err)
	afterFirst := map[ClientCategory]int{}
	for _, c := range categories {
		afterFirst[c] = provider.callCount(c)
	}

	second, err := f.FetchObjectsByServiceID(context.Background(), testServiceID, testCluster, SupportedResourceTypes())
	require.NoError(t, err)

	require.Equal(t, responseTypes(first), responseTypes(second))
	assert.Equal(t, first.Errors, second.Errors)
	for i := range first.Responses {
		assert.ElementsMatch(t,
			objectNames(t, first.Responses[i].Resources),
			objectNames(t, second.Responses[i].Resources),
			"objects for %s", first.Responses[i].Type)
	}

	for _, c := range categories {
		assert.Equal(t, 2*afterFirst[c], provider.callCount(c), "client resolutions for %s", c)
	}
}

func TestFetchObjectsByServiceID_AllFail(t *testing.T) {
	provider := newTestProvider()
	for _, resource := range []string{"pods", "services"} {
		provider.failList(resource, apierrors.NewUnauthorized("denied"))
	}

	f := newTestFetcher(t, provider)

	resp, err := f.FetchObjectsByServiceID(context.Background(), testServiceID, testCluster,
		[]ResourceType{ResourceTypeServices, ResourceTypePods})
	require.NoError(t, err, "per-type failures never fail the call")

	assert.NotNil(t, resp.Responses)
	assert.Empty(t, resp.Responses)
	require.Len(t, resp.Errors, 2)
	assert.Equal(t, "/api/v1/pods", resp.Errors[0].ResourcePath)
	assert.Equal(t, "/api/v1/services", resp.Errors[1].ResourcePath)
}

func TestFetchObjectsByServiceID_NonAPIError(t *testing.T) {
	provider := newTestProvider()
	provider.failList("configmaps", errors.New("dial tcp 10.0.0.1:6443: connect: connection refused"))

	f := newTestFetcher(t, provider)

	resp, err := f.FetchObjectsByServiceID(context.Background(), testServiceID, testCluster,
		[]ResourceType{ResourceTypeConfigMaps})
	require.NoError(t, err)

	assert.Equal(t, []FetchError{
		{ErrorType: ErrorTypeUnknown, ResourcePath: "/api/v1/configmaps", StatusCode: 0},
	}, resp.Errors)
}

func TestFetchObjectsByServiceID_ClientResolutionFailure(t *testing.T) {
	provider := newTestProvider(clusterObjects()...)
	provider.failures[ClientCategoryApps] = errors.New("no route to cluster")

	f := newTestFetcher(t, provider)

	resp, err := f.FetchObjectsByServiceID(context.Background(), testServiceID, testCluster,
		[]ResourceType{ResourceTypeReplicaSets, ResourceTypePods, ResourceTypeDeployments})
	require.NoError(t, err)

	assert.Equal(t, []ResourceType{ResourceTypePods}, responseTypes(resp))
	assert.Equal(t, []FetchError{
		{ErrorType: ErrorTypeUnknown, ResourcePath: "/apis/apps/v1/deployments", StatusCode: 0},
		{ErrorType: ErrorTypeUnknown, ResourcePath: "/apis/apps/v1/replicasets", StatusCode: 0},
	}, resp.Errors)
}

func TestFetchObjectsByServiceID_UnrecognisedType(t *testing.T) {
	provider := newTestProvider(clusterObjects()...)
	f := newTestFetcher(t, provider)

	resp, err := f.FetchObjectsByServiceID(context.Background(), testServiceID, testCluster,
		[]ResourceType{ResourceTypePods, "foo", ResourceTypeServices})

	require.Error(t, err)
	assert.Nil(t, resp)
	assert.EqualError(t, err, "unrecognised type=foo")
	assert.ErrorIs(t, err, ErrUnrecognisedType)

	var typeErr *UnrecognisedTypeError
	require.ErrorAs(t, err, &typeErr)
	assert.Equal(t, "foo", typeErr.Type)

	assert.Zero(t, provider.totalCalls(), "no client may be resolved for an invalid request")
	assert.Empty(t, provider.clientset.Actions(), "no list may be issued for an invalid request")
}

func TestFetchObjectsByServiceID_CanonicalOrderAndDedup(t *testing.T) {
	provider := newTestProvider(clusterObjects()...)
	f := newTestFetcher(t, provider)

	resp, err := f.FetchObjectsByServiceID(context.Background(), testServiceID, testCluster, []ResourceType{
		ResourceTypeIngresses,
		ResourceTypePods,
		ResourceTypeIngresses,
		ResourceTypeDeployments,
		ResourceTypePods,
	})
	require.NoError(t, err)

	assert.Equal(t, []ResourceType{
		ResourceTypePods,
		ResourceTypeDeployments,
		ResourceTypeIngresses,
	}, responseTypes(resp))
	assert.Len(t, provider.clientset.Actions(), 3, "duplicates must not be listed twice")
}

func TestFetchObjectsByServiceID_ResolvesOnlyRequestedCategories(t *testing.T) {
	provider := newTestProvider(clusterObjects()...)
	f := newTestFetcher(t, provider)

	_, err := f.FetchObjectsByServiceID(context.Background(), testServiceID, testCluster,
		[]ResourceType{ResourceTypePods, ResourceTypeServices})
	require.NoError(t, err)

	assert.Equal(t, 2, provider.callCount(ClientCategoryCore), "one core resolution per requested core type")
	assert.Zero(t, provider.callCount(ClientCategoryApps))
	assert.Zero(t, provider.callCount(ClientCategoryAutoscaling))
	assert.Zero(t, provider.callCount(ClientCategoryNetworking))

	for _, name := range provider.clusters {
		assert.Equal(t, testCluster.Name, name, "clients must be resolved for the requested cluster")
	}
}

func TestFetchObjectsByServiceID_EmptyRequest(t *testing.T) {
	provider := newTestProvider(clusterObjects()...)
	f := newTestFetcher(t, provider)

	resp, err := f.FetchObjectsByServiceID(context.Background(), testServiceID, testCluster, nil)
	require.NoError(t, err)

	assert.NotNil(t, resp.Responses)
	assert.NotNil(t, resp.Errors)
	assert.Empty(t, resp.Responses)
	assert.Empty(t, resp.Errors)
	assert.Zero(t, provider.totalCalls())
}

func TestFetchObjectsByServiceID_EmptyServiceID(t *testing.T) {
	provider := newTestProvider()
	f := newTestFetcher(t, provider)

	_, err := f.FetchObjectsByServiceID(context.Background(), "", testCluster, []ResourceType{ResourceTypePods})
	assert.ErrorIs(t, err, ErrEmptyServiceID)
	assert.Zero(t, provider.totalCalls())
}

func TestFetchObjectsByServiceID_NoMatches(t *testing.T) {
	provider := newTestProvider(clusterObjects()...)
	f := newTestFetcher(t, provider)

	resp, err := f.FetchObjectsByServiceID(context.Background(), "unknown-service", testCluster,
		[]ResourceType{ResourceTypePods})
	require.NoError(t, err)

	require.Len(t, resp.Responses, 1)
	assert.NotNil(t, resp.Responses[0].Resources)
	assert.Empty(t, resp.Responses[0].Resources)
}

func TestFetchObjectsByServiceID_LabelSelector(t *testing.T) {
	provider := newTestProvider(
		&corev1.Pod{ObjectMeta: meta("a", "shop", map[string]string{"app.kubernetes.io/part-of": testServiceID})},
		&corev1.Pod{ObjectMeta: meta("b", "shop", serviceLabels(testServiceID))},
	)
	f := newTestFetcher(t, provider, WithLabelSelectorKey("app.kubernetes.io/part-of"))

	resp, err := f.FetchObjectsByServiceID(context.Background(), testServiceID, testCluster,
		[]ResourceType{ResourceTypePods})
	require.NoError(t, err)

	require.Len(t, resp.Responses, 1)
	assert.Equal(t, []string{"shop/a"}, objectNames(t, resp.Responses[0].Resources))

	actions := provider.clientset.Actions()
	require.Len(t, actions, 1)
	list, ok := actions[0].(k8stesting.ListAction)
	require.True(t, ok)
	assert.Equal(t, metav1.NamespaceAll, list.GetNamespace())
	assert.Equal(t, "app.kubernetes.io/part-of="+testServiceID, list.GetListRestrictions().Labels.String())
}

func TestFetchObjectsByServiceID_RunsConcurrently(t *testing.T) {
	provider := newTestProvider(clusterObjects()...)

	// Every resolution waits until all three have started. A sequential
	// implementation would time out and report errors.
	const parallel = 3
	var started sync.WaitGroup
	started.Add(parallel)
	allStarted := make(chan struct{})
	go func() {
		started.Wait()
		close(allStarted)
	}()
	provider.onResolve = func(ClientCategory) error {
		started.Done()
		select {
		case <-allStarted:
			return nil
		case <-time.After(5 * time.Second):
			return errors.New("resolutions did not overlap")
		}
	}

	f := newTestFetcher(t, provider)
	resp, err := f.FetchObjectsByServiceID(context.Background(), testServiceID, testCluster,
		[]ResourceType{ResourceTypePods, ResourceTypeDeployments, ResourceTypeIngresses})
	require.NoError(t, err)

	assert.Empty(t, resp.Errors)
	assert.Len(t, resp.Responses, parallel)
}

func TestFetchObjectsByServiceID_MaxConcurrency(t *testing.T) {
	provider := newTestProvider(clusterObjects()...)

	var mu sync.Mutex
	inFlight, maxInFlight := 0, 0
	provider.onResolve = func(ClientCategory) error {
		mu.Lock()
		inFlight++
		if inFlight > maxInFlight {
			maxInFlight = inFlight
		}
		mu.Unlock()

		time.Sleep(10 * time.Millisecond)

		mu.Lock()
		inFlight--
		mu.Unlock()
		return nil
	}

	f := newTestFetcher(t, provider, WithMaxConcurrency(1))
	resp, err := f.FetchObjectsByServiceID(context.Background(), testServiceID, testCluster, SupportedResourceTypes())
	require.NoError(t, err)

	assert.Len(t, resp.Responses, len(SupportedResourceTypes()))
	assert.Equal(t, 1, maxInFlight)
}

func TestFetchObjectsByServiceID_RecordsMetrics(t *testing.T) {
	provider := newTestProvider(clusterObjects()...)
	provider.failList("services", apierrors.NewUnauthorized("denied"))
	metrics := &recordingMetrics{}

	f := newTestFetcher(t, provider, WithMetrics(metrics))
	_, err := f.FetchObjectsByServiceID(context.Background(), testServiceID, testCluster,
		[]ResourceType{ResourceTypePods, ResourceTypeServices})
	require.NoError(t, err)

	assert.ElementsMatch(t, []recordedFetch{
		{cluster: "prod-eu", resourceType: "pods", status: "success"},
		{cluster: "prod-eu", resourceType: "services", status: "error", errorType: string(ErrorTypeUnauthorized)},
	}, metrics.fetches)
}

func TestObjectsByServiceIDResponse_JSON(t *testing.T) {
	provider := newTestProvider(clusterObjects()...)
	provider.failList("services", apierrors.NewUnauthorized("denied"))
	f := newTestFetcher(t, provider)

	resp, err := f.FetchObjectsByServiceID(context.Background(), testServiceID, testCluster,
		[]ResourceType{ResourceTypeServices, ResourceTypeConfigMaps})
	require.NoError(t, err)

	data, err := json.Marshal(resp)
	require.NoError(t, err)

	var decoded struct {
		Responses []struct {
			Type      string            `json:"type"`
			Resources []json.RawMessage `json:"resources"`
		} `json:"responses"`
		Errors []map[string]any `json:"errors"`
	}
	require.NoError(t, json.Unmarshal(data, &decoded))

	require.Len(t, decoded.Responses, 1)
	assert.Equal(t, "configmaps", decoded.Responses[0].Type)
	assert.Len(t, decoded.Responses[0].Resources, 1)

	require.Len(t, decoded.Errors, 1)
	assert.Equal(t, "UNAUTHORIZED_ERROR", decoded.Errors[0]["errorType"])
	assert.Equal(t, "/api/v1/services", decoded.Errors[0]["resourcePath"])
	assert.Equal(t, float64(401), decoded.Errors[0]["statusCode"])
}
