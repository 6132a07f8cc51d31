package k8s

import (
	"encoding/base64"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/sync/singleflight"
	"k8s.io/client-go/kubernetes"
	appsv1client "k8s.io/client-go/kubernetes/typed/apps/v1"
	autoscalingv1client "k8s.io/client-go/kubernetes/typed/autoscaling/v1"
	corev1client "k8s.io/client-go/kubernetes/typed/core/v1"
	networkingv1client "k8s.io/client-go/kubernetes/typed/networking/v1"
	"k8s.io/client-go/rest"
)

// ClientsetProvider builds typed clients from ClusterDetails.
type ClientsetProvider struct {
	qps       float32
	burst     int
	timeout   time.Duration
	userAgent string
	logger    *slog.Logger
	cache     *clientsetCache

	// building collapses concurrent misses for one cluster into one build.
	building     singleflight.Group
	newClientset func(*rest.Config) (*kubernetes.Clientset, error)
}

// ProviderOption configures a ClientsetProvider.
type ProviderOption func(*ClientsetProvider)

// WithQPS sets the client-side QPS limit.
func WithQPS(qps float32) ProviderOption {
	return func(p *ClientsetProvider) {
		if qps > 0 {
			p.qps = qps
		}
	}
}

// WithBurst sets the client-side burst limit.
func WithBurst(burst int) ProviderOption {
	return func(p *ClientsetProvider) {
		if burst > 0 {
			p.burst = burst
		}
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(timeout time.Duration) ProviderOption {
	return func(p *ClientsetProvider) {
		if timeout > 0 {
			p.timeout = timeout
		}
	}
}

// WithUserAgent sets the User-Agent sent to the API server.
func WithUserAgent(userAgent string) ProviderOption {
	return func(p *ClientsetProvider) {
		if userAgent != "" {
			p.userAgent = userAgent
		}
	}
}

// WithProviderLogger sets the logger used for client construction events.
func WithProviderLogger(logger *slog.Logger) ProviderOption {
	return func(p *ClientsetProvider) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithClientCache sets the lifetime and capacity of the per-cluster
// clientset cache. Non-positive values keep the defaults.
func WithClientCache(ttl time.Duration, maxEntries int) ProviderOption {
	return func(p *ClientsetProvider) {
		p.cache = newClientsetCache(ttl, maxEntries)
	}
}

// NewClientsetProvider creates a provider with the package defaults.
func NewClientsetProvider(opts ...ProviderOption) *ClientsetProvider {
	p := &ClientsetProvider{
		qps:       DefaultQPSLimit,
		burst:     DefaultBurstLimit,
		timeout:   DefaultTimeout,
		userAgent: DefaultUserAgent,
		logger:    slog.Default(),
		cache:     newClientsetCache(DefaultClientCacheTTL, DefaultClientCacheMaxEntries),

		newClientset: kubernetes.NewForConfig,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// RestConfig translates cluster details into a rest.Config.
func (p *ClientsetProvider) RestConfig(cluster ClusterDetails) (*rest.Config, error) {
	if err := cluster.Validate(); err != nil {
		return nil, err
	}

	config := &rest.Config{
		Host:      cluster.URL,
		UserAgent: p.userAgent,
		QPS:       p.qps,
		Burst:     p.burst,
		Timeout:   p.timeout,
		TLSClientConfig: rest.TLSClientConfig{
			Insecure: cluster.SkipTLSVerify,
		},
	}

	if cluster.CAData != "" {
		ca, err := base64.StdEncoding.DecodeString(cluster.CAData)
		if err != nil {
			return nil, fmt.Errorf("%w: cluster %q: decode caData: %v", ErrInvalidClusterDetails, cluster.Name, err)
		}
		config.CAData = ca
	}

	switch cluster.EffectiveAuthProvider() {
	case AuthProviderServiceAccount:
		config.BearerToken = cluster.ServiceAccountToken
	case AuthProviderOIDC, AuthProviderGoogle:
		source := oauth2.StaticTokenSource(&oauth2.Token{
			AccessToken: cluster.ServiceAccountToken,
			TokenType:   "Bearer",
		})
		config.WrapTransport = func(rt http.RoundTripper) http.RoundTripper {
			return &oauth2.Transport{Source: source, Base: rt}
		}
	}

	p.logger.Debug("built cluster client config",
		slog.String("cluster", cluster.Name),
		slog.String("auth_provider", string(cluster.EffectiveAuthProvider())))

	return config, nil
}

// clientset returns the cached clientset for cluster. Concurrent misses for
// the same details share a single build.
func (p *ClientsetProvider) clientset(cluster ClusterDetails) (*kubernetes.Clientset, error) {
	key := cacheKey(cluster)
	if cs := p.cache.get(key); cs != nil {
		return cs, nil
	}

	v, err, _ := p.building.Do(key, func() (interface{}, error) {
		// Re-check: a flight that finished just before this one may have filled it.
		if cs := p.cache.get(key); cs != nil {
			return cs, nil
		}

		config, err := p.RestConfig(cluster)
		if err != nil {
			return nil, err
		}
		cs, err := p.newClientset(config)
		if err != nil {
			return nil, fmt.Errorf("failed to create client for cluster %q: %w", cluster.Name, err)
		}
		p.cache.set(key, cs)
		return cs, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*kubernetes.Clientset), nil
}

// CoreClient returns a client for the core API group.
func (p *ClientsetProvider) CoreClient(cluster ClusterDetails) (corev1client.CoreV1Interface, error) {
	cs, err := p.clientset(cluster)
	if err != nil {
		return nil, err
	}
	return cs.CoreV1(), nil
}

// AppsClient returns a client for the apps API group.
func (p *ClientsetProvider) AppsClient(cluster ClusterDetails) (appsv1client.AppsV1Interface, error) {
	cs, err := p.clientset(cluster)
	if err != nil {
		return nil, err
	}
	return cs.AppsV1(), nil
}

// AutoscalingClient returns a client for the autoscaling API group.
func (p *ClientsetProvider) AutoscalingClient(cluster ClusterDetails) (autoscalingv1client.AutoscalingV1Interface, error) {
	cs, err := p.clientset(cluster)
	if err != nil {
		return nil, err
	}
	return cs.AutoscalingV1(), nil
}

// NetworkingClient returns a client for the networking API group.
func (p *ClientsetProvider) NetworkingClient(cluster ClusterDetails) (networkingv1client.NetworkingV1Interface, error) {
	cs, err := p.clientset(cluster)
	if err != nil {
		return nil, err
	}
	return cs.NetworkingV1(), nil
}
