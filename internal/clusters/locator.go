package clusters

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/samber/lo"
	"github.com/spf13/viper"

	"github.com/giantswarm/mcp-service-objects/internal/k8s"
)

// ConfigKey is the configuration key holding the cluster list.
const ConfigKey = "clusters"

var (
	// ErrClusterNotFound is returned by Lookup for unknown cluster names.
	ErrClusterNotFound = errors.New("cluster not found")

	// ErrDuplicateCluster is returned when two clusters share a name.
	ErrDuplicateCluster = errors.New("duplicate cluster name")
)

// ConfigLocator serves a fixed list of clusters read from configuration.
type ConfigLocator struct {
	clusters []k8s.ClusterDetails
	byName   map[string]int
}

// NewConfigLocator validates clusters and returns a locator over them. The
// order of clusters is preserved.
func NewConfigLocator(clusters []k8s.ClusterDetails) (*ConfigLocator, error) {
	if dups := lo.FindDuplicatesBy(clusters, func(c k8s.ClusterDetails) string { return c.Name }); len(dups) > 0 {
		return nil, fmt.Errorf("%w: %q", ErrDuplicateCluster, dups[0].Name)
	}

	l := &ConfigLocator{
		clusters: make([]k8s.ClusterDetails, len(clusters)),
		byName:   make(map[string]int, len(clusters)),
	}
	for i, c := range clusters {
		if err := c.Validate(); err != nil {
			return nil, fmt.Errorf("cluster #%d: %w", i, err)
		}
		l.clusters[i] = c
		l.byName[c.Name] = i
	}
	return l, nil
}

// LoadFromViper reads the cluster list under ConfigKey. Environment
// references such as ${PROD_TOKEN} in serviceAccountToken and caData are
// expanded so credentials can stay out of the file.
func LoadFromViper(v *viper.Viper) (*ConfigLocator, error) {
	var clusters []k8s.ClusterDetails
	if err := v.UnmarshalKey(ConfigKey, &clusters); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", ConfigKey, err)
	}

	for i := range clusters {
		clusters[i].ServiceAccountToken = os.ExpandEnv(clusters[i].ServiceAccountToken)
		clusters[i].CAData = os.ExpandEnv(clusters[i].CAData)
	}

	return NewConfigLocator(clusters)
}

// Clusters returns a copy of the configured clusters in configuration order.
func (l *ConfigLocator) Clusters(_ context.Context) ([]k8s.ClusterDetails, error) {
	out := make([]k8s.ClusterDetails, len(l.clusters))
	copy(out, l.clusters)
	return out, nil
}

// Lookup returns the cluster named name.
func (l *ConfigLocator) Lookup(name string) (k8s.ClusterDetails, error) {
	i, ok := l.byName[name]
	if !ok {
		return k8s.ClusterDetails{}, fmt.Errorf("%w: %q", ErrClusterNotFound, name)
	}
	return l.clusters[i], nil
}

// Names returns the configured cluster names in configuration order.
func (l *ConfigLocator) Names() []string {
	return lo.Map(l.clusters, func(c k8s.ClusterDetails, _ int) string { return c.Name })
}

// Len returns the number of configured clusters.
func (l *ConfigLocator) Len() int {
	return len(l.clusters)
}
