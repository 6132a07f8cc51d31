package instrumentation

import "strings"

// ClusterType is a coarse classification of a cluster name. Metrics carry
// the type instead of the name so series stay bounded on large fleets.
type ClusterType string

const (
	ClusterTypeProduction  ClusterType = "production"
	ClusterTypeStaging     ClusterType = "staging"
	ClusterTypeDevelopment ClusterType = "development"
	ClusterTypeCICD        ClusterType = "cicd"
	ClusterTypeOperations  ClusterType = "operations"
	ClusterTypeUnknown     ClusterType = "unknown"
	ClusterTypeOther       ClusterType = "other"
)

// clusterNameRule matches a lower-cased cluster name.
type clusterNameRule struct {
	clusterType ClusterType
	prefixes    []string
	contains    []string
	suffixes    []string
}

// clusterNameRules are evaluated in order; the first match wins. CI/CD comes
// first because those names often also contain prod or dev.
var clusterNameRules = []clusterNameRule{
	{
		clusterType: ClusterTypeCICD,
		contains:    []string{"cicd"},
	},
	{
		clusterType: ClusterTypeOperations,
		prefixes:    []string{"ops-", "ops_"},
		contains:    []string{"operations", "-ops-"},
		suffixes:    []string{"-ops"},
	},
	{
		clusterType: ClusterTypeProduction,
		prefixes:    []string{"prod-", "prod_", "prd-"},
		contains:    []string{"production", "-prod-"},
		suffixes:    []string{"-prod", "-prd"},
	},
	{
		clusterType: ClusterTypeStaging,
		prefixes:    []string{"stg-", "uat-"},
		contains:    []string{"staging", "-stg-"},
		suffixes:    []string{"-stg", "-uat"},
	},
	{
		clusterType: ClusterTypeDevelopment,
		prefixes:    []string{"dev-", "dev_", "demo", "test-", "test_"},
		contains:    []string{"development", "-dev-", "-demo-", "-test-"},
		suffixes:    []string{"-dev", "-test"},
	},
}

func (r clusterNameRule) matches(name string) bool {
	for _, p := range r.prefixes {
		if strings.HasPrefix(name, p) {
			return true
		}
	}
	for _, c := range r.contains {
		if strings.Contains(name, c) {
			return true
		}
	}
	for _, s := range r.suffixes {
		if strings.HasSuffix(name, s) {
			return true
		}
	}
	return false
}

// ClassifyClusterName maps a cluster name to a ClusterType, case-insensitively.
//
//	ClassifyClusterName("")              // "unknown"
//	ClassifyClusterName("prod-eu-1")     // "production"
//	ClassifyClusterName("cicdprod")      // "cicd"
//	ClassifyClusterName("infra-ops")     // "operations"
//	ClassifyClusterName("stg-wc-01")     // "staging"
//	ClassifyClusterName("demo-cluster")  // "development"
//	ClassifyClusterName("us-east-1")     // "other"
func ClassifyClusterName(name string) string {
	if name == "" {
		return string(ClusterTypeUnknown)
	}

	lower := strings.ToLower(name)
	for _, rule := range clusterNameRules {
		if rule.matches(lower) {
			return string(rule.clusterType)
		}
	}
	return string(ClusterTypeOther)
}
