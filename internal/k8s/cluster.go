package k8s

import (
	"encoding/base64"
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// AuthProvider tags how the ServiceAccountToken of a cluster is presented.
type AuthProvider string

const (
	// AuthProviderServiceAccount sends the token as a static bearer token.
	AuthProviderServiceAccount AuthProvider = "serviceAccount"

	// AuthProviderOIDC sends the token through an OAuth2 token source.
	AuthProviderOIDC AuthProvider = "oidc"

	// AuthProviderGoogle is the GKE flavour of AuthProviderOIDC.
	AuthProviderGoogle AuthProvider = "google"
)

var (
	// ErrInvalidClusterDetails is returned when cluster details cannot be
	// turned into a client configuration.
	ErrInvalidClusterDetails = errors.New("invalid cluster details")

	// ErrUnsupportedAuthProvider is returned for unknown AuthProvider tags.
	ErrUnsupportedAuthProvider = errors.New("unsupported auth provider")
)

// ClusterDetails identifies a cluster and the credential used to reach it.
// Values are treated as immutable once handed to a provider.
type ClusterDetails struct {
	Name                string       `json:"name" mapstructure:"name"`
	URL                 string       `json:"url" mapstructure:"url"`
	AuthProvider        AuthProvider `json:"authProvider" mapstructure:"authProvider"`
	ServiceAccountToken string       `json:"-" mapstructure:"serviceAccountToken"`
	// CAData is a base64 encoded PEM bundle.
	CAData        string `json:"-" mapstructure:"caData"`
	SkipTLSVerify bool   `json:"skipTLSVerify" mapstructure:"skipTLSVerify"`
}

// Validate checks that the details are complete enough to build a client.
func (c ClusterDetails) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidClusterDetails)
	}
	if c.URL == "" {
		return fmt.Errorf("%w: cluster %q: url is required", ErrInvalidClusterDetails, c.Name)
	}
	u, err := url.Parse(c.URL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("%w: cluster %q: url %q is not absolute", ErrInvalidClusterDetails, c.Name, c.URL)
	}
	if c.SkipTLSVerify && c.CAData != "" {
		return fmt.Errorf("%w: cluster %q: caData and skipTLSVerify are mutually exclusive", ErrInvalidClusterDetails, c.Name)
	}
	if c.CAData != "" {
		if _, err := base64.StdEncoding.DecodeString(c.CAData); err != nil {
			return fmt.Errorf("%w: cluster %q: caData is not valid base64: %v", ErrInvalidClusterDetails, c.Name, err)
		}
	}
	switch c.AuthProvider {
	case "", AuthProviderServiceAccount, AuthProviderOIDC, AuthProviderGoogle:
	default:
		return fmt.Errorf("%w: cluster %q: %q", ErrUnsupportedAuthProvider, c.Name, c.AuthProvider)
	}
	return nil
}

// EffectiveAuthProvider returns the auth provider, defaulting to
// AuthProviderServiceAccount.
func (c ClusterDetails) EffectiveAuthProvider() AuthProvider {
	if c.AuthProvider == "" {
		return AuthProviderServiceAccount
	}
	return c.AuthProvider
}

// String omits credentials.
func (c ClusterDetails) String() string {
	return fmt.Sprintf("%s (%s, auth=%s)", c.Name, c.URL, c.EffectiveAuthProvider())
}
