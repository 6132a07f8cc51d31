// Package clusters locates the clusters a service may run on.
//
// Clusters are declared in the configuration file:
//
//	clusters:
//	  - name: prod-eu
//	    url: https://prod-eu.example.com:6443
//	    authProvider: serviceAccount
//	    serviceAccountToken: ${PROD_EU_TOKEN}
//	    caData: LS0tLS1CRUdJTi...
//	  - name: dev
//	    url: https://dev.example.com
//	    authProvider: oidc
//	    serviceAccountToken: ${DEV_OIDC_TOKEN}
//	    skipTLSVerify: true
package clusters
