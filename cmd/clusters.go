package cmd

import (
	"strconv"

	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/giantswarm/mcp-service-objects/internal/clusters"
	"github.com/giantswarm/mcp-service-objects/internal/k8s"
	"github.com/giantswarm/mcp-service-objects/internal/logging"
)

// clusterSummary is the credential-free view of a configured cluster.
type clusterSummary struct {
	Name          string `json:"name"`
	URL           string `json:"url"`
	AuthProvider  string `json:"authProvider"`
	SkipTLSVerify bool   `json:"skipTLSVerify"`
}

func newClustersCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "clusters",
		Short: "List the configured clusters",
		Long: `List the clusters read from the config file, in the order requests
query them. Credentials are never printed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateOutput(output); err != nil {
				return err
			}
			locator, err := clusters.LoadFromViper(appConfig)
			if err != nil {
				return err
			}
			details, err := locator.Clusters(cmd.Context())
			if err != nil {
				return err
			}
			summaries := summarizeClusters(details)

			w := cmd.OutOrStdout()
			switch output {
			case outputJSON:
				return writeJSON(w, summaries)
			case outputYAML:
				return writeYAML(w, summaries)
			}
			rows := lo.Map(summaries, func(c clusterSummary, _ int) []string {
				return []string{c.Name, c.URL, c.AuthProvider, strconv.FormatBool(c.SkipTLSVerify)}
			})
			return writeTable(w, []string{"name", "url", "auth", "skip-tls-verify"}, rows)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", outputTable, "Output format: json, yaml or table")
	return cmd
}

func summarizeClusters(details []k8s.ClusterDetails) []clusterSummary {
	return lo.Map(details, func(c k8s.ClusterDetails, _ int) clusterSummary {
		return clusterSummary{
			Name:          c.Name,
			URL:           logging.SanitizeHost(c.URL),
			AuthProvider:  string(c.EffectiveAuthProvider()),
			SkipTLSVerify: c.SkipTLSVerify,
		}
	})
}
