package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/sahilm/fuzzy"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"sigs.k8s.io/yaml"

	"github.com/giantswarm/mcp-service-objects/internal/fanout"
	"github.com/giantswarm/mcp-service-objects/internal/fetcher"
)

// Output formats of the fetch and clusters commands.
const (
	outputJSON  = "json"
	outputYAML  = "yaml"
	outputTable = "table"
)

type fetchOptions struct {
	cluster string
	types   []string
	output  string
}

func newFetchCmd() *cobra.Command {
	opts := fetchOptions{}

	cmd := &cobra.Command{
		Use:   "fetch <service-id>",
		Short: "Fetch the objects of a service from the configured clusters",
		Long: `Fetch lists the Kubernetes objects labelled with the given service id on
every configured cluster, or on a single cluster with --cluster.

Failed resource types are reported per cluster; the command only fails when
the request itself is invalid.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFetch(cmd, args[0], opts)
		},
	}

	cmd.Flags().StringVar(&opts.cluster, "cluster", "", "Only query the named cluster")
	cmd.Flags().StringSliceVar(&opts.types, "types", nil, "Resource types to list (default all)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", outputTable, "Output format: json, yaml or table")

	return cmd
}

func runFetch(cmd *cobra.Command, serviceID string, opts fetchOptions) error {
	if err := validateOutput(opts.output); err != nil {
		return err
	}

	types, err := parseTypes(opts.types)
	if err != nil {
		return err
	}

	stack, err := newObjectsStack(appConfig, stackOptions{
		logger:  slog.Default(),
		version: rootCmd.Version,
	})
	if err != nil {
		return err
	}

	var response *fanout.ObjectsResponse
	if opts.cluster != "" {
		response, err = stack.handler.GetObjectsByServiceIDOnCluster(cmd.Context(), serviceID, opts.cluster, types)
	} else {
		response, err = stack.handler.GetObjectsByServiceID(cmd.Context(), serviceID, types)
	}
	if err != nil {
		return err
	}

	return writeObjects(cmd.OutOrStdout(), response, opts.output)
}

// parseTypes validates type names, suggesting the closest supported type
// for a typo.
func parseTypes(names []string) ([]fetcher.ResourceType, error) {
	types := make([]fetcher.ResourceType, 0, len(names))
	for _, name := range names {
		t, err := fetcher.ParseResourceType(strings.ToLower(strings.TrimSpace(name)))
		if err != nil {
			if hint := suggestType(name); hint != "" {
				return nil, fmt.Errorf("%w (did you mean %q?)", err, hint)
			}
			return nil, err
		}
		types = append(types, t)
	}
	return types, nil
}

func suggestType(name string) string {
	supported := lo.Map(fetcher.SupportedResourceTypes(), func(t fetcher.ResourceType, _ int) string {
		return string(t)
	})
	matches := fuzzy.Find(strings.ToLower(name), supported)
	if len(matches) == 0 {
		return ""
	}
	return matches[0].Str
}

func validateOutput(output string) error {
	switch output {
	case outputJSON, outputYAML, outputTable:
		return nil
	default:
		return fmt.Errorf("unsupported output format %q (supported: %s, %s, %s)", output, outputJSON, outputYAML, outputTable)
	}
}

func writeObjects(w io.Writer, response *fanout.ObjectsResponse, output string) error {
	switch output {
	case outputJSON:
		return writeJSON(w, response)
	case outputYAML:
		return writeYAML(w, response)
	case outputTable:
		return writeObjectsTable(w, response)
	}
	return validateOutput(output)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeYAML(w io.Writer, v any) error {
	data, err := yaml.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode yaml: %w", err)
	}
	_, err = w.Write(data)
	return err
}

// writeTable renders rows under upper-cased headers.
func writeTable(w io.Writer, headers []string, rows [][]string) error {
	upper := cases.Upper(language.English)
	tw := tabwriter.NewWriter(w, 0, 0, 3, ' ', 0)

	fmt.Fprintln(tw, strings.Join(lo.Map(headers, func(h string, _ int) string { return upper.String(h) }), "\t"))
	for _, row := range rows {
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	return tw.Flush()
}

func writeObjectsTable(w io.Writer, response *fanout.ObjectsResponse) error {
	var rows [][]string
	for _, item := range response.Items {
		for _, r := range item.Resources {
			rows = append(rows, []string{item.Cluster.Name, string(r.Type), strconv.Itoa(len(r.Resources)), "ok"})
		}
		for _, e := range item.Errors {
			status := string(e.ErrorType)
			if e.StatusCode != 0 {
				status += " (" + strconv.Itoa(e.StatusCode) + ")"
			}
			rows = append(rows, []string{item.Cluster.Name, e.ResourcePath, "-", status})
		}
	}
	if len(rows) == 0 {
		_, err := fmt.Fprintln(w, "No clusters configured.")
		return err
	}
	return writeTable(w, []string{"cluster", "resource", "objects", "status"}, rows)
}

