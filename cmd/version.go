package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number of mcp-service-objects",
		Long: `Prints the release of mcp-service-objects that is running. Release
builds can be updated in place with the self-update command.`,
		Run: func(cmd *cobra.Command, args []string) {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "mcp-service-objects version %s\n", rootCmd.Version)
		},
	}
}
