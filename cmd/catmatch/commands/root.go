// ABOUTME: Root command for the catmatch CLI
// ABOUTME: Holds global flags and wires every subcommand
package commands

import (
	"github.com/spf13/cobra"
)

var (
	verbose      bool
	quiet        bool
	outputFormat string
)

const banner = `
 ██████  █████  ████████ ███    ███  █████  ████████  ██████ ██   ██
██      ██   ██    ██    ████  ████ ██   ██    ██    ██      ██   ██
██      ███████    ██    ██ ████ ██ ███████    ██    ██      ███████
██      ██   ██    ██    ██  ██  ██ ██   ██    ██    ██      ██   ██
 ██████ ██   ██    ██    ██      ██ ██   ██    ██     ██████ ██   ██
`

// NewRootCmd creates the root command with all subcommands attached
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catmatch",
		Short: "Match Japfa products against the Licious catalog",
		Long: banner + `
catmatch embeds two scraped product catalogs and ranks, for every
Japfa product, the most similar Licious products by a weighted
blend of title, type and description embeddings.

Reports are plain JSON. Every analysis command (show, unmatched,
distribution, prices) reads a report without calling the API.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return validateFormat(outputFormat)
		},
	}

	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	cmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Only log warnings and errors")
	cmd.PersistentFlags().StringVar(&outputFormat, "format", "auto", "Output format: auto, table, json, yaml")
	cmd.MarkFlagsMutuallyExclusive("verbose", "quiet")

	cmd.AddCommand(NewMatchCmd())
	cmd.AddCommand(NewShowCmd())
	cmd.AddCommand(NewUnmatchedCmd())
	cmd.AddCommand(NewDistributionCmd())
	cmd.AddCommand(NewPricesCmd())
	cmd.AddCommand(NewRecommendCmd())
	cmd.AddCommand(NewPublishCmd())
	cmd.AddCommand(NewFetchCmd())
	cmd.AddCommand(NewReportsCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewCacheCmd())
	cmd.AddCommand(NewMCPCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command
func Execute() error {
	return NewRootCmd().Execute()
}
