package cli

import (
	"github.com/spf13/cobra"
)

func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "tradejournal-billing",
		Short:         "Trade journal billing service",
		Long:          `Subscription billing backend for the trade journal: provider webhooks, billing actions and access decisions.`,
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	rootCmd.AddCommand(
		newServeCommand(),
		newMigrateCommand(),
	)
	return rootCmd
}
