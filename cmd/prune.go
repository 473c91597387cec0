package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var pruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Remove months without activities",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		n := store.PruneEmptyMonths()
		fmt.Fprintf(cmd.OutOrStdout(), "Removed %d empty month(s)\n", n)
		return nil
	},
}
