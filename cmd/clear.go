package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var clearYes bool

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete the whole timeline",
	Args:  cobra.NoArgs,
	RunE:  runClear,
}

func init() {
	clearCmd.Flags().BoolVar(&clearYes, "yes", false, "Confirm deleting every month and activity")
}

func runClear(cmd *cobra.Command, args []string) error {
	if !clearYes {
		return failure("refusing to clear %d month(s) without --yes", store.Count())
	}
	if err := store.Clear(); err != nil {
		return commandError("clearing timeline", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Timeline cleared.")
	return nil
}
