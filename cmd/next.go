package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var nextCmd = &cobra.Command{
	Use:   "next <id>",
	Short: "Advance an activity to its next status",
	Long:  `Advance an activity: not_started -> in_progress -> completed. Completed activities stay completed.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runNext,
}

func runNext(cmd *cobra.Command, args []string) error {
	key, e, err := findEntry(args[0])
	if err != nil {
		return err
	}
	st, ok := store.AdvanceStatus(key, e.ID)
	if !ok {
		return notFound(e.ID)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%q is now %s\n", e.Name, st)
	return nil
}
