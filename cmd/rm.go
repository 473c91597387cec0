package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/activity-timeline/internal/timecalc"
)

var rmCmd = &cobra.Command{
	Use:     "rm <id>",
	Aliases: []string{"delete"},
	Short:   "Delete an activity",
	Args:    cobra.ExactArgs(1),
	RunE:    runRm,
}

func runRm(cmd *cobra.Command, args []string) error {
	key, e, err := findEntry(args[0])
	if err != nil {
		return err
	}
	if !store.DeleteEntry(key, e.ID) {
		return notFound(e.ID)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Deleted %q from %s\n", e.Name, timecalc.MonthLabel(key))
	return nil
}
