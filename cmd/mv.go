package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/activity-timeline/internal/model"
	"github.com/Tiliavir/activity-timeline/internal/timecalc"
)

var (
	mvTo string
	mvBy int
)

var mvCmd = &cobra.Command{
	Use:   "mv <id>",
	Short: "Move an activity to another month",
	Long: `Move an activity to another month, keeping its id and status.

Examples:
  tl mv 3f2a… --to 2024-07
  tl mv 3f2a… --by -1     # one month earlier`,
	Args: cobra.ExactArgs(1),
	RunE: runMv,
}

func init() {
	mvCmd.Flags().StringVar(&mvTo, "to", "", "Destination month as YYYY-MM")
	mvCmd.Flags().IntVar(&mvBy, "by", 0, "Shift by this many months (negative moves earlier)")
	mvCmd.MarkFlagsMutuallyExclusive("to", "by")
	mvCmd.MarkFlagsOneRequired("to", "by")
}

func runMv(cmd *cobra.Command, args []string) error {
	from, e, err := findEntry(args[0])
	if err != nil {
		return err
	}

	var to model.MonthKey
	if cmd.Flags().Changed("to") {
		if to, err = timecalc.ParseMonth(mvTo); err != nil {
			return err
		}
	} else {
		to = timecalc.ShiftMonth(from, mvBy)
	}

	moved, err := store.MoveEntry(e.ID, from, to)
	if err != nil {
		return err
	}
	if !moved {
		return notFound(e.ID)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Moved %q from %s to %s\n", e.Name, timecalc.MonthLabel(from), timecalc.MonthLabel(to))
	return nil
}
