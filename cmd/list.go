package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/activity-timeline/internal/model"
	"github.com/Tiliavir/activity-timeline/internal/timecalc"
	"github.com/Tiliavir/activity-timeline/internal/timeline"
)

var (
	listCurrent  bool
	listTypes    []string
	listStatuses []string
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List months and their activities",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

func init() {
	listCmd.Flags().BoolVar(&listCurrent, "current", false, "Always show the current month, even when it is empty")
	listCmd.Flags().StringSliceVar(&listTypes, "type", nil, "Only show these types (learn, play, watch, read)")
	listCmd.Flags().StringSliceVar(&listStatuses, "status", nil, "Only show these statuses (not_started, in_progress, completed)")
}

func runList(cmd *cobra.Command, args []string) error {
	f, err := parseFilter(listTypes, listStatuses)
	if err != nil {
		return err
	}

	months := store.AllMonths()
	if listCurrent {
		months = store.MonthsIncludingCurrent()
	}
	printList(cmd.OutOrStdout(), f.Apply(months))
	return nil
}

func parseFilter(types, statuses []string) (timeline.Filter, error) {
	var f timeline.Filter
	for _, s := range types {
		t, err := model.ParseEntryType(s)
		if err != nil {
			return f, err
		}
		f.Types = append(f.Types, t)
	}
	for _, s := range statuses {
		st, err := model.ParseStatus(s)
		if err != nil {
			return f, err
		}
		f.Statuses = append(f.Statuses, st)
	}
	return f, nil
}

// printList prints one heading per month followed by its entries.
func printList(w io.Writer, months []model.Month) {
	if len(months) == 0 {
		fmt.Fprintln(w, "No entries found.")
		return
	}

	for i, m := range months {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintln(w, timecalc.MonthLabel(m.Key()))
		if len(m.Entries) == 0 {
			fmt.Fprintln(w, "  (nothing yet)")
			continue
		}
		for _, e := range m.Entries {
			printEntry(w, e)
		}
	}
}

func printEntry(w io.Writer, e model.Entry) {
	fmt.Fprintf(w, "  %s %-5s  %s  [%s]\n", statusMark(e.Status), e.Type, e.Name, e.ID)
	if e.Notes != "" {
		fmt.Fprintf(w, "        %s\n", e.Notes)
	}
}

func statusMark(s model.Status) string {
	switch s {
	case model.StatusInProgress:
		return "[~]"
	case model.StatusCompleted:
		return "[x]"
	default:
		return "[ ]"
	}
}
