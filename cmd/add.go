package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/activity-timeline/internal/model"
	"github.com/Tiliavir/activity-timeline/internal/timecalc"
)

var (
	addMonth  string
	addType   string
	addStatus string
	addNotes  string
)

var addCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Add an activity to a month",
	Long: `Add an activity to a month. The month defaults to the current one.

Examples:
  tl add "The Go Programming Language" --type read
  tl add Zelda --type play --month 2024-06 --status in_progress`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAdd,
}

func init() {
	addCmd.Flags().StringVar(&addMonth, "month", "", "Month as YYYY-MM (default: current month)")
	addCmd.Flags().StringVarP(&addType, "type", "t", "", "Activity type: learn, play, watch, read")
	addCmd.Flags().StringVar(&addStatus, "status", "", "Initial status (default not_started)")
	addCmd.Flags().StringVar(&addNotes, "notes", "", "Free-form notes")
	_ = addCmd.MarkFlagRequired("type")
}

func runAdd(cmd *cobra.Command, args []string) error {
	key := timecalc.MonthOf(clock.Now())
	if addMonth != "" {
		k, err := timecalc.ParseMonth(addMonth)
		if err != nil {
			return err
		}
		key = k
	}

	typ, err := model.ParseEntryType(addType)
	if err != nil {
		return err
	}
	var status model.Status
	if addStatus != "" {
		if status, err = model.ParseStatus(addStatus); err != nil {
			return err
		}
	}

	e, err := store.AddEntry(key, model.EntryDraft{
		Name:   strings.Join(args, " "),
		Type:   typ,
		Status: status,
		Notes:  addNotes,
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Added %q to %s [%s]\n", e.Name, timecalc.MonthLabel(key), e.ID)
	return nil
}
