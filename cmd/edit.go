package cmd

import (
	"github.com/spf13/cobra"

	"github.com/Tiliavir/activity-timeline/internal/model"
)

var (
	editName   string
	editType   string
	editStatus string
	editNotes  string
)

var editCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Change the name, type, status or notes of an activity",
	Args:  cobra.ExactArgs(1),
	RunE:  runEdit,
}

func init() {
	editCmd.Flags().StringVar(&editName, "name", "", "New name")
	editCmd.Flags().StringVarP(&editType, "type", "t", "", "New type: learn, play, watch, read")
	editCmd.Flags().StringVar(&editStatus, "status", "", "New status: not_started, in_progress, completed")
	editCmd.Flags().StringVar(&editNotes, "notes", "", `New notes ("" clears them)`)
}

func runEdit(cmd *cobra.Command, args []string) error {
	key, e, err := findEntry(args[0])
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("name") {
		e.Name = editName
	}
	if flags.Changed("type") {
		if e.Type, err = model.ParseEntryType(editType); err != nil {
			return err
		}
	}
	if flags.Changed("status") {
		if e.Status, err = model.ParseStatus(editStatus); err != nil {
			return err
		}
	}
	if flags.Changed("notes") {
		e.Notes = editNotes
	}

	found, err := store.UpdateEntry(key, e)
	if err != nil {
		return err
	}
	if !found {
		return notFound(e.ID)
	}
	_, updated, _ := store.Find(e.ID)
	printEntry(cmd.OutOrStdout(), updated)
	return nil
}

// findEntry resolves an id to its month and current value.
func findEntry(id string) (model.MonthKey, model.Entry, error) {
	key, e, ok := store.Find(id)
	if !ok {
		return key, e, notFound(id)
	}
	return key, e, nil
}

func notFound(id string) error {
	return failure("no activity with id %q", id)
}
