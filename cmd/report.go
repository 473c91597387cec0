package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/activity-timeline/internal/model"
	"github.com/Tiliavir/activity-timeline/internal/timecalc"
)

var reportFormat string

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Show how many activities there are per type and status",
	Args:  cobra.NoArgs,
	RunE:  runReport,
}

func init() {
	reportCmd.Flags().StringVar(&reportFormat, "format", "md", "Output format: md, csv, json")
}

type tally struct {
	Key   string `json:"key"`
	Count int    `json:"count"`
}

type summary struct {
	Entries  int     `json:"entries"`
	Months   int     `json:"months"`
	First    string  `json:"first,omitempty"`
	Last     string  `json:"last,omitempty"`
	Span     int     `json:"span_months"`
	ByType   []tally `json:"by_type"`
	ByStatus []tally `json:"by_status"`
}

func summarize(months []model.Month) summary {
	types := map[model.EntryType]int{}
	statuses := map[model.Status]int{}
	s := summary{Months: len(months)}
	for _, m := range months {
		for _, e := range m.Entries {
			types[e.Type]++
			statuses[e.Status]++
			s.Entries++
		}
	}
	if len(months) > 0 {
		first, last := months[0].Key(), months[len(months)-1].Key()
		s.First, s.Last = first.String(), last.String()
		s.Span = timecalc.MonthsBetween(first, last) + 1
	}
	for _, t := range model.EntryTypes {
		s.ByType = append(s.ByType, tally{Key: string(t), Count: types[t]})
	}
	for _, st := range model.Statuses {
		s.ByStatus = append(s.ByStatus, tally{Key: string(st), Count: statuses[st]})
	}
	return s
}

func runReport(cmd *cobra.Command, args []string) error {
	w := cmd.OutOrStdout()
	s := summarize(store.AllMonths())

	switch reportFormat {
	case "csv":
		fmt.Fprintln(w, "group,key,count")
		for _, t := range s.ByType {
			fmt.Fprintf(w, "type,%s,%d\n", t.Key, t.Count)
		}
		for _, t := range s.ByStatus {
			fmt.Fprintf(w, "status,%s,%d\n", t.Key, t.Count)
		}
	case "json":
		data, err := json.MarshalIndent(s, "", "  ")
		if err != nil {
			return fmt.Errorf("encoding JSON: %w", err)
		}
		fmt.Fprintln(w, string(data))
	case "md":
		printSummary(w, s)
	default:
		return failure("unknown format %q (want md, csv or json)", reportFormat)
	}
	return nil
}

func printSummary(w io.Writer, s summary) {
	if s.Months == 0 {
		fmt.Fprintln(w, "No entries found.")
		return
	}
	fmt.Fprintf(w, "%s to %s (%d months, %d with activities)\n", s.First, s.Last, s.Span, s.Months)
	fmt.Fprintln(w, "--------------------------------")
	for _, t := range s.ByType {
		fmt.Fprintf(w, "%-20s%d\n", t.Key, t.Count)
	}
	fmt.Fprintln(w, "--------------------------------")
	for _, t := range s.ByStatus {
		fmt.Fprintf(w, "%-20s%d\n", t.Key, t.Count)
	}
	fmt.Fprintln(w, "--------------------------------")
	fmt.Fprintf(w, "%-20s%d\n", "Total", s.Entries)
}
