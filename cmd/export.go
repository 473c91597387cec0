package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/Tiliavir/activity-timeline/internal/model"
	"github.com/Tiliavir/activity-timeline/internal/timecalc"
)

var exportFormat string

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the whole timeline to stdout",
	Args:  cobra.NoArgs,
	RunE:  runExport,
}

func init() {
	exportCmd.Flags().StringVar(&exportFormat, "format", "csv", "Output format: csv, json, md, yaml")
}

func runExport(cmd *cobra.Command, args []string) error {
	w := cmd.OutOrStdout()
	snap := store.Snapshot()

	switch exportFormat {
	case "json":
		data, err := json.MarshalIndent(snap, "", "  ")
		if err != nil {
			return fmt.Errorf("encoding JSON: %w", err)
		}
		fmt.Fprintln(w, string(data))
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(snap); err != nil {
			return fmt.Errorf("encoding YAML: %w", err)
		}
		return enc.Close()
	case "md":
		printMarkdown(w, snap.Months)
	case "csv":
		printCSV(w, snap.Months)
	default:
		return failure("unknown format %q (want csv, json, md or yaml)", exportFormat)
	}
	return nil
}

func printCSV(w io.Writer, months []model.Month) {
	fmt.Fprintln(w, "month,id,name,type,status,notes")
	for _, m := range months {
		for _, e := range m.Entries {
			fmt.Fprintf(w, "%s,%s,%s,%s,%s,%s\n",
				m.Key(),
				csvEscape(e.ID),
				csvEscape(e.Name),
				e.Type,
				e.Status,
				csvEscape(e.Notes),
			)
		}
	}
}

// csvEscape wraps a field in quotes if it contains a comma, quote, or newline.
func csvEscape(s string) string {
	if !strings.ContainsAny(s, ",\"\n\r") {
		return s
	}
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

func printMarkdown(w io.Writer, months []model.Month) {
	fmt.Fprintln(w, "# Activity timeline")
	for _, m := range months {
		fmt.Fprintf(w, "\n## %s\n\n", timecalc.MonthLabel(m.Key()))
		fmt.Fprintln(w, "| Status | Type | Name | Notes |")
		fmt.Fprintln(w, "|---|---|---|---|")
		for _, e := range m.Entries {
			fmt.Fprintf(w, "| %s | %s | %s | %s |\n", e.Status, e.Type, mdEscape(e.Name), mdEscape(e.Notes))
		}
	}
}

// mdEscape keeps a value inside a single table cell.
func mdEscape(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.ReplaceAll(s, "\n", " ")
}
