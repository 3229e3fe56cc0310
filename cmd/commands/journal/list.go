package journal

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"nathanbeddoewebdev/exosync/internal/auditlog"
	"nathanbeddoewebdev/exosync/internal/tui/styles"
	"nathanbeddoewebdev/exosync/internal/util"
)

func ListCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent journal entries",
		Long: `List recent provider calls recorded while applying plans.

Examples:
  exosync journal list
  exosync journal list --limit 50
  exosync journal list --zone example.com
  exosync journal list -o json`,
		RunE:         runList,
		SilenceUsage: true,
	}

	cmd.Flags().Int("limit", 25, "Number of entries to display")
	cmd.Flags().String("zone", "", "Filter by zone name")
	cmd.Flags().StringP("output", "o", "table", "Output format: table or json")

	return cmd
}

func runList(cmd *cobra.Command, args []string) error {
	limit, _ := cmd.Flags().GetInt("limit")
	if limit <= 0 {
		return fmt.Errorf("limit must be greater than 0")
	}

	zone, _ := cmd.Flags().GetString("zone")
	output, _ := cmd.Flags().GetString("output")
	if output == "" {
		output = "table"
	}
	if output != "table" && output != "json" {
		return fmt.Errorf("unsupported output format %q", output)
	}

	repo, err := auditlog.Open()
	if err != nil {
		return err
	}
	defer repo.Close()

	var entries []auditlog.Entry
	if zone != "" {
		entries, err = repo.ListByZone(util.EnsureFQDN(zone), limit)
	} else {
		entries, err = repo.List(limit)
	}
	if err != nil {
		return err
	}

	if output == "json" {
		encoder := json.NewEncoder(cmd.OutOrStdout())
		encoder.SetIndent("", "  ")
		return encoder.Encode(entries)
	}

	if len(entries) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No journal entries found.")
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TIME\tZONE\tACTION\tRECORD\tOUTCOME\tDURATION\tDETAIL")
	fmt.Fprintln(w, "----\t----\t------\t------\t-------\t--------\t------")
	for _, entry := range entries {
		detail := entry.Detail
		if detail == "" {
			detail = "-"
		}

		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			entry.Timestamp.Local().Format("2006-01-02 15:04:05"),
			entry.Zone,
			entry.Action,
			formatRecord(entry),
			styles.OutcomeStyle(entry.Outcome).Render(entry.Outcome),
			formatDuration(entry.DurationMs),
			detail,
		)
	}
	w.Flush()
	return nil
}

func formatDuration(ms int64) string {
	if ms < 1000 {
		return fmt.Sprintf("%dms", ms)
	}
	d := time.Duration(ms) * time.Millisecond
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	if d < time.Hour {
		return fmt.Sprintf("%dm", int(d.Minutes()))
	}
	return fmt.Sprintf("%dh", int(d.Hours()))
}

// formatRecord renders "name TYPE content [id]", omitting empty parts.
func formatRecord(entry auditlog.Entry) string {
	name := entry.RecordName
	if name == "" || name == "." {
		name = "@"
	}
	s := name + " " + entry.RecordType
	if entry.Content != "" {
		s += " " + entry.Content
	}
	if entry.RecordID != "" {
		s += " [" + entry.RecordID + "]"
	}
	return s
}
