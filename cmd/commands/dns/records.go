package dns

import (
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"nathanbeddoewebdev/exosync/internal/dns/domain"
)

// RecordsCommand returns the "dns records" subcommand.
func RecordsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "records <zone>",
		Short: "List the raw provider records of a zone",
		Long: `List the records of a zone exactly as the provider returns them,
one row per provider record, including types exosync cannot sync.

Examples:
  exosync dns records example.com
  exosync dns records example.com --type MX`,
		Args: cobra.ExactArgs(1),
		Run:  runRecords,
	}

	cmd.Flags().String("type", "", "Filter records by type (A, AAAA, CNAME, MX, TXT, etc.)")

	return cmd
}

func runRecords(cmd *cobra.Command, args []string) {
	zoneName := args[0]
	typeFilter, _ := cmd.Flags().GetString("type")

	svc, err := newDNSService(cmd, nil)
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
		return
	}

	records, err := svc.ZoneRecords(cmd.Context(), zoneName)
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "Error listing records: %v\n", err)
		return
	}

	if typeFilter != "" {
		filtered := make([]domain.RawRecord, 0, len(records))
		for _, r := range records {
			if strings.EqualFold(string(r.Type), typeFilter) {
				filtered = append(filtered, r)
			}
		}
		records = filtered
	}

	if len(records) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No records found.")
		return
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tTYPE\tTTL\tPRIORITY\tCONTENT")
	fmt.Fprintln(w, "--\t----\t----\t---\t--------\t-------")

	for _, r := range records {
		prio := ""
		if r.Priority != nil {
			prio = strconv.Itoa(*r.Priority)
		}
		name := r.Name
		if domain.IsApex(name) {
			name = "@"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\t%s\n",
			r.ID,
			name,
			string(r.Type),
			r.TTL,
			prio,
			r.Content,
		)
	}

	w.Flush()
}
