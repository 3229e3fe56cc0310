package dns

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

// ZonesCommand returns the "dns zones" subcommand.
func ZonesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "zones",
		Short: "List DNS zones in the account",
		Long: `List all DNS zones hosted in the Exoscale account.

Example:
  exosync dns zones`,
		Args: cobra.NoArgs,
		Run:  runZones,
	}
}

func runZones(cmd *cobra.Command, args []string) {
	svc, err := newDNSService(cmd, nil)
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
		return
	}
	zones, err := svc.Zones(cmd.Context())
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "Error listing zones: %v\n", err)
		return
	}

	if len(zones) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No zones found.")
		return
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "ZONE\tID")
	fmt.Fprintln(w, "----\t--")

	for _, z := range zones {
		fmt.Fprintf(w, "%s\t%s\n", z.Name, z.ID)
	}

	w.Flush()
}
