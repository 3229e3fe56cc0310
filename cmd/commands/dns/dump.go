package dns

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"nathanbeddoewebdev/exosync/internal/dns/domain"
	"nathanbeddoewebdev/exosync/internal/dns/zonefile"
	"nathanbeddoewebdev/exosync/internal/util"
)

// DumpCommand returns the "dns dump" subcommand.
func DumpCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dump <zone>",
		Short: "Write a zone's records as YAML",
		Long: `Read every supported record of a zone from the provider and write it
as YAML, one entry per record name. Unsupported record types are skipped
with a warning.

Examples:
  exosync dns dump example.com
  exosync dns dump example.com --output example.com.yaml
  exosync dns dump example.com --lenient`,
		Args:         cobra.ExactArgs(1),
		RunE:         runDump,
		SilenceUsage: true,
	}

	cmd.Flags().StringP("output", "o", "", "Write to this file instead of stdout")
	cmd.Flags().Bool("lenient", false, "Keep records that fail validation")

	return cmd
}

func runDump(cmd *cobra.Command, args []string) error {
	output, _ := cmd.Flags().GetString("output")
	lenient, _ := cmd.Flags().GetBool("lenient")

	if err := util.ValidateZoneName(args[0]); err != nil {
		return err
	}

	svc, err := newDNSService(cmd, nil)
	if err != nil {
		return err
	}

	zone := domain.NewZone(args[0])
	exists, err := svc.Populate(cmd.Context(), zone, false, lenient)
	if err != nil {
		return fmt.Errorf("failed to read zone %s: %w", zone.Name, err)
	}
	if !exists {
		return fmt.Errorf("zone %s has no records", zone.Name)
	}

	var w io.Writer = cmd.OutOrStdout()
	if output != "" {
		f, err := os.Create(output)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}

	if err := zonefile.Encode(w, zone); err != nil {
		return err
	}
	if output != "" {
		fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %d record(s) of %s to %s\n", zone.Len(), zone.Name, output)
	}
	return nil
}
