package cmd

import (
	"context"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"nathanbeddoewebdev/exosync/cmd/commands/auth"
	cfgcmd "nathanbeddoewebdev/exosync/cmd/commands/config"
	"nathanbeddoewebdev/exosync/cmd/commands/dns"
	"nathanbeddoewebdev/exosync/cmd/commands/journal"
	dnsproviders "nathanbeddoewebdev/exosync/internal/dns/providers"
)

// rootCmd represents the base command when called without any subcommands.
func rootCmd() *cobra.Command {
	var cmd = &cobra.Command{
		Use:   "exosync",
		Short: "Sync DNS zones with Exoscale",
		Long: `exosync reads and writes DNS zones hosted on Exoscale. It dumps a
zone's records as YAML and applies change plans, recording every provider
call in a local journal.

Quick start:
  exosync auth login                 # Store your API key and secret
  exosync dns zones                  # List zones in the account
  exosync dns dump example.com       # Print the zone as YAML
  exosync dns apply plan.yaml        # Apply a change plan`,
	}

	cmd.AddCommand(auth.NewCommand())
	cmd.AddCommand(cfgcmd.NewCommand())
	cmd.AddCommand(dns.NewCommand())
	cmd.AddCommand(journal.NewCommand())

	return cmd
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	dnsproviders.RegisterExoscale()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var root = rootCmd()
	err := root.ExecuteContext(ctx)
	if err != nil {
		stop()
		os.Exit(1)
	}
}
