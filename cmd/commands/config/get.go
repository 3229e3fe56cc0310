package config

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"nathanbeddoewebdev/exosync/internal/config"
	"nathanbeddoewebdev/exosync/internal/tui/styles"
)

// GetCommand returns the "config get" command.
func GetCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "get [key]",
		Short: "Get a configuration value",
		Long: "Get a persistent configuration value.\n\n" +
			"Without a key, every setting is listed with its effective value.\n\n" +
			config.KeysHelp() +
			"\nExamples:\n" +
			"  exosync config get            # list all settings\n" +
			"  exosync config get region     # print a single value",
		Args:         cobra.MaximumNArgs(1),
		RunE:         runGet,
		SilenceUsage: true,
	}

	cmd.Flags().String("key", "", "Configuration key to fetch (prints a single value)")

	return cmd
}

func runGet(cmd *cobra.Command, args []string) error {
	keyName, _ := cmd.Flags().GetString("key")
	if len(args) == 1 {
		keyName = args[0]
	}
	keyName = strings.TrimSpace(keyName)

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if keyName == "" {
		for _, spec := range config.Keys {
			value := spec.Get(cfg)
			if value == "" {
				value = styles.MutedText.Render(spec.Default + " (default)")
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", styles.Label.Render(spec.Name), value)
		}
		return nil
	}

	spec := config.Lookup(keyName)
	if spec == nil {
		return fmt.Errorf("unknown configuration key %q (valid: %s)", keyName, strings.Join(config.KeyNames(), ", "))
	}

	value := spec.Get(cfg)
	if value == "" {
		fmt.Fprintf(cmd.OutOrStdout(), "not set (default %s)\n", spec.Default)
	} else {
		fmt.Fprintln(cmd.OutOrStdout(), value)
	}
	return nil
}
