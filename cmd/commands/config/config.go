package config

import (
	"github.com/spf13/cobra"

	"nathanbeddoewebdev/exosync/internal/config"
)

// NewCommand returns the "config" parent command.
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage exosync configuration",
		Long: "View and modify persistent exosync settings.\n\n" +
			"Configuration is stored at ~/.config/exosync/config.json.\n\n" +
			config.KeysHelp(),
	}

	cmd.AddCommand(SetCommand())
	cmd.AddCommand(GetCommand())

	return cmd
}
