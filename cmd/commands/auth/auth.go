package auth

import (
	"github.com/spf13/cobra"

	"nathanbeddoewebdev/exosync/internal/services/auth"
)

// newStore returns the credential store used by the auth commands.
var newStore = auth.DefaultStore

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage Exoscale API credentials",
		Long: `Manage Exoscale API credentials.

Use this command group to store an API key and secret in the local keychain.
EXOSCALE_API_KEY and EXOSCALE_API_SECRET take precedence when set.`,
	}

	cmd.AddCommand(LoginCommand())
	cmd.AddCommand(StatusCommand())
	cmd.AddCommand(LogoutCommand())

	return cmd
}
