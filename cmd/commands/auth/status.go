package auth

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	credentials "nathanbeddoewebdev/exosync/internal/platform/providers"
	"nathanbeddoewebdev/exosync/internal/services/auth"
	"nathanbeddoewebdev/exosync/internal/tui/styles"
)

func StatusCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show which API credentials are available",
		Long: `Show, for each provider credential, whether it is set and where it
comes from (environment or keychain).

Example:
  exosync auth status`,
		RunE: func(cmd *cobra.Command, args []string) error {
			store := newStore()

			for _, spec := range credentials.All() {
				fmt.Fprintln(cmd.OutOrStdout(), styles.Title.Render(spec.DisplayName))
				for _, key := range spec.Keys {
					_, source, err := spec.Resolve(store, key)
					label := styles.Label.Render(fmt.Sprintf("  %-12s", key.Prompt+":"))
					switch {
					case err == nil:
						fmt.Fprintf(cmd.OutOrStdout(), "%s %s (%s)\n", label, styles.SuccessText.Render("set"), source)
					case errors.Is(err, auth.ErrTokenNotFound):
						fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", label, styles.WarningText.Render("not set"))
					default:
						fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", label, styles.ErrorText.Render(fmt.Sprintf("error (%v)", err)))
					}
				}
			}
			return nil
		},
		SilenceUsage: true,
	}

	return cmd
}
