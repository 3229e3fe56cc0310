package auth

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	credentials "nathanbeddoewebdev/exosync/internal/platform/providers"
	"nathanbeddoewebdev/exosync/internal/services/auth"
)

func LogoutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "logout [provider]",
		Short: "Remove stored API credentials for a provider",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			provider := "exoscale"
			if len(args) == 1 {
				provider = strings.TrimSpace(args[0])
			}

			spec := credentials.Lookup(provider)
			if spec == nil {
				return fmt.Errorf("unknown provider %q", provider)
			}

			store := newStore()
			for _, key := range spec.Keys {
				err := store.DeleteToken(spec.KeychainKey(key))
				if err != nil && !errors.Is(err, auth.ErrTokenNotFound) {
					return err
				}
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Removed credentials for %s\n", spec.DisplayName)
			return nil
		},
		SilenceUsage: true,
	}
}
