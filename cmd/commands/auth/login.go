package auth

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/spf13/cobra"

	credentials "nathanbeddoewebdev/exosync/internal/platform/providers"
)

func LoginCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "login [provider]",
		Short: "Store API credentials for a provider",
		Long: `Store API credentials for a provider using the local keychain.
Values not given as flags are prompted for; the secret is read without echo.

Examples:
  exosync auth login
  exosync auth login exoscale --api-key EXO... --api-secret ...`,
		Args:         cobra.MaximumNArgs(1),
		RunE:         runLogin,
		SilenceUsage: true,
	}

	cmd.Flags().String("api-key", "", "API key (optional, overrides prompt)")
	cmd.Flags().String("api-secret", "", "API secret (optional, overrides prompt)")

	return cmd
}

// flagForKey maps a credential key to the flag that can supply it.
var flagForKey = map[string]string{
	"apikey":    "api-key",
	"apisecret": "api-secret",
}

func runLogin(cmd *cobra.Command, args []string) error {
	provider := "exoscale"
	if len(args) == 1 {
		provider = strings.TrimSpace(args[0])
	}

	spec := credentials.Lookup(provider)
	if spec == nil {
		return fmt.Errorf("unknown provider %q", provider)
	}

	store := newStore()
	in := bufio.NewReader(cmd.InOrStdin())

	for _, key := range spec.Keys {
		value := ""
		if name, ok := flagForKey[key.Key]; ok {
			value, _ = cmd.Flags().GetString(name)
		}

		value = strings.TrimSpace(value)
		if value == "" {
			var err error
			value, err = prompt(cmd, in, spec.DisplayName+" "+key.Prompt, key.Secret)
			if err != nil {
				return err
			}
		}

		if value == "" {
			return fmt.Errorf("%s cannot be empty", strings.ToLower(key.Prompt))
		}

		if err := store.SetToken(spec.KeychainKey(key), value); err != nil {
			return fmt.Errorf("failed to store %s: %w", strings.ToLower(key.Prompt), err)
		}
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Saved credentials for %s\n", spec.DisplayName)
	return nil
}

// prompt asks for one value. Secrets typed at a terminal are not echoed.
func prompt(cmd *cobra.Command, in *bufio.Reader, label string, secret bool) (string, error) {
	fmt.Fprintf(cmd.OutOrStdout(), "Enter %s: ", label)

	if f, ok := cmd.InOrStdin().(*os.File); ok && secret && term.IsTerminal(int(f.Fd())) {
		bytes, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(cmd.OutOrStdout())
		if err != nil {
			return "", err
		}
		return strings.TrimSpace(string(bytes)), nil
	}

	line, err := in.ReadString('\n')
	if err != nil && err != io.EOF {
		return "", err
	}
	return strings.TrimSpace(line), nil
}
