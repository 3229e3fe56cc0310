package dns

import (
	"fmt"
	"strings"

	"github.com/go-logr/logr"
	"github.com/spf13/cobra"

	"nathanbeddoewebdev/exosync/internal/auditlog"
	"nathanbeddoewebdev/exosync/internal/config"
	"nathanbeddoewebdev/exosync/internal/dns/domain"
	dnsproviders "nathanbeddoewebdev/exosync/internal/dns/providers"
	"nathanbeddoewebdev/exosync/internal/dns/services"
	"nathanbeddoewebdev/exosync/internal/logging"
	"nathanbeddoewebdev/exosync/internal/services/auth"
)

// configFlags are persistent flags whose default comes from the config key
// of the same name when not given on the command line.
var configFlags = []string{"region", "dialect", "log-level", "log-format"}

// NewCommand returns the top-level "dns" Cobra command with all subcommands attached.
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dns",
		Short: "Read and sync Exoscale DNS zones",
		Long: `List zones, dump their records as YAML and apply change plans.

Flags not given on the command line fall back to the values set with
'exosync config set'.`,
		PersistentPreRunE: resolveConfigFlags,
	}

	cmd.AddCommand(ZonesCommand())
	cmd.AddCommand(RecordsCommand())
	cmd.AddCommand(DumpCommand())
	cmd.AddCommand(ApplyCommand())

	cmd.PersistentFlags().String("provider", "exoscale", "DNS provider to use")
	cmd.PersistentFlags().String("region", "", "Exoscale zone whose API endpoint is used")
	cmd.PersistentFlags().String("dialect", "", "Record wire format: v2 or legacy")
	cmd.PersistentFlags().String("log-level", "", "Log verbosity: info or debug")
	cmd.PersistentFlags().String("log-format", "", "Log output format: console or json")
	_ = cmd.PersistentFlags().MarkHidden("provider")

	return cmd
}

// resolveConfigFlags fills every unset config-backed flag from the config
// file, or the key's default when the file has no value.
func resolveConfigFlags(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	for _, name := range configFlags {
		flag := cmd.Flag(name)
		spec := config.Lookup(name)
		if flag == nil || spec == nil {
			continue
		}
		if flag.Changed {
			if err := spec.Validate(strings.TrimSpace(flag.Value.String())); err != nil {
				return fmt.Errorf("--%s: %w", name, err)
			}
			continue
		}

		value := spec.Get(cfg)
		if value == "" {
			value = spec.Default
		}
		if err := flag.Value.Set(value); err != nil {
			return fmt.Errorf("failed to set %s flag: %w", name, err)
		}
	}
	return nil
}

func flagValue(cmd *cobra.Command, name string) string {
	if f := cmd.Flag(name); f != nil {
		return strings.TrimSpace(f.Value.String())
	}
	return ""
}

func newLogger(cmd *cobra.Command) (logr.Logger, error) {
	return logging.NewWithWriter(cmd.ErrOrStderr(), flagValue(cmd, "log-level"), flagValue(cmd, "log-format"))
}

// newDNSService builds the sync service for the selected provider. A non-nil
// journal is attached so every provider call made by Apply is recorded.
func newDNSService(cmd *cobra.Command, journal services.Journal) (*services.Service, error) {
	log, err := newLogger(cmd)
	if err != nil {
		return nil, err
	}

	dialect, err := domain.LookupDialect(flagValue(cmd, "dialect"))
	if err != nil {
		return nil, err
	}

	client, err := dnsproviders.Get(flagValue(cmd, "provider"), auth.DefaultStore(), dnsproviders.Options{
		Region:  flagValue(cmd, "region"),
		Dialect: dialect,
		Logger:  log,
	})
	if err != nil {
		return nil, err
	}

	opts := []services.Option{services.WithDialect(dialect), services.WithLogger(log)}
	if journal != nil {
		opts = append(opts, services.WithJournal(journal))
	}
	return services.New(client, opts...), nil
}

// commandMetadata describes the running command for journal entries.
func commandMetadata(cmd *cobra.Command, args []string) auditlog.Metadata {
	return auditlog.Metadata{
		Command:  cmd.CommandPath(),
		Args:     strings.Join(auditlog.SanitizeArgs(args), " "),
		Provider: flagValue(cmd, "provider"),
	}
}
