package journal

import "github.com/spf13/cobra"

// NewCommand returns the "journal" parent command.
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "journal",
		Short: "View and manage the apply journal",
		Long: "View the local record of provider calls made by 'exosync dns apply'\n" +
			"and prune old entries.\n\n" +
			"The journal is stored in ~/.config/exosync/journal.db unless\n" +
			"EXOSYNC_JOURNAL names another file.",
		SilenceUsage: true,
	}

	cmd.AddCommand(ListCommand())
	cmd.AddCommand(PruneCommand())

	return cmd
}
