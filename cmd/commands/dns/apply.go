package dns

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/huh/spinner"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"nathanbeddoewebdev/exosync/internal/auditlog"
	"nathanbeddoewebdev/exosync/internal/dns/domain"
	"nathanbeddoewebdev/exosync/internal/dns/services"
	"nathanbeddoewebdev/exosync/internal/dns/zonefile"
	"nathanbeddoewebdev/exosync/internal/tui/styles"
)

// errApplyAborted is returned when the user declines the confirmation prompt.
var errApplyAborted = errors.New("apply aborted by user")

// ApplyCommand returns the "dns apply" subcommand.
func ApplyCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "apply <plan.yaml|->",
		Short: "Apply a change plan to a zone",
		Long: `Apply the creates, updates and deletes listed in a plan file to the
provider. Updates are carried out as a delete followed by a create.

Every provider call is recorded in the local journal unless --no-journal
is given; see 'exosync journal list'.

Examples:
  exosync dns apply plan.yaml
  cat plan.yaml | exosync dns apply - --yes`,
		Args:         cobra.ExactArgs(1),
		RunE:         runApply,
		SilenceUsage: true,
	}

	cmd.Flags().BoolP("yes", "y", false, "Apply without asking for confirmation")
	cmd.Flags().Bool("lenient", false, "Skip validation of records in the plan")
	cmd.Flags().Bool("no-journal", false, "Do not record provider calls in the journal")

	return cmd
}

func runApply(cmd *cobra.Command, args []string) error {
	yes, _ := cmd.Flags().GetBool("yes")
	lenient, _ := cmd.Flags().GetBool("lenient")
	noJournal, _ := cmd.Flags().GetBool("no-journal")

	plan, err := readPlan(cmd, args[0], lenient)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(plan.Changes) == 0 {
		fmt.Fprintf(out, "No changes for %s.\n", plan.Desired.Name)
		return nil
	}

	printPlan(out, plan)

	interactive := term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
	accessible := os.Getenv("ACCESSIBLE") != ""

	if !yes {
		if !interactive {
			return errors.New("refusing to apply without confirmation; pass --yes")
		}
		if err := confirmApply(accessible, plan); err != nil {
			if errors.Is(err, errApplyAborted) {
				fmt.Fprintln(cmd.ErrOrStderr(), "Apply cancelled.")
				return nil
			}
			return err
		}
	}

	var journal services.Journal
	if !noJournal {
		repo, err := auditlog.Open()
		if err != nil {
			return fmt.Errorf("failed to open journal: %w", err)
		}
		defer repo.Close()
		journal = repo
	}

	svc, err := newDNSService(cmd, journal)
	if err != nil {
		return err
	}

	ctx := auditlog.WithMetadata(cmd.Context(), commandMetadata(cmd, os.Args[1:]))

	if interactive {
		var applyErr error
		spinErr := spinner.New().
			Title(fmt.Sprintf("Applying %d change(s) to %s...", len(plan.Changes), plan.Desired.Name)).
			Accessible(accessible).
			Output(cmd.ErrOrStderr()).
			Context(ctx).
			ActionWithErr(func(ctx context.Context) error {
				applyErr = svc.Apply(ctx, plan)
				return nil
			}).
			Run()
		if spinErr != nil {
			return spinErr
		}
		err = applyErr
	} else {
		err = svc.Apply(ctx, plan)
	}
	if err != nil {
		return fmt.Errorf("apply failed: %w", err)
	}

	fmt.Fprintln(out, renderSummary(plan))
	return nil
}

// readPlan decodes the plan at path, or from stdin when path is "-".
func readPlan(cmd *cobra.Command, path string, lenient bool) (*domain.Plan, error) {
	var r io.Reader
	if path == "-" {
		r = cmd.InOrStdin()
	} else {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	}

	plan, err := zonefile.DecodePlan(r, lenient)
	if err != nil {
		return nil, fmt.Errorf("failed to read plan: %w", err)
	}
	return plan, nil
}

func printPlan(w io.Writer, plan *domain.Plan) {
	fmt.Fprintln(w, styles.Title.Render("Plan for "+plan.Desired.Name))
	for _, c := range plan.Changes {
		fmt.Fprintf(w, "  %s %s\n", styles.ChangeMarker(c.Kind), describeChange(c))
	}
	fmt.Fprintln(w)
}

func describeChange(c domain.Change) string {
	r := c.Record()
	name := r.Name
	if name == "" {
		name = "@"
	}
	values := make([]string, 0)
	if c.New != nil {
		for _, v := range c.New.AllValues() {
			values = append(values, v.String())
		}
	}
	desc := fmt.Sprintf("%s %s", name, r.Type)
	if len(values) > 0 {
		desc += " " + styles.MutedText.Render(strings.Join(values, ", "))
	}
	return desc
}

func confirmApply(accessible bool, plan *domain.Plan) error {
	confirm := false
	err := huh.NewForm(huh.NewGroup(
		huh.NewConfirm().
			Title(fmt.Sprintf("Apply %d change(s) to %s?", len(plan.Changes), plan.Desired.Name)).
			Affirmative("Yes, apply").
			Negative("Cancel").
			Value(&confirm),
	)).WithAccessible(accessible).Run()
	if err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return errApplyAborted
		}
		return err
	}
	if !confirm {
		return errApplyAborted
	}
	return nil
}

func renderSummary(plan *domain.Plan) string {
	counts := map[domain.ChangeKind]int{}
	for _, c := range plan.Changes {
		counts[c.Kind]++
	}

	rows := []string{styles.SuccessText.Render("Applied " + plan.Desired.Name)}
	for _, kind := range []domain.ChangeKind{domain.ChangeCreate, domain.ChangeUpdate, domain.ChangeDelete} {
		rows = append(rows, fmt.Sprintf("%s %s",
			styles.Label.Render(fmt.Sprintf("%-8s", kind.String()+":")),
			styles.ChangeStyle(kind).Render(fmt.Sprint(counts[kind])),
		))
	}
	return styles.Card.Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}
