package styles

import (
	"github.com/charmbracelet/lipgloss"

	"nathanbeddoewebdev/exosync/internal/dns/domain"
)

// --- Typography ---

var (
	// Title is the main header text style.
	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(White)

	// Label is used for field names in summaries.
	Label = lipgloss.NewStyle().
		Foreground(Gray).
		Bold(true)

	// MutedText is for hints and less important info.
	MutedText = lipgloss.NewStyle().
			Foreground(Muted)

	// AccentText is for highlighted values.
	AccentText = lipgloss.NewStyle().
			Foreground(Blue)

	// ErrorText is for error messages.
	ErrorText = lipgloss.NewStyle().
			Foreground(Red).
			Bold(true)

	// SuccessText is for success messages.
	SuccessText = lipgloss.NewStyle().
			Foreground(Green).
			Bold(true)

	// WarningText is for warning messages.
	WarningText = lipgloss.NewStyle().
			Foreground(Yellow).
			Bold(true)
)

// Card is a rounded-border panel for the apply summary.
var Card = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(DimGray).
	Padding(0, 1)

// --- Change badges ---

// ChangeStyle returns the style for a planned change of the given kind.
func ChangeStyle(kind domain.ChangeKind) lipgloss.Style {
	switch kind {
	case domain.ChangeCreate:
		return lipgloss.NewStyle().Foreground(Green).Bold(true)
	case domain.ChangeUpdate:
		return lipgloss.NewStyle().Foreground(Yellow).Bold(true)
	case domain.ChangeDelete:
		return lipgloss.NewStyle().Foreground(Red).Bold(true)
	default:
		return lipgloss.NewStyle().Foreground(Gray)
	}
}

// ChangeMarker returns the one-character diff marker for kind, styled.
func ChangeMarker(kind domain.ChangeKind) string {
	marker := "?"
	switch kind {
	case domain.ChangeCreate:
		marker = "+"
	case domain.ChangeUpdate:
		marker = "~"
	case domain.ChangeDelete:
		marker = "-"
	}
	return ChangeStyle(kind).Render(marker)
}

// OutcomeStyle returns the style for a journal outcome.
func OutcomeStyle(outcome string) lipgloss.Style {
	switch outcome {
	case "success":
		return lipgloss.NewStyle().Foreground(Green)
	case "error":
		return lipgloss.NewStyle().Foreground(Red)
	default:
		return lipgloss.NewStyle().Foreground(Gray)
	}
}
