package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/mfl/ghlite/internal/domain"
)

var (
	// TitleStyle is used for screen titles.
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("62")). // Purple
			MarginBottom(1)

	// SelectedItemStyle is used for highlighted/selected items.
	SelectedItemStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("170")). // Light purple
				Bold(true)

	// NormalItemStyle is used for non-selected items.
	NormalItemStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252")) // Light gray

	// DimStyle is used for secondary text (descriptions, timestamps).
	DimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")) // Dark gray

	// ErrorStyle is used for error messages.
	ErrorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")). // Red
			Bold(true)

	// SuccessStyle is used for transient success notices.
	SuccessStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")). // Green
			Bold(true)

	// StatusBarStyle is used for the bottom status/telemetry bar.
	StatusBarStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			MarginTop(1)

	// HelpStyle is used for inline key hints.
	HelpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			MarginTop(1)

	// PanelBorderStyle frames the detail view panels.
	PanelBorderStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("240"))

	// FocusedPanelBorderStyle frames the focused detail panel.
	FocusedPanelBorderStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("205"))

	// CommentAuthorStyle highlights comment authors.
	CommentAuthorStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("212")).
				Bold(true)
)

// Triage color coding: red for untouched open issues, yellow for open issues
// with discussion, green for closed ones.
var statusStyles = map[domain.Status]lipgloss.Style{
	domain.StatusNew:       lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
	domain.StatusDiscussed: lipgloss.NewStyle().Foreground(lipgloss.Color("220")),
	domain.StatusResolved:  lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
}

// statusDot renders the colored triage marker for an issue.
func statusDot(issue domain.Issue) string {
	return statusStyles[issue.Status()].Render("●")
}
