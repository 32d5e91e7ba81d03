package commands

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/polarlauncher/polar/internals/autherr"
)

// CliError is a user facing failure: a short message, optional help
// text shown below it and optional recovery suggestions
type CliError struct {
	Text        string
	Help        string
	Suggestions []string
}

func (e *CliError) Error() string {
	return e.Text
}

// FromDisplayable turns a localized (title, description) pair into a
// CliError. This is how normalized login failures reach the terminal.
func FromDisplayable(d autherr.Displayable, suggestions ...string) *CliError {
	return &CliError{
		Text:        d.Title,
		Help:        d.Desc,
		Suggestions: suggestions,
	}
}

// RichError renders the error as stacked lipgloss boxes
func (e *CliError) RichError() string {
	parts := []string{ErrorBox(e.Text, e.Help)}
	if len(e.Suggestions) != 0 {
		parts = append(parts, styleHelpBox.Render(e.renderSuggestions()))
	}
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (e *CliError) renderSuggestions() string {
	label := "Suggestion:"
	if len(e.Suggestions) > 1 {
		label = "Suggestions:"
	}
	lines := []string{Emoji("📎 ") + label}
	for _, s := range e.Suggestions {
		lines = append(lines, " ⦁ "+s)
	}
	return strings.Join(lines, "\n") + "\n"
}
