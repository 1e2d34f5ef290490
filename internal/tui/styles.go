// internal/tui/styles.go
package tui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/zageabb/reflex-AgentDemo/internal/models"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15")).
			Background(lipgloss.Color("62")).
			Padding(0, 1)

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("8"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("8"))

	userStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("12"))

	assistantStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("10"))

	snippetStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("7")).
			BorderStyle(lipgloss.NormalBorder()).
			BorderLeft(true).
			BorderForeground(lipgloss.Color("8")).
			PaddingLeft(1)

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("9"))

	emptyStyle = lipgloss.NewStyle().
			Italic(true).
			Foreground(lipgloss.Color("8"))

	feedbackStyles = map[string]lipgloss.Style{
		"loading":  lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
		"playing":  lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
		"complete": lipgloss.NewStyle().Foreground(lipgloss.Color("14")),
		"error":    lipgloss.NewStyle().Foreground(lipgloss.Color("9")),
	}
)

func speakerStyle(role models.Actor) lipgloss.Style {
	if role == models.ActorUser {
		return userStyle
	}
	return assistantStyle
}

// accentTitle colors the title bar with the scenario accent when it has one.
func accentTitle(accent string) lipgloss.Style {
	if accent == "" {
		return titleStyle
	}
	return titleStyle.Background(lipgloss.Color(accent))
}
