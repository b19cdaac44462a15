package views

import (
	"github.com/charmbracelet/lipgloss"

	"gobarber/barberterm/internal/form"
	"gobarber/barberterm/internal/utils"
)

var (
	logoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(utils.Colours.Orange)).
			Bold(true).
			Padding(1, 0)

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(utils.Colours.Text)).
			Bold(true).
			MarginBottom(1)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(utils.Colours.Subtext))

	inputStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(utils.Colours.Input)).
			Padding(0, 1).
			Width(40)

	fieldErrorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(utils.Colours.Red))

	buttonStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(utils.Colours.Contrast)).
			Background(lipgloss.Color(utils.Colours.Orange)).
			Bold(true).
			Padding(0, 2).
			MarginTop(1).
			Width(44).
			Align(lipgloss.Center)

	linkStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(utils.Colours.Subtext))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(utils.Colours.Overlay)).
			MarginTop(1)

	mutedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(utils.Colours.Overlay))
)

func focusedInputStyle() lipgloss.Style {
	return inputStyle.BorderForeground(lipgloss.Color(utils.Colours.Orange))
}

func erroredInputStyle() lipgloss.Style {
	return inputStyle.BorderForeground(lipgloss.Color(utils.Colours.Red))
}

func focusedButtonStyle() lipgloss.Style {
	return buttonStyle.Background(lipgloss.Color(utils.Colours.Shade)).Underline(true)
}

func focusedLinkStyle() lipgloss.Style {
	return linkStyle.Foreground(lipgloss.Color(utils.Colours.Orange)).Underline(true)
}

func notificationColour(t form.NotificationType) string {
	switch t {
	case form.NotificationSuccess:
		return utils.Colours.Green
	case form.NotificationError:
		return utils.Colours.Red
	default:
		return utils.Colours.Blue
	}
}

func renderLogo() string {
	return logoStyle.Render("✂ GoBarber")
}
