package views

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"gobarber/barberterm/internal/security"
	"gobarber/barberterm/internal/utils"
)

// SessionInfo is the part of the session manager the status line reads.
type SessionInfo interface {
	Status() security.SessionStatus
	TimeRemaining() time.Duration
}

type SessionStatusModel struct {
	sessions      SessionInfo
	timeRemaining time.Duration
	warningShown  bool
}

type SessionTimeoutWarningMsg struct {
	TimeRemaining time.Duration
}

type SessionExpiredMsg struct{}

type sessionTickMsg struct{}

func NewSessionStatusModel(sessions SessionInfo) *SessionStatusModel {
	return &SessionStatusModel{sessions: sessions}
}

func (m SessionStatusModel) Init() tea.Cmd {
	return m.checkSessionStatus()
}

func (m SessionStatusModel) Update(msg tea.Msg) (SessionStatusModel, tea.Cmd) {
	switch msg := msg.(type) {
	case SessionTimeoutWarningMsg:
		m.timeRemaining = msg.TimeRemaining
		m.warningShown = true
		return m, m.checkSessionStatus()

	case sessionTickMsg:
		if m.sessions == nil {
			return m, nil
		}

		remaining := m.sessions.TimeRemaining()
		if remaining <= 0 {
			m.timeRemaining = 0
			return m, func() tea.Msg { return SessionExpiredMsg{} }
		}

		m.timeRemaining = remaining
		if m.sessions.Status() == security.SessionStatusExpiring && !m.warningShown {
			return m, func() tea.Msg { return SessionTimeoutWarningMsg{TimeRemaining: remaining} }
		}
		return m, m.checkSessionStatus()
	}

	return m, nil
}

func (m *SessionStatusModel) View() string {
	if m.sessions == nil {
		return ""
	}

	status := m.sessions.Status()

	var statusColor string
	switch status {
	case security.SessionStatusActive:
		statusColor = utils.Colours.Green
	case security.SessionStatusExpiring:
		statusColor = utils.Colours.Orange
	case security.SessionStatusExpired:
		statusColor = utils.Colours.Red
	default:
		statusColor = utils.Colours.Overlay
	}

	dot := lipgloss.NewStyle().
		Foreground(lipgloss.Color(statusColor)).
		Bold(true).
		Render("●")

	text := fmt.Sprintf("%s session %s", dot, status)
	if remaining := m.sessions.TimeRemaining(); remaining > 0 {
		text += mutedStyle.Render(" · " + formatSessionDuration(remaining))
	}

	if m.warningShown && status == security.SessionStatusExpiring {
		text += "\n" + lipgloss.NewStyle().
			Foreground(lipgloss.Color(utils.Colours.Orange)).
			Bold(true).
			Render("⚠ Session expires soon, changing day or refreshing keeps it alive")
	}

	return text
}

func (m *SessionStatusModel) checkSessionStatus() tea.Cmd {
	return tea.Tick(time.Second, func(time.Time) tea.Msg {
		return sessionTickMsg{}
	})
}

func formatSessionDuration(d time.Duration) string {
	if d <= 0 {
		return "expired"
	}

	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	} else if d < time.Hour {
		return fmt.Sprintf("%dm %ds", int(d.Minutes()), int(d.Seconds())%60)
	} else if d < 24*time.Hour {
		return fmt.Sprintf("%dh %dm", int(d.Hours()), int(d.Minutes())%60)
	}
	return utils.FormatDuration(d)
}
