package views

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"gobarber/barberterm/internal/form"
	"gobarber/barberterm/internal/utils"
)

const toastDuration = 3 * time.Second

type Toast struct {
	ID           int
	Notification form.Notification
	ShowTime     time.Time
}

type ToastMsg struct {
	Notification form.Notification
}

type ToastTimeoutMsg struct {
	ID int
}

func ShowToast(n form.Notification) tea.Cmd {
	return func() tea.Msg {
		return ToastMsg{Notification: n}
	}
}

func toastTimeout(id int, d time.Duration) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg {
		return ToastTimeoutMsg{ID: id}
	})
}

// toastStack holds the visible notifications, newest last.
type toastStack struct {
	toasts   []Toast
	nextID   int
	duration time.Duration
}

func (s *toastStack) push(n form.Notification) tea.Cmd {
	s.nextID++
	s.toasts = append(s.toasts, Toast{ID: s.nextID, Notification: n, ShowTime: time.Now()})

	d := s.duration
	if d <= 0 {
		d = toastDuration
	}
	return toastTimeout(s.nextID, d)
}

func (s *toastStack) dismiss(id int) {
	for i, t := range s.toasts {
		if t.ID == id {
			s.toasts = append(s.toasts[:i:i], s.toasts[i+1:]...)
			return
		}
	}
}

func (s *toastStack) View() string {
	if len(s.toasts) == 0 {
		return ""
	}

	rendered := make([]string, 0, len(s.toasts))
	for _, t := range s.toasts {
		colour := lipgloss.Color(notificationColour(t.Notification.Type))

		body := lipgloss.NewStyle().Bold(true).Render(t.Notification.Title)
		if t.Notification.Description != "" {
			body += "\n" + t.Notification.Description
		}

		rendered = append(rendered, lipgloss.NewStyle().
			Foreground(lipgloss.Color(utils.Colours.Text)).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colour).
			Padding(0, 1).
			Width(44).
			Render(body))
	}

	return lipgloss.JoinVertical(lipgloss.Right, rendered...)
}
