package views

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"gobarber/barberterm/internal/api"
	"gobarber/barberterm/internal/security"
	"gobarber/barberterm/internal/utils"
)

type AppointmentSource interface {
	Appointments(ctx context.Context, day time.Time) ([]api.Appointment, error)
	RefreshAppointments(ctx context.Context, day time.Time) ([]api.Appointment, error)
}

// DashboardModel lists the signed-in provider's appointments for one day.
type DashboardModel struct {
	source  AppointmentSource
	session *security.AuthSession
	touch   func() error
	status  *SessionStatusModel

	day          time.Time
	appointments []api.Appointment
	loading      bool
	err          error
	lastRefresh  time.Time

	spinner spinner.Model
	keys    dashboardKeyMap
	help    help.Model

	terminalWidth  int
	terminalHeight int
}

type AppointmentsLoadedMsg struct {
	Day          time.Time
	Appointments []api.Appointment
	Error        error
}

// SignOutMsg asks the app to end the session. Reason, when set, is shown as
// a notification.
type SignOutMsg struct {
	Reason string
}

func SignOut(reason string) tea.Cmd {
	return func() tea.Msg {
		return SignOutMsg{Reason: reason}
	}
}

func NewDashboardModel(source AppointmentSource, session *security.AuthSession, sessions SessionInfo, touch func() error) *DashboardModel {
	s := spinner.New()
	s.Spinner = spinner.MiniDot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color(utils.Colours.Orange))

	return &DashboardModel{
		source:  source,
		session: session,
		touch:   touch,
		status:  NewSessionStatusModel(sessions),
		day:     startOfDay(time.Now()),
		loading: true,
		spinner: s,
		keys:    newDashboardKeyMap(),
		help:    help.New(),
	}
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func (m DashboardModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.status.Init(), m.loadAppointments(false))
}

func (m *DashboardModel) SetSize(width, height int) {
	m.terminalWidth = width
	m.terminalHeight = height
	m.help.Width = width
}

func (m *DashboardModel) Day() time.Time {
	return m.day
}

func (m DashboardModel) Update(msg tea.Msg) (DashboardModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.SetSize(msg.Width, msg.Height)

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.PrevDay):
			return m.changeDay(m.day.AddDate(0, 0, -1))
		case key.Matches(msg, m.keys.NextDay):
			return m.changeDay(m.day.AddDate(0, 0, 1))
		case key.Matches(msg, m.keys.Today):
			return m.changeDay(startOfDay(time.Now()))
		case key.Matches(msg, m.keys.Refresh):
			m.loading = true
			return m, tea.Batch(m.spinner.Tick, m.loadAppointments(true))
		case key.Matches(msg, m.keys.SignOut):
			return m, SignOut("")
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		}

	case AppointmentsLoadedMsg:
		if !msg.Day.Equal(m.day) {
			return m, nil
		}
		m.loading = false
		if msg.Error != nil {
			if api.IsUnauthorized(msg.Error) {
				return m, SignOut("Your session has expired, sign in again.")
			}
			m.err = msg.Error
			return m, nil
		}
		m.err = nil
		m.appointments = msg.Appointments
		m.lastRefresh = time.Now()

	case spinner.TickMsg:
		if m.loading {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}

	case SessionExpiredMsg:
		return m, SignOut("Your session has expired, sign in again.")

	case sessionTickMsg, SessionTimeoutWarningMsg:
		var cmd tea.Cmd
		*m.status, cmd = m.status.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m DashboardModel) changeDay(day time.Time) (DashboardModel, tea.Cmd) {
	m.day = day
	m.loading = true
	m.appointments = nil
	m.err = nil
	return m, tea.Batch(m.spinner.Tick, m.loadAppointments(false))
}

func (m *DashboardModel) loadAppointments(refresh bool) tea.Cmd {
	source := m.source
	touch := m.touch
	day := m.day

	return func() tea.Msg {
		if source == nil {
			return AppointmentsLoadedMsg{Day: day, Error: fmt.Errorf("appointment source not available")}
		}
		if touch != nil {
			// A failed touch only means the expiry was not persisted.
			_ = touch()
		}

		load := source.Appointments
		if refresh {
			load = source.RefreshAppointments
		}

		appointments, err := load(context.Background(), day)
		return AppointmentsLoadedMsg{Day: day, Appointments: appointments, Error: err}
	}
}

func (m *DashboardModel) View() string {
	var content strings.Builder

	content.WriteString(m.renderHeader())
	content.WriteString("\n\n")
	content.WriteString(titleStyle.Render(utils.FormatDay(m.day, time.Now())))
	content.WriteString("\n")

	switch {
	case m.loading:
		content.WriteString(m.spinner.View() + " Loading appointments...")
	case m.err != nil:
		content.WriteString(fieldErrorStyle.Render("Could not load appointments: " + api.ClassifyError(m.err).UserMessage()))
	case len(m.appointments) == 0:
		content.WriteString(mutedStyle.Render("No appointments for this day"))
	default:
		content.WriteString(m.renderAppointments())
	}

	content.WriteString("\n")
	if !m.lastRefresh.IsZero() {
		content.WriteString(mutedStyle.Render("Updated " + utils.FormatTimeAgo(m.lastRefresh)))
		content.WriteString("\n")
	}
	content.WriteString(helpStyle.Render(m.help.View(m.keys)))

	return content.String()
}

func (m *DashboardModel) renderHeader() string {
	name := "there"
	if m.session != nil && m.session.User.Name != "" {
		name = m.session.User.Name
	}

	welcome := lipgloss.NewStyle().
		Foreground(lipgloss.Color(utils.Colours.Text)).
		Render("Welcome, ") +
		lipgloss.NewStyle().
			Foreground(lipgloss.Color(utils.Colours.Orange)).
			Bold(true).
			Render(name)

	return lipgloss.JoinVertical(lipgloss.Left, renderLogo(), welcome, m.status.View())
}

// renderAppointments groups the day into morning and afternoon the way the
// schedule is usually read.
func (m *DashboardModel) renderAppointments() string {
	sorted := make([]api.Appointment, len(m.appointments))
	copy(sorted, m.appointments)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Date.Before(sorted[j].Date)
	})

	var morning, afternoon []string
	for _, a := range sorted {
		client := "Unknown client"
		if a.User != nil && a.User.Name != "" {
			client = a.User.Name
		}

		line := lipgloss.NewStyle().
			Foreground(lipgloss.Color(utils.Colours.Orange)).
			Render(utils.FormatAppointmentTime(a.Date)) +
			"  " +
			lipgloss.NewStyle().
				Foreground(lipgloss.Color(utils.Colours.Text)).
				Render(utils.TruncateString(client, 32))

		if a.Date.Local().Hour() < 12 {
			morning = append(morning, line)
		} else {
			afternoon = append(afternoon, line)
		}
	}

	var sections []string
	if len(morning) > 0 {
		sections = append(sections, labelStyle.Render("Morning"), strings.Join(morning, "\n"))
	}
	if len(afternoon) > 0 {
		sections = append(sections, labelStyle.Render("Afternoon"), strings.Join(afternoon, "\n"))
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}
