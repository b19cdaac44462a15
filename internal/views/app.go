package views

import (
	"errors"
	"fmt"
	"io"
	"net/url"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"gobarber/barberterm/internal/form"
	"gobarber/barberterm/internal/pages"
	"gobarber/barberterm/internal/security"
	"gobarber/barberterm/internal/utils"
)

// Backend is what the screens need from the API client.
type Backend interface {
	pages.Auth
	AppointmentSource
}

// SessionController is what the screens need from the session manager.
type SessionController interface {
	pages.SessionStarter
	SessionInfo
	Current() (*security.AuthSession, bool)
	Touch() error
	Close() error
}

type AppDeps struct {
	Backend  Backend
	Sessions SessionController
	Attempts pages.AttemptGuard
	Recorder form.Recorder
	Logger   *log.Logger
}

// AppModel owns the current location and routes it to a form page or the
// dashboard. Notifications from any screen are stacked here so they survive
// navigation.
type AppModel struct {
	width        int
	height       int
	deps         AppDeps
	logger       *log.Logger
	initialRoute string
	location     *url.URL

	form      *FormModel
	dashboard *DashboardModel
	toasts    *toastStack

	err error
}

type NavigateMsg struct {
	Path string
}

type ErrorMsg struct {
	Err error
}

func NewAppModel(deps AppDeps, initialRoute string) (*AppModel, error) {
	if deps.Backend == nil {
		return nil, errors.New("backend is required")
	}
	if deps.Sessions == nil {
		return nil, errors.New("session controller is required")
	}

	logger := deps.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	if initialRoute == "" {
		initialRoute = pages.RouteSignIn
	}

	return &AppModel{
		deps:         deps,
		logger:       logger.With("component", "views"),
		initialRoute: initialRoute,
		location:     &url.URL{Path: pages.RouteSignIn},
		toasts:       &toastStack{},
	}, nil
}

func (m AppModel) Init() tea.Cmd {
	return NavigateTo(m.initialRoute)
}

// Location returns the current route including its query.
func (m AppModel) Location() string {
	return m.location.String()
}

func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if m.form != nil {
			m.form.SetSize(msg.Width, msg.Height)
		}
		if m.dashboard != nil {
			m.dashboard.SetSize(msg.Width, msg.Height)
		}
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "esc":
			if m.form != nil && !m.form.Submitting() && m.form.Route() != pages.RouteSignIn {
				return m.navigateTo(pages.RouteSignIn)
			}
		}

	case NavigateMsg:
		return m.navigateTo(msg.Path)

	case ErrorMsg:
		m.err = msg.Err
		return m, nil

	case ToastMsg:
		return m, m.toasts.push(msg.Notification)

	case ToastTimeoutMsg:
		m.toasts.dismiss(msg.ID)
		return m, nil

	case SignOutMsg:
		return m.signOut(msg.Reason)

	case SubmitDoneMsg:
		if m.form == nil || m.form.bridge != msg.bridge {
			// The page is gone; its notifications still matter.
			var cmds []tea.Cmd
			for _, n := range msg.result.Notifications {
				cmds = append(cmds, ShowToast(n))
			}
			return m, tea.Batch(cmds...)
		}
	}

	switch {
	case m.form != nil:
		*m.form, cmd = m.form.Update(msg)
	case m.dashboard != nil:
		*m.dashboard, cmd = m.dashboard.Update(msg)
	}

	return m, cmd
}

func (m AppModel) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	var content string
	switch {
	case m.form != nil:
		content = m.form.View()
	case m.dashboard != nil:
		content = m.dashboard.View()
	default:
		content = "Loading..."
	}

	if m.err != nil {
		errorStyle := lipgloss.NewStyle().
			Foreground(lipgloss.Color(utils.Colours.Red)).
			Bold(true).
			Padding(1)
		content += "\n" + errorStyle.Render(fmt.Sprintf("Error: %s", m.err.Error()))
	}

	body := lipgloss.PlaceHorizontal(m.width, lipgloss.Center, content)
	if toasts := m.toasts.View(); toasts != "" {
		body = lipgloss.JoinVertical(lipgloss.Left,
			lipgloss.PlaceHorizontal(m.width, lipgloss.Right, toasts),
			body)
	}

	return lipgloss.NewStyle().
		Width(m.width).
		Height(m.height).
		Render(body)
}

func (m AppModel) navigateTo(path string) (tea.Model, tea.Cmd) {
	loc, err := url.Parse(path)
	if err != nil {
		m.err = fmt.Errorf("invalid route %q: %w", path, err)
		return m, nil
	}
	if loc.Path == "" {
		loc.Path = pages.RouteSignIn
	}
	m.err = nil

	_, signedIn := m.deps.Sessions.Current()

	switch {
	case loc.Path == pages.RouteDashboard && !signedIn:
		model, cmd := m.navigateTo(pages.RouteSignIn)
		return model, tea.Batch(cmd, ShowToast(form.Notification{
			Type:  form.NotificationInfo,
			Title: "Sign in to see your schedule",
		}))

	case (loc.Path == pages.RouteSignIn || loc.Path == pages.RouteSignUp) && signedIn:
		return m.navigateTo(pages.RouteDashboard)

	case loc.Path != pages.RouteDashboard && !pages.IsFormRoute(loc.Path):
		m.logger.Warn("unknown route", "path", path)
		model, cmd := m.navigateTo(pages.RouteSignIn)
		return model, tea.Batch(cmd, ShowToast(form.Notification{
			Type:  form.NotificationError,
			Title: "Page not found",
		}))
	}

	m.logger.Debug("navigate", "path", loc.String())
	m.location = loc

	if loc.Path == pages.RouteDashboard {
		session, _ := m.deps.Sessions.Current()
		m.form = nil
		m.dashboard = NewDashboardModel(m.deps.Backend, session, m.deps.Sessions, m.deps.Sessions.Touch)
		m.dashboard.SetSize(m.width, m.height)
		return m, m.dashboard.Init()
	}

	bridge := newPageBridge(loc)
	page, err := pages.New(loc.Path, pages.Deps{
		API:      m.deps.Backend,
		Sink:     bridge,
		Display:  bridge,
		Router:   bridge,
		Sessions: m.deps.Sessions,
		Attempts: m.deps.Attempts,
		Recorder: m.deps.Recorder,
		Logger:   m.deps.Logger,
	})
	if err != nil {
		m.err = err
		return m, nil
	}

	m.dashboard = nil
	m.form = NewFormModel(page, bridge)
	m.form.SetSize(m.width, m.height)
	return m, m.form.Init()
}

func (m AppModel) signOut(reason string) (tea.Model, tea.Cmd) {
	if err := m.deps.Sessions.Close(); err != nil {
		m.logger.Error("sign out failed", "err", err)
	}

	n := form.Notification{Type: form.NotificationInfo, Title: "Signed out"}
	if reason != "" {
		n = form.Notification{Type: form.NotificationError, Title: "Signed out", Description: reason}
	}

	model, cmd := m.navigateTo(pages.RouteSignIn)
	return model, tea.Batch(cmd, ShowToast(n))
}

func NavigateTo(path string) tea.Cmd {
	return func() tea.Msg {
		return NavigateMsg{Path: path}
	}
}

func ShowError(err error) tea.Cmd {
	return func() tea.Msg {
		return ErrorMsg{Err: err}
	}
}
