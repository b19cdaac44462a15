package views

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"gobarber/barberterm/internal/form"
	"gobarber/barberterm/internal/pages"
	"gobarber/barberterm/internal/utils"
	"gobarber/barberterm/internal/validation"
)

// FormModel renders one page: its inputs, the submit button and the page
// links. Focus cycles through all three in that order.
type FormModel struct {
	page   *pages.Page
	bridge *pageBridge

	inputs      []textinput.Model
	focus       int
	fieldErrors validation.FieldErrorMap
	submitting  bool

	spinner spinner.Model
	keys    formKeyMap
	help    help.Model

	width  int
	height int
}

// SubmitDoneMsg carries a finished submission back to the UI goroutine.
type SubmitDoneMsg struct {
	Form    string
	Outcome form.Outcome
	Err     error

	bridge *pageBridge
	result bridgeResult
}

func NewFormModel(page *pages.Page, bridge *pageBridge) *FormModel {
	inputs := make([]textinput.Model, len(page.Fields))
	for i, f := range page.Fields {
		ti := textinput.New()
		ti.Placeholder = f.Placeholder
		ti.CharLimit = 128
		ti.Width = 36
		ti.Prompt = ""
		ti.TextStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(utils.Colours.Text))
		ti.PlaceholderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(utils.Colours.Overlay))
		ti.Cursor.Style = lipgloss.NewStyle().Foreground(lipgloss.Color(utils.Colours.Orange))
		if f.Secret {
			ti.EchoMode = textinput.EchoPassword
			ti.EchoCharacter = '•'
		}
		inputs[i] = ti
	}

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color(utils.Colours.Contrast))

	keys := newFormKeyMap()
	keys.Back.SetEnabled(page.Route != pages.RouteSignIn)

	m := &FormModel{
		page:        page,
		bridge:      bridge,
		inputs:      inputs,
		fieldErrors: validation.FieldErrorMap{},
		spinner:     s,
		keys:        keys,
		help:        help.New(),
	}
	if len(m.inputs) > 0 {
		m.inputs[0].Focus()
	}

	return m
}

func (m FormModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m *FormModel) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.help.Width = width
}

func (m *FormModel) Route() string {
	return m.page.Route
}

// Submitting reports whether a submission is in flight.
func (m *FormModel) Submitting() bool {
	return m.submitting
}

func (m *FormModel) focusCount() int {
	return len(m.inputs) + 1 + len(m.page.Links)
}

func (m *FormModel) buttonIndex() int {
	return len(m.inputs)
}

func (m *FormModel) setFocus(i int) tea.Cmd {
	n := m.focusCount()
	m.focus = ((i % n) + n) % n

	for j := range m.inputs {
		m.inputs[j].Blur()
	}
	if m.focus < len(m.inputs) {
		return m.inputs[m.focus].Focus()
	}
	return nil
}

func (m FormModel) Update(msg tea.Msg) (FormModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.SetSize(msg.Width, msg.Height)
		return m, nil

	case SubmitDoneMsg:
		if msg.bridge != m.bridge {
			return m, nil
		}
		return m.applyResult(msg)

	case spinner.TickMsg:
		if !m.submitting {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if m.submitting {
			return m, nil
		}

		switch {
		case key.Matches(msg, m.keys.Next):
			return m, m.setFocus(m.focus + 1)
		case key.Matches(msg, m.keys.Prev):
			return m, m.setFocus(m.focus - 1)
		case key.Matches(msg, m.keys.Submit):
			if link := m.focus - m.buttonIndex() - 1; link >= 0 {
				return m, NavigateTo(m.page.Links[link].Route)
			}
			return m.startSubmit()
		}
	}

	if m.focus < len(m.inputs) {
		var cmd tea.Cmd
		m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m FormModel) startSubmit() (FormModel, tea.Cmd) {
	m.submitting = true
	m.fieldErrors = validation.FieldErrorMap{}
	return m, tea.Batch(m.spinner.Tick, m.submitCmd())
}

// submitCmd runs the page's controller off the UI goroutine.
func (m *FormModel) submitCmd() tea.Cmd {
	page := m.page
	bridge := m.bridge
	sub := m.submission()

	return func() tea.Msg {
		outcome, err := page.Submit(context.Background(), sub)
		return SubmitDoneMsg{
			Form:    page.Name(),
			Outcome: outcome,
			Err:     err,
			bridge:  bridge,
			result:  bridge.drain(),
		}
	}
}

func (m *FormModel) submission() validation.Submission {
	sub := make(validation.Submission, len(m.inputs))
	for i, f := range m.page.Fields {
		value := m.inputs[i].Value()
		if !f.Secret {
			value = strings.TrimSpace(value)
		}
		sub[f.Name] = value
	}
	return sub
}

func (m FormModel) applyResult(msg SubmitDoneMsg) (FormModel, tea.Cmd) {
	if msg.Outcome == form.OutcomeRejected {
		return m, nil
	}
	m.submitting = false

	if msg.result.ErrorsSet {
		m.fieldErrors = msg.result.FieldErrors
		if m.fieldErrors == nil {
			m.fieldErrors = validation.FieldErrorMap{}
		}
	}

	var cmds []tea.Cmd
	for _, n := range msg.result.Notifications {
		cmds = append(cmds, ShowToast(n))
	}
	if msg.result.Pushed != "" {
		cmds = append(cmds, NavigateTo(msg.result.Pushed))
	}

	// Focus the first field with an error.
	for i, f := range m.page.Fields {
		if m.fieldErrors.Has(f.Name) {
			cmds = append(cmds, m.setFocus(i))
			break
		}
	}

	return m, tea.Batch(cmds...)
}

func (m *FormModel) View() string {
	var b strings.Builder

	b.WriteString(renderLogo())
	b.WriteString("\n")
	b.WriteString(titleStyle.Render(m.page.Title))
	b.WriteString("\n")

	for i, f := range m.page.Fields {
		b.WriteString(labelStyle.Render(f.Label))
		b.WriteString("\n")

		style := inputStyle
		switch {
		case m.fieldErrors.Has(f.Name):
			style = erroredInputStyle()
		case i == m.focus:
			style = focusedInputStyle()
		}
		b.WriteString(style.Render(m.inputs[i].View()))
		b.WriteString("\n")

		if msg := m.fieldErrors.Get(f.Name); msg != "" {
			b.WriteString(fieldErrorStyle.Render("  ⚠ " + msg))
			b.WriteString("\n")
		}
	}

	b.WriteString(m.renderButton())
	b.WriteString("\n\n")
	b.WriteString(m.renderLinks())
	b.WriteString("\n")
	b.WriteString(helpStyle.Render(m.help.View(m.keys)))

	return b.String()
}

func (m *FormModel) renderButton() string {
	text := m.page.SubmitText
	if m.submitting {
		text = m.spinner.View() + " Sending..."
	}

	if m.focus == m.buttonIndex() {
		return focusedButtonStyle().Render(text)
	}
	return buttonStyle.Render(text)
}

func (m *FormModel) renderLinks() string {
	links := make([]string, len(m.page.Links))
	for i, l := range m.page.Links {
		if m.focus == m.buttonIndex()+1+i {
			links[i] = focusedLinkStyle().Render("› " + l.Label)
		} else {
			links[i] = linkStyle.Render("  " + l.Label)
		}
	}
	return lipgloss.JoinVertical(lipgloss.Left, links...)
}
