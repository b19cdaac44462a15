// Package prompt is the line-mode front end: each page becomes a sequence of
// questions, and notifications are printed as they arrive.
package prompt

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"gobarber/barberterm/internal/api"
	"gobarber/barberterm/internal/form"
	"gobarber/barberterm/internal/pages"
	"gobarber/barberterm/internal/security"
	"gobarber/barberterm/internal/utils"
	"gobarber/barberterm/internal/validation"
)

type Backend interface {
	pages.Auth
	Appointments(ctx context.Context, day time.Time) ([]api.Appointment, error)
	RefreshAppointments(ctx context.Context, day time.Time) ([]api.Appointment, error)
}

type Sessions interface {
	pages.SessionStarter
	Current() (*security.AuthSession, bool)
	Touch() error
	Close() error
}

type Runner struct {
	driver   Driver
	backend  Backend
	sessions Sessions
	attempts pages.AttemptGuard
	recorder form.Recorder
	logger   *log.Logger
	out      io.Writer
	now      func() time.Time

	location    *url.URL
	pushed      string
	fieldErrors validation.FieldErrorMap
	values      validation.Submission
}

type Option func(*Runner)

func WithRecorder(r form.Recorder) Option {
	return func(rn *Runner) {
		rn.recorder = r
	}
}

func WithAttemptGuard(g pages.AttemptGuard) Option {
	return func(rn *Runner) {
		rn.attempts = g
	}
}

func WithLogger(logger *log.Logger) Option {
	return func(rn *Runner) {
		if logger != nil {
			rn.logger = logger
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(rn *Runner) {
		rn.now = now
	}
}

func NewRunner(driver Driver, backend Backend, sessions Sessions, out io.Writer, opts ...Option) (*Runner, error) {
	if driver == nil {
		return nil, errors.New("prompt driver is required")
	}
	if backend == nil {
		return nil, errors.New("backend is required")
	}
	if sessions == nil {
		return nil, errors.New("session manager is required")
	}
	if out == nil {
		out = io.Discard
	}

	r := &Runner{
		driver:   driver,
		backend:  backend,
		sessions: sessions,
		logger:   log.New(io.Discard),
		out:      out,
		now:      time.Now,
		location: &url.URL{Path: pages.RouteSignIn},
	}
	for _, opt := range opts {
		opt(r)
	}

	return r, nil
}

func (r *Runner) Notify(n form.Notification) {
	marker := "ℹ"
	switch n.Type {
	case form.NotificationSuccess:
		marker = "✔"
	case form.NotificationError:
		marker = "✘"
	}

	if n.Description != "" {
		fmt.Fprintf(r.out, "%s %s: %s\n", marker, n.Title, n.Description)
	} else {
		fmt.Fprintf(r.out, "%s %s\n", marker, n.Title)
	}
}

func (r *Runner) SetFieldErrors(errs validation.FieldErrorMap) {
	r.fieldErrors = errs
}

func (r *Runner) Location() *url.URL {
	loc := *r.location
	return &loc
}

func (r *Runner) Push(path string) {
	r.pushed = path
}

// Run drives pages starting at route until the user quits. An interrupted
// prompt ends the run without error.
func (r *Runner) Run(ctx context.Context, route string) error {
	next := route
	for next != "" {
		if err := ctx.Err(); err != nil {
			return err
		}

		var err error
		next, err = r.visit(ctx, next)
		if errors.Is(err, ErrAborted) {
			return nil
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// visit shows one route and returns the next one, or "" to quit.
func (r *Runner) visit(ctx context.Context, route string) (string, error) {
	loc, err := url.Parse(route)
	if err != nil {
		return "", fmt.Errorf("invalid route %q: %w", route, err)
	}
	if loc.Path == "" {
		loc.Path = pages.RouteSignIn
	}

	_, signedIn := r.sessions.Current()
	switch {
	case loc.Path == pages.RouteDashboard && !signedIn:
		r.Notify(form.Notification{Type: form.NotificationInfo, Title: "Sign in to see your schedule"})
		return pages.RouteSignIn, nil
	case (loc.Path == pages.RouteSignIn || loc.Path == pages.RouteSignUp) && signedIn:
		return pages.RouteDashboard, nil
	case loc.Path == pages.RouteDashboard:
		r.location = loc
		return r.dashboard(ctx)
	case !pages.IsFormRoute(loc.Path):
		r.Notify(form.Notification{Type: form.NotificationError, Title: "Page not found"})
		return pages.RouteSignIn, nil
	}

	r.location = loc
	return r.formPage(ctx, loc.Path)
}

func (r *Runner) formPage(ctx context.Context, route string) (string, error) {
	page, err := pages.New(route, pages.Deps{
		API:      r.backend,
		Sink:     r,
		Display:  r,
		Router:   r,
		Sessions: r.sessions,
		Attempts: r.attempts,
		Recorder: r.recorder,
		Logger:   r.logger,
	})
	if err != nil {
		return "", err
	}

	r.fieldErrors = validation.FieldErrorMap{}
	r.values = validation.Submission{}
	fmt.Fprintf(r.out, "\n%s\n", page.Title)

	for {
		if err := r.ask(ctx, page); err != nil {
			return "", err
		}

		r.pushed = ""
		outcome, err := page.Submit(ctx, r.values)
		r.logger.Debug("prompt submission", "form", page.Name(), "outcome", outcome, "err", err)
		if r.pushed != "" {
			return r.pushed, nil
		}

		again := "Try again"
		if outcome == form.OutcomeSucceeded {
			again = "Send again"
		}

		options := []string{again}
		for _, l := range page.Links {
			options = append(options, l.Label)
		}
		options = append(options, "Quit")

		choice, err := r.driver.Select(ctx, SelectConfig{Message: "What next?", Options: options})
		if err != nil {
			return "", err
		}
		switch {
		case choice == 0:
			continue
		case choice <= len(page.Links):
			return page.Links[choice-1].Route, nil
		default:
			return "", nil
		}
	}
}

// ask fills r.values for every field, showing the last error for the field
// as help and keeping non-secret answers as defaults.
func (r *Runner) ask(ctx context.Context, page *pages.Page) error {
	for _, f := range page.Fields {
		cfg := InputConfig{Message: f.Label + ":"}
		if msg := r.fieldErrors.Get(f.Name); msg != "" {
			cfg.Message = fmt.Sprintf("%s (%s):", f.Label, msg)
			cfg.Help = msg
		}

		var (
			value string
			err   error
		)
		if f.Secret {
			value, err = r.driver.Password(ctx, cfg)
		} else {
			cfg.Default = r.values.Get(f.Name)
			value, err = r.driver.Input(ctx, cfg)
			value = strings.TrimSpace(value)
		}
		if err != nil {
			return err
		}
		r.values[f.Name] = value
	}
	return nil
}

func (r *Runner) dashboard(ctx context.Context) (string, error) {
	session, _ := r.sessions.Current()
	if session != nil {
		fmt.Fprintf(r.out, "\nWelcome, %s\n", session.User.Name)
	}

	day := r.now()
	day = time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	refresh := false

	for {
		if err := r.sessions.Touch(); err != nil && !errors.Is(err, security.ErrSessionExpired) {
			r.logger.Warn("failed to extend session", "err", err)
		}

		load := r.backend.Appointments
		if refresh {
			load = r.backend.RefreshAppointments
		}
		appointments, err := load(ctx, day)
		if api.IsUnauthorized(err) {
			if cerr := r.sessions.Close(); cerr != nil {
				r.logger.Error("sign out failed", "err", cerr)
			}
			r.Notify(form.Notification{Type: form.NotificationError, Title: "Signed out", Description: "Your session has expired, sign in again."})
			return pages.RouteSignIn, nil
		}
		r.printDay(day, appointments, err)

		choice, err := r.driver.Select(ctx, SelectConfig{
			Message: "Schedule",
			Options: []string{"Previous day", "Next day", "Refresh", "Sign out", "Quit"},
			Default: 1,
		})
		if err != nil {
			return "", err
		}

		refresh = false
		switch choice {
		case 0:
			day = day.AddDate(0, 0, -1)
		case 1:
			day = day.AddDate(0, 0, 1)
		case 2:
			refresh = true
		case 3:
			if err := r.sessions.Close(); err != nil {
				return "", err
			}
			r.Notify(form.Notification{Type: form.NotificationInfo, Title: "Signed out"})
			return pages.RouteSignIn, nil
		default:
			return "", nil
		}
	}
}

func (r *Runner) printDay(day time.Time, appointments []api.Appointment, err error) {
	fmt.Fprintf(r.out, "\n%s\n", utils.FormatDay(day, r.now()))

	if err != nil {
		fmt.Fprintf(r.out, "  Could not load appointments: %s\n", api.ClassifyError(err).UserMessage())
		return
	}
	if len(appointments) == 0 {
		fmt.Fprintln(r.out, "  No appointments for this day")
		return
	}

	sorted := make([]api.Appointment, len(appointments))
	copy(sorted, appointments)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Date.Before(sorted[j].Date) })

	for _, a := range sorted {
		client := "Unknown client"
		if a.User != nil && a.User.Name != "" {
			client = a.User.Name
		}
		fmt.Fprintf(r.out, "  %s  %s\n", utils.FormatAppointmentTime(a.Date), client)
	}
}
