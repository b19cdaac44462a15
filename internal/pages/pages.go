// Package pages wires one form controller per authentication page: its
// fields, rules, request and post-success navigation.
package pages

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/charmbracelet/log"

	"gobarber/barberterm/internal/api"
	"gobarber/barberterm/internal/form"
	"gobarber/barberterm/internal/security"
	"gobarber/barberterm/internal/validation"
)

const (
	RouteSignIn         = "/"
	RouteSignUp         = "/signup"
	RouteForgotPassword = "/forgot-password"
	RouteResetPassword  = "/reset-password"
	RouteDashboard      = "/dashboard"
)

// ErrMissingToken is the precondition failure of the reset-password page
// when the location carries no ?token=.
var ErrMissingToken = errors.New("reset token missing from location")

// Auth is the part of the API client the authentication pages call. Each
// method issues exactly one request.
type Auth interface {
	SignUp(ctx context.Context, req api.SignUpRequest) (*api.User, error)
	SignIn(ctx context.Context, req api.SignInRequest) (*api.Session, error)
	ForgotPassword(ctx context.Context, req api.ForgotPasswordRequest) error
	ResetPassword(ctx context.Context, req api.ResetPasswordRequest) error
}

// SessionStarter begins the signed-in session after a successful sign-in.
type SessionStarter interface {
	Begin(result api.Session) (*security.AuthSession, error)
}

// AttemptGuard throttles repeated failed sign-ins for one e-mail.
type AttemptGuard interface {
	Check(email string) error
	RecordFailure(email string)
	RecordSuccess(email string)
}

type Deps struct {
	API      Auth
	Sink     form.NotificationSink
	Display  form.FieldErrorDisplay
	Router   form.Router
	Sessions SessionStarter
	Attempts AttemptGuard
	Recorder form.Recorder
	Logger   *log.Logger
}

func (d Deps) logger() *log.Logger {
	if d.Logger == nil {
		return log.New(io.Discard)
	}
	return d.Logger
}

func (d Deps) options(extra ...form.Option) []form.Option {
	opts := []form.Option{form.WithLogger(d.Logger)}
	if d.Recorder != nil {
		opts = append(opts, form.WithRecorder(d.Recorder))
	}
	return append(opts, extra...)
}

func (d Deps) check(needRouter bool) error {
	if d.API == nil {
		return errors.New("api client is required")
	}
	if needRouter && d.Router == nil {
		return errors.New("router is required")
	}
	return nil
}

type Field struct {
	Name        string
	Label       string
	Placeholder string
	Secret      bool
}

type Link struct {
	Label string
	Route string
}

// Page is a form page shell. Front ends render Fields and Links and hand the
// collected values to Submit.
type Page struct {
	Route      string
	Title      string
	SubmitText string
	Fields     []Field
	Links      []Link

	controller *form.Controller
}

func (p *Page) Submit(ctx context.Context, sub validation.Submission) (form.Outcome, error) {
	return p.controller.Submit(ctx, sub)
}

func (p *Page) Busy() bool {
	return p.controller.Busy()
}

func (p *Page) Name() string {
	return p.controller.Name()
}

// IsFormRoute reports whether path (query ignored) names a form page.
func IsFormRoute(path string) bool {
	switch routePath(path) {
	case RouteSignIn, RouteSignUp, RouteForgotPassword, RouteResetPassword:
		return true
	}
	return false
}

// New builds the page registered for path. The query string is ignored here;
// pages that need it read it from the router at submit time.
func New(path string, d Deps) (*Page, error) {
	switch routePath(path) {
	case RouteSignIn:
		return NewSignIn(d)
	case RouteSignUp:
		return NewSignUp(d)
	case RouteForgotPassword:
		return NewForgotPassword(d)
	case RouteResetPassword:
		return NewResetPassword(d)
	default:
		return nil, fmt.Errorf("no form page for route %q", path)
	}
}

func routePath(path string) string {
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	if path == "" {
		return RouteSignIn
	}
	return path
}

func locationToken(r form.Router) string {
	var loc *url.URL
	if r != nil {
		loc = r.Location()
	}
	if loc == nil {
		return ""
	}
	return strings.TrimSpace(loc.Query().Get("token"))
}
