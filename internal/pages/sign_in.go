package pages

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gobarber/barberterm/internal/api"
	"gobarber/barberterm/internal/form"
	"gobarber/barberterm/internal/security"
	"gobarber/barberterm/internal/validation"
)

var signInRules = validation.NewSchema().
	Field("email",
		validation.Required("E-mail is required"),
		validation.Email("Enter a valid e-mail")).
	Field("password", validation.Required("Password is required")).
	MustBuild()

func NewSignIn(d Deps) (*Page, error) {
	if err := d.check(true); err != nil {
		return nil, fmt.Errorf("sign-in page: %w", err)
	}
	if d.Sessions == nil {
		return nil, errors.New("sign-in page: session starter is required")
	}

	logger := d.logger()
	intent := func(ctx context.Context, sub validation.Submission) error {
		email := sub.Get("email")

		result, err := d.API.SignIn(ctx, api.SignInRequest{
			Email:    email,
			Password: sub.Get("password"),
		})
		if err != nil {
			if d.Attempts != nil && api.IsUnauthorized(err) {
				d.Attempts.RecordFailure(email)
			}
			return err
		}
		if d.Attempts != nil {
			d.Attempts.RecordSuccess(email)
		}

		session, err := d.Sessions.Begin(*result)
		if session == nil {
			return fmt.Errorf("failed to start session: %w", err)
		}
		if err != nil {
			logger.Warn("session not persisted", "err", err)
		}
		return nil
	}

	controller, err := form.NewController("sign_in", signInRules, intent, d.Sink, d.Display,
		form.Messages{
			SuccessTitle:     "Signed in",
			ErrorTitle:       "Authentication failed",
			ErrorDescription: "Something went wrong while signing in, check your credentials.",
		},
		d.options(
			form.WithPrecondition(func(sub validation.Submission) error {
				if d.Attempts == nil {
					return nil
				}
				return d.Attempts.Check(sub.Get("email"))
			}),
			form.WithPreconditionNotice(lockoutNotice),
			form.WithSuccessAction(func() { d.Router.Push(RouteDashboard) }))...)
	if err != nil {
		return nil, err
	}

	return &Page{
		Route:      RouteSignIn,
		Title:      "Sign in",
		SubmitText: "Sign in",
		Fields: []Field{
			{Name: "email", Label: "E-mail", Placeholder: "E-mail"},
			{Name: "password", Label: "Password", Placeholder: "Password", Secret: true},
		},
		Links: []Link{
			{Label: "Forgot my password", Route: RouteForgotPassword},
			{Label: "Create account", Route: RouteSignUp},
		},
		controller: controller,
	}, nil
}

func lockoutNotice(err error) (form.Notification, bool) {
	var locked *security.LockedError
	if !errors.As(err, &locked) {
		return form.Notification{}, false
	}
	return form.Notification{
		Type:        form.NotificationError,
		Title:       "Too many attempts",
		Description: fmt.Sprintf("Sign-in is locked on this device, try again in %s.", locked.Remaining.Round(time.Second)),
	}, true
}
