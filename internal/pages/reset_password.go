package pages

import (
	"context"
	"fmt"

	"gobarber/barberterm/internal/api"
	"gobarber/barberterm/internal/form"
	"gobarber/barberterm/internal/validation"
)

var resetPasswordRules = validation.NewSchema().
	Field("password", validation.Required("Password is required")).
	Field("password_confirmation", validation.EqualsField("password", "Passwords do not match")).
	MustBuild()

// NewResetPassword reads the reset token from the router's location at submit
// time, so a deep link opened after the page was built still works.
func NewResetPassword(d Deps) (*Page, error) {
	if err := d.check(true); err != nil {
		return nil, fmt.Errorf("reset-password page: %w", err)
	}

	precondition := func(validation.Submission) error {
		if locationToken(d.Router) == "" {
			return ErrMissingToken
		}
		return nil
	}

	intent := func(ctx context.Context, sub validation.Submission) error {
		return d.API.ResetPassword(ctx, api.ResetPasswordRequest{
			Password:             sub.Get("password"),
			PasswordConfirmation: sub.Get("password_confirmation"),
			Token:                locationToken(d.Router),
		})
	}

	controller, err := form.NewController("reset_password", resetPasswordRules, intent, d.Sink, d.Display,
		form.Messages{
			SuccessTitle:       "Password reset",
			SuccessDescription: "You can now sign in with your new password.",
			ErrorTitle:         "Password reset failed",
			ErrorDescription:   "Something went wrong while resetting your password, please try again.",
		},
		d.options(
			form.WithPrecondition(precondition),
			form.WithSuccessAction(func() { d.Router.Push(RouteSignIn) }),
		)...)
	if err != nil {
		return nil, err
	}

	return &Page{
		Route:      RouteResetPassword,
		Title:      "Reset password",
		SubmitText: "Change password",
		Fields: []Field{
			{Name: "password", Label: "New password", Placeholder: "New password", Secret: true},
			{Name: "password_confirmation", Label: "Confirm password", Placeholder: "Password confirmation", Secret: true},
		},
		Links:      []Link{{Label: "Back to sign in", Route: RouteSignIn}},
		controller: controller,
	}, nil
}
