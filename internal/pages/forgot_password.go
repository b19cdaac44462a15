package pages

import (
	"context"
	"fmt"

	"gobarber/barberterm/internal/api"
	"gobarber/barberterm/internal/form"
	"gobarber/barberterm/internal/validation"
)

var forgotPasswordRules = validation.NewSchema().
	Field("email",
		validation.Required("E-mail is required"),
		validation.Email("Enter a valid e-mail")).
	MustBuild()

// NewForgotPassword stays on the page after success; the notification is the
// only confirmation.
func NewForgotPassword(d Deps) (*Page, error) {
	if err := d.check(false); err != nil {
		return nil, fmt.Errorf("forgot-password page: %w", err)
	}

	intent := func(ctx context.Context, sub validation.Submission) error {
		return d.API.ForgotPassword(ctx, api.ForgotPasswordRequest{
			Email: sub.Get("email"),
		})
	}

	controller, err := form.NewController("forgot_password", forgotPasswordRules, intent, d.Sink, d.Display,
		form.Messages{
			SuccessTitle:       "Recovery e-mail sent",
			SuccessDescription: "We sent you an e-mail to reset your password, check your inbox.",
			ErrorTitle:         "Password recovery failed",
			ErrorDescription:   "Something went wrong while recovering your password, please try again.",
		},
		d.options()...)
	if err != nil {
		return nil, err
	}

	return &Page{
		Route:      RouteForgotPassword,
		Title:      "Recover password",
		SubmitText: "Recover",
		Fields: []Field{
			{Name: "email", Label: "E-mail", Placeholder: "E-mail"},
		},
		Links:      []Link{{Label: "Back to sign in", Route: RouteSignIn}},
		controller: controller,
	}, nil
}
