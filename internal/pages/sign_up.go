package pages

import (
	"context"
	"fmt"

	"gobarber/barberterm/internal/api"
	"gobarber/barberterm/internal/form"
	"gobarber/barberterm/internal/validation"
)

var signUpRules = validation.NewSchema().
	Field("name", validation.Required("Name is required")).
	Field("email",
		validation.Required("E-mail is required"),
		validation.Email("Enter a valid e-mail")).
	Field("password",
		validation.Required("Password is required"),
		validation.MinLength(6, "At least 6 characters")).
	MustBuild()

func NewSignUp(d Deps) (*Page, error) {
	if err := d.check(true); err != nil {
		return nil, fmt.Errorf("sign-up page: %w", err)
	}

	intent := func(ctx context.Context, sub validation.Submission) error {
		_, err := d.API.SignUp(ctx, api.SignUpRequest{
			Name:     sub.Get("name"),
			Email:    sub.Get("email"),
			Password: sub.Get("password"),
		})
		return err
	}

	controller, err := form.NewController("sign_up", signUpRules, intent, d.Sink, d.Display,
		form.Messages{
			SuccessTitle:       "Account created",
			SuccessDescription: "You can now sign in",
			ErrorTitle:         "Sign-up failed",
			ErrorDescription:   "Something went wrong while creating your account, please try again.",
		},
		d.options(form.WithSuccessAction(func() { d.Router.Push(RouteSignIn) }))...)
	if err != nil {
		return nil, err
	}

	return &Page{
		Route:      RouteSignUp,
		Title:      "Create your account",
		SubmitText: "Sign up",
		Fields: []Field{
			{Name: "name", Label: "Name", Placeholder: "Name"},
			{Name: "email", Label: "E-mail", Placeholder: "E-mail"},
			{Name: "password", Label: "Password", Placeholder: "Password", Secret: true},
		},
		Links:      []Link{{Label: "Back to sign in", Route: RouteSignIn}},
		controller: controller,
	}, nil
}
