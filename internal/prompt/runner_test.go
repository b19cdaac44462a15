package prompt

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"gobarber/barberterm/internal/api"
	"gobarber/barberterm/internal/security"
)

// scriptedDriver answers prompts from queues and records the messages asked.
type scriptedDriver struct {
	inputs   []string
	selects  []int
	messages []string
}

func (d *scriptedDriver) Input(ctx context.Context, cfg InputConfig) (string, error) {
	d.messages = append(d.messages, cfg.Message)
	return d.pop()
}

func (d *scriptedDriver) Password(ctx context.Context, cfg InputConfig) (string, error) {
	d.messages = append(d.messages, cfg.Message)
	return d.pop()
}

func (d *scriptedDriver) Select(ctx context.Context, cfg SelectConfig) (int, error) {
	if len(d.selects) == 0 {
		return 0, ErrAborted
	}
	choice := d.selects[0]
	d.selects = d.selects[1:]
	return choice, nil
}

func (d *scriptedDriver) pop() (string, error) {
	if len(d.inputs) == 0 {
		return "", ErrAborted
	}
	v := d.inputs[0]
	d.inputs = d.inputs[1:]
	return v, nil
}

type fakeBackend struct {
	posts        []string
	signIn       api.Session
	appointments []api.Appointment
	loadErr      error
}

func (b *fakeBackend) SignUp(ctx context.Context, req api.SignUpRequest) (*api.User, error) {
	b.posts = append(b.posts, api.PathUsers)
	return &api.User{Name: req.Name, Email: req.Email}, nil
}

func (b *fakeBackend) SignIn(ctx context.Context, req api.SignInRequest) (*api.Session, error) {
	b.posts = append(b.posts, api.PathSessions)
	session := b.signIn
	return &session, nil
}

func (b *fakeBackend) ForgotPassword(ctx context.Context, req api.ForgotPasswordRequest) error {
	b.posts = append(b.posts, api.PathForgotPassword)
	return nil
}

func (b *fakeBackend) ResetPassword(ctx context.Context, req api.ResetPasswordRequest) error {
	b.posts = append(b.posts, api.PathResetPassword)
	return nil
}

func (b *fakeBackend) Appointments(ctx context.Context, day time.Time) ([]api.Appointment, error) {
	return b.appointments, b.loadErr
}

func (b *fakeBackend) RefreshAppointments(ctx context.Context, day time.Time) ([]api.Appointment, error) {
	return b.appointments, b.loadErr
}

type fakeSessions struct {
	session *security.AuthSession
}

func (s *fakeSessions) Begin(result api.Session) (*security.AuthSession, error) {
	s.session = &security.AuthSession{User: result.User, Token: result.Token}
	return s.session, nil
}

func (s *fakeSessions) Current() (*security.AuthSession, bool) {
	return s.session, s.session != nil
}

func (s *fakeSessions) Touch() error { return nil }

func (s *fakeSessions) Close() error {
	s.session = nil
	return nil
}

func newTestRunner(t *testing.T, driver *scriptedDriver, backend *fakeBackend, sessions *fakeSessions) (*Runner, *bytes.Buffer) {
	t.Helper()

	var out bytes.Buffer
	r, err := NewRunner(driver, backend, sessions, &out,
		WithClock(func() time.Time { return time.Date(2026, 10, 19, 8, 0, 0, 0, time.Local) }))
	if err != nil {
		t.Fatalf("Failed to create runner: %v", err)
	}
	return r, &out
}

func TestForgotPasswordFlow(t *testing.T) {
	driver := &scriptedDriver{
		inputs:  []string{"bad", "user@example.com"},
		selects: []int{0, 2}, // try again, then quit
	}
	backend := &fakeBackend{}
	r, out := newTestRunner(t, driver, backend, &fakeSessions{})

	if err := r.Run(context.Background(), "/forgot-password"); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	if diff := cmp.Diff([]string{"/password/forgot"}, backend.posts); diff != "" {
		t.Errorf("Unexpected requests (-want +got):\n%s", diff)
	}
	if driver.messages[1] != "E-mail (Enter a valid e-mail):" {
		t.Errorf("Expected the field error in the second prompt, got %q", driver.messages[1])
	}
	if !strings.Contains(out.String(), "✔ Recovery e-mail sent") {
		t.Errorf("Expected success notification in output, got:\n%s", out.String())
	}
}

func TestResetPasswordWithoutTokenPrintsError(t *testing.T) {
	driver := &scriptedDriver{
		inputs:  []string{"secret1", "secret1"},
		selects: []int{2}, // quit
	}
	backend := &fakeBackend{}
	r, out := newTestRunner(t, driver, backend, &fakeSessions{})

	if err := r.Run(context.Background(), "/reset-password"); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	if len(backend.posts) != 0 {
		t.Errorf("Expected no request, got %v", backend.posts)
	}
	if !strings.Contains(out.String(), "✘ Password reset failed") {
		t.Errorf("Expected error notification in output, got:\n%s", out.String())
	}
}

func TestSignInThenDashboard(t *testing.T) {
	driver := &scriptedDriver{
		inputs:  []string{"ana@example.com", "123456"},
		selects: []int{3}, // sign out; the sign-in page then runs out of answers
	}
	backend := &fakeBackend{
		signIn: api.Session{User: api.User{Name: "Ana"}, Token: "jwt"},
		appointments: []api.Appointment{
			{Date: time.Date(2026, 10, 19, 9, 0, 0, 0, time.Local), User: &api.User{Name: "Caio"}},
		},
	}
	sessions := &fakeSessions{}
	r, out := newTestRunner(t, driver, backend, sessions)

	if err := r.Run(context.Background(), "/"); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	output := out.String()
	for _, want := range []string{"Welcome, Ana", "09:00  Caio", "Signed out"} {
		if !strings.Contains(output, want) {
			t.Errorf("Expected %q in output, got:\n%s", want, output)
		}
	}
	if _, ok := sessions.Current(); ok {
		t.Error("Expected the session to be closed")
	}
}

func TestDashboardRequiresSignIn(t *testing.T) {
	driver := &scriptedDriver{}
	r, out := newTestRunner(t, driver, &fakeBackend{}, &fakeSessions{})

	if err := r.Run(context.Background(), "/dashboard"); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if !strings.Contains(out.String(), "Sign in to see your schedule") {
		t.Errorf("Expected a sign-in notice, got:\n%s", out.String())
	}
}

func TestUnauthorizedDashboardSignsOut(t *testing.T) {
	driver := &scriptedDriver{}
	sessions := &fakeSessions{session: &security.AuthSession{Token: "old"}}
	backend := &fakeBackend{loadErr: api.NewStatusError(401, "")}
	r, out := newTestRunner(t, driver, backend, sessions)

	if err := r.Run(context.Background(), "/dashboard"); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if _, ok := sessions.Current(); ok {
		t.Error("Expected the session to be closed")
	}
	if !strings.Contains(out.String(), "session has expired") {
		t.Errorf("Expected an expiry notice, got:\n%s", out.String())
	}
}

func TestNewRunnerRequiresDependencies(t *testing.T) {
	if _, err := NewRunner(nil, &fakeBackend{}, &fakeSessions{}, nil); err == nil {
		t.Error("Expected error without driver")
	}
	if _, err := NewRunner(&scriptedDriver{}, nil, &fakeSessions{}, nil); err == nil {
		t.Error("Expected error without backend")
	}
	if _, err := NewRunner(&scriptedDriver{}, &fakeBackend{}, nil, nil); err == nil {
		t.Error("Expected error without sessions")
	}
}
