package form

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"gobarber/barberterm/internal/validation"
)

// Controller runs one form's submission lifecycle:
//
//	Idle -> Validating -> Submitting -> Idle
//	             |
//	             +-> Idle (validation or precondition failure)
//
// It is reusable across submissions and rejects a new submission while one
// is in flight.
type Controller struct {
	name     string
	rules    *validation.RuleSet
	intent   Intent
	messages Messages

	sink         NotificationSink
	display      FieldErrorDisplay
	precondition Precondition
	notice       PreconditionNotice
	onSuccess    func()
	recorder     Recorder
	logger       *log.Logger

	mu    sync.Mutex
	state State
}

type Option func(*Controller)

func WithPrecondition(p Precondition) Option {
	return func(c *Controller) {
		c.precondition = p
	}
}

// WithPreconditionNotice lets a page describe a failed precondition instead
// of pushing the generic error notification.
func WithPreconditionNotice(n PreconditionNotice) Option {
	return func(c *Controller) {
		c.notice = n
	}
}

// WithSuccessAction runs fn after the success notification is pushed.
func WithSuccessAction(fn func()) Option {
	return func(c *Controller) {
		c.onSuccess = fn
	}
}

func WithRecorder(r Recorder) Option {
	return func(c *Controller) {
		c.recorder = r
	}
}

func WithLogger(logger *log.Logger) Option {
	return func(c *Controller) {
		if logger != nil {
			c.logger = logger.With("form", c.name)
		}
	}
}

func NewController(name string, rules *validation.RuleSet, intent Intent, sink NotificationSink, display FieldErrorDisplay, messages Messages, opts ...Option) (*Controller, error) {
	if rules == nil {
		return nil, fmt.Errorf("form %s: rule set is required", name)
	}
	if intent == nil {
		return nil, fmt.Errorf("form %s: intent is required", name)
	}
	if sink == nil {
		return nil, fmt.Errorf("form %s: notification sink is required", name)
	}
	if display == nil {
		return nil, fmt.Errorf("form %s: field error display is required", name)
	}

	c := &Controller{
		name:     name,
		rules:    rules,
		intent:   intent,
		messages: messages,
		sink:     sink,
		display:  display,
		logger:   log.New(io.Discard),
		state:    StateIdle,
	}

	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}

	return c, nil
}

func (c *Controller) Name() string {
	return c.name
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.state
}

// Busy reports whether a submission is in flight. Front ends use it to
// disable their submit control.
func (c *Controller) Busy() bool {
	return c.State() != StateIdle
}

func (c *Controller) transition(from, to State) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != from {
		return false
	}
	c.state = to
	return true
}

func (c *Controller) setState(s State) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.state = s
}

// Submit validates sub and, when valid, issues the form's request. The
// returned error is the cause of a failed outcome; failures are already
// reported through the sink and display by the time Submit returns.
func (c *Controller) Submit(ctx context.Context, sub validation.Submission) (Outcome, error) {
	if !c.transition(StateIdle, StateValidating) {
		c.logger.Debug("submission rejected", "state", c.State())
		return OutcomeRejected, ErrBusy
	}
	defer c.setState(StateIdle)

	start := time.Now()
	outcome, fields, err := c.run(ctx, sub)

	c.logger.Info("submission finished",
		"outcome", outcome,
		"fields", fields,
		"elapsed", time.Since(start))
	if c.recorder != nil {
		c.recorder.RecordSubmission(c.name, outcome.String(), fields)
	}

	return outcome, err
}

func (c *Controller) run(ctx context.Context, sub validation.Submission) (Outcome, []string, error) {
	c.display.SetFieldErrors(validation.FieldErrorMap{})

	result := c.rules.Validate(sub)
	if !result.IsValid() {
		c.display.SetFieldErrors(validation.ToFieldErrorMap(result.Failure))
		c.notifyError()
		return OutcomeFailedValidation, result.Failure.Fields(), result.Failure
	}

	if c.precondition != nil {
		if err := c.precondition(sub); err != nil {
			c.logger.Warn("precondition failed", "err", err)
			if n, ok := c.describe(err); ok {
				c.sink.Notify(n)
			} else {
				c.notifyError()
			}
			return OutcomeFailedPrecondition, nil, err
		}
	}

	c.setState(StateSubmitting)

	if err := c.intent(ctx, sub); err != nil {
		c.logger.Error("request failed", "err", err)

		var fields []string
		var failure validation.Failure
		if errors.As(err, &failure) {
			c.display.SetFieldErrors(validation.ToFieldErrorMap(failure))
			fields = failure.Fields()
		}
		c.notifyError()
		return OutcomeFailedRemote, fields, err
	}

	c.sink.Notify(Notification{
		Type:        NotificationSuccess,
		Title:       c.messages.SuccessTitle,
		Description: c.messages.SuccessDescription,
	})
	if c.onSuccess != nil {
		c.onSuccess()
	}

	return OutcomeSucceeded, nil, nil
}

func (c *Controller) describe(err error) (Notification, bool) {
	if c.notice == nil {
		return Notification{}, false
	}
	return c.notice(err)
}

func (c *Controller) notifyError() {
	c.sink.Notify(Notification{
		Type:        NotificationError,
		Title:       c.messages.ErrorTitle,
		Description: c.messages.ErrorDescription,
	})
}
