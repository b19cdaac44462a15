package form

import (
	"context"
	"errors"
	"net/url"

	"gobarber/barberterm/internal/validation"
)

// ErrBusy is returned by Submit while a previous submission is still running.
var ErrBusy = errors.New("form: submission already in progress")

type State int

const (
	StateIdle State = iota
	StateValidating
	StateSubmitting
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateValidating:
		return "validating"
	case StateSubmitting:
		return "submitting"
	default:
		return "unknown"
	}
}

type Outcome int

const (
	OutcomeSucceeded Outcome = iota
	OutcomeFailedValidation
	OutcomeFailedPrecondition
	OutcomeFailedRemote
	OutcomeRejected
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSucceeded:
		return "succeeded"
	case OutcomeFailedValidation:
		return "failed_validation"
	case OutcomeFailedPrecondition:
		return "failed_precondition"
	case OutcomeFailedRemote:
		return "failed_remote"
	case OutcomeRejected:
		return "rejected"
	default:
		return "unknown"
	}
}

type NotificationType string

const (
	NotificationSuccess NotificationType = "success"
	NotificationError   NotificationType = "error"
	NotificationInfo    NotificationType = "info"
)

type Notification struct {
	Type        NotificationType
	Title       string
	Description string
}

// NotificationSink displays notifications. Notify must not block.
type NotificationSink interface {
	Notify(Notification)
}

// FieldErrorDisplay renders messages next to the form's fields. An empty map
// clears every message.
type FieldErrorDisplay interface {
	SetFieldErrors(validation.FieldErrorMap)
}

// Router exposes the current location and a navigation primitive.
type Router interface {
	Location() *url.URL
	Push(path string)
}

// Recorder receives one entry per finished submission attempt.
type Recorder interface {
	RecordSubmission(form, outcome string, fields []string)
}

// Intent issues the single network request a form stands for.
type Intent func(ctx context.Context, sub validation.Submission) error

// Precondition runs after validation and before the request. A non-nil error
// stops the submission without touching the network.
type Precondition func(sub validation.Submission) error

// PreconditionNotice maps a precondition error to the notification shown for
// it. Returning false falls back to the form's generic error notification.
type PreconditionNotice func(err error) (Notification, bool)

// Messages are the notifications pushed on success and on any failure.
type Messages struct {
	SuccessTitle       string
	SuccessDescription string
	ErrorTitle         string
	ErrorDescription   string
}
