package validation

import (
	"fmt"
	"strings"
)

// Submission holds the raw field values entered at submit time.
type Submission map[string]string

// Get returns the value for field, or "" when the field is absent.
func (s Submission) Get(field string) string {
	return s[field]
}

// ValidationErrorCode identifies which kind of constraint failed.
type ValidationErrorCode string

const (
	CodeRequired     ValidationErrorCode = "required"
	CodeInvalidEmail ValidationErrorCode = "invalid_email"
	CodeTooShort     ValidationErrorCode = "too_short"
	CodeMismatch     ValidationErrorCode = "mismatch"
)

// ValidationError is one violated constraint on one field.
type ValidationError struct {
	Field   string
	Code    ValidationErrorCode
	Message string
}

// Failure is the full set of violations produced by one validation pass.
// It implements error so intents can hand it back to the form controller.
type Failure []ValidationError

func (f Failure) Error() string {
	if len(f) == 0 {
		return ""
	}
	const maxShown = 3
	var b strings.Builder
	for i, ve := range f {
		if i == maxShown {
			fmt.Fprintf(&b, "; ... (total %d)", len(f))
			break
		}
		if i > 0 {
			b.WriteString("; ")
		}
		fmt.Fprintf(&b, "%s: %s", ve.Field, ve.Code)
	}
	return b.String()
}

// Fields lists the fields with at least one violation, in first-seen order.
func (f Failure) Fields() []string {
	seen := make(map[string]bool, len(f))
	var fields []string
	for _, ve := range f {
		if seen[ve.Field] {
			continue
		}
		seen[ve.Field] = true
		fields = append(fields, ve.Field)
	}
	return fields
}

// Status tags a Result as valid or invalid.
type Status int

const (
	StatusValid Status = iota
	StatusInvalid
)

func (s Status) String() string {
	switch s {
	case StatusValid:
		return "valid"
	case StatusInvalid:
		return "invalid"
	default:
		return "unknown"
	}
}

// Result is the outcome of validating a submission. Failure is only set when
// Status is StatusInvalid.
type Result struct {
	Status     Status
	Submission Submission
	Failure    Failure
}

func (r Result) IsValid() bool {
	return r.Status == StatusValid
}
