package audit

import (
	"time"
)

// Entry is one line of the submission audit trail.
type Entry struct {
	ID        string    `json:"id"`
	Form      string    `json:"form"`
	Outcome   string    `json:"outcome"`
	Fields    []string  `json:"fields,omitempty"`
	UserID    string    `json:"user_id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}
