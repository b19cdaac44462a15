package views

import (
	"net/url"
	"sync"

	"gobarber/barberterm/internal/form"
	"gobarber/barberterm/internal/validation"
)

// pageBridge is the notification sink, field error display and router a page
// sees. Submissions run inside a tea.Cmd, so the bridge only buffers what the
// page reports; the form model applies it when the SubmitDoneMsg arrives.
type pageBridge struct {
	mu            sync.Mutex
	location      *url.URL
	notifications []form.Notification
	fieldErrors   validation.FieldErrorMap
	errorsSet     bool
	pushed        string
}

type bridgeResult struct {
	Notifications []form.Notification
	FieldErrors   validation.FieldErrorMap
	ErrorsSet     bool
	Pushed        string
}

func newPageBridge(location *url.URL) *pageBridge {
	if location == nil {
		location = &url.URL{Path: "/"}
	}
	return &pageBridge{location: location}
}

func (b *pageBridge) Notify(n form.Notification) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.notifications = append(b.notifications, n)
}

func (b *pageBridge) SetFieldErrors(errs validation.FieldErrorMap) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.fieldErrors = errs
	b.errorsSet = true
}

func (b *pageBridge) Location() *url.URL {
	b.mu.Lock()
	defer b.mu.Unlock()
	loc := *b.location
	return &loc
}

func (b *pageBridge) Push(path string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.pushed = path
}

// drain returns everything reported since the last drain and resets the
// buffers.
func (b *pageBridge) drain() bridgeResult {
	b.mu.Lock()
	defer b.mu.Unlock()

	result := bridgeResult{
		Notifications: b.notifications,
		FieldErrors:   b.fieldErrors,
		ErrorsSet:     b.errorsSet,
		Pushed:        b.pushed,
	}

	b.notifications = nil
	b.fieldErrors = nil
	b.errorsSet = false
	b.pushed = ""

	return result
}
