package audit

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
)

const (
	defaultBatchSize     = 10
	defaultFlushInterval = time.Minute
)

// SubmissionAuditor appends one JSON line per form submission to a daily
// file. Entries are batched and flushed when the batch fills, on a timer, and
// on Close.
type SubmissionAuditor struct {
	logFile       string
	batchSize     int
	batchMu       sync.Mutex
	batchLogs     []Entry
	flushInterval time.Duration
	stopFlush     chan struct{}
	closeOnce     sync.Once
	userID        func() string
	logger        *log.Logger
}

type Option func(*SubmissionAuditor)

func WithBatchSize(n int) Option {
	return func(a *SubmissionAuditor) {
		if n > 0 {
			a.batchSize = n
		}
	}
}

func WithFlushInterval(d time.Duration) Option {
	return func(a *SubmissionAuditor) {
		if d > 0 {
			a.flushInterval = d
		}
	}
}

// WithUserID attaches the signed-in user's ID to every entry.
func WithUserID(fn func() string) Option {
	return func(a *SubmissionAuditor) {
		a.userID = fn
	}
}

func WithLogger(logger *log.Logger) Option {
	return func(a *SubmissionAuditor) {
		if logger != nil {
			a.logger = logger.With("component", "audit")
		}
	}
}

func NewSubmissionAuditor(logDir string, opts ...Option) (*SubmissionAuditor, error) {
	if err := os.MkdirAll(logDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create audit log directory: %w", err)
	}

	a := &SubmissionAuditor{
		logFile:   filepath.Join(logDir, fmt.Sprintf("submissions_%s.jsonl", time.Now().Format("2006-01-02"))),
		batchSize:     defaultBatchSize,
		flushInterval: defaultFlushInterval,
		stopFlush:     make(chan struct{}),
		logger:        log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(a)
	}
	a.batchLogs = make([]Entry, 0, a.batchSize)

	a.startFlushRoutine()

	return a, nil
}

func (a *SubmissionAuditor) startFlushRoutine() {
	ticker := time.NewTicker(a.flushInterval)

	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := a.Flush(); err != nil {
					a.logger.Warn("periodic flush failed", "err", err)
				}
			case <-a.stopFlush:
				return
			}
		}
	}()
}

func (a *SubmissionAuditor) Path() string {
	return a.logFile
}

// RecordSubmission satisfies form.Recorder. Write failures are logged, not
// returned, so a broken audit file never blocks a form.
func (a *SubmissionAuditor) RecordSubmission(form, outcome string, fields []string) {
	entry := Entry{
		ID:        uuid.NewString(),
		Form:      form,
		Outcome:   outcome,
		Fields:    append([]string(nil), fields...),
		Timestamp: time.Now(),
	}
	if a.userID != nil {
		entry.UserID = a.userID()
	}

	if err := a.add(entry); err != nil {
		a.logger.Warn("failed to record submission", "form", form, "err", err)
	}
}

func (a *SubmissionAuditor) add(entry Entry) error {
	a.batchMu.Lock()
	a.batchLogs = append(a.batchLogs, entry)

	if len(a.batchLogs) >= a.batchSize {
		a.batchMu.Unlock()
		return a.Flush()
	}
	a.batchMu.Unlock()

	return nil
}

func (a *SubmissionAuditor) Flush() error {
	a.batchMu.Lock()
	if len(a.batchLogs) == 0 {
		a.batchMu.Unlock()
		return nil
	}

	pending := make([]Entry, len(a.batchLogs))
	copy(pending, a.batchLogs)
	a.batchLogs = a.batchLogs[:0]
	a.batchMu.Unlock()

	file, err := os.OpenFile(a.logFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return fmt.Errorf("failed to open audit log file: %w", err)
	}
	defer file.Close()

	for _, entry := range pending {
		line, err := json.Marshal(entry)
		if err != nil {
			return fmt.Errorf("failed to marshal audit entry: %w", err)
		}

		if _, err := file.Write(append(line, '\n')); err != nil {
			return fmt.Errorf("failed to write audit entry: %w", err)
		}
	}

	return nil
}

// History returns the flushed entries for form, or every entry when form is
// empty.
func (a *SubmissionAuditor) History(form string) ([]Entry, error) {
	if err := a.Flush(); err != nil {
		return nil, err
	}

	file, err := os.Open(a.logFile)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to open audit log file: %w", err)
	}
	defer file.Close()

	var entries []Entry
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		var entry Entry
		if err := json.Unmarshal(scanner.Bytes(), &entry); err != nil {
			a.logger.Warn("skipping malformed audit line", "err", err)
			continue
		}
		if form == "" || entry.Form == form {
			entries = append(entries, entry)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read audit log file: %w", err)
	}

	return entries, nil
}

// Close stops the periodic flush and writes whatever is pending. It is safe
// to call more than once.
func (a *SubmissionAuditor) Close() error {
	a.closeOnce.Do(func() {
		close(a.stopFlush)
	})
	return a.Flush()
}
