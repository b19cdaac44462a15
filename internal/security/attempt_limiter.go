package security

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"
)

// ErrLocked is returned by Check while an account is locked out.
var ErrLocked = errors.New("too many failed sign-in attempts")

// LockedError carries how long the lockout still lasts.
type LockedError struct {
	Remaining time.Duration
}

func (e *LockedError) Error() string {
	return fmt.Sprintf("%v, try again in %s", ErrLocked, e.Remaining.Round(time.Second))
}

func (e *LockedError) Unwrap() error {
	return ErrLocked
}

// AttemptLimiter counts failed sign-ins per e-mail and locks the account on
// this machine once MaxAttempts is reached. Lockouts grow with the count.
type AttemptLimiter struct {
	attempts    map[string]*AttemptRecord
	maxAttempts int
	now         func() time.Time
	mu          sync.RWMutex
}

type AttemptRecord struct {
	Count       int
	LastAttempt time.Time
	LockedUntil time.Time
}

func NewAttemptLimiter(maxAttempts int) *AttemptLimiter {
	if maxAttempts <= 0 {
		maxAttempts = 3
	}

	return &AttemptLimiter{
		attempts:    make(map[string]*AttemptRecord),
		maxAttempts: maxAttempts,
		now:         time.Now,
	}
}

func attemptKey(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Check returns a *LockedError while email is locked out.
func (al *AttemptLimiter) Check(email string) error {
	if remaining := al.RemainingLockout(email); remaining > 0 {
		return &LockedError{Remaining: remaining}
	}
	return nil
}

func (al *AttemptLimiter) RecordFailure(email string) {
	al.mu.Lock()
	defer al.mu.Unlock()

	key := attemptKey(email)
	now := al.now()
	record, exists := al.attempts[key]
	if !exists {
		record = &AttemptRecord{}
		al.attempts[key] = record
	}

	record.Count++
	record.LastAttempt = now

	if record.Count >= al.maxAttempts {
		record.LockedUntil = now.Add(lockoutDuration(record.Count - al.maxAttempts))
	}
}

func (al *AttemptLimiter) RecordSuccess(email string) {
	al.mu.Lock()
	defer al.mu.Unlock()

	delete(al.attempts, attemptKey(email))
}

func (al *AttemptLimiter) RemainingLockout(email string) time.Duration {
	al.mu.RLock()
	defer al.mu.RUnlock()

	record, exists := al.attempts[attemptKey(email)]
	if !exists {
		return 0
	}

	remaining := record.LockedUntil.Sub(al.now())
	if remaining < 0 {
		return 0
	}
	return remaining
}

func (al *AttemptLimiter) FailedAttempts(email string) int {
	al.mu.RLock()
	defer al.mu.RUnlock()

	record, exists := al.attempts[attemptKey(email)]
	if !exists {
		return 0
	}
	return record.Count
}

// lockoutDuration grows with the failures past the limit; over is 0 for the
// first lockout.
func lockoutDuration(over int) time.Duration {
	switch over {
	case 0:
		return 1 * time.Minute
	case 1:
		return 5 * time.Minute
	case 2:
		return 15 * time.Minute
	default:
		return 1 * time.Hour
	}
}
