package api

import (
	"time"
)

func NewAppointmentCache(ttl time.Duration) *AppointmentCache {
	return &AppointmentCache{
		days: make(map[string]*cachedDay),
		ttl:  ttl,
	}
}

func dayKey(day time.Time) string {
	return day.Format("2006-01-02")
}

func (c *AppointmentCache) Get(day time.Time) ([]Appointment, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, exists := c.days[dayKey(day)]
	if !exists {
		return nil, false
	}

	if time.Since(entry.lastUpdated) > c.ttl {
		return nil, false
	}

	out := make([]Appointment, len(entry.appointments))
	copy(out, entry.appointments)
	return out, true
}

func (c *AppointmentCache) Set(day time.Time, appointments []Appointment) {
	c.mu.Lock()
	defer c.mu.Unlock()

	stored := make([]Appointment, len(appointments))
	copy(stored, appointments)
	c.days[dayKey(day)] = &cachedDay{
		appointments: stored,
		lastUpdated:  time.Now(),
	}
}

func (c *AppointmentCache) Invalidate(day time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.days, dayKey(day))
}

func (c *AppointmentCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.days = make(map[string]*cachedDay)
}

func (c *AppointmentCache) Cleanup() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	for key, entry := range c.days {
		if now.Sub(entry.lastUpdated) > c.ttl {
			delete(c.days, key)
		}
	}
}

func (c *AppointmentCache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.days)
}

// StartCleanupRoutine evicts expired days every interval until stop is closed.
func (c *AppointmentCache) StartCleanupRoutine(interval time.Duration, stop <-chan struct{}) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				c.Cleanup()
			case <-stop:
				return
			}
		}
	}()
}
