package utils

import (
	"testing"
	"time"
)

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{30 * time.Second, "30s"},
		{5 * time.Minute, "5m"},
		{3 * time.Hour, "3h"},
		{48 * time.Hour, "2d"},
	}

	for _, tt := range tests {
		if got := FormatDuration(tt.in); got != tt.want {
			t.Errorf("FormatDuration(%v): expected %s, got %s", tt.in, tt.want, got)
		}
	}
}

func TestFormatDay(t *testing.T) {
	now := time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)

	if got := FormatDay(now, now); got != "Today · Monday, 19 October" {
		t.Errorf("Unexpected label for today: %s", got)
	}
	if got := FormatDay(now.AddDate(0, 0, 1), now); got != "Tuesday, 20 October" {
		t.Errorf("Unexpected label for tomorrow: %s", got)
	}
}

func TestTruncateString(t *testing.T) {
	tests := []struct {
		in     string
		maxLen int
		want   string
	}{
		{"short", 10, "short"},
		{"a long appointment name", 10, "a long ..."},
		{"abcdef", 2, "ab"},
		{"çççççç", 5, "çç..."},
	}

	for _, tt := range tests {
		if got := TruncateString(tt.in, tt.maxLen); got != tt.want {
			t.Errorf("TruncateString(%q, %d): expected %q, got %q", tt.in, tt.maxLen, tt.want, got)
		}
	}
}

func TestFormatTimeAgo(t *testing.T) {
	if got := FormatTimeAgo(time.Now().Add(-10 * time.Second)); got != "just now" {
		t.Errorf("Expected 'just now', got '%s'", got)
	}
	if got := FormatTimeAgo(time.Now().Add(-3 * time.Hour)); got != "3 hours ago" {
		t.Errorf("Expected '3 hours ago', got '%s'", got)
	}
}
