package cli

import (
	"testing"
	"time"
)

func TestParseRelativeTime(t *testing.T) {
	now := time.Date(2026, 1, 28, 15, 4, 5, 0, time.UTC) // Wednesday

	tests := []struct {
		name  string
		input string
		want  time.Time
	}{
		{"hours ago", "2h ago", now.Add(-2 * time.Hour)},
		{"minutes ago", "30m ago", now.Add(-30 * time.Minute)},
		{"days ago", "1d ago", now.AddDate(0, 0, -1)},
		{"weeks ago", "2w ago", now.AddDate(0, 0, -14)},
		{"months ago", "1mo ago", now.AddDate(0, -1, 0)},
		{"now", "now", now},
		{"today", "today", time.Date(2026, 1, 28, 0, 0, 0, 0, time.UTC)},
		{"yesterday", "Yesterday", time.Date(2026, 1, 27, 0, 0, 0, 0, time.UTC)},
		{"weekday resolves to the past", "monday", time.Date(2026, 1, 26, 0, 0, 0, 0, time.UTC)},
		{"same weekday is today", "wed", time.Date(2026, 1, 28, 0, 0, 0, 0, time.UTC)},
		{"last same weekday", "last wed", time.Date(2026, 1, 21, 0, 0, 0, 0, time.UTC)},
		{"last friday", "last fri", time.Date(2026, 1, 23, 0, 0, 0, 0, time.UTC)},
		{"date only", "2026-01-27", time.Date(2026, 1, 27, 0, 0, 0, 0, time.UTC)},
		{"rfc3339", "2026-01-27T10:00:00Z", time.Date(2026, 1, 27, 10, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseRelativeTime(tt.input, now)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !got.Equal(tt.want) {
				t.Fatalf("expected %s, got %s", tt.want.Format(time.RFC3339Nano), got.Format(time.RFC3339Nano))
			}
		})
	}
}

func TestParseRelativeTime_Invalid(t *testing.T) {
	for _, in := range []string{"", "not-a-date", "0d ago", "2h", "next friday"} {
		if _, err := ParseRelativeTime(in, time.Now()); err == nil {
			t.Errorf("expected error for %q", in)
		}
	}
}

func TestParseDateFilter(t *testing.T) {
	loc := time.FixedZone("ICT", 7*3600)
	now := time.Date(2026, 1, 28, 15, 0, 0, 0, loc)

	got, err := ParseDateFilter("today", now)
	if err != nil {
		t.Fatal(err)
	}
	if got != "2026-01-27T17:00:00Z" {
		t.Errorf("ParseDateFilter(today) = %q", got)
	}
	if got, err := ParseDateFilter("  ", now); err != nil || got != "" {
		t.Errorf("ParseDateFilter(blank) = %q, %v", got, err)
	}
	if _, err := ParseDateFilter("soon", now); err == nil {
		t.Error("expected error for invalid filter")
	}
}
