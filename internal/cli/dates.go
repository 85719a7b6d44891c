// Package cli holds parsing helpers shared by commands.
package cli

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Matches: "2h ago", "30m ago", "1d ago", "2w ago", "1mo ago"
var relativeAgoRegex = regexp.MustCompile(`^(\d+)(mo|w|d|h|m)\s*ago$`)

// ParseRelativeTime parses the time expressions accepted by date filters:
// "2h ago", "yesterday", "today", "monday" (most recent), "last fri",
// "2026-01-27" and RFC3339. Filters look backwards, so bare weekdays
// resolve to the past.
func ParseRelativeTime(s string, now time.Time) (time.Time, error) {
	raw := strings.TrimSpace(s)
	if raw == "" {
		return time.Time{}, fmt.Errorf("empty time expression")
	}

	input := strings.ToLower(raw)
	switch input {
	case "now":
		return now, nil
	case "today":
		return startOfDay(now), nil
	case "yesterday":
		return startOfDay(now).AddDate(0, 0, -1), nil
	}

	if t, ok := parseWeekday(input, now); ok {
		return t, nil
	}

	if matches := relativeAgoRegex.FindStringSubmatch(input); len(matches) == 3 {
		value, err := strconv.Atoi(matches[1])
		if err != nil || value < 1 {
			return time.Time{}, fmt.Errorf("invalid relative time %q", raw)
		}
		return applyAgo(now, value, matches[2])
	}

	if t, err := time.ParseInLocation("2006-01-02", raw, now.Location()); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("invalid time expression %q", raw)
}

// ParseDateFilter parses s with ParseRelativeTime and formats it as RFC3339
// in UTC for use as a query parameter. Empty input yields "".
func ParseDateFilter(s string, now time.Time) (string, error) {
	if strings.TrimSpace(s) == "" {
		return "", nil
	}
	t, err := ParseRelativeTime(s, now)
	if err != nil {
		return "", err
	}
	return t.UTC().Format(time.RFC3339), nil
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// parseWeekday resolves "mon", "last mon" or "this mon" to the start of the
// most recent such day. "last" skips today.
func parseWeekday(expr string, now time.Time) (time.Time, bool) {
	input := strings.TrimSpace(expr)
	last := false
	if rest, ok := strings.CutPrefix(input, "last "); ok {
		last = true
		input = strings.TrimSpace(rest)
	} else if rest, ok := strings.CutPrefix(input, "this "); ok {
		input = strings.TrimSpace(rest)
	}

	weekday, ok := weekdayMap[input]
	if !ok {
		return time.Time{}, false
	}

	base := startOfDay(now)
	delta := (int(base.Weekday()) - int(weekday) + 7) % 7
	if last && delta == 0 {
		delta = 7
	}
	return base.AddDate(0, 0, -delta), true
}

var weekdayMap = map[string]time.Weekday{
	"sun":       time.Sunday,
	"sunday":    time.Sunday,
	"mon":       time.Monday,
	"monday":    time.Monday,
	"tue":       time.Tuesday,
	"tues":      time.Tuesday,
	"tuesday":   time.Tuesday,
	"wed":       time.Wednesday,
	"wednesday": time.Wednesday,
	"thu":       time.Thursday,
	"thurs":     time.Thursday,
	"thursday":  time.Thursday,
	"fri":       time.Friday,
	"friday":    time.Friday,
	"sat":       time.Saturday,
	"saturday":  time.Saturday,
}

func applyAgo(now time.Time, value int, unit string) (time.Time, error) {
	switch unit {
	case "mo":
		return now.AddDate(0, -value, 0), nil
	case "w":
		return now.AddDate(0, 0, -7*value), nil
	case "d":
		return now.AddDate(0, 0, -value), nil
	case "h":
		return now.Add(-time.Duration(value) * time.Hour), nil
	case "m":
		return now.Add(-time.Duration(value) * time.Minute), nil
	default:
		return time.Time{}, fmt.Errorf("invalid relative time unit %q", unit)
	}
}
