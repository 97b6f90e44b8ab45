package models

import (
	"fmt"
	"strings"
	"time"
)

const (
	// DateLayout is the wire format of calendar dates.
	DateLayout = "2006-01-02"
	// TimestampLayout is the wire format of instants in exports.
	TimestampLayout = "2006-01-02 15:04:05"
)

// DateOf returns the calendar date t falls on in loc, expressed as midnight
// UTC so that dates compare with Before/After/Equal regardless of zone.
func DateOf(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a YYYY-MM-DD calendar date. A blank string yields nil.
func ParseDate(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	d, err := time.ParseInLocation(DateLayout, s, time.UTC)
	if err != nil {
		return nil, &ValidationError{Field: "due_date", Message: fmt.Sprintf("invalid date %q (want YYYY-MM-DD)", s)}
	}
	return &d, nil
}

// FormatDate renders a calendar date, or "" when d is nil.
func FormatDate(d *time.Time) string {
	if d == nil {
		return ""
	}
	return d.UTC().Format(DateLayout)
}

// FormatTimestamp renders an instant in loc using TimestampLayout, or ""
// when t is nil.
func FormatTimestamp(t *time.Time, loc *time.Location) string {
	if t == nil {
		return ""
	}
	if loc == nil {
		loc = time.UTC
	}
	return t.In(loc).Format(TimestampLayout)
}

// ParseTimestamp parses an instant written with TimestampLayout in loc. A
// blank string yields nil.
func ParseTimestamp(s string, loc *time.Location) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	if loc == nil {
		loc = time.UTC
	}
	t, err := time.ParseInLocation(TimestampLayout, s, loc)
	if err != nil {
		return nil, &ValidationError{Field: "timestamp", Message: fmt.Sprintf("invalid timestamp %q (want YYYY-MM-DD HH:MM:SS)", s)}
	}
	return &t, nil
}
