package crawler

import (
	"strings"
	"time"
)

// timestampLayout is the normalized created_at format shared by every sink.
const timestampLayout = "2006-01-02 15:04"

// dateLayouts are tried in order against a cleaned date string. Full
// timestamps come first so a date-only layout never truncates one.
var dateLayouts = []string{
	"2006.01.02 15:04:05",
	"2006.01.02 15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006/01/02 15:04",
	"2006.01.02",
	"2006-01-02",
	"2006/01/02",
}

// shortLayouts carry no century; parsed years under 100 are shifted into
// the 2000s.
var shortLayouts = []string{
	"06/01/02 15:04",
	"06.01.02 15:04",
	"06/01/02",
	"06.01.02",
}

// monthDayLayouts carry no year at all and are assumed to mean the current
// year.
var monthDayLayouts = []string{
	"01.02",
	"01/02",
	"01-02",
}

// ParsePostDate interprets the many date shapes community listings use:
// absolute timestamps, date-only forms, two-digit-year forms, bare
// "HH:MM" for posts made today, and bare "MM.DD" for posts made this year.
// The second return is false when nothing matches.
func ParsePostDate(raw string, now time.Time) (time.Time, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, false
	}
	s = strings.TrimSuffix(s, ".")

	loc := now.Location()

	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, true
		}
	}

	for _, layout := range shortLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			if t.Year() < 100 {
				t = t.AddDate(2000, 0, 0)
			}
			return t, true
		}
	}

	// Bare time means posted today.
	if t, err := time.ParseInLocation("15:04", s, loc); err == nil {
		return time.Date(now.Year(), now.Month(), now.Day(), t.Hour(), t.Minute(), 0, 0, loc), true
	}
	if t, err := time.ParseInLocation("15:04:05", s, loc); err == nil {
		return time.Date(now.Year(), now.Month(), now.Day(), t.Hour(), t.Minute(), t.Second(), 0, loc), true
	}

	// Bare month/day means this year.
	for _, layout := range monthDayLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return time.Date(now.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc), true
		}
	}

	return time.Time{}, false
}

// FormatTimestamp renders t in the normalized "YYYY-MM-DD HH:MM" form.
func FormatTimestamp(t time.Time) string {
	return t.Format(timestampLayout)
}
