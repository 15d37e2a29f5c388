package crawler

import (
	"testing"
	"time"
)

var testNow = time.Date(2025, 11, 10, 14, 30, 0, 0, time.FixedZone("KST", 9*3600))

func TestParsePostDateAbsolute(t *testing.T) {
	cases := []struct {
		raw   string
		year  int
		month time.Month
		day   int
		hour  int
		min   int
	}{
		{"2025.11.04 18:25", 2025, time.November, 4, 18, 25},
		{"2025.11.04 18:25:42", 2025, time.November, 4, 18, 25},
		{"2025-11-04 18:25", 2025, time.November, 4, 18, 25},
		{"2025/11/04 18:25", 2025, time.November, 4, 18, 25},
		{"2025.11.04", 2025, time.November, 4, 0, 0},
		{"2025-11-04", 2025, time.November, 4, 0, 0},
		{"25/11/04 18:25", 2025, time.November, 4, 18, 25},
		{"25.11.04", 2025, time.November, 4, 0, 0},
	}

	for _, tc := range cases {
		got, ok := ParsePostDate(tc.raw, testNow)
		if !ok {
			t.Errorf("ParsePostDate(%q) not parsed", tc.raw)
			continue
		}
		if got.Year() != tc.year || got.Month() != tc.month || got.Day() != tc.day ||
			got.Hour() != tc.hour || got.Minute() != tc.min {
			t.Errorf("ParsePostDate(%q) = %v, want %d-%02d-%02d %02d:%02d",
				tc.raw, got, tc.year, tc.month, tc.day, tc.hour, tc.min)
		}
	}
}

func TestParsePostDateTimeOnly(t *testing.T) {
	got, ok := ParsePostDate("18:25", testNow)
	if !ok {
		t.Fatal("time-only date not parsed")
	}
	if got.Year() != testNow.Year() || got.Month() != testNow.Month() || got.Day() != testNow.Day() {
		t.Errorf("time-only date should be today, got %v", got)
	}
	if got.Hour() != 18 || got.Minute() != 25 {
		t.Errorf("expected 18:25, got %02d:%02d", got.Hour(), got.Minute())
	}
}

func TestParsePostDateMonthDay(t *testing.T) {
	got, ok := ParsePostDate("11.04", testNow)
	if !ok {
		t.Fatal("month/day date not parsed")
	}
	if got.Year() != testNow.Year() {
		t.Errorf("month/day date should be this year, got %d", got.Year())
	}
	if got.Month() != time.November || got.Day() != 4 {
		t.Errorf("expected Nov 4, got %v %d", got.Month(), got.Day())
	}
}

func TestParsePostDateUnparseable(t *testing.T) {
	for _, raw := range []string{"", "   ", "어제", "3일 전", "not a date", "2025년 11월"} {
		if _, ok := ParsePostDate(raw, testNow); ok {
			t.Errorf("ParsePostDate(%q) should not parse", raw)
		}
	}
}

func TestParsePostDateTrailingDot(t *testing.T) {
	got, ok := ParsePostDate("2025.11.04.", testNow)
	if !ok {
		t.Fatal("trailing-dot date not parsed")
	}
	if got.Day() != 4 {
		t.Errorf("expected day 4, got %d", got.Day())
	}
}

func TestFormatTimestamp(t *testing.T) {
	ts := time.Date(2025, 11, 4, 18, 25, 42, 0, time.UTC)
	if got := FormatTimestamp(ts); got != "2025-11-04 18:25" {
		t.Errorf("FormatTimestamp = %q, want %q", got, "2025-11-04 18:25")
	}
}
