package fetcher

import (
	"errors"
	"testing"

	"community-crawler/internal/types"
)

func TestParseCookieString(t *testing.T) {
	cookies, err := ParseCookieString("NID_AUT=abc123; NID_SES=def456; NID_JKL=ghi")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(cookies) != 3 {
		t.Fatalf("expected 3 cookies, got %d", len(cookies))
	}
	if cookies["NID_AUT"] != "abc123" {
		t.Errorf("NID_AUT = %q", cookies["NID_AUT"])
	}
	if cookies["NID_SES"] != "def456" {
		t.Errorf("NID_SES = %q", cookies["NID_SES"])
	}
}

func TestParseCookieStringWhitespace(t *testing.T) {
	cookies, err := ParseCookieString("  a = 1 ;; b=2 ;")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cookies["a"] != "1" || cookies["b"] != "2" {
		t.Errorf("whitespace not trimmed: %v", cookies)
	}
}

func TestParseCookieStringValueWithEquals(t *testing.T) {
	cookies, err := ParseCookieString("token=abc=def=ghi")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cookies["token"] != "abc=def=ghi" {
		t.Errorf("value with '=' mangled: %q", cookies["token"])
	}
}

func TestParseCookieStringEmpty(t *testing.T) {
	for _, raw := range []string{"", "   ", ";;;", "no-equals-here", "=value"} {
		_, err := ParseCookieString(raw)
		if !errors.Is(err, types.ErrEmptyCookie) {
			t.Errorf("ParseCookieString(%q) err = %v, want ErrEmptyCookie", raw, err)
		}
	}
}
