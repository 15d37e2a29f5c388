package crawler

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"community-crawler/internal/types"
)

// Crawler is one site-specific popular-post crawler. Crawl drives its own
// browser session, collects the trailing window of popular posts, and
// returns them fully normalized.
type Crawler interface {
	// Site is the short machine name used in tool names and file names.
	Site() string

	// Channel is the human-readable source label written into each record.
	Channel() string

	// Crawl collects up to maxPosts popular posts from the trailing window.
	// maxPosts <= 0 means unbounded.
	Crawl(ctx context.Context, maxPosts int) ([]types.Post, error)
}

// absURL resolves a possibly-relative href against a base URL. Malformed
// inputs fall back to the raw href.
func absURL(base, href string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}
	b, err := url.Parse(base)
	if err != nil {
		return href
	}
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return b.ResolveReference(ref).String()
}

// newDoc parses rendered page HTML into a goquery document.
func newDoc(html string) (*goquery.Document, error) {
	return goquery.NewDocumentFromReader(strings.NewReader(html))
}

// cleanText collapses runs of whitespace inside scraped text fields.
func cleanText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// currentTime returns the clock in the configured crawl timezone, falling
// back to local time when the zone cannot be loaded.
func currentTime(tz string) time.Time {
	if tz != "" {
		if loc, err := time.LoadLocation(tz); err == nil {
			return time.Now().In(loc)
		}
	}
	return time.Now()
}
