package types

import (
	"strings"
	"time"
)

// Post is the normalized record shared by all community crawlers.
// ID is assigned only when the post is appended to the CSV ledger and is
// never serialized to JSON run files.
type Post struct {
	ID         int    `json:"-"`
	Channel    string `json:"channel"`
	Category   string `json:"category"`
	Title      string `json:"title"`
	Content    string `json:"content"`
	ViewCnt    int    `json:"view_cnt"`
	LikeCnt    int    `json:"like_cnt"`
	CommentCnt int    `json:"comment_cnt"`
	CreatedAt  string `json:"created_at"`
	OwnCompany int    `json:"own_company"`
	URL        string `json:"url"`
}

// Normalize trims the title down to its first non-empty line, floors the
// counters at zero, and tags own_company when the title mentions the brand
// keyword.
func (p *Post) Normalize(brandKeyword string) {
	p.Title = FirstLine(p.Title)
	p.URL = strings.TrimSpace(p.URL)
	if p.ViewCnt < 0 {
		p.ViewCnt = 0
	}
	if p.LikeCnt < 0 {
		p.LikeCnt = 0
	}
	if p.CommentCnt < 0 {
		p.CommentCnt = 0
	}
	p.OwnCompany = 0
	if brandKeyword != "" && strings.Contains(p.Title, brandKeyword) {
		p.OwnCompany = 1
	}
}

// FirstLine returns the first non-empty line of s, trimmed.
func FirstLine(s string) string {
	for _, line := range strings.Split(s, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			return line
		}
	}
	return ""
}

// Stub is a minimally-populated post reference discovered during listing
// pagination, not yet detail-extracted.
type Stub struct {
	URL      string
	Title    string
	RawDate  string
	Category string

	// PostedAt is filled by the collector once RawDate parses.
	PostedAt time.Time

	// Counters some listings expose ahead of the detail page.
	Views    int
	Comments int
}
