package crawler

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html"
)

// uiVocab are the interface words community sites scatter around post
// bodies. A short line containing one of these is navigation chrome, not
// content.
var uiVocab = []string{
	"로그인", "회원가입", "댓글", "목록", "공유", "신고", "스크랩",
	"이전글", "다음글", "추천", "비추천", "쪽지", "검색", "글쓰기",
	"프린트", "수정", "삭제", "차단", "즐겨찾기", "전체보기",
}

const (
	// Lines at or under this rune count are candidates for chrome.
	chromeLineRunes = 24

	// A line this long is always treated as real prose.
	proseLineRunes = 40

	// Minimum cleaned content length for a record to survive.
	minContentRunes = 2
)

// StripMarkup reduces an HTML fragment to its visible text, one line per
// block-level break. Script and style subtrees are dropped entirely.
func StripMarkup(fragment string) string {
	tokenizer := html.NewTokenizer(strings.NewReader(fragment))
	var sb strings.Builder
	skipDepth := 0

	for {
		tt := tokenizer.Next()
		switch tt {
		case html.ErrorToken:
			return sb.String()
		case html.StartTagToken:
			name, _ := tokenizer.TagName()
			tag := string(name)
			if tag == "script" || tag == "style" || tag == "noscript" {
				skipDepth++
				continue
			}
			if skipDepth == 0 && isBlockTag(tag) {
				sb.WriteByte('\n')
			}
		case html.EndTagToken:
			name, _ := tokenizer.TagName()
			tag := string(name)
			if tag == "script" || tag == "style" || tag == "noscript" {
				if skipDepth > 0 {
					skipDepth--
				}
				continue
			}
			if skipDepth == 0 && isBlockTag(tag) {
				sb.WriteByte('\n')
			}
		case html.SelfClosingTagToken:
			name, _ := tokenizer.TagName()
			if skipDepth == 0 && string(name) == "br" {
				sb.WriteByte('\n')
			}
		case html.TextToken:
			if skipDepth == 0 {
				sb.Write(tokenizer.Text())
			}
		}
	}
}

func isBlockTag(tag string) bool {
	switch tag {
	case "p", "div", "br", "li", "tr", "h1", "h2", "h3", "h4", "h5", "h6",
		"blockquote", "pre", "section", "article", "table":
		return true
	}
	return false
}

// CleanContent strips markup from a post body fragment, filters out
// interface chrome, and collapses whitespace. It returns "" when the
// remainder is dominated by chrome or too short to be a real post body.
func CleanContent(fragment string) string {
	text := StripMarkup(fragment)

	var kept []string
	chromeLines := 0
	totalLines := 0
	hasProse := false

	for _, line := range strings.Split(text, "\n") {
		line = cleanText(line)
		if line == "" {
			continue
		}
		totalLines++
		if utf8.RuneCountInString(line) >= proseLineRunes {
			hasProse = true
		}
		if isUINoise(line) {
			chromeLines++
			continue
		}
		kept = append(kept, line)
	}

	if totalLines == 0 {
		return ""
	}
	// A body that is mostly chrome with no long prose line is a scrape of
	// the page frame, not the post.
	if !hasProse && chromeLines*2 > totalLines {
		return ""
	}

	out := strings.TrimSpace(strings.Join(kept, "\n"))
	if utf8.RuneCountInString(out) < minContentRunes {
		return ""
	}
	return out
}

// isUINoise reports whether a cleaned line looks like interface chrome.
func isUINoise(line string) bool {
	if utf8.RuneCountInString(line) > chromeLineRunes {
		return false
	}
	for _, word := range uiVocab {
		if strings.Contains(line, word) {
			return true
		}
	}
	return false
}
