package crawler

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/antchfx/htmlquery"
	"golang.org/x/net/html"
)

// A probe extracts one field from a parsed document, returning "" on a miss.
// Site layouts shift under A/B tests and redesigns, so every field is read
// through an ordered chain of probes and the first hit wins.
type probe func(doc *goquery.Document) string

// firstMatch runs probes in order and returns the first non-empty result.
func firstMatch(doc *goquery.Document, probes ...probe) string {
	for _, p := range probes {
		if v := p(doc); v != "" {
			return v
		}
	}
	return ""
}

// textProbe reads the trimmed text of the first element matching a CSS
// selector.
func textProbe(selector string) probe {
	return func(doc *goquery.Document) string {
		return strings.TrimSpace(doc.Find(selector).First().Text())
	}
}

// attrProbe reads an attribute of the first element matching a CSS selector.
func attrProbe(selector, attr string) probe {
	return func(doc *goquery.Document) string {
		v, _ := doc.Find(selector).First().Attr(attr)
		return strings.TrimSpace(v)
	}
}

// htmlProbe returns the inner HTML of the first element matching a CSS
// selector, for fields that need markup-aware post-processing.
func htmlProbe(selector string) probe {
	return func(doc *goquery.Document) string {
		h, err := doc.Find(selector).First().Html()
		if err != nil {
			return ""
		}
		return strings.TrimSpace(h)
	}
}

// xpathProbe reads the text content of the first node matching an XPath
// expression, for structures CSS selectors cannot address.
func xpathProbe(expr string) probe {
	return func(doc *goquery.Document) string {
		if len(doc.Nodes) == 0 {
			return ""
		}
		node, err := htmlquery.Query(doc.Nodes[0], expr)
		if err != nil || node == nil {
			return ""
		}
		return strings.TrimSpace(htmlquery.InnerText(node))
	}
}

// regexProbe applies a regular expression to the document's serialized HTML
// and returns the first capture group.
func regexProbe(pattern string) probe {
	re := regexp.MustCompile(pattern)
	return func(doc *goquery.Document) string {
		if len(doc.Nodes) == 0 {
			return ""
		}
		var sb strings.Builder
		if err := html.Render(&sb, doc.Nodes[0]); err != nil {
			return ""
		}
		m := re.FindStringSubmatch(sb.String())
		if len(m) < 2 {
			return ""
		}
		return strings.TrimSpace(m[1])
	}
}

var countDigits = regexp.MustCompile(`\d+`)

// parseCount extracts an integer from count text like "조회 1,234" or
// "댓글 [56]". Returns 0 when no digits are present.
func parseCount(s string) int {
	s = strings.ReplaceAll(s, ",", "")
	digits := countDigits.FindString(s)
	if digits == "" {
		return 0
	}
	n := 0
	for _, r := range digits {
		n = n*10 + int(r-'0')
	}
	return n
}
