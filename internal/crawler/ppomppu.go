package crawler

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"community-crawler/internal/config"
	"community-crawler/internal/fetcher"
	"community-crawler/internal/types"
)

const (
	ppomppuBase    = "https://www.ppomppu.co.kr/zboard/"
	ppomppuListing = "https://www.ppomppu.co.kr/zboard/zboard.php?id=ppomppu&hotlist_flag=999"
)

// Ppomppu crawls the Ppomppu hot-deal board.
type Ppomppu struct {
	cfg    *config.Config
	logger *slog.Logger
}

func NewPpomppu(cfg *config.Config, logger *slog.Logger) *Ppomppu {
	return &Ppomppu{cfg: cfg, logger: logger.With("crawler", "ppomppu")}
}

func (p *Ppomppu) Site() string    { return "ppomppu" }
func (p *Ppomppu) Channel() string { return "뽐뿌" }

func (p *Ppomppu) Crawl(ctx context.Context, maxPosts int) ([]types.Post, error) {
	session, err := fetcher.NewSession(p.cfg, p.logger)
	if err != nil {
		return nil, &types.CrawlError{Site: p.Site(), Stage: "session", Err: err}
	}
	defer session.Close()

	err = fetcher.NavigateWithRetry(ctx, session, ppomppuListing,
		p.cfg.Crawl.RetryAttempts, p.cfg.Crawl.RetryDelay, p.logger)
	if err != nil {
		return nil, &types.CrawlError{Site: p.Site(), Stage: "listing", Err: err}
	}

	collector := &Collector{
		Window:   p.cfg.Crawl.Window(),
		MaxPages: p.cfg.Crawl.MaxPages,
		MaxPosts: maxPosts,
		Logger:   p.logger,
	}
	stubs, err := collector.Collect(ctx, &ppomppuListingSource{session: session, logger: p.logger})
	if err != nil {
		return nil, &types.CrawlError{Site: p.Site(), Stage: "collect", Err: err}
	}
	p.logger.Info("listing collected", "stubs", len(stubs))

	posts := make([]types.Post, 0, len(stubs))
	for _, stub := range stubs {
		if err := ctx.Err(); err != nil {
			return posts, err
		}
		post, err := p.extractDetail(session, stub)
		if err != nil {
			p.logger.Warn("skipping post", "url", stub.URL, "error", err)
			continue
		}
		if post == nil {
			p.logger.Debug("content quality gate dropped post", "url", stub.URL)
			continue
		}
		posts = append(posts, *post)
		session.Pause(session.StepDelay())
	}
	return posts, nil
}

func (p *Ppomppu) extractDetail(session *fetcher.Session, stub types.Stub) (*types.Post, error) {
	if err := session.Navigate(stub.URL); err != nil {
		return nil, err
	}
	html, err := session.HTML()
	if err != nil {
		return nil, fmt.Errorf("read page html: %w", err)
	}
	doc, err := newDoc(html)
	if err != nil {
		return nil, fmt.Errorf("parse page html: %w", err)
	}

	title := firstMatch(doc,
		textProbe(".sub-top-text-box .view_title2"),
		textProbe("font.view_title2"),
		textProbe(".topTitle h1"),
	)
	if title == "" {
		title = stub.Title
	}

	body := firstMatch(doc,
		htmlProbe("td.board-contents"),
		htmlProbe(".sub-post-contents"),
		htmlProbe("#KH_Content"),
	)
	content := CleanContent(body)
	if content == "" {
		return nil, nil
	}

	likes := parseCount(firstMatch(doc,
		textProbe(".recommend_count"),
		regexProbe(`추천\s*<\/span>[^\d]*([\d,]+)`),
		textProbe(".board_vote .vote_up"),
	))
	views := stub.Views
	if v := parseCount(firstMatch(doc,
		regexProbe(`조회\s*:?\s*([\d,]+)`),
	)); v > 0 {
		views = v
	}
	comments := stub.Comments
	if c := parseCount(firstMatch(doc,
		textProbe(".comment_count"),
		regexProbe(`댓글\s*\[?([\d,]+)`),
	)); c > 0 {
		comments = c
	}

	createdAt := ""
	if rawDate := firstMatch(doc,
		regexProbe(`등록일\s*:?\s*(\d{2,4}[./-]\d{2}[./-]\d{2}\s*\d{2}:\d{2}(?::\d{2})?)`),
		textProbe(".sub-top-text-box .eng"),
	); rawDate != "" {
		if t, ok := ParsePostDate(rawDate, currentTime(p.cfg.Browser.Timezone)); ok {
			createdAt = FormatTimestamp(t)
		}
	}
	if createdAt == "" && !stub.PostedAt.IsZero() {
		createdAt = FormatTimestamp(stub.PostedAt)
	}

	post := &types.Post{
		Channel:    p.Channel(),
		Category:   stub.Category,
		Title:      title,
		Content:    content,
		ViewCnt:    views,
		LikeCnt:    likes,
		CommentCnt: comments,
		CreatedAt:  createdAt,
		URL:        stub.URL,
	}
	post.Normalize(p.cfg.Crawl.BrandKeyword)
	return post, nil
}

// ppomppuListingSource reads hot-list rows from the zboard table. The board
// encodes the page number in the URL, so Advance navigates directly instead
// of clicking.
type ppomppuListingSource struct {
	session *fetcher.Session
	logger  *slog.Logger
}

func (l *ppomppuListingSource) Items(ctx context.Context) ([]types.Stub, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	html, err := l.session.HTML()
	if err != nil {
		return nil, fmt.Errorf("read listing html: %w", err)
	}
	doc, err := newDoc(html)
	if err != nil {
		return nil, fmt.Errorf("parse listing html: %w", err)
	}

	strategies := []func(*goquery.Document) []types.Stub{
		ppomppuTableRows,
		ppomppuItemRows,
	}
	for _, strategy := range strategies {
		if stubs := strategy(doc); len(stubs) > 0 {
			return stubs, nil
		}
	}
	return nil, nil
}

func ppomppuTableRows(doc *goquery.Document) []types.Stub {
	var stubs []types.Stub
	doc.Find(".list_table tr, table#revolution_main_table tr").Each(func(_ int, sel *goquery.Selection) {
		link := sel.Find("td.title a, a.baseList-title").First()
		href, _ := link.Attr("href")
		if href == "" {
			return
		}
		cells := sel.Find("td")
		stubs = append(stubs, types.Stub{
			URL:      absURL(ppomppuBase, href),
			Title:    cleanText(link.Text()),
			RawDate:  listingDate(sel),
			Category: cleanText(sel.Find("small.baseList-small, td.eng.list_vspace").First().Text()),
			Views:    parseCount(cells.Eq(3).Text()),
			Comments: parseCount(sel.Find(".list_comment2, .baseList-c").First().Text()),
		})
	})
	return stubs
}

func ppomppuItemRows(doc *goquery.Document) []types.Stub {
	var stubs []types.Stub
	doc.Find("li.baseList, .bbs_new_list li").Each(func(_ int, sel *goquery.Selection) {
		link := sel.Find("a.baseList-title, .title a").First()
		href, _ := link.Attr("href")
		if href == "" {
			return
		}
		stubs = append(stubs, types.Stub{
			URL:      absURL(ppomppuBase, href),
			Title:    cleanText(link.Text()),
			RawDate:  listingDate(sel),
			Comments: parseCount(sel.Find(".baseList-c").First().Text()),
		})
	})
	return stubs
}

// listingDate pulls the date cell, which carries either "HH:MM:SS" for
// today's posts or "YY/MM/DD" for older ones.
func listingDate(sel *goquery.Selection) string {
	raw := sel.Find("time.baseList-time, td.board_date").First().Text()
	if raw == "" {
		raw = sel.Find("td").Eq(2).Text()
	}
	return cleanText(raw)
}

func (l *ppomppuListingSource) Advance(ctx context.Context, page int) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	next := fmt.Sprintf("%s&page=%d", ppomppuListing, page)
	if err := l.session.Navigate(next); err != nil {
		return false, err
	}
	// The board clamps out-of-range pages back to the last one; verify the
	// requested page is actually active.
	active := l.session.Text("#page_list .pg_crt, .pagination strong")
	if active != "" && parseCount(active) != page {
		return false, nil
	}
	current := l.session.CurrentURL()
	if current != "" && !strings.Contains(current, fmt.Sprintf("page=%d", page)) {
		return false, nil
	}
	return true, nil
}
