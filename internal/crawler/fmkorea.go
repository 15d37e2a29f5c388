package crawler

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/PuerkitoBio/goquery"

	"community-crawler/internal/config"
	"community-crawler/internal/fetcher"
	"community-crawler/internal/types"
)

const (
	fmkoreaBase    = "https://www.fmkorea.com"
	fmkoreaListing = "https://www.fmkorea.com/index.php?mid=hotdeal&sort_index=pop&order_type=desc"
)

// FMKorea crawls the FM Korea hotdeal board sorted by popularity.
type FMKorea struct {
	cfg    *config.Config
	logger *slog.Logger
}

func NewFMKorea(cfg *config.Config, logger *slog.Logger) *FMKorea {
	return &FMKorea{cfg: cfg, logger: logger.With("crawler", "fmkorea")}
}

func (f *FMKorea) Site() string    { return "fmkorea" }
func (f *FMKorea) Channel() string { return "에펨코리아" }

func (f *FMKorea) Crawl(ctx context.Context, maxPosts int) ([]types.Post, error) {
	session, err := fetcher.NewSession(f.cfg, f.logger)
	if err != nil {
		return nil, &types.CrawlError{Site: f.Site(), Stage: "session", Err: err}
	}
	defer session.Close()

	err = fetcher.NavigateWithRetry(ctx, session, fmkoreaListing,
		f.cfg.Crawl.RetryAttempts, f.cfg.Crawl.RetryDelay, f.logger)
	if err != nil {
		return nil, &types.CrawlError{Site: f.Site(), Stage: "listing", Err: err}
	}

	collector := &Collector{
		Window:   f.cfg.Crawl.Window(),
		MaxPages: f.cfg.Crawl.MaxPages,
		MaxPosts: maxPosts,
		Logger:   f.logger,
	}
	stubs, err := collector.Collect(ctx, &fmkoreaListingSource{session: session, logger: f.logger})
	if err != nil {
		return nil, &types.CrawlError{Site: f.Site(), Stage: "collect", Err: err}
	}
	f.logger.Info("listing collected", "stubs", len(stubs))

	posts := make([]types.Post, 0, len(stubs))
	for _, stub := range stubs {
		if err := ctx.Err(); err != nil {
			return posts, err
		}
		post, err := f.extractDetail(session, stub)
		if err != nil {
			f.logger.Warn("skipping post", "url", stub.URL, "error", err)
			continue
		}
		if post == nil {
			f.logger.Debug("content quality gate dropped post", "url", stub.URL)
			continue
		}
		posts = append(posts, *post)
		session.Pause(session.StepDelay())
	}
	return posts, nil
}

// extractDetail visits one stub and scrapes the full record. A nil post with
// nil error means the content quality gate rejected it.
func (f *FMKorea) extractDetail(session *fetcher.Session, stub types.Stub) (*types.Post, error) {
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
		textProbe(".rd_hd .np_18px span"),
		textProbe("h1.np_18px"),
		textProbe(".rd_hd h1"),
		xpathProbe(`//div[contains(@class,'rd_hd')]//h1`),
	)
	if title == "" {
		title = stub.Title
	}

	body := firstMatch(doc,
		htmlProbe(".rd_body article"),
		htmlProbe(".xe_content"),
		htmlProbe("article"),
	)
	content := CleanContent(body)
	if content == "" {
		return nil, nil
	}

	views := parseCount(firstMatch(doc,
		textProbe(".read_count"),
		textProbe("span.m_no_voted"),
		regexProbe(`조회\s*수?\s*<\/span>\s*<b>([\d,]+)`),
	))
	if views == 0 {
		views = stub.Views
	}
	likes := parseCount(firstMatch(doc,
		textProbe(".recommend_count"),
		textProbe(".vote .num"),
	))
	comments := parseCount(firstMatch(doc,
		textProbe(".comment_count"),
		textProbe("#cmtPosition .title_cnt"),
	))
	if comments == 0 {
		comments = stub.Comments
	}

	createdAt := ""
	if rawDate := firstMatch(doc,
		textProbe(".rd_hd .date"),
		textProbe("span.date.m_no"),
	); rawDate != "" {
		if t, ok := ParsePostDate(rawDate, currentTime(f.cfg.Browser.Timezone)); ok {
			createdAt = FormatTimestamp(t)
		}
	}
	if createdAt == "" && !stub.PostedAt.IsZero() {
		createdAt = FormatTimestamp(stub.PostedAt)
	}

	canonical := firstMatch(doc, attrProbe(`link[rel="canonical"]`, "href"))
	url := stub.URL
	if canonical != "" {
		url = canonical
	}

	post := &types.Post{
		Channel:    f.Channel(),
		Category:   stub.Category,
		Title:      title,
		Content:    content,
		ViewCnt:    views,
		LikeCnt:    likes,
		CommentCnt: comments,
		CreatedAt:  createdAt,
		URL:        url,
	}
	post.Normalize(f.cfg.Crawl.BrandKeyword)
	return post, nil
}

// fmkoreaListingSource reads hotdeal listing rows from the live page and
// pages forward through the board's numbered pagination.
type fmkoreaListingSource struct {
	session *fetcher.Session
	logger  *slog.Logger
}

func (l *fmkoreaListingSource) Items(ctx context.Context) ([]types.Stub, error) {
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

	// Layout strategies tried in order; first one that yields rows wins.
	strategies := []func(*goquery.Document) []types.Stub{
		fmHotdealRows,
		fmTableRows,
	}
	for _, strategy := range strategies {
		if stubs := strategy(doc); len(stubs) > 0 {
			return stubs, nil
		}
	}
	return nil, nil
}

func fmHotdealRows(doc *goquery.Document) []types.Stub {
	var stubs []types.Stub
	doc.Find(".fm_best_widget li, .hotdeal_list li").Each(func(_ int, sel *goquery.Selection) {
		link := sel.Find(".title a, h3.title a").First()
		href, _ := link.Attr("href")
		if href == "" {
			return
		}
		stubs = append(stubs, types.Stub{
			URL:      absURL(fmkoreaBase, href),
			Title:    cleanText(link.Text()),
			RawDate:  cleanText(sel.Find("span.regdate, .regdate").First().Text()),
			Category: cleanText(sel.Find(".category a, .category").First().Text()),
			Comments: parseCount(sel.Find(".comment_count, .replyNum").First().Text()),
		})
	})
	return stubs
}

func fmTableRows(doc *goquery.Document) []types.Stub {
	var stubs []types.Stub
	doc.Find("table.bd_lst tbody tr").Each(func(_ int, sel *goquery.Selection) {
		if sel.HasClass("notice") {
			return
		}
		link := sel.Find("td.title a.hx").First()
		href, _ := link.Attr("href")
		if href == "" {
			return
		}
		stubs = append(stubs, types.Stub{
			URL:      absURL(fmkoreaBase, href),
			Title:    cleanText(link.Text()),
			RawDate:  cleanText(sel.Find("td.time").First().Text()),
			Category: cleanText(sel.Find("td.cate a").First().Text()),
			Views:    parseCount(sel.Find("td.m_no").Last().Text()),
		})
	})
	return stubs
}

func (l *fmkoreaListingSource) Advance(ctx context.Context, page int) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	label := fmt.Sprintf(`^%d$`, page)
	if l.session.ClickText(".bd_pg a", label) {
		return true, nil
	}
	if l.session.Click(".bd_pg a.direction.next") {
		return true, nil
	}
	// Some layouts render pagination as a plain anchor strip.
	if l.session.ClickText(".pagination a", label) {
		return true, nil
	}
	l.logger.Debug("no pagination control", "page", page)
	return false, nil
}

