package crawler

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"regexp"
	"strconv"
	"time"

	"community-crawler/internal/config"
	"community-crawler/internal/fetcher"
	"community-crawler/internal/types"
)

const (
	cafeSearchAPI  = "https://apis.naver.com/cafe-web/cafe-search-api/v1.0/cafes/%d/search/articles"
	cafeArticleAPI = "https://article.cafe.naver.com/gw/v4/cafes/%d/articles/%d"
	cafeCommentAPI = "https://article.cafe.naver.com/gw/v4/cafes/%d/articles/%d/comments/pages/1"
	cafeArticleURL = "https://cafe.naver.com/f-e/cafes/%d/articles/%d"

	cafeSearchPerPage = 15
)

var (
	clubIDPathRe = regexp.MustCompile(`/cafes/(\d+)`)
	clubIDVarRe  = regexp.MustCompile(`var\s+g_sClubId\s*=\s*"(\d+)"`)
)

// Mamibebe crawls the popular board of a Naver cafe. Listing and detail
// both go through the cafe's JSON APIs; the browser session exists only to
// establish an authenticated cookie set.
type Mamibebe struct {
	cfg    *config.Config
	logger *slog.Logger
}

func NewMamibebe(cfg *config.Config, logger *slog.Logger) *Mamibebe {
	return &Mamibebe{cfg: cfg, logger: logger.With("crawler", "mamibebe")}
}

func (m *Mamibebe) Site() string    { return "mamibebe" }
func (m *Mamibebe) Channel() string { return "맘이베베" }

func (m *Mamibebe) Crawl(ctx context.Context, maxPosts int) ([]types.Post, error) {
	session, err := fetcher.NewSession(m.cfg, m.logger)
	if err != nil {
		return nil, &types.CrawlError{Site: m.Site(), Stage: "session", Err: err}
	}
	defer session.Close()

	cookies, err := fetcher.Authenticate(session, &m.cfg.Naver, m.logger)
	if err != nil {
		return nil, &types.CrawlError{Site: m.Site(), Stage: "login", Err: err}
	}

	client := fetcher.NewAPIClient(m.cfg.Browser.UserAgent, m.cfg.Browser.Timeout(), m.logger,
		fetcher.WithCookies(cookies))

	clubID, err := m.resolveClubID(ctx, client)
	if err != nil {
		return nil, &types.CrawlError{Site: m.Site(), Stage: "listing", Err: err}
	}
	m.logger.Info("resolved cafe club id", "club_id", clubID)

	collector := &Collector{
		Window:   m.cfg.Crawl.Window(),
		MaxPages: m.cfg.Crawl.MaxPages,
		MaxPosts: maxPosts,
		Logger:   m.logger,
	}
	src := &cafeListingSource{client: client, clubID: clubID, cafeURL: m.cfg.Naver.CafeURL}
	stubs, err := collector.Collect(ctx, src)
	if err != nil {
		return nil, &types.CrawlError{Site: m.Site(), Stage: "collect", Err: err}
	}
	m.logger.Info("listing collected", "stubs", len(stubs))

	posts := make([]types.Post, 0, len(stubs))
	for _, stub := range stubs {
		if err := ctx.Err(); err != nil {
			return posts, err
		}
		articleID, err := articleIDFromURL(stub.URL)
		if err != nil {
			m.logger.Warn("skipping post", "url", stub.URL, "error", err)
			continue
		}
		post, err := m.extractDetail(ctx, client, clubID, articleID, stub)
		if err != nil {
			m.logger.Warn("skipping post", "article_id", articleID, "error", err)
			continue
		}
		if post == nil {
			m.logger.Debug("content quality gate dropped post", "article_id", articleID)
			continue
		}
		posts = append(posts, *post)
		session.Pause(session.StepDelay())
	}
	return posts, nil
}

// resolveClubID extracts the numeric club id from the configured cafe URL
// path, falling back to the g_sClubId variable in the served HTML.
func (m *Mamibebe) resolveClubID(ctx context.Context, client *fetcher.APIClient) (int, error) {
	cafeURL := m.cfg.Naver.CafeURL
	if match := clubIDPathRe.FindStringSubmatch(cafeURL); match != nil {
		return strconv.Atoi(match[1])
	}
	html, err := client.GetHTML(ctx, cafeURL, "")
	if err != nil {
		return 0, fmt.Errorf("fetch cafe page: %w", err)
	}
	match := clubIDVarRe.FindStringSubmatch(html)
	if match == nil {
		return 0, types.ErrClubIDNotFound
	}
	return strconv.Atoi(match[1])
}

// articleIDFromURL pulls the trailing article id out of a cafe article URL.
var articleIDRe = regexp.MustCompile(`/articles/(\d+)`)

func articleIDFromURL(u string) (int, error) {
	match := articleIDRe.FindStringSubmatch(u)
	if match == nil {
		return 0, fmt.Errorf("no article id in %s", u)
	}
	return strconv.Atoi(match[1])
}

// cafeArticleResponse is the subset of the article API payload the crawler
// reads.
type cafeArticleResponse struct {
	Result struct {
		Article struct {
			Subject      string `json:"subject"`
			ContentHTML  string `json:"contentHtml"`
			ReadCount    int    `json:"readCount"`
			CommentCount int    `json:"commentCount"`
			WriteDate    int64  `json:"writeDate"`
			Menu         struct {
				Name string `json:"name"`
			} `json:"menu"`
		} `json:"article"`
	} `json:"result"`
}

type cafeCommentResponse struct {
	Result struct {
		LikeItUsers []struct {
			MemberKey string `json:"memberKey"`
		} `json:"likeItUsers"`
	} `json:"result"`
}

func (m *Mamibebe) extractDetail(ctx context.Context, client *fetcher.APIClient, clubID, articleID int, stub types.Stub) (*types.Post, error) {
	var article cafeArticleResponse
	articleURL := fmt.Sprintf(cafeArticleAPI, clubID, articleID)
	if err := client.GetJSON(ctx, articleURL, m.cfg.Naver.CafeURL, &article); err != nil {
		return nil, err
	}

	content := CleanContent(article.Result.Article.ContentHTML)
	if content == "" {
		return nil, nil
	}

	// Likes come from a separate comments endpoint; a failure there costs
	// only the like count, not the record.
	likes := 0
	var comments cafeCommentResponse
	commentURL := fmt.Sprintf(cafeCommentAPI, clubID, articleID)
	if err := client.GetJSON(ctx, commentURL, m.cfg.Naver.CafeURL, &comments); err != nil {
		m.logger.Debug("comment endpoint failed", "article_id", articleID, "error", err)
	} else {
		likes = len(comments.Result.LikeItUsers)
	}

	createdAt := ""
	if article.Result.Article.WriteDate > 0 {
		createdAt = FormatTimestamp(time.UnixMilli(article.Result.Article.WriteDate).In(currentTime(m.cfg.Browser.Timezone).Location()))
	} else if !stub.PostedAt.IsZero() {
		createdAt = FormatTimestamp(stub.PostedAt)
	}

	title := article.Result.Article.Subject
	if title == "" {
		title = stub.Title
	}

	post := &types.Post{
		Channel:    m.Channel(),
		Category:   article.Result.Article.Menu.Name,
		Title:      title,
		Content:    content,
		ViewCnt:    article.Result.Article.ReadCount,
		LikeCnt:    likes,
		CommentCnt: article.Result.Article.CommentCount,
		CreatedAt:  createdAt,
		URL:        fmt.Sprintf(cafeArticleURL, clubID, articleID),
	}
	post.Normalize(m.cfg.Crawl.BrandKeyword)
	return post, nil
}

// cafeSearchResponse is the subset of the search API payload the listing
// source reads.
type cafeSearchResponse struct {
	Result struct {
		ArticleList []struct {
			Item struct {
				ArticleID          int    `json:"articleId"`
				Subject            string `json:"subject"`
				WriteDateTimestamp int64  `json:"writeDateTimestamp"`
				MenuName           string `json:"menuName"`
				ReadCount          int    `json:"readCount"`
				CommentCount       int    `json:"commentCount"`
			} `json:"item"`
		} `json:"articleList"`
		PageInfo struct {
			LastNavigationPageNumber int `json:"lastNavigationPageNumber"`
		} `json:"pageInfo"`
	} `json:"result"`
}

// cafeListingSource pages through the cafe search API. The API reports its
// own last page, so Advance stops there instead of probing.
type cafeListingSource struct {
	client  *fetcher.APIClient
	clubID  int
	cafeURL string

	page     int
	lastPage int
}

func (l *cafeListingSource) Items(ctx context.Context) ([]types.Stub, error) {
	if l.page == 0 {
		l.page = 1
	}

	params := url.Values{}
	params.Set("query", "")
	params.Set("perPage", strconv.Itoa(cafeSearchPerPage))
	params.Set("page", strconv.Itoa(l.page))
	params.Set("views", "MEMBER_LEVEL,COUNT,SALE_INFO,CAFE_MENU")
	searchURL := fmt.Sprintf(cafeSearchAPI, l.clubID) + "?" + params.Encode()

	var resp cafeSearchResponse
	if err := l.client.GetJSON(ctx, searchURL, l.cafeURL, &resp); err != nil {
		return nil, err
	}
	l.lastPage = resp.Result.PageInfo.LastNavigationPageNumber

	stubs := make([]types.Stub, 0, len(resp.Result.ArticleList))
	for _, entry := range resp.Result.ArticleList {
		item := entry.Item
		rawDate := ""
		if item.WriteDateTimestamp > 0 {
			rawDate = FormatTimestamp(time.UnixMilli(item.WriteDateTimestamp))
		}
		stubs = append(stubs, types.Stub{
			URL:      fmt.Sprintf(cafeArticleURL, l.clubID, item.ArticleID),
			Title:    item.Subject,
			RawDate:  rawDate,
			Category: item.MenuName,
			Views:    item.ReadCount,
			Comments: item.CommentCount,
		})
	}
	return stubs, nil
}

func (l *cafeListingSource) Advance(ctx context.Context, page int) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	if l.lastPage > 0 && page > l.lastPage {
		return false, nil
	}
	l.page = page
	return true, nil
}
