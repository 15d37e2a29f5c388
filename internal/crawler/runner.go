package crawler

import (
	"context"
	"log/slog"
	"sort"
	"sync"

	"community-crawler/internal/config"
	"community-crawler/internal/types"
)

// Runner owns the registered site crawlers and fans crawl-all requests out
// across them. Each crawl gets its own browser session, so concurrent site
// crawls share no mutable state.
type Runner struct {
	cfg      *config.Config
	logger   *slog.Logger
	crawlers map[string]Crawler
}

// SiteResult is one site's outcome within a crawl-all run.
type SiteResult struct {
	Site  string
	Posts []types.Post
	Err   error
}

// NewRunner registers the three community crawlers.
func NewRunner(cfg *config.Config, logger *slog.Logger) *Runner {
	r := &Runner{
		cfg:      cfg,
		logger:   logger,
		crawlers: make(map[string]Crawler),
	}
	for _, c := range []Crawler{
		NewFMKorea(cfg, logger),
		NewPpomppu(cfg, logger),
		NewMamibebe(cfg, logger),
	} {
		r.crawlers[c.Site()] = c
	}
	return r
}

// Sites returns the registered site names in sorted order.
func (r *Runner) Sites() []string {
	sites := make([]string, 0, len(r.crawlers))
	for site := range r.crawlers {
		sites = append(sites, site)
	}
	sort.Strings(sites)
	return sites
}

// Crawler returns the crawler registered for site, if any.
func (r *Runner) Crawler(site string) (Crawler, bool) {
	c, ok := r.crawlers[site]
	return c, ok
}

// Crawl runs one site's crawler.
func (r *Runner) Crawl(ctx context.Context, site string, maxPosts int) ([]types.Post, error) {
	c, ok := r.crawlers[site]
	if !ok {
		return nil, types.ErrUnknownTool
	}
	r.logger.Info("starting crawl", "site", site, "max_posts", maxPosts)
	posts, err := c.Crawl(ctx, maxPosts)
	if err != nil {
		r.logger.Error("crawl failed", "site", site, "error", err)
		return nil, err
	}
	r.logger.Info("crawl finished", "site", site, "posts", len(posts))
	return posts, nil
}

// CrawlAll runs every registered crawler concurrently and isolates each
// site's failure into its own result.
func (r *Runner) CrawlAll(ctx context.Context, maxPosts int) []SiteResult {
	sites := r.Sites()
	results := make([]SiteResult, len(sites))

	var wg sync.WaitGroup
	for i, site := range sites {
		wg.Add(1)
		go func(i int, site string) {
			defer wg.Done()
			posts, err := r.Crawl(ctx, site, maxPosts)
			results[i] = SiteResult{Site: site, Posts: posts, Err: err}
		}(i, site)
	}
	wg.Wait()
	return results
}
