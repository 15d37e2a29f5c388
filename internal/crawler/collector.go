package crawler

import (
	"context"
	"log/slog"
	"time"

	"community-crawler/internal/types"
)

// ListingSource abstracts one site's popular-post listing. Items returns
// the stubs visible on the current page; Advance moves to the given page
// number (1-based) and reports whether the move succeeded. A site with no
// further pages returns false without error.
type ListingSource interface {
	Items(ctx context.Context) ([]types.Stub, error)
	Advance(ctx context.Context, page int) (bool, error)
}

// Collector walks a listing page by page, keeping stubs whose post time
// falls inside the trailing window and stopping when the listing runs dry,
// the window is exhausted, or the post cap is reached.
type Collector struct {
	Window   time.Duration
	MaxPages int
	MaxPosts int
	Now      func() time.Time
	Logger   *slog.Logger
}

// Collect runs the pagination loop and returns the in-window stubs in
// listing order, deduplicated by URL.
//
// The freshness cutoff is recomputed against the clock on every page, so
// the window's trailing edge drifts forward during a long crawl. Posts
// near the boundary are judged against the moment their page was read.
func (c *Collector) Collect(ctx context.Context, src ListingSource) ([]types.Stub, error) {
	log := c.Logger
	if log == nil {
		log = slog.Default()
	}
	now := c.Now
	if now == nil {
		now = time.Now
	}

	var collected []types.Stub
	seen := make(map[string]bool)

	for page := 1; c.MaxPages <= 0 || page <= c.MaxPages; page++ {
		if err := ctx.Err(); err != nil {
			return collected, err
		}

		stubs, err := src.Items(ctx)
		if err != nil {
			return collected, err
		}

		cutoff := now().Add(-c.Window)
		fresh := 0
		expired := 0

		for _, stub := range stubs {
			if stub.URL == "" || seen[stub.URL] {
				continue
			}
			postedAt, ok := ParsePostDate(stub.RawDate, now())
			if !ok {
				log.Debug("skipping stub with unparseable date",
					"url", stub.URL, "raw_date", stub.RawDate)
				continue
			}
			if postedAt.Before(cutoff) {
				expired++
				continue
			}
			stub.PostedAt = postedAt
			seen[stub.URL] = true
			collected = append(collected, stub)
			fresh++

			if c.MaxPosts > 0 && len(collected) >= c.MaxPosts {
				log.Info("post cap reached", "count", len(collected), "page", page)
				return collected, nil
			}
		}

		log.Debug("listing page scanned",
			"page", page, "fresh", fresh, "expired", expired, "total", len(collected))

		// A page with nothing fresh but at least one expired entry means
		// the listing has scrolled past the window.
		if fresh == 0 && expired > 0 {
			log.Info("window exhausted", "page", page, "count", len(collected))
			return collected, nil
		}

		ok, err := src.Advance(ctx, page+1)
		if err != nil {
			return collected, err
		}
		if !ok {
			log.Info("no further listing pages", "page", page, "count", len(collected))
			return collected, nil
		}
	}

	log.Warn("page ceiling reached", "max_pages", c.MaxPages, "count", len(collected))
	return collected, nil
}
