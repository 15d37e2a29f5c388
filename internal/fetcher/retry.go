package fetcher

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"community-crawler/internal/types"
)

// NavigateWithRetry loads a URL, retrying transient failures with a fixed
// backoff. The context is checked between attempts so a cancelled crawl
// stops waiting immediately.
func NavigateWithRetry(ctx context.Context, s *Session, url string, attempts int, delay time.Duration, logger *slog.Logger) error {
	if attempts < 1 {
		attempts = 1
	}
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		lastErr = s.Navigate(url)
		if lastErr == nil {
			return nil
		}
		logger.Warn("page load failed",
			"url", url,
			"attempt", attempt,
			"max_attempts", attempts,
			"error", lastErr,
		)
		if attempt < attempts {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}
	return &types.FetchError{
		URL: url,
		Err: fmt.Errorf("all %d attempts failed: %w", attempts, lastErr),
	}
}
