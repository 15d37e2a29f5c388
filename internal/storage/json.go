package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"community-crawler/internal/types"
)

// RunWriter serializes one crawl run into a timestamped JSON file under the
// outputs directory, one file per site per run.
type RunWriter struct {
	dir  string
	site string
	now  func() time.Time

	// path of the last file written, for log messages and tests.
	LastPath string
}

func NewRunWriter(dir, site string) *RunWriter {
	return &RunWriter{dir: dir, site: site, now: time.Now}
}

func (w *RunWriter) Name() string { return "json" }

// Append writes the whole batch as one pretty-printed JSON array. An empty
// batch still produces a file recording that the run found nothing.
func (w *RunWriter) Append(_ context.Context, posts []types.Post) (int, error) {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return 0, fmt.Errorf("create output dir: %w", err)
	}

	name := fmt.Sprintf("%s_popular_%s.json", w.site, w.now().Format("20060102_150405"))
	path := filepath.Join(w.dir, name)

	if posts == nil {
		posts = []types.Post{}
	}
	data, err := json.MarshalIndent(posts, "", "  ")
	if err != nil {
		return 0, fmt.Errorf("marshal posts: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return 0, fmt.Errorf("write %s: %w", path, err)
	}

	w.LastPath = path
	return len(posts), nil
}

func (w *RunWriter) Close(context.Context) error { return nil }
