package storage

import (
	"context"
	"encoding/json"
	"os"
	"strings"
	"testing"
	"time"

	"community-crawler/internal/types"
)

func TestRunWriterFileNaming(t *testing.T) {
	w := NewRunWriter(t.TempDir(), "fmkorea")
	w.now = func() time.Time {
		return time.Date(2025, 11, 4, 18, 25, 42, 0, time.UTC)
	}

	n, err := w.Append(context.Background(), []types.Post{testPost("https://a/1", "one")})
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	if n != 1 {
		t.Errorf("stored = %d, want 1", n)
	}
	if !strings.HasSuffix(w.LastPath, "fmkorea_popular_20251104_182542.json") {
		t.Errorf("unexpected file name: %s", w.LastPath)
	}
}

func TestRunWriterOmitsID(t *testing.T) {
	w := NewRunWriter(t.TempDir(), "ppomppu")
	post := testPost("https://a/1", "one")
	post.ID = 99

	if _, err := w.Append(context.Background(), []types.Post{post}); err != nil {
		t.Fatalf("append: %v", err)
	}

	data, err := os.ReadFile(w.LastPath)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if strings.Contains(string(data), `"id"`) {
		t.Error("id must not be serialized to JSON run files")
	}

	var round []types.Post
	if err := json.Unmarshal(data, &round); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(round) != 1 || round[0].URL != "https://a/1" {
		t.Errorf("round trip mismatch: %+v", round)
	}
}

func TestRunWriterEmptyBatch(t *testing.T) {
	w := NewRunWriter(t.TempDir(), "mamibebe")
	if _, err := w.Append(context.Background(), nil); err != nil {
		t.Fatalf("append: %v", err)
	}
	data, err := os.ReadFile(w.LastPath)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if strings.TrimSpace(string(data)) != "[]" {
		t.Errorf("empty run should serialize as [], got %s", data)
	}
}
