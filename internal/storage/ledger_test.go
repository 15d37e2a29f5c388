package storage

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"community-crawler/internal/types"
)

var testLogger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

func testPost(url, title string) types.Post {
	return types.Post{
		Channel:    "뽐뿌",
		Title:      title,
		Content:    "본문",
		ViewCnt:    10,
		CreatedAt:  "2025-11-04 18:25",
		OwnCompany: 0,
		URL:        url,
	}
}

func readLedger(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open ledger: %v", err)
	}
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("read ledger: %v", err)
	}
	return rows
}

func TestLedgerAssignsContiguousIDs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.csv")
	ledger := NewLedger(path, testLogger)

	n, err := ledger.Append(context.Background(), []types.Post{
		testPost("https://a/1", "one"),
		testPost("https://a/2", "two"),
		testPost("https://a/3", "three"),
	})
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	if n != 3 {
		t.Fatalf("expected 3 rows, got %d", n)
	}

	rows := readLedger(t, path)
	if len(rows) != 4 {
		t.Fatalf("expected header + 3 rows, got %d", len(rows))
	}
	if rows[0][0] != "id" || rows[0][10] != "url" {
		t.Errorf("bad header: %v", rows[0])
	}
	for i, want := range []string{"1", "2", "3"} {
		if rows[i+1][0] != want {
			t.Errorf("row %d id = %s, want %s", i, rows[i+1][0], want)
		}
	}
}

func TestLedgerIdempotentByURL(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.csv")
	ledger := NewLedger(path, testLogger)
	ctx := context.Background()

	batch := []types.Post{testPost("https://a/1", "one"), testPost("https://a/2", "two")}
	if _, err := ledger.Append(ctx, batch); err != nil {
		t.Fatalf("first append: %v", err)
	}

	n, err := ledger.Append(ctx, batch)
	if err != nil {
		t.Fatalf("second append: %v", err)
	}
	if n != 0 {
		t.Errorf("re-append stored %d rows, want 0", n)
	}

	rows := readLedger(t, path)
	if len(rows) != 3 {
		t.Errorf("expected header + 2 rows after re-append, got %d", len(rows))
	}
}

func TestLedgerContinuesIDsAcrossRuns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.csv")
	ctx := context.Background()

	if _, err := NewLedger(path, testLogger).Append(ctx, []types.Post{
		testPost("https://a/1", "one"),
		testPost("https://a/2", "two"),
	}); err != nil {
		t.Fatalf("first run: %v", err)
	}

	// New Ledger value simulates a separate process run.
	if _, err := NewLedger(path, testLogger).Append(ctx, []types.Post{
		testPost("https://a/2", "dup"),
		testPost("https://a/3", "three"),
	}); err != nil {
		t.Fatalf("second run: %v", err)
	}

	rows := readLedger(t, path)
	if len(rows) != 4 {
		t.Fatalf("expected header + 3 rows, got %d", len(rows))
	}
	last := rows[len(rows)-1]
	if last[0] != "3" {
		t.Errorf("new row id = %s, want 3", last[0])
	}
	if last[10] != "https://a/3" {
		t.Errorf("new row url = %s", last[10])
	}
}

func TestLedgerEmptyBatchLeavesFileUntouched(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.csv")
	ledger := NewLedger(path, testLogger)
	ctx := context.Background()

	if _, err := ledger.Append(ctx, []types.Post{testPost("https://a/1", "one")}); err != nil {
		t.Fatalf("seed: %v", err)
	}
	before, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}

	if n, err := ledger.Append(ctx, nil); err != nil || n != 0 {
		t.Fatalf("empty append: n=%d err=%v", n, err)
	}

	after, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if before.Size() != after.Size() {
		t.Error("empty batch modified the ledger file")
	}
}

func TestLedgerEmptyBatchCreatesNothing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.csv")
	if n, err := NewLedger(path, testLogger).Append(context.Background(), nil); err != nil || n != 0 {
		t.Fatalf("empty append: n=%d err=%v", n, err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("empty batch should not create the ledger file")
	}
}

func TestLedgerHeaderWrittenOnce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.csv")
	ctx := context.Background()

	for i, url := range []string{"https://a/1", "https://a/2"} {
		if _, err := NewLedger(path, testLogger).Append(ctx, []types.Post{testPost(url, "t")}); err != nil {
			t.Fatalf("append %d: %v", i, err)
		}
	}

	rows := readLedger(t, path)
	headers := 0
	for _, row := range rows {
		if row[0] == "id" {
			headers++
		}
	}
	if headers != 1 {
		t.Errorf("expected exactly one header row, got %d", headers)
	}
}

func TestMergeOutputs(t *testing.T) {
	dir := t.TempDir()
	outputs := filepath.Join(dir, "outputs")
	if err := os.MkdirAll(outputs, 0o755); err != nil {
		t.Fatal(err)
	}

	writeRun := func(name string, posts []types.Post) {
		data, _ := json.Marshal(posts)
		if err := os.WriteFile(filepath.Join(outputs, name), data, 0o644); err != nil {
			t.Fatal(err)
		}
	}
	writeRun("fmkorea_popular_20251104_120000.json", []types.Post{
		testPost("https://a/1", "one"),
	})
	writeRun("ppomppu_popular_20251104_130000.json", []types.Post{
		testPost("https://a/1", "dup"),
		testPost("https://a/2", "two"),
	})
	// Malformed file must be skipped, not fatal.
	if err := os.WriteFile(filepath.Join(outputs, "broken.json"), []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	path := filepath.Join(dir, "ledger.csv")
	n, err := NewLedger(path, testLogger).MergeOutputs(context.Background(), outputs)
	if err != nil {
		t.Fatalf("merge: %v", err)
	}
	if n != 2 {
		t.Errorf("expected 2 merged rows, got %d", n)
	}
}
