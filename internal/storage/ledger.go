package storage

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"

	"community-crawler/internal/types"
)

// ledgerColumns is the fixed CSV column order. Existing ledgers are read
// positionally against this layout.
var ledgerColumns = []string{
	"id", "channel", "category", "title", "content",
	"view_cnt", "like_cnt", "comment_cnt", "created_at",
	"own_company", "url",
}

// Ledger is the append-only CSV file accumulating posts across runs. Rows
// are de-duplicated by exact URL against everything already in the file,
// and ids continue from the highest existing one. The mutex serializes
// appends within this process only; concurrent writers from separate
// processes are not protected.
type Ledger struct {
	path   string
	logger *slog.Logger
	mu     sync.Mutex
}

func NewLedger(path string, logger *slog.Logger) *Ledger {
	return &Ledger{path: path, logger: logger.With("component", "csv_ledger")}
}

func (l *Ledger) Name() string { return "csv" }

// Append adds the non-duplicate posts to the ledger and returns how many
// rows were written. An empty or all-duplicate batch leaves the file
// untouched, header included.
func (l *Ledger) Append(_ context.Context, posts []types.Post) (int, error) {
	if len(posts) == 0 {
		return 0, nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	lastID, seen, existed, err := l.scan()
	if err != nil {
		return 0, err
	}

	var rows [][]string
	id := lastID
	for _, post := range posts {
		url := strings.TrimSpace(post.URL)
		if url != "" && seen[url] {
			continue
		}
		id++
		post.ID = id
		rows = append(rows, ledgerRow(post))
		if url != "" {
			seen[url] = true
		}
	}
	if len(rows) == 0 {
		l.logger.Info("all posts already in ledger", "batch", len(posts))
		return 0, nil
	}

	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return 0, fmt.Errorf("open ledger: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if !existed {
		if err := w.Write(ledgerColumns); err != nil {
			return 0, fmt.Errorf("write header: %w", err)
		}
	}
	for _, row := range rows {
		if err := w.Write(row); err != nil {
			return 0, fmt.Errorf("write row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return 0, fmt.Errorf("flush ledger: %w", err)
	}

	l.logger.Info("ledger appended",
		"rows", len(rows),
		"skipped", len(posts)-len(rows),
		"first_id", lastID+1,
		"last_id", id,
	)
	return len(rows), nil
}

func (l *Ledger) Close(context.Context) error { return nil }

// scan reads the existing ledger, returning the highest id, the set of
// seen URLs, and whether the file existed at all. A missing file is a
// fresh ledger, not an error.
func (l *Ledger) scan() (lastID int, seen map[string]bool, existed bool, err error) {
	seen = make(map[string]bool)

	f, err := os.Open(l.path)
	if os.IsNotExist(err) {
		return 0, seen, false, nil
	}
	if err != nil {
		return 0, nil, false, fmt.Errorf("open ledger: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	header := true
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return 0, nil, false, fmt.Errorf("read ledger: %w", err)
		}
		if header {
			header = false
			continue
		}
		if len(record) < len(ledgerColumns) {
			continue
		}
		if id, err := strconv.Atoi(strings.TrimSpace(record[0])); err == nil && id > lastID {
			lastID = id
		}
		if url := strings.TrimSpace(record[len(ledgerColumns)-1]); url != "" {
			seen[url] = true
		}
	}
	return lastID, seen, true, nil
}

func ledgerRow(p types.Post) []string {
	return []string{
		strconv.Itoa(p.ID),
		p.Channel,
		p.Category,
		p.Title,
		p.Content,
		strconv.Itoa(p.ViewCnt),
		strconv.Itoa(p.LikeCnt),
		strconv.Itoa(p.CommentCnt),
		p.CreatedAt,
		strconv.Itoa(p.OwnCompany),
		p.URL,
	}
}

// MergeOutputs loads every JSON run file under dir in name order and
// appends the combined posts to the ledger. Unreadable files are skipped
// with a warning.
func (l *Ledger) MergeOutputs(ctx context.Context, dir string) (int, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return 0, fmt.Errorf("list outputs: %w", err)
	}
	sort.Strings(paths)

	var all []types.Post
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			l.logger.Warn("skipping unreadable output", "path", path, "error", err)
			continue
		}
		var posts []types.Post
		if err := json.Unmarshal(data, &posts); err != nil {
			l.logger.Warn("skipping malformed output", "path", path, "error", err)
			continue
		}
		l.logger.Info("loaded run output", "path", path, "posts", len(posts))
		all = append(all, posts...)
	}
	if len(all) == 0 {
		return 0, nil
	}
	return l.Append(ctx, all)
}
