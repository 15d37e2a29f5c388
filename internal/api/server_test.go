package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"community-crawler/internal/crawler"
	"community-crawler/internal/types"
)

var testLogger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

// fakeRunner records invocations and serves canned results.
type fakeRunner struct {
	lastSite     string
	lastMaxPosts int
	posts        []types.Post
	err          error
	failSites    map[string]error
}

func (f *fakeRunner) Sites() []string { return []string{"fmkorea", "mamibebe", "ppomppu"} }

func (f *fakeRunner) Crawl(_ context.Context, site string, maxPosts int) ([]types.Post, error) {
	found := false
	for _, s := range f.Sites() {
		if s == site {
			found = true
		}
	}
	if !found {
		return nil, types.ErrUnknownTool
	}
	f.lastSite = site
	f.lastMaxPosts = maxPosts
	return f.posts, f.err
}

func (f *fakeRunner) CrawlAll(ctx context.Context, maxPosts int) []crawler.SiteResult {
	results := make([]crawler.SiteResult, 0, 3)
	for _, site := range f.Sites() {
		if err, ok := f.failSites[site]; ok {
			results = append(results, crawler.SiteResult{Site: site, Err: err})
			continue
		}
		posts, _ := f.Crawl(ctx, site, maxPosts)
		results = append(results, crawler.SiteResult{Site: site, Posts: posts})
	}
	return results
}

func newTestServer(runner ToolRunner) *httptest.Server {
	return httptest.NewServer(NewServer(runner, 0, testLogger).Handler())
}

func TestListTools(t *testing.T) {
	srv := newTestServer(&fakeRunner{})
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/tools")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()

	var body struct {
		Tools []struct {
			Name string `json:"name"`
		} `json:"tools"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	names := make(map[string]bool)
	for _, tool := range body.Tools {
		names[tool.Name] = true
	}
	for _, want := range []string{"crawl_fmkorea", "crawl_ppomppu", "crawl_mamibebe", "crawl_all"} {
		if !names[want] {
			t.Errorf("tool %s missing from listing", want)
		}
	}
}

func TestInvokeDefaultMaxPosts(t *testing.T) {
	runner := &fakeRunner{posts: []types.Post{{Title: "t", URL: "https://a/1"}}}
	srv := newTestServer(runner)
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/tools/crawl_fmkorea", "application/json", strings.NewReader(""))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if runner.lastMaxPosts != defaultMaxPosts {
		t.Errorf("max_posts = %d, want default %d", runner.lastMaxPosts, defaultMaxPosts)
	}
	if runner.lastSite != "fmkorea" {
		t.Errorf("site = %s", runner.lastSite)
	}

	var posts []types.Post
	if err := json.NewDecoder(resp.Body).Decode(&posts); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(posts) != 1 {
		t.Errorf("expected 1 post, got %d", len(posts))
	}
}

func TestInvokeExplicitMaxPosts(t *testing.T) {
	runner := &fakeRunner{}
	srv := newTestServer(runner)
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/tools/crawl_ppomppu", "application/json",
		strings.NewReader(`{"max_posts": 3}`))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	resp.Body.Close()

	if runner.lastMaxPosts != 3 {
		t.Errorf("max_posts = %d, want 3", runner.lastMaxPosts)
	}
}

func TestInvokeUnknownTool(t *testing.T) {
	srv := newTestServer(&fakeRunner{})
	defer srv.Close()

	for _, name := range []string{"crawl_nowhere", "delete_everything"} {
		resp, err := http.Post(srv.URL+"/tools/"+name, "application/json", nil)
		if err != nil {
			t.Fatalf("post: %v", err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusNotFound {
			t.Errorf("tool %s: status = %d, want 404", name, resp.StatusCode)
		}
	}
}

func TestInvokeMalformedBody(t *testing.T) {
	srv := newTestServer(&fakeRunner{})
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/tools/crawl_fmkorea", "application/json",
		strings.NewReader(`{"max_posts": `))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestCrawlAllIsolatesFailures(t *testing.T) {
	runner := &fakeRunner{
		posts:     []types.Post{{Title: "t", URL: "https://a/1"}},
		failSites: map[string]error{"mamibebe": errors.New("login rejected")},
	}
	srv := newTestServer(runner)
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/tools/crawl_all", "application/json", nil)
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	var body map[string]json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}

	var failed map[string]string
	if err := json.Unmarshal(body["mamibebe"], &failed); err != nil {
		t.Fatalf("mamibebe payload: %v", err)
	}
	if failed["error"] != "login rejected" {
		t.Errorf("mamibebe error = %q", failed["error"])
	}

	var posts []types.Post
	if err := json.Unmarshal(body["fmkorea"], &posts); err != nil {
		t.Fatalf("fmkorea payload: %v", err)
	}
	if len(posts) != 1 {
		t.Errorf("fmkorea posts = %d, want 1", len(posts))
	}
}

func TestCrawlFailureReturns500(t *testing.T) {
	runner := &fakeRunner{err: errors.New("browser launch failed")}
	srv := newTestServer(runner)
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/tools/crawl_fmkorea", "application/json", nil)
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", resp.StatusCode)
	}
}
