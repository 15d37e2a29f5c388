package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"community-crawler/internal/crawler"
	"community-crawler/internal/types"
)

// defaultMaxPosts bounds tool invocations that do not specify a cap.
const defaultMaxPosts = 20

// ToolRunner is the crawl surface the server exposes. It is satisfied by
// the crawler runner; tests substitute a fake.
type ToolRunner interface {
	Sites() []string
	Crawl(ctx context.Context, site string, maxPosts int) ([]types.Post, error)
	CrawlAll(ctx context.Context, maxPosts int) []crawler.SiteResult
}

// Server exposes the crawlers as named tools over HTTP. Each site gets a
// crawl_<site> tool; crawl_all fans out across every site.
type Server struct {
	runner ToolRunner
	logger *slog.Logger
	http   *http.Server
}

// toolRequest is the body accepted by every tool invocation.
type toolRequest struct {
	MaxPosts *int `json:"max_posts"`
}

// toolInfo describes one callable tool in the listing response.
type toolInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func NewServer(runner ToolRunner, port int, logger *slog.Logger) *Server {
	s := &Server{
		runner: runner,
		logger: logger.With("component", "tool_server"),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /tools", s.handleList)
	mux.HandleFunc("POST /tools/{name}", s.handleInvoke)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	s.http = &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// ListenAndServe blocks until the server stops.
func (s *Server) ListenAndServe() error {
	s.logger.Info("tool server listening", "addr", s.http.Addr)
	err := s.http.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

// Handler exposes the route table for tests.
func (s *Server) Handler() http.Handler { return s.http.Handler }

func (s *Server) handleList(w http.ResponseWriter, _ *http.Request) {
	tools := make([]toolInfo, 0, len(s.runner.Sites())+1)
	for _, site := range s.runner.Sites() {
		tools = append(tools, toolInfo{
			Name:        "crawl_" + site,
			Description: fmt.Sprintf("Collect popular posts from %s", site),
		})
	}
	tools = append(tools, toolInfo{
		Name:        "crawl_all",
		Description: "Collect popular posts from every community",
	})
	jsonResponse(w, http.StatusOK, map[string]any{"tools": tools})
}

func (s *Server) handleInvoke(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")

	// An empty body means defaults; anything else malformed is a client
	// error.
	maxPosts := defaultMaxPosts
	var req toolRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if !errors.Is(err, io.EOF) {
			jsonResponse(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
			return
		}
	} else if req.MaxPosts != nil {
		maxPosts = *req.MaxPosts
	}

	start := time.Now()
	s.logger.Info("tool invoked", "tool", name, "max_posts", maxPosts)

	if name == "crawl_all" {
		outcomes := s.runner.CrawlAll(r.Context(), maxPosts)
		result := make(map[string]any, len(outcomes))
		for _, outcome := range outcomes {
			if outcome.Err != nil {
				result[outcome.Site] = map[string]string{"error": outcome.Err.Error()}
				continue
			}
			result[outcome.Site] = postsOrEmpty(outcome.Posts)
		}
		s.logger.Info("tool finished", "tool", name, "duration", time.Since(start))
		jsonResponse(w, http.StatusOK, result)
		return
	}

	site, ok := strings.CutPrefix(name, "crawl_")
	if !ok {
		jsonResponse(w, http.StatusNotFound, map[string]string{"error": types.ErrUnknownTool.Error()})
		return
	}
	posts, err := s.runner.Crawl(r.Context(), site, maxPosts)
	if errors.Is(err, types.ErrUnknownTool) {
		jsonResponse(w, http.StatusNotFound, map[string]string{"error": types.ErrUnknownTool.Error()})
		return
	}
	if err != nil {
		jsonResponse(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	s.logger.Info("tool finished", "tool", name, "posts", len(posts), "duration", time.Since(start))
	jsonResponse(w, http.StatusOK, postsOrEmpty(posts))
}

func postsOrEmpty(posts []types.Post) []types.Post {
	if posts == nil {
		return []types.Post{}
	}
	return posts
}

func jsonResponse(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
