package fetcher

import (
	"compress/flate"
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/andybalholm/brotli"
	"golang.org/x/time/rate"

	"community-crawler/internal/types"
)

// APIClient calls the JSON endpoints some sites expose alongside their HTML
// pages, with browser-like headers and session cookies so the requests are
// indistinguishable from in-page XHR traffic.
type APIClient struct {
	client    *http.Client
	userAgent string
	cookies   map[string]string
	limiter   *rate.Limiter
	logger    *slog.Logger
}

// APIClientOption configures the APIClient.
type APIClientOption func(*APIClient)

// WithCookies attaches session cookies to every request.
func WithCookies(cookies map[string]string) APIClientOption {
	return func(c *APIClient) { c.cookies = cookies }
}

// WithRateLimit paces requests at r per second.
func WithRateLimit(r float64) APIClientOption {
	return func(c *APIClient) { c.limiter = rate.NewLimiter(rate.Limit(r), 1) }
}

// NewAPIClient builds an HTTP client for auxiliary API calls. Transparent
// compression is disabled so the Accept-Encoding header can advertise
// brotli; decompression is handled explicitly.
func NewAPIClient(userAgent string, timeout time.Duration, logger *slog.Logger, opts ...APIClientOption) *APIClient {
	c := &APIClient{
		client: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				DisableCompression: true,
				MaxIdleConns:       10,
				IdleConnTimeout:    30 * time.Second,
			},
		},
		userAgent: userAgent,
		limiter:   rate.NewLimiter(rate.Limit(2), 1),
		logger:    logger.With("component", "api_client"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GetJSON fetches url and decodes the response body into out.
func (c *APIClient) GetJSON(ctx context.Context, url string, referer string, out any) error {
	body, err := c.get(ctx, url, referer, "application/json, text/plain, */*")
	if err != nil {
		return err
	}
	defer body.Close()

	if err := json.NewDecoder(body).Decode(out); err != nil {
		return &types.FetchError{URL: url, Err: fmt.Errorf("decode json: %w", err)}
	}
	return nil
}

// GetHTML fetches url and returns the decompressed body as a string.
func (c *APIClient) GetHTML(ctx context.Context, url string, referer string) (string, error) {
	body, err := c.get(ctx, url, referer, "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	if err != nil {
		return "", err
	}
	defer body.Close()

	data, err := io.ReadAll(body)
	if err != nil {
		return "", &types.FetchError{URL: url, Err: fmt.Errorf("read body: %w", err)}
	}
	return string(data), nil
}

func (c *APIClient) get(ctx context.Context, url, referer, accept string) (io.ReadCloser, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &types.FetchError{URL: url, Err: err}
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", accept)
	req.Header.Set("Accept-Language", "ko-KR,ko;q=0.9,en-US;q=0.8,en;q=0.7")
	req.Header.Set("Accept-Encoding", "gzip, deflate, br")
	if referer != "" {
		req.Header.Set("Referer", referer)
	}
	if len(c.cookies) > 0 {
		pairs := make([]string, 0, len(c.cookies))
		for name, value := range c.cookies {
			pairs = append(pairs, name+"="+value)
		}
		req.Header.Set("Cookie", strings.Join(pairs, "; "))
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &types.FetchError{URL: url, Err: err, Retryable: true}
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, &types.FetchError{
			URL:        url,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("unexpected status %s", resp.Status),
			Retryable:  resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests,
		}
	}

	body, err := decompressReader(resp.Body, resp.Header.Get("Content-Encoding"))
	if err != nil {
		resp.Body.Close()
		return nil, &types.FetchError{URL: url, Err: err}
	}
	return body, nil
}

// decompressReader wraps body with a decoder for the given Content-Encoding.
func decompressReader(body io.ReadCloser, encoding string) (io.ReadCloser, error) {
	switch strings.ToLower(strings.TrimSpace(encoding)) {
	case "gzip":
		gz, err := gzip.NewReader(body)
		if err != nil {
			return nil, fmt.Errorf("gzip reader: %w", err)
		}
		return &wrappedReadCloser{Reader: gz, closers: []io.Closer{gz, body}}, nil
	case "deflate":
		fl := flate.NewReader(body)
		return &wrappedReadCloser{Reader: fl, closers: []io.Closer{fl, body}}, nil
	case "br":
		return &wrappedReadCloser{Reader: brotli.NewReader(body), closers: []io.Closer{body}}, nil
	default:
		return body, nil
	}
}

type wrappedReadCloser struct {
	io.Reader
	closers []io.Closer
}

func (w *wrappedReadCloser) Close() error {
	var first error
	for _, c := range w.closers {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
