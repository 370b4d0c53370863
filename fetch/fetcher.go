package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// MaxBodyBytes caps any response body the pipeline will hold in memory.
// Larger payloads are rejected outright; re-rendering cannot fix size.
const MaxBodyBytes = 5 << 20 // 5 MiB

// DefaultTimeout bounds a single fetch, raced with caller cancellation.
const DefaultTimeout = 30 * time.Second

// DefaultUserAgent is a descriptive browser-like UA. Some origins serve
// empty shells to unknown agents; this keeps the primary fetch honest
// while still identifying the tool.
const DefaultUserAgent = "Mozilla/5.0 (compatible; recolte/1.0; +https://github.com/hazyhaar/recolte)"

// Response is a fully read HTTP response, size-bounded.
type Response struct {
	StatusCode  int
	ContentType string
	Body        []byte
	TooLarge    bool // body (or declared content-length) exceeded MaxBodyBytes
}

// FetcherConfig configures the HTTP fetcher.
type FetcherConfig struct {
	MaxBytes  int64
	UserAgent string
}

func (c *FetcherConfig) defaults() {
	if c.MaxBytes <= 0 {
		c.MaxBytes = MaxBodyBytes
	}
	if c.UserAgent == "" {
		c.UserAgent = DefaultUserAgent
	}
}

// Fetcher performs bounded HTTP GETs. Timeouts come from the caller's
// context; the client itself only caps redirects.
type Fetcher struct {
	client *http.Client
	config FetcherConfig
}

// NewFetcher creates a Fetcher.
func NewFetcher(cfg FetcherConfig) *Fetcher {
	cfg.defaults()
	return &Fetcher{
		client: &http.Client{
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 5 {
					return fmt.Errorf("too many redirects (%d)", len(via))
				}
				return nil
			},
		},
		config: cfg,
	}
}

// Get fetches a URL and reads at most MaxBytes of body. A declared or
// actual body beyond the cap yields TooLarge=true with no body retained.
func (f *Fetcher) Get(ctx context.Context, url string) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("User-Agent", f.config.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	out := &Response{
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
	}

	if resp.ContentLength > f.config.MaxBytes {
		out.TooLarge = true
		return out, nil
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.config.MaxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if int64(len(body)) > f.config.MaxBytes {
		out.TooLarge = true
		return out, nil
	}
	out.Body = body

	if out.ContentType == "" && len(body) > 0 {
		out.ContentType = http.DetectContentType(body)
	}
	return out, nil
}
