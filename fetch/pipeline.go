package fetch

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// ShortExtractionChars is the threshold under which a locally extracted
// result is considered suspiciously short: the page probably renders
// most of its content client-side, so the fallback reader gets a try
// while the partial result is kept as a floor.
const ShortExtractionChars = 500

// Exact error strings surfaced on failed extractions. Hosts display
// these verbatim, so they stay stable.
const (
	errAborted         = "Aborted"
	errInvalidURL      = "Invalid URL"
	errUnsupportedType = "Unsupported content type"
	errTooLarge        = "Response too large"
	errNotReadable     = "Could not extract readable content"
	errIncomplete      = "Extracted content appears incomplete"

	fallbackFailedNote = " (fallback reader also failed)"
)

// Config configures an extraction Pipeline.
type Config struct {
	Timeout   time.Duration
	MaxBytes  int64
	UserAgent string

	// ReaderBaseURL selects the fallback reader service. Empty means
	// the default public service; DisableReader turns fallback off.
	ReaderBaseURL string
	DisableReader bool

	Logger *slog.Logger
}

func (c *Config) defaults() {
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// Pipeline turns a URL into titled markdown through staged extraction:
// bounded fetch, content-type dispatch, readability isolation, markdown
// conversion, and a reader-service fallback for pages the local path
// cannot handle.
type Pipeline struct {
	fetcher *Fetcher
	reader  *Reader
	md      *markdown
	timeout time.Duration
	logger  *slog.Logger
}

// NewPipeline creates a Pipeline.
func NewPipeline(cfg Config) *Pipeline {
	cfg.defaults()
	p := &Pipeline{
		fetcher: NewFetcher(FetcherConfig{MaxBytes: cfg.MaxBytes, UserAgent: cfg.UserAgent}),
		md:      newMarkdown(),
		timeout: cfg.Timeout,
		logger:  cfg.Logger,
	}
	if !cfg.DisableReader {
		p.reader = NewReader(cfg.ReaderBaseURL, cfg.UserAgent)
	}
	return p
}

// Extract runs the full pipeline for one URL. It never returns an
// error: failures are carried in the result's Error field so batch
// callers keep per-item isolation. A non-empty Error alongside content
// means the content is partial.
func (p *Pipeline) Extract(ctx context.Context, rawURL string) *Extracted {
	res := &Extracted{URL: rawURL}
	if ctx.Err() != nil {
		res.Error = errAborted
		return res
	}

	u, err := url.Parse(rawURL)
	if err != nil || !u.IsAbs() || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		res.Error = errInvalidURL
		return res
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	resp, err := p.fetcher.Get(ctx, rawURL)
	if err != nil {
		if ctx.Err() == context.Canceled {
			res.Error = errAborted
			return res
		}
		res.Error = fmt.Sprintf("Fetch failed: %v", err)
		return res
	}

	// Size and type rejections are final: a different renderer cannot
	// shrink the payload or turn binary data into prose.
	if resp.TooLarge {
		res.Error = errTooLarge
		return res
	}
	if isBinaryType(resp.ContentType) {
		res.Error = errUnsupportedType
		return res
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		res.Error = fmt.Sprintf("HTTP %d %s", resp.StatusCode, http.StatusText(resp.StatusCode))
		return p.fallback(ctx, u, res)
	}

	switch {
	case isPDFType(resp.ContentType):
		title, text, err := extractPDF(resp.Body)
		if err != nil {
			p.logger.Debug("pdf extraction failed", "url", rawURL, "error", err)
			res.Error = errNotReadable
			return p.fallback(ctx, u, res)
		}
		res.Title, res.Content = title, text
		if res.Title == "" {
			res.Title = deriveTitle(text, u)
		}
		return res

	case isHTMLType(resp.ContentType):
		return p.extractHTML(ctx, u, resp.Body, res)

	default:
		// Plain text, markdown, JSON and friends pass through as-is.
		res.Content = strings.TrimSpace(string(resp.Body))
		res.Title = deriveTitle(res.Content, u)
		if res.Content == "" {
			res.Error = errNotReadable
			return p.fallback(ctx, u, res)
		}
		return res
	}
}

func (p *Pipeline) extractHTML(ctx context.Context, u *url.URL, body []byte, res *Extracted) *Extracted {
	title, fragment, ok := readable(body)
	if !ok {
		res.Error = errNotReadable
		return p.fallback(ctx, u, res)
	}

	md, err := p.md.convert(fragment, u.String())
	if err != nil || md == "" {
		if err != nil {
			p.logger.Debug("markdown conversion failed", "url", u.String(), "error", err)
		}
		res.Error = errNotReadable
		return p.fallback(ctx, u, res)
	}

	if title == "" {
		title = deriveTitle(md, u)
	}
	res.Title, res.Content = title, md

	// Short output usually means a client-side-rendered shell. Try the
	// reader, but keep the partial extraction if it fails too.
	if len([]rune(md)) < ShortExtractionChars {
		res.Error = errIncomplete
		return p.fallback(ctx, u, res)
	}
	return res
}

// fallback routes a failed or incomplete extraction through the reader
// service. Success replaces the error and content outright; failure
// appends a note to the existing error so the host sees both stages.
// Partial content from the soft-failure path survives either way.
func (p *Pipeline) fallback(ctx context.Context, u *url.URL, res *Extracted) *Extracted {
	if p.reader == nil || ctx.Err() != nil {
		return res
	}
	content, ok := p.reader.Render(ctx, res.URL)
	if !ok {
		p.logger.Debug("fallback reader failed", "url", res.URL, "primary_error", res.Error)
		res.Error += fallbackFailedNote
		return res
	}
	title := deriveTitle(content, u)
	if title == "" {
		title = res.Title
	}
	return &Extracted{URL: res.URL, Title: title, Content: content}
}
