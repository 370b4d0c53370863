package fetch

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
)

// countingReader stands in for the fallback service, counting hits and
// serving a fixed body.
func countingReader(t *testing.T, status int, body string) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(status)
		fmt.Fprint(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv, &hits
}

func newTestPipeline(readerURL string) *Pipeline {
	cfg := Config{ReaderBaseURL: readerURL}
	if readerURL == "" {
		cfg.DisableReader = true
	}
	return NewPipeline(cfg)
}

func articleHTML(words int) string {
	body := strings.Repeat("readable prose sentence with substance. ", words)
	return fmt.Sprintf(`<!DOCTYPE html>
<html><head><title>Test Article</title></head>
<body>
<nav class="navbar"><a href="/a">Home</a><a href="/b">About</a></nav>
<main><h1>Test Article</h1><p>%s</p></main>
<footer class="footer">copyright notice</footer>
</body></html>`, body)
}

func TestExtractHTMLSuccess(t *testing.T) {
	// WHAT: a well-formed article extracts locally; the fallback reader
	// is never contacted.
	rdr, hits := countingReader(t, 200, "should not be used")
	origin := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, articleHTML(30))
	}))
	defer origin.Close()

	res := newTestPipeline(rdr.URL).Extract(context.Background(), origin.URL)
	if res.Error != "" {
		t.Fatalf("error: %q", res.Error)
	}
	if res.Title != "Test Article" {
		t.Errorf("title: got %q", res.Title)
	}
	if !strings.Contains(res.Content, "readable prose sentence") {
		t.Errorf("content missing article text: %q", res.Content[:min(len(res.Content), 200)])
	}
	if strings.Contains(res.Content, "copyright notice") {
		t.Error("boilerplate footer leaked into content")
	}
	if hits.Load() != 0 {
		t.Errorf("fallback contacted %d times, want 0", hits.Load())
	}
}

func TestExtractInvalidURL(t *testing.T) {
	// WHAT: non-absolute and non-http(s) URLs fail fast with the exact
	// error string, no network traffic.
	p := newTestPipeline("")
	for _, bad := range []string{"not a url at all", "/relative/path", "ftp://example.com/x", "http://"} {
		res := p.Extract(context.Background(), bad)
		if res.Error != "Invalid URL" {
			t.Errorf("Extract(%q) error: got %q, want %q", bad, res.Error, "Invalid URL")
		}
	}
}

func TestExtractAborted(t *testing.T) {
	// WHAT: an already-cancelled context short-circuits to "Aborted".
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res := newTestPipeline("").Extract(ctx, "http://example.com/")
	if res.Error != "Aborted" {
		t.Errorf("error: got %q, want %q", res.Error, "Aborted")
	}
}

func TestExtractBinaryTypeNonRecoverable(t *testing.T) {
	// WHAT: binary content types are rejected outright; re-rendering
	// cannot help, so the fallback is skipped.
	rdr, hits := countingReader(t, 200, "Markdown Content:\n"+strings.Repeat("x", 300))
	origin := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		w.Write([]byte{0x89, 'P', 'N', 'G'})
	}))
	defer origin.Close()

	res := newTestPipeline(rdr.URL).Extract(context.Background(), origin.URL)
	if res.Error != "Unsupported content type" {
		t.Errorf("error: got %q", res.Error)
	}
	if hits.Load() != 0 {
		t.Errorf("fallback contacted %d times, want 0", hits.Load())
	}
}

func TestExtractTooLarge(t *testing.T) {
	// WHAT: responses over the body cap are rejected with the exact
	// error string and no fallback attempt.
	rdr, hits := countingReader(t, 200, "unused")
	origin := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Header().Set("Content-Length", fmt.Sprint(MaxBodyBytes+1))
		w.Write(make([]byte, MaxBodyBytes+1))
	}))
	defer origin.Close()

	res := newTestPipeline(rdr.URL).Extract(context.Background(), origin.URL)
	if res.Error != "Response too large" {
		t.Errorf("error: got %q", res.Error)
	}
	if hits.Load() != 0 {
		t.Errorf("fallback contacted %d times, want 0", hits.Load())
	}
}

func TestExtractHTTPErrorFallbackFails(t *testing.T) {
	// WHAT: an HTTP error is recoverable; when the fallback also fails,
	// the final error names the status and notes the second failure.
	rdr, hits := countingReader(t, 500, "server error")
	origin := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer origin.Close()

	res := newTestPipeline(rdr.URL).Extract(context.Background(), origin.URL)
	want := "HTTP 404 Not Found (fallback reader also failed)"
	if res.Error != want {
		t.Errorf("error: got %q, want %q", res.Error, want)
	}
	if hits.Load() != 1 {
		t.Errorf("fallback contacted %d times, want 1", hits.Load())
	}
}

func TestExtractHTTPErrorFallbackSucceeds(t *testing.T) {
	// WHAT: a successful fallback rendering clears the error entirely.
	rendered := "# Rendered Title\n\n" + strings.Repeat("fallback body text. ", 20)
	rdr, _ := countingReader(t, 200, "Title: x\nMarkdown Content:\n"+rendered)
	origin := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusForbidden)
	}))
	defer origin.Close()

	res := newTestPipeline(rdr.URL).Extract(context.Background(), origin.URL)
	if res.Error != "" {
		t.Fatalf("error: %q", res.Error)
	}
	if !strings.Contains(res.Content, "fallback body text") {
		t.Errorf("content: %q", res.Content)
	}
	if strings.Contains(res.Content, "Markdown Content:") {
		t.Error("reader metadata preamble leaked into content")
	}
	if res.Title != "Rendered Title" {
		t.Errorf("title: got %q", res.Title)
	}
}

func TestExtractShortKeepsPartialOnFallbackFailure(t *testing.T) {
	// WHAT: a suspiciously short extraction is a soft failure. The
	// partial content survives when the fallback cannot do better.
	rdr, _ := countingReader(t, 200, "too short")
	origin := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, `<html><head><title>Shell</title></head><body><main><p>Just a stub paragraph that is long enough to extract but far below the completeness threshold.</p></main></body></html>`)
	}))
	defer origin.Close()

	res := newTestPipeline(rdr.URL).Extract(context.Background(), origin.URL)
	want := "Extracted content appears incomplete (fallback reader also failed)"
	if res.Error != want {
		t.Errorf("error: got %q, want %q", res.Error, want)
	}
	if !strings.Contains(res.Content, "stub paragraph") {
		t.Errorf("partial content lost: %q", res.Content)
	}
}

func TestExtractPlainTextPassthrough(t *testing.T) {
	// WHAT: non-HTML text bodies skip readability and pass through.
	body := strings.Repeat("plain text line\n", 50)
	origin := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		fmt.Fprint(w, body)
	}))
	defer origin.Close()

	res := newTestPipeline("").Extract(context.Background(), origin.URL)
	if res.Error != "" {
		t.Fatalf("error: %q", res.Error)
	}
	if res.Content != strings.TrimSpace(body) {
		t.Errorf("content altered: %q", res.Content[:min(len(res.Content), 100)])
	}
}

func TestExtractAllOrderAndIsolation(t *testing.T) {
	// WHAT: batch results come back in input order; a failing URL does
	// not disturb its neighbors.
	origin := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/bad" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, articleHTML(30))
	}))
	defer origin.Close()

	urls := []string{origin.URL + "/a", origin.URL + "/bad", origin.URL + "/c"}
	results := newTestPipeline("").ExtractAll(context.Background(), urls)
	if len(results) != 3 {
		t.Fatalf("results: got %d", len(results))
	}
	for i, u := range urls {
		if results[i].URL != u {
			t.Errorf("result %d: got url %q, want %q", i, results[i].URL, u)
		}
	}
	if results[0].Error != "" || results[2].Error != "" {
		t.Errorf("good urls errored: %q / %q", results[0].Error, results[2].Error)
	}
	if !strings.Contains(results[1].Error, "404") {
		t.Errorf("bad url error: %q", results[1].Error)
	}
}
