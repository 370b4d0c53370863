package fetch

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func readerServing(t *testing.T, body string) *Reader {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, body)
	}))
	t.Cleanup(srv.Close)
	return NewReader(srv.URL, "")
}

func TestReaderStripsPreamble(t *testing.T) {
	// WHAT: everything before the markdown marker is service metadata
	// and must not reach the caller.
	content := strings.Repeat("actual page content here. ", 10)
	r := readerServing(t, "Title: Something\nURL Source: https://x\n\nMarkdown Content:\n"+content)

	got, ok := r.Render(context.Background(), "https://example.com/page")
	if !ok {
		t.Fatal("render failed")
	}
	if strings.Contains(got, "URL Source") {
		t.Errorf("metadata leaked: %q", got)
	}
	if !strings.HasPrefix(got, "actual page content") {
		t.Errorf("content: %q", got)
	}
}

func TestReaderRejectsShort(t *testing.T) {
	r := readerServing(t, "Markdown Content:\ntiny")
	if _, ok := r.Render(context.Background(), "https://example.com/"); ok {
		t.Error("short rendering should be rejected")
	}
}

func TestReaderRejectsPlaceholderShell(t *testing.T) {
	// WHAT: a rendering that is mostly a JS-disabled notice means the
	// service saw the same empty shell we did.
	r := readerServing(t, "Markdown Content:\nYou need to enable JavaScript to run this app. "+strings.Repeat("x", 60))
	if _, ok := r.Render(context.Background(), "https://example.com/"); ok {
		t.Error("placeholder rendering should be rejected")
	}
}

func TestReaderRejectsHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream busy", http.StatusBadGateway)
	}))
	defer srv.Close()
	r := NewReader(srv.URL, "")
	if _, ok := r.Render(context.Background(), "https://example.com/"); ok {
		t.Error("non-2xx should be rejected")
	}
}
