package search

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func testClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(Config{BaseURL: srv.URL, APIKey: "test-key"})
}

func TestSearchSuccess(t *testing.T) {
	// WHAT: a well-formed provider response maps onto Result values and
	// the request carries the credential header.
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("x-api-key") != "test-key" {
			t.Errorf("missing api key header")
		}
		if r.URL.Path != "/search" {
			t.Errorf("path: %q", r.URL.Path)
		}
		fmt.Fprint(w, `{"answer":"short answer","results":[{"title":"T1","url":"https://a","snippet":"s1","publishedDate":"2026-01-02"}]}`)
	})

	results, answer, err := c.Search(context.Background(), Query{Query: "go lru cache"})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if answer != "short answer" {
		t.Errorf("answer: %q", answer)
	}
	if len(results) != 1 || results[0].Title != "T1" || results[0].PublishedDate != "2026-01-02" {
		t.Errorf("results: %+v", results)
	}
}

func TestSearchMissingCredential(t *testing.T) {
	// WHAT: no API key is a configuration error, distinct from any
	// network failure, and no request is sent.
	c := NewClient(Config{BaseURL: "http://127.0.0.1:1", APIKey: ""})
	_, _, err := c.Search(context.Background(), Query{Query: "x"})
	if !errors.Is(err, ErrMissingCredential) {
		t.Errorf("error: %v, want ErrMissingCredential", err)
	}
}

func TestSearchMalformedResponse(t *testing.T) {
	// WHAT: a 200 with the wrong shape is reported as a contract
	// violation, not coerced to an empty result set.
	for name, body := range map[string]string{
		"missing results": `{"answer":"x"}`,
		"not json":        `<html>gateway error</html>`,
	} {
		c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, body)
		})
		_, _, err := c.Search(context.Background(), Query{Query: "q"})
		if !errors.Is(err, ErrMalformedResponse) {
			t.Errorf("%s: error %v, want ErrMalformedResponse", name, err)
		}
	}
}

func TestSearchHTTPError(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	})
	_, _, err := c.Search(context.Background(), Query{Query: "q"})
	if err == nil || !strings.Contains(err.Error(), "429") {
		t.Errorf("error: %v, want HTTP 429 mention", err)
	}
	if errors.Is(err, ErrMalformedResponse) {
		t.Error("HTTP error must not be classified as malformed response")
	}
}

func TestSearchAllPerItemIsolation(t *testing.T) {
	// WHAT: one failing query does not abort its siblings, and output
	// order matches input order.
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(readBody(t, r), "bad") {
			http.Error(w, "boom", http.StatusInternalServerError)
			return
		}
		fmt.Fprint(w, `{"results":[{"title":"ok","url":"https://a","snippet":"s"}]}`)
	})

	out := c.SearchAll(context.Background(), []Query{{Query: "good one"}, {Query: "bad one"}, {Query: "good two"}})
	if len(out) != 3 {
		t.Fatalf("len: %d", len(out))
	}
	if out[0].Query != "good one" || out[1].Query != "bad one" || out[2].Query != "good two" {
		t.Errorf("order: %+v", out)
	}
	if out[0].Error != "" || out[2].Error != "" {
		t.Errorf("good queries errored: %q / %q", out[0].Error, out[2].Error)
	}
	if out[1].Error == "" {
		t.Error("bad query should carry its error")
	}
}

func TestContext(t *testing.T) {
	// WHAT: token budget validation happens before any request; a valid
	// call returns the markdown blob.
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"response":"# Usage\nexample code"}`)
	})

	if _, err := c.Context(context.Background(), "q", "zero-ish"); err == nil {
		t.Error("invalid token budget should be rejected")
	}
	if _, err := c.Context(context.Background(), "q", "-5"); err == nil {
		t.Error("negative token budget should be rejected")
	}

	got, err := c.Context(context.Background(), "how to use chi router", DynamicTokens)
	if err != nil {
		t.Fatalf("context: %v", err)
	}
	if !strings.HasPrefix(got, "# Usage") {
		t.Errorf("content: %q", got)
	}
}

func readBody(t *testing.T, r *http.Request) string {
	t.Helper()
	b, err := io.ReadAll(r.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return string(b)
}
