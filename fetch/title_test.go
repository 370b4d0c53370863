package fetch

import (
	"net/url"
	"testing"
)

func TestDeriveTitle(t *testing.T) {
	mustURL := func(s string) *url.URL {
		u, err := url.Parse(s)
		if err != nil {
			t.Fatalf("parse %q: %v", s, err)
		}
		return u
	}

	cases := []struct {
		name    string
		content string
		url     string
		want    string
	}{
		{"markdown heading wins", "intro line\n## Deep Dive Into Parsing\nbody", "https://x.test/some-slug", "Deep Dive Into Parsing"},
		{"path segment fallback", "no headings here", "https://x.test/docs/getting-started_guide.html", "getting started guide"},
		{"encoded segment", "", "https://x.test/a%20b", "a b"},
		{"hostname last resort", "plain", "https://news.example.org/", "news.example.org"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := deriveTitle(tc.content, mustURL(tc.url)); got != tc.want {
				t.Errorf("got %q, want %q", got, tc.want)
			}
		})
	}
}
