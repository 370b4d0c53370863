package fetch

import (
	"context"
	"io"
	"net/http"
	"strings"
)

// DefaultReaderBaseURL points at the public reader service used for
// fallback rendering of pages the local extractor could not handle.
const DefaultReaderBaseURL = "https://r.jina.ai/"

// readerMarker precedes the rendered markdown in the service's plain
// responses; anything before it is metadata.
const readerMarker = "Markdown Content:"

// minFallbackChars is the floor for accepting a fallback rendering.
const minFallbackChars = 100

// placeholderPhrases identify renderings that captured a loading shell
// instead of the page.
var placeholderPhrases = []string{
	"please enable javascript",
	"you need to enable javascript",
	"enable javascript to run this app",
	"checking your browser",
	"just a moment",
	"loading...",
}

// Reader renders a page through an external reader service. It is the
// recovery path when local extraction fails or comes back suspiciously
// short.
type Reader struct {
	baseURL string
	client  *http.Client
	ua      string
}

// NewReader creates a Reader against the given service base URL. An
// empty base URL selects the default public service.
func NewReader(baseURL, userAgent string) *Reader {
	if baseURL == "" {
		baseURL = DefaultReaderBaseURL
	}
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	return &Reader{baseURL: baseURL, client: &http.Client{}, ua: userAgent}
}

// Render fetches the reader service's rendering of target. ok is false
// on transport errors, non-2xx responses, too-short content, or a
// placeholder shell.
func (r *Reader) Render(ctx context.Context, target string) (string, bool) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.baseURL+target, nil)
	if err != nil {
		return "", false
	}
	req.Header.Set("User-Agent", r.ua)
	req.Header.Set("Accept", "text/plain")

	resp, err := r.client.Do(req)
	if err != nil {
		return "", false
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", false
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxBodyBytes))
	if err != nil {
		return "", false
	}

	content := string(body)
	if i := strings.Index(content, readerMarker); i >= 0 {
		content = content[i+len(readerMarker):]
	}
	content = strings.TrimSpace(content)

	if len(content) < minFallbackChars {
		return "", false
	}
	lower := strings.ToLower(content)
	for _, phrase := range placeholderPhrases {
		if strings.Contains(lower, phrase) && len(content) < 2*minFallbackChars {
			return "", false
		}
	}
	return content, true
}
