// Package fetch turns URLs into clean, size-bounded markdown through a
// staged strategy: validate → HTTP fetch → classify by media type →
// readability extraction → remote reader fallback on recoverable failure.
//
// The pipeline never leaks binary payloads and never calls the fallback
// for failures the fallback cannot fix (wrong media type, oversized body).
package fetch

// Extracted is the normalized outcome for one URL. Error is empty on
// success. A soft outcome carries both content and an error message
// ("Extracted content appears incomplete"); callers may use the content
// but should treat it skeptically.
type Extracted struct {
	URL     string `json:"url"`
	Title   string `json:"title,omitempty"`
	Content string `json:"content,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Failed reports whether the extraction produced nothing usable.
func (e *Extracted) Failed() bool {
	return e.Error != "" && e.Content == ""
}
