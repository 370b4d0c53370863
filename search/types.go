// Package search adapts the external web-search and code-context
// providers. Transport failures, HTTP failures, and malformed response
// shapes are surfaced as distinct error kinds so an operator can tell
// "the network failed" apart from "the contract was violated".
package search

// Result is one hit from the web-search provider.
type Result struct {
	Title         string `json:"title"`
	URL           string `json:"url"`
	Snippet       string `json:"snippet"`
	PublishedDate string `json:"publishedDate,omitempty"`
}

// QueryResult aggregates the outcome of one query in a batch.
type QueryResult struct {
	Query   string   `json:"query"`
	Answer  string   `json:"answer,omitempty"`
	Results []Result `json:"results,omitempty"`
	Error   string   `json:"error,omitempty"`
}

// ContextResult is the outcome of one code-context search.
type ContextResult struct {
	Query   string `json:"query"`
	Content string `json:"content,omitempty"`
	Error   string `json:"error,omitempty"`
}
