package search

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// DefaultResultCount is used when the caller doesn't ask for a count.
const DefaultResultCount = 5

// queryParallelism bounds concurrent provider calls in one batch.
const queryParallelism = 3

// Query is one web-search request.
type Query struct {
	Query          string   `json:"query"`
	Count          int      `json:"numResults,omitempty"`
	Type           string   `json:"type,omitempty"` // auto | instant | deep
	Category       string   `json:"category,omitempty"`
	IncludeDomains []string `json:"includeDomains,omitempty"`
	ExcludeDomains []string `json:"excludeDomains,omitempty"`
}

// Search runs one web search. The provider contract requires a results
// array even when empty; its absence is reported as a malformed
// response rather than coerced to "no results".
func (c *Client) Search(ctx context.Context, q Query) ([]Result, string, error) {
	if q.Count <= 0 {
		q.Count = DefaultResultCount
	}
	var payload struct {
		Answer  string    `json:"answer"`
		Results *[]Result `json:"results"`
	}
	if err := c.post(ctx, "/search", q, &payload); err != nil {
		return nil, "", fmt.Errorf("search %q: %w", q.Query, err)
	}
	if payload.Results == nil {
		return nil, "", fmt.Errorf("search %q: %w: missing results array", q.Query, ErrMalformedResponse)
	}
	return *payload.Results, payload.Answer, nil
}

// SearchAll runs every query with bounded parallelism and returns one
// QueryResult per input, in input order. Per-item failures are captured
// in the item's Error field.
func (c *Client) SearchAll(ctx context.Context, queries []Query) []QueryResult {
	out := make([]QueryResult, len(queries))
	g := new(errgroup.Group)
	g.SetLimit(queryParallelism)
	for i, q := range queries {
		g.Go(func() error {
			results, answer, err := c.Search(ctx, q)
			qr := QueryResult{Query: q.Query, Answer: answer, Results: results}
			if err != nil {
				qr.Error = err.Error()
			}
			out[i] = qr
			return nil
		})
	}
	g.Wait()
	return out
}
