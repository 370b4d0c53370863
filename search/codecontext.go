package search

import (
	"context"
	"fmt"
	"strconv"
)

// Context asks the provider's code-context endpoint for a markdown
// answer sized to the given token budget ("dynamic" or a positive
// integer string).
func (c *Client) Context(ctx context.Context, query, tokens string) (string, error) {
	if tokens == "" {
		tokens = DynamicTokens
	}
	if !ValidTokenBudget(tokens) {
		return "", fmt.Errorf("invalid token budget %q: want a positive integer or %q", tokens, DynamicTokens)
	}

	// The API takes either the literal sentinel or a JSON number.
	var budget any = tokens
	if tokens != DynamicTokens {
		n, _ := strconv.Atoi(tokens)
		budget = n
	}

	req := map[string]any{
		"query":     query,
		"tokensNum": budget,
	}
	var payload struct {
		Content *string `json:"response"`
	}
	if err := c.post(ctx, "/context", req, &payload); err != nil {
		return "", fmt.Errorf("code context %q: %w", query, err)
	}
	if payload.Content == nil || *payload.Content == "" {
		return "", fmt.Errorf("code context %q: %w: missing response body", query, ErrMalformedResponse)
	}
	return *payload.Content, nil
}
