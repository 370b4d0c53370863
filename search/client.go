package search

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"
)

// DefaultBaseURL is the provider endpoint; override for testing or a
// self-hosted gateway.
const DefaultBaseURL = "https://api.exa.ai"

// Sentinel errors callers can test with errors.Is. A missing credential
// is a configuration problem, a malformed response is a contract
// violation by a reachable provider; neither should be mistaken for a
// transport failure.
var (
	ErrMissingCredential = errors.New("search provider credential not configured")
	ErrMalformedResponse = errors.New("malformed search provider response")
)

// Config configures a provider Client.
type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
	Logger  *slog.Logger
}

func (c *Config) defaults() {
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	if c.Timeout <= 0 {
		c.Timeout = 30 * time.Second
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// Client talks to the external search provider. It covers both plain
// web search and the code-context endpoint.
type Client struct {
	config Config
	client *http.Client
}

// NewClient creates a Client. A missing API key is not an error here;
// each call reports ErrMissingCredential so the configuration problem
// surfaces with query context attached.
func NewClient(cfg Config) *Client {
	cfg.defaults()
	return &Client{config: cfg, client: &http.Client{}}
}

// post sends a JSON request and decodes the response body into out,
// classifying failures per the taxonomy above.
func (c *Client) post(ctx context.Context, path string, body any, out any) error {
	if c.config.APIKey == "" {
		return ErrMissingCredential
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.config.APIKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("search provider request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 10<<20))
	if err != nil {
		return fmt.Errorf("read provider response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("search provider: HTTP %d %s", resp.StatusCode, http.StatusText(resp.StatusCode))
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return nil
}

// TokenBudget is a code-context token budget: a positive integer or
// the sentinel "dynamic" that lets the provider size the answer.
const DynamicTokens = "dynamic"

// ValidTokenBudget reports whether s is DynamicTokens or a positive
// integer string.
func ValidTokenBudget(s string) bool {
	if s == DynamicTokens {
		return true
	}
	n, err := strconv.Atoi(s)
	return err == nil && n > 0
}
