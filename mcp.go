package recolte

import (
	"context"
	"strconv"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/hazyhaar/recolte/idgen"
	"github.com/hazyhaar/recolte/kit"
	"github.com/hazyhaar/recolte/search"
)

// RegisterMCP registers all enabled recolte tools on an MCP server.
// Toggles are read once here for the tool listing; each endpoint
// re-checks the live config so a later edit takes effect mid-session.
func (s *Service) RegisterMCP(srv *mcp.Server) error {
	cfg, err := s.config.Load()
	if err != nil {
		return err
	}
	if cfg.Tools.SearchEnabled() {
		s.registerSearch(srv)
	}
	if cfg.Tools.FetchEnabled() {
		s.registerFetch(srv)
	}
	if cfg.Tools.CodeContextEnabled() {
		s.registerCodeContext(srv)
	}
	if cfg.Tools.GetContentEnabled() {
		s.registerGetContent(srv)
	}
	return nil
}

func inputSchema(properties map[string]any, required []string) map[string]any {
	s := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		s["required"] = required
	}
	return s
}

func (s *Service) toolEnabled(check func(ToolsConfig) bool) error {
	cfg, err := s.config.Load()
	if err != nil {
		return err
	}
	if !check(cfg.Tools) {
		return ErrToolDisabled
	}
	return nil
}

func decodeArgs(r *mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
	args, err := kit.DecodeArgs(r.Params.Arguments)
	if err != nil {
		return nil, err
	}
	return &kit.MCPDecodeResult{
		Request: args,
		EnrichCtx: func(ctx context.Context) context.Context {
			return kit.WithRequestID(ctx, idgen.New())
		},
	}, nil
}

func (s *Service) registerSearch(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "recolte_search",
		Description: "Web search via the configured provider; results are stored and retrievable later with recolte_get_content",
		InputSchema: inputSchema(map[string]any{
			"queries":         map[string]any{"type": "array", "items": map[string]any{"type": "string"}, "description": "Search queries to run"},
			"count":           map[string]any{"type": "integer", "description": "Results per query (default 5)"},
			"search_type":     map[string]any{"type": "string", "description": "auto, instant, or deep"},
			"category":        map[string]any{"type": "string", "description": "Result category filter"},
			"include_domains": map[string]any{"type": "array", "items": map[string]any{"type": "string"}, "description": "Only these domains"},
			"exclude_domains": map[string]any{"type": "array", "items": map[string]any{"type": "string"}, "description": "Never these domains"},
		}, []string{"queries"}),
	}

	endpoint := func(ctx context.Context, r any) (any, error) {
		if err := s.toolEnabled(ToolsConfig.SearchEnabled); err != nil {
			return nil, err
		}
		args := r.(kit.Args)
		texts, err := args.Strings("queries")
		if err != nil {
			return nil, err
		}
		queries := make([]search.Query, len(texts))
		for i, q := range texts {
			queries[i] = search.Query{
				Query:          q,
				Count:          args.OptInt("count", 0),
				Type:           args.OptString("search_type", ""),
				Category:       args.OptString("category", ""),
				IncludeDomains: args.OptStrings("include_domains"),
				ExcludeDomains: args.OptStrings("exclude_domains"),
			}
		}
		return s.Search(ctx, queries)
	}

	kit.RegisterMCPTool(srv, tool, endpoint, decodeArgs)
}

func (s *Service) registerFetch(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "recolte_fetch",
		Description: "Fetch URLs and return clean markdown; GitHub repository URLs are rendered from a local shallow clone",
		InputSchema: inputSchema(map[string]any{
			"urls":  map[string]any{"type": "array", "items": map[string]any{"type": "string"}, "description": "Absolute http(s) URLs"},
			"force": map[string]any{"type": "boolean", "description": "Clone repositories even above the size threshold"},
		}, []string{"urls"}),
	}

	endpoint := func(ctx context.Context, r any) (any, error) {
		if err := s.toolEnabled(ToolsConfig.FetchEnabled); err != nil {
			return nil, err
		}
		args := r.(kit.Args)
		urls, err := args.Strings("urls")
		if err != nil {
			return nil, err
		}
		return s.Fetch(ctx, urls, args.OptBool("force", false))
	}

	kit.RegisterMCPTool(srv, tool, endpoint, decodeArgs)
}

func (s *Service) registerCodeContext(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "recolte_code_context",
		Description: "Search the code-context provider for API usage and library documentation",
		InputSchema: inputSchema(map[string]any{
			"query":  map[string]any{"type": "string", "description": "What to look up"},
			"tokens": map[string]any{"type": "string", "description": "Token budget: a positive integer or \"dynamic\""},
		}, []string{"query"}),
	}

	endpoint := func(ctx context.Context, r any) (any, error) {
		if err := s.toolEnabled(ToolsConfig.CodeContextEnabled); err != nil {
			return nil, err
		}
		args := r.(kit.Args)
		query, err := args.String("query")
		if err != nil {
			return nil, err
		}
		tokens := args.OptString("tokens", "")
		if tokens == "" {
			// A numeric budget is accepted too.
			if n := args.OptInt("tokens", 0); n > 0 {
				tokens = strconv.Itoa(n)
			}
		}
		return s.CodeContext(ctx, query, tokens)
	}

	kit.RegisterMCPTool(srv, tool, endpoint, decodeArgs)
}

func (s *Service) registerGetContent(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "recolte_get_content",
		Description: "Retrieve a previously stored result (or one item of it) by id, index, query, or url, with optional truncation",
		InputSchema: inputSchema(map[string]any{
			"id":        map[string]any{"type": "string", "description": "Stored result id; omit for the most recent result"},
			"index":     map[string]any{"type": "integer", "description": "Item index within the result"},
			"query":     map[string]any{"type": "string", "description": "Select the item for this query text"},
			"url":       map[string]any{"type": "string", "description": "Select the item for this URL"},
			"max_chars": map[string]any{"type": "integer", "description": "Truncation budget, up to 100000 (default 20000)"},
		}, nil),
	}

	endpoint := func(ctx context.Context, r any) (any, error) {
		if err := s.toolEnabled(ToolsConfig.GetContentEnabled); err != nil {
			return nil, err
		}
		args := r.(kit.Args)
		return s.GetContent(ctx, GetContentRequest{
			ID:       args.OptString("id", ""),
			Index:    args.OptInt("index", -1),
			Query:    args.OptString("query", ""),
			URL:      args.OptString("url", ""),
			MaxChars: args.OptInt("max_chars", 0),
		})
	}

	kit.RegisterMCPTool(srv, tool, endpoint, decodeArgs)
}
