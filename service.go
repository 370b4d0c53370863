// Package recolte is a content-acquisition service for coding-agent
// hosts: web search, URL-to-markdown extraction with a repository
// short-circuit, code-context search, and bounded retrieval of stored
// results — exposed as MCP tools.
package recolte

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/hazyhaar/recolte/fetch"
	"github.com/hazyhaar/recolte/kit"
	"github.com/hazyhaar/recolte/repofetch"
	"github.com/hazyhaar/recolte/resultstore"
	"github.com/hazyhaar/recolte/search"
	"github.com/hazyhaar/recolte/session"
	"github.com/hazyhaar/recolte/spool"
)

// Options wires a Service.
type Options struct {
	ConfigPath string
	// Log is the durable session event log; nil disables durability
	// (results then live only in memory).
	Log       *session.Log
	SessionID string
	SpoolDir  string
	Logger    *slog.Logger
}

// Service owns the process-wide state: the result store, the abort
// registry, the clone cache, the scratch-file spooler, and the provider
// clients.
type Service struct {
	config   *ConfigLoader
	store    *resultstore.Store
	log      *session.Log
	aborts   *session.AbortRegistry
	spooler  *spool.Spooler
	pipeline *fetch.Pipeline
	resolver *repofetch.Resolver
	logger   *slog.Logger

	sessionID string
}

// NewService builds a Service from options plus the loaded config.
func NewService(opts Options) (*Service, error) {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	loader := NewConfigLoader(opts.ConfigPath)
	cfg, err := loader.Load()
	if err != nil {
		return nil, err
	}

	svc := &Service{
		config:  loader,
		store:   resultstore.New(),
		log:     opts.Log,
		aborts:  session.NewAbortRegistry(),
		spooler: spool.NewSpooler(opts.SpoolDir),
		pipeline: fetch.NewPipeline(fetch.Config{
			ReaderBaseURL: cfg.ReaderBaseURL,
			Logger:        opts.Logger,
		}),
		resolver: repofetch.NewResolver(repofetch.ResolverConfig{
			CacheDir:        cfg.CloneDir,
			SizeThresholdMB: cfg.RepoSizeThresholdMB,
			CloneTimeout:    time.Duration(cfg.CloneTimeoutSeconds) * time.Second,
			Logger:          opts.Logger,
		}),
		logger:    opts.Logger,
		sessionID: opts.SessionID,
	}
	return svc, nil
}

// ToolOutput is the structured payload every tool returns to the host:
// the stored result's id for later retrieval, the (possibly offloaded)
// display text, and size metadata.
type ToolOutput struct {
	ID            string `json:"id"`
	Content       string `json:"content"`
	TotalChars    int    `json:"total_chars"`
	OffloadedPath string `json:"offloaded_path,omitempty"`
}

// searchClient builds a provider client from the current config, so a
// credential or endpoint edit is picked up within the config cache TTL.
func (s *Service) searchClient(contextKey bool) *search.Client {
	cfg, err := s.config.Load()
	if err != nil {
		s.logger.Warn("config load failed, using defaults", "error", err)
		cfg = &Config{}
		cfg.defaults()
	}
	key := cfg.SearchAPIKey
	if contextKey {
		key = cfg.ContextAPIKey
	}
	return search.NewClient(search.Config{
		BaseURL: cfg.SearchBaseURL,
		APIKey:  key,
		Logger:  s.logger,
	})
}

// Search runs every query against the web-search provider, stores the
// aggregate, and returns the rendered display.
func (s *Service) Search(ctx context.Context, queries []search.Query) (*ToolOutput, error) {
	ctx, release := s.aborts.Track(ctx)
	defer release()

	results := s.searchClient(false).SearchAll(ctx, queries)
	res := &resultstore.Result{
		ID:        s.store.GenerateID(),
		Type:      resultstore.TypeSearch,
		Timestamp: time.Now(),
		Queries:   results,
	}
	s.finish(ctx, res)
	return s.output(res.ID, renderQueries(results))
}

// Fetch extracts every URL: the repository resolver is consulted first,
// generic extraction runs for whatever it declines. Bounded to the same
// parallelism as the pipeline's own batches.
func (s *Service) Fetch(ctx context.Context, urls []string, force bool) (*ToolOutput, error) {
	ctx, release := s.aborts.Track(ctx)
	defer release()

	extracted := make([]fetch.Extracted, len(urls))
	g := new(errgroup.Group)
	g.SetLimit(fetch.BatchParallelism)
	for i, u := range urls {
		g.Go(func() error {
			if res, ok := s.resolver.Resolve(ctx, u, force); ok {
				extracted[i] = *res
				return nil
			}
			extracted[i] = *s.pipeline.Extract(ctx, u)
			return nil
		})
	}
	g.Wait()

	res := &resultstore.Result{
		ID:        s.store.GenerateID(),
		Type:      resultstore.TypeFetch,
		Timestamp: time.Now(),
		URLs:      extracted,
	}
	s.finish(ctx, res)
	return s.output(res.ID, renderExtracted(extracted))
}

// CodeContext asks the provider's code-context endpoint. Provider
// failures are stored with the query so the agent can inspect them
// later; budget validation errors fail the call outright.
func (s *Service) CodeContext(ctx context.Context, query, tokens string) (*ToolOutput, error) {
	if tokens != "" && !search.ValidTokenBudget(tokens) {
		return nil, fmt.Errorf("invalid tokens value %q: want a positive integer or %q", tokens, search.DynamicTokens)
	}

	ctx, release := s.aborts.Track(ctx)
	defer release()

	cr := search.ContextResult{Query: query}
	content, err := s.searchClient(true).Context(ctx, query, tokens)
	if err != nil {
		cr.Error = err.Error()
	} else {
		cr.Content = content
	}

	res := &resultstore.Result{
		ID:        s.store.GenerateID(),
		Type:      resultstore.TypeContext,
		Timestamp: time.Now(),
		Context:   &cr,
	}
	s.finish(ctx, res)
	return s.output(res.ID, renderContext(&cr))
}

// GetContentRequest selects what to retrieve from a stored result.
// Zero values mean "not specified"; Index uses -1 for unspecified.
type GetContentRequest struct {
	ID       string
	Index    int
	Query    string
	URL      string
	MaxChars int
}

// GetContent re-renders a stored result (or one item of it), truncated
// to the requested budget. Unknown ids and filters raise errors that
// enumerate the valid alternatives.
func (s *Service) GetContent(ctx context.Context, req GetContentRequest) (*ToolOutput, error) {
	res, err := s.lookup(req.ID)
	if err != nil {
		return nil, err
	}

	content, err := selectContent(res, req)
	if err != nil {
		return nil, err
	}

	truncated, _ := spool.Truncate(content, req.MaxChars)
	return &ToolOutput{ID: res.ID, Content: truncated, TotalChars: len([]rune(content))}, nil
}

func (s *Service) lookup(id string) (*resultstore.Result, error) {
	if id == "" {
		all := s.store.GetAll()
		if len(all) == 0 {
			return nil, fmt.Errorf("%w: no results stored yet", ErrNotFound)
		}
		return all[0], nil
	}
	res, ok := s.store.Get(id)
	if !ok {
		return nil, fmt.Errorf("%w: no result with id %q; available ids: %s", ErrNotFound, id, availableIDs(s.store))
	}
	return res, nil
}

// finish stores the result and appends it to the durable session log.
// Durability failures never block the tool result.
func (s *Service) finish(ctx context.Context, res *resultstore.Result) {
	s.store.Put(res)
	s.logger.Debug("result stored", "id", res.ID, "type", res.Type, "request_id", kit.GetRequestID(ctx))
	if s.log == nil {
		return
	}
	payload, err := json.Marshal(res)
	if err != nil {
		s.logger.Warn("result marshal for session log failed", "id", res.ID, "error", err)
		return
	}
	if err := s.log.Append(context.WithoutCancel(ctx), s.sessionID, payload); err != nil {
		s.logger.Warn("session log append failed", "id", res.ID, "error", err)
	}
}

// output offloads oversized display text to a scratch file.
func (s *Service) output(id, display string) (*ToolOutput, error) {
	total := len([]rune(display))
	shown, path, err := s.spooler.Offload(display)
	if err != nil {
		s.logger.Warn("offload failed, returning inline", "id", id, "error", err)
		shown, path = display, ""
	}
	return &ToolOutput{ID: id, Content: shown, TotalChars: total, OffloadedPath: path}, nil
}

// SessionBoundary handles a session switch/fork/restart: abort every
// in-flight call, wipe process state, then restore the new session's
// recent results from the durable log.
func (s *Service) SessionBoundary(ctx context.Context, newSessionID string) {
	s.aborts.AbortAll()
	s.store.Clear()
	s.resolver.Clear()
	s.spooler.Cleanup()
	s.sessionID = newSessionID

	if s.log == nil || newSessionID == "" {
		return
	}
	n, err := s.store.RestoreFromSession(ctx, s.log.History(newSessionID))
	if err != nil {
		s.logger.Warn("session restore failed", "session", newSessionID, "error", err)
		return
	}
	s.logger.Info("session restored", "session", newSessionID, "results", n)
}

// Shutdown aborts in-flight work and removes all scratch state.
func (s *Service) Shutdown() {
	s.aborts.AbortAll()
	s.store.Clear()
	s.resolver.Clear()
	s.spooler.Cleanup()
}

// Store exposes the result store for the admin surface.
func (s *Service) Store() *resultstore.Store { return s.store }

// AbortAll cancels every in-flight tool invocation.
func (s *Service) AbortAll() { s.aborts.AbortAll() }
