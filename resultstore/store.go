// Package resultstore holds the results of completed tool calls so the
// agent can retrieve truncated content later by id. The store is a
// bounded, access-ordered (true LRU) cache: a re-read result stays warm
// while colder ones are evicted, matching how agents re-examine the same
// large document repeatedly.
package resultstore

import (
	"container/list"
	"sync"
	"time"

	"github.com/hazyhaar/recolte/fetch"
	"github.com/hazyhaar/recolte/idgen"
	"github.com/hazyhaar/recolte/search"
)

// Capacity is the fixed entry budget. Agent sessions run arbitrarily
// long; unbounded retention would leak memory.
const Capacity = 50

// Result type tags. Exactly one payload field is populated, selected by
// Type; the retrieval path trusts this invariant and Store validation is
// its sole writer.
const (
	TypeSearch  = "search"
	TypeFetch   = "fetch"
	TypeContext = "context"
)

// Result is the unit held by the store and appended to the session log.
type Result struct {
	ID        string                `json:"id"`
	Type      string                `json:"type"`
	Timestamp time.Time             `json:"timestamp"`
	Queries   []search.QueryResult  `json:"queries,omitempty"`
	URLs      []fetch.Extracted     `json:"urls,omitempty"`
	Context   *search.ContextResult `json:"context,omitempty"`
}

// Valid reports whether the type tag agrees with the populated payload.
func (r *Result) Valid() bool {
	switch r.Type {
	case TypeSearch:
		return len(r.Queries) > 0
	case TypeFetch:
		return len(r.URLs) > 0
	case TypeContext:
		return r.Context != nil
	default:
		return false
	}
}

// Store is a bounded LRU cache of tool results. Safe for concurrent use
// by overlapping tool invocations.
type Store struct {
	mu    sync.Mutex
	order *list.List // front = most recently used
	byID  map[string]*list.Element
	newID idgen.Generator
}

// New creates an empty Store.
func New() *Store {
	return &Store{
		order: list.New(),
		byID:  make(map[string]*list.Element),
		newID: idgen.Default,
	}
}

// GenerateID produces a result id: time prefix + random suffix. Unique
// with overwhelming probability; a collision simply overwrites.
func (s *Store) GenerateID() string {
	return s.newID()
}

// Put inserts or replaces the entry under r.ID and marks it most
// recently used, then evicts least-recently-used entries until the store
// is back within capacity.
func (s *Store) Put(r *Result) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.put(r)
}

func (s *Store) put(r *Result) {
	if el, ok := s.byID[r.ID]; ok {
		el.Value = r
		s.order.MoveToFront(el)
	} else {
		s.byID[r.ID] = s.order.PushFront(r)
	}
	for s.order.Len() > Capacity {
		oldest := s.order.Back()
		s.order.Remove(oldest)
		delete(s.byID, oldest.Value.(*Result).ID)
	}
}

// Get returns the entry if present and marks it most recently used.
// A read counts as a use for eviction ordering.
func (s *Store) Get(id string) (*Result, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	el, ok := s.byID[id]
	if !ok {
		return nil, false
	}
	s.order.MoveToFront(el)
	return el.Value.(*Result), true
}

// GetAll returns all entries, most recently used first. Bulk displays
// only; it does not touch recency.
func (s *Store) GetAll() []*Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*Result, 0, s.order.Len())
	for el := s.order.Front(); el != nil; el = el.Next() {
		out = append(out, el.Value.(*Result))
	}
	return out
}

// Delete removes an entry if present, reporting whether it existed.
func (s *Store) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	el, ok := s.byID[id]
	if !ok {
		return false
	}
	s.order.Remove(el)
	delete(s.byID, id)
	return true
}

// Clear empties the store. Called on session shutdown, switch, fork,
// and host shutdown.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.order.Init()
	s.byID = make(map[string]*list.Element)
}

// Len returns the current entry count.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.order.Len()
}
