package resultstore

import (
	"context"
	"encoding/json"
	"time"
)

// RestoreMaxAge is the staleness cutoff applied at restoration time.
// Older entries are from a working context the agent has likely moved
// past; re-hydrating them would only pollute retrieval listings.
const RestoreMaxAge = time.Hour

// HistorySource yields this tool's tagged entries from a durable session
// event log, oldest first.
type HistorySource interface {
	ToolResults(ctx context.Context) ([]json.RawMessage, error)
}

// RestoreFromSession re-populates the store from a session history
// collaborator. Each entry is validated against the type-shape invariant
// and the age cutoff; malformed or stale entries are skipped silently.
// Inserting oldest-first preserves recency order, and the usual capacity
// eviction applies. Returns the number of entries restored.
func (s *Store) RestoreFromSession(ctx context.Context, src HistorySource) (int, error) {
	entries, err := src.ToolResults(ctx)
	if err != nil {
		return 0, err
	}

	cutoff := time.Now().Add(-RestoreMaxAge)
	restored := 0

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, raw := range entries {
		var r Result
		if err := json.Unmarshal(raw, &r); err != nil {
			continue
		}
		if r.ID == "" || !r.Valid() {
			continue
		}
		if r.Timestamp.Before(cutoff) {
			continue
		}
		s.put(&r)
		restored++
	}
	return restored, nil
}
