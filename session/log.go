// Package session holds the process-wide session machinery: a durable
// SQLite event log that lets stored results survive a session
// save/restore cycle, and a registry of in-flight cancellation handles
// swept on session boundaries.
package session

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hazyhaar/recolte/idgen"
)

// KindResult tags event rows written by recolte tools; restoration
// filters on it so foreign entries in a shared log are ignored.
const KindResult = "recolte_result"

// Schema for the session_events table. Call Log.Init() or apply via
// dbopen.WithSchema.
const Schema = `
CREATE TABLE IF NOT EXISTS session_events (
	id         TEXT PRIMARY KEY,
	session_id TEXT NOT NULL,
	kind       TEXT NOT NULL,
	payload    TEXT NOT NULL,
	created_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_session_events_lookup
	ON session_events(session_id, kind, created_at);
`

// Log appends tagged entries to the session event table and reads them
// back on session start/switch.
type Log struct {
	db    *sql.DB
	newID idgen.Generator
}

// NewLog creates a Log backed by the given database.
func NewLog(db *sql.DB) *Log {
	return &Log{
		db:    db,
		newID: idgen.Prefixed("evt_", idgen.UUIDv7()),
	}
}

// Init creates the session_events table if it doesn't exist.
func (l *Log) Init() error {
	_, err := l.db.Exec(Schema)
	return err
}

// Append records one tool-result payload for the session. Errors are
// returned, not logged; the caller decides whether durability failure is
// worth surfacing (it never blocks the tool result itself).
func (l *Log) Append(ctx context.Context, sessionID string, payload []byte) error {
	_, err := l.db.ExecContext(ctx,
		`INSERT INTO session_events (id, session_id, kind, payload, created_at) VALUES (?,?,?,?,?)`,
		l.newID(), sessionID, KindResult, string(payload), time.Now().UnixMilli())
	if err != nil {
		return fmt.Errorf("session log append: %w", err)
	}
	return nil
}

// History binds the log to one session id and satisfies the result
// store's restoration interface.
func (l *Log) History(sessionID string) *History {
	return &History{log: l, sessionID: sessionID}
}

// History reads one session's tool-result entries, oldest first.
type History struct {
	log       *Log
	sessionID string
}

// ToolResults returns the raw payloads of this session's recolte
// entries in chronological order.
func (h *History) ToolResults(ctx context.Context) ([]json.RawMessage, error) {
	rows, err := h.log.db.QueryContext(ctx,
		`SELECT payload FROM session_events WHERE session_id = ? AND kind = ? ORDER BY created_at ASC`,
		h.sessionID, KindResult)
	if err != nil {
		return nil, fmt.Errorf("session log read: %w", err)
	}
	defer rows.Close()

	var out []json.RawMessage
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, err
		}
		out = append(out, json.RawMessage(payload))
	}
	return out, rows.Err()
}
