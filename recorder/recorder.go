// Package recorder persists probe outcomes to SQLite so a monitoring
// session can be summarized and charted after the fact.
package recorder

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"pingmon/monitor"
)

const schema = `
CREATE TABLE IF NOT EXISTS sessions (
	id         TEXT PRIMARY KEY,
	target     TEXT NOT NULL,
	started_at TIMESTAMP NOT NULL,
	ended_at   TIMESTAMP
);

CREATE TABLE IF NOT EXISTS outcomes (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	session_id TEXT NOT NULL REFERENCES sessions(id),
	ts         TIMESTAMP NOT NULL,
	success    INTEGER NOT NULL,
	rtt_ms     REAL
);

CREATE INDEX IF NOT EXISTS idx_outcomes_session_ts ON outcomes(session_id, ts);
`

// Recorder archives the outcomes of monitoring sessions in a SQLite file.
// One Recorder writes at most one session at a time.
type Recorder struct {
	db      *sql.DB
	session string
}

// Open opens or creates the database at path and prepares the schema.
func Open(path string) (*Recorder, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("recorder: mkdir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("recorder: open: %w", err)
	}

	// modernc sqlite serializes writes; a single connection avoids
	// SQLITE_BUSY between the monitor writer and summary reads.
	db.SetMaxOpenConns(1)

	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("recorder: %s: %w", pragma, err)
		}
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("recorder: schema: %w", err)
	}

	return &Recorder{db: db}, nil
}

// Begin creates a new session for target and makes it the recording target.
func (r *Recorder) Begin(target string) (string, error) {
	id := uuid.NewString()
	_, err := r.db.Exec(
		"INSERT INTO sessions (id, target, started_at) VALUES (?, ?, ?)",
		id, target, time.Now(),
	)
	if err != nil {
		return "", fmt.Errorf("recorder: begin session: %w", err)
	}

	r.session = id
	return id, nil
}

// Record stores one outcome under the current session.
func (r *Recorder) Record(o monitor.Outcome) error {
	if r.session == "" {
		return errors.New("recorder: no open session")
	}

	var rtt sql.NullFloat64
	if o.RTT != nil {
		rtt = sql.NullFloat64{Float64: *o.RTT, Valid: true}
	}

	_, err := r.db.Exec(
		"INSERT INTO outcomes (session_id, ts, success, rtt_ms) VALUES (?, ?, ?, ?)",
		r.session, o.Timestamp, o.Success, rtt,
	)
	if err != nil {
		return fmt.Errorf("recorder: record: %w", err)
	}
	return nil
}

// End stamps the current session as finished.
func (r *Recorder) End() error {
	if r.session == "" {
		return nil
	}

	_, err := r.db.Exec(
		"UPDATE sessions SET ended_at = ? WHERE id = ?",
		time.Now(), r.session,
	)
	if err != nil {
		return fmt.Errorf("recorder: end session: %w", err)
	}
	return nil
}

// Close closes the underlying database.
func (r *Recorder) Close() error {
	return r.db.Close()
}

// SessionID returns the id of the session currently being recorded, or the
// empty string when Begin has not been called.
func (r *Recorder) SessionID() string {
	return r.session
}
