package recorder

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Summary aggregates one recorded session. RTT fields are nil when the
// session holds no timed outcomes.
type Summary struct {
	SessionID string
	Target    string
	StartedAt time.Time
	EndedAt   time.Time
	Total     int
	Lost      int
	LossPct   float64
	RTTAvg    *float64
	RTTMin    *float64
	RTTMax    *float64
}

// Sample is one recorded outcome, as stored.
type Sample struct {
	Timestamp time.Time
	RTT       *float64
	Success   bool
}

// LatestSession returns the id of the most recently started session.
func (r *Recorder) LatestSession() (string, error) {
	var id string
	err := r.db.QueryRow("SELECT id FROM sessions ORDER BY started_at DESC LIMIT 1").Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return "", errors.New("recorder: no recorded sessions")
	}
	if err != nil {
		return "", fmt.Errorf("recorder: latest session: %w", err)
	}
	return id, nil
}

// Summarize computes the aggregate over one recorded session. Loss follows
// the live statistics: outcomes without a stored RTT count as lost.
func (r *Recorder) Summarize(sessionID string) (Summary, error) {
	s := Summary{SessionID: sessionID}

	var ended sql.NullTime
	err := r.db.QueryRow(
		"SELECT target, started_at, ended_at FROM sessions WHERE id = ?",
		sessionID,
	).Scan(&s.Target, &s.StartedAt, &ended)
	if errors.Is(err, sql.ErrNoRows) {
		return Summary{}, fmt.Errorf("recorder: unknown session %q", sessionID)
	}
	if err != nil {
		return Summary{}, fmt.Errorf("recorder: session: %w", err)
	}

	var withRTT int
	var avg, min, max sql.NullFloat64
	err = r.db.QueryRow(
		`SELECT COUNT(id), COUNT(rtt_ms), AVG(rtt_ms), MIN(rtt_ms), MAX(rtt_ms)
		 FROM outcomes WHERE session_id = ?`,
		sessionID,
	).Scan(&s.Total, &withRTT, &avg, &min, &max)
	if err != nil {
		return Summary{}, fmt.Errorf("recorder: summarize: %w", err)
	}

	s.Lost = s.Total - withRTT
	if s.Total > 0 {
		s.LossPct = float64(s.Lost) / float64(s.Total) * 100.0
	}
	s.RTTAvg = nullableFloat(avg)
	s.RTTMin = nullableFloat(min)
	s.RTTMax = nullableFloat(max)

	switch {
	case ended.Valid:
		s.EndedAt = ended.Time
	default:
		// session without an end stamp (crash, still running): fall back
		// to its last recorded outcome
		if last, err := r.lastOutcome(sessionID); err == nil {
			s.EndedAt = last
		}
	}

	return s, nil
}

// Samples returns all outcomes of a session in chronological order.
func (r *Recorder) Samples(sessionID string) ([]Sample, error) {
	rows, err := r.db.Query(
		"SELECT ts, success, rtt_ms FROM outcomes WHERE session_id = ? ORDER BY ts",
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("recorder: samples: %w", err)
	}
	defer rows.Close()

	var samples []Sample
	for rows.Next() {
		var s Sample
		var rtt sql.NullFloat64
		if err := rows.Scan(&s.Timestamp, &s.Success, &rtt); err != nil {
			return nil, fmt.Errorf("recorder: scan sample: %w", err)
		}
		s.RTT = nullableFloat(rtt)
		samples = append(samples, s)
	}

	return samples, rows.Err()
}

func (r *Recorder) lastOutcome(sessionID string) (time.Time, error) {
	var ts time.Time
	err := r.db.QueryRow(
		"SELECT ts FROM outcomes WHERE session_id = ? ORDER BY ts DESC LIMIT 1",
		sessionID,
	).Scan(&ts)
	return ts, err
}

func nullableFloat(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}
