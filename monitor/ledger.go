package monitor

import (
	"sync"
	"time"
)

// Horizon is the maximum age of retained outcomes. Anything older than the
// newest outcome minus Horizon is evicted on append.
const Horizon = 5 * time.Minute

// Outcome is the result of a single probe.
//
// RTT is the round trip time in milliseconds. It is only set when the probe
// succeeded and a time could be extracted from it; a successful probe whose
// output yielded no parseable time keeps RTT nil, and a failed probe never
// carries one.
type Outcome struct {
	Timestamp time.Time
	RTT       *float64
	Success   bool
}

// Ledger is an append-only, time-ordered store of probe outcomes.
//
// The monitor loop is the sole writer and must append with non-decreasing
// timestamps. Readers on other goroutines (the metrics collector, the
// shutdown summary) use Snapshot, which copies under a read lock and
// releases it before the caller sees the data.
type Ledger struct {
	mu       sync.RWMutex
	horizon  time.Duration
	outcomes []Outcome
}

// NewLedger creates an empty ledger. A non-positive horizon falls back to
// the default Horizon.
func NewLedger(horizon time.Duration) *Ledger {
	if horizon <= 0 {
		horizon = Horizon
	}
	return &Ledger{horizon: horizon}
}

// Append adds an outcome at the tail, then drops entries from the head that
// fell out of the retention horizon measured against the newest timestamp.
func (l *Ledger) Append(o Outcome) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.outcomes = append(l.outcomes, o)

	cutoff := o.Timestamp.Add(-l.horizon)
	i := 0
	for i < len(l.outcomes) && l.outcomes[i].Timestamp.Before(cutoff) {
		i++
	}
	if i > 0 {
		// reslice only; the next append past capacity reallocates and
		// leaves the evicted prefix behind
		l.outcomes = l.outcomes[i:]
	}
}

// Snapshot returns a copy of all retained outcomes with a timestamp at or
// after since, in chronological order. It never mutates the ledger.
func (l *Ledger) Snapshot(since time.Time) []Outcome {
	l.mu.RLock()
	defer l.mu.RUnlock()

	i := 0
	for i < len(l.outcomes) && l.outcomes[i].Timestamp.Before(since) {
		i++
	}

	out := make([]Outcome, len(l.outcomes)-i)
	copy(out, l.outcomes[i:])
	return out
}

// Len returns the number of currently retained outcomes.
func (l *Ledger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.outcomes)
}
