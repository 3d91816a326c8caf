// Package monitor contains the windowed statistics engine: a time-ordered
// ledger of probe outcomes with bounded retention, stateless aggregation
// over trailing windows, and the loop that drives probing and reporting.
package monitor

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
)

// Prober produces one probe outcome per call. Implementations bound every
// call by their configured timeout and fold ordinary failures (timeout,
// unreachable, unparseable output) into the outcome instead of returning an
// error.
type Prober interface {
	Probe(ctx context.Context) Outcome
}

// Reporter consumes periodic window statistics. The monitor calls it at
// least once per report interval with the resolved target, the current wall
// clock and one entry per configured window, including windows that are
// still empty.
type Reporter interface {
	Report(target string, now time.Time, windows []WindowStats)
}

// ReporterFunc adapts a function to the Reporter interface.
type ReporterFunc func(target string, now time.Time, windows []WindowStats)

// Report calls f.
func (f ReporterFunc) Report(target string, now time.Time, windows []WindowStats) {
	f(target, now, windows)
}

// Monitor drives the probe/append/report cycle for a single target.
type Monitor struct {
	Target   string
	Prober   Prober
	Ledger   *Ledger
	Reporter Reporter

	// Interval is the pause between consecutive probes. Run refuses to
	// start when it is not positive.
	Interval time.Duration

	// ReportEvery is the minimum spacing between Reporter calls. Zero means
	// once per second.
	ReportEvery time.Duration

	// OnOutcome, when set, observes every outcome right after it was
	// appended to the ledger (verbose rendering, session recording).
	OnOutcome func(Outcome)
}

// New creates a monitor feeding the given ledger.
func New(target string, p Prober, l *Ledger, r Reporter, interval time.Duration) *Monitor {
	return &Monitor{
		Target:   target,
		Prober:   p,
		Ledger:   l,
		Reporter: r,
		Interval: interval,
	}
}

// Run executes the monitoring loop until ctx is cancelled: probe, append,
// report when due, sleep. It returns nil on cancellation; the only error it
// can return is an invalid configuration, detected before the first probe.
// Probe failures never terminate the loop, they enter the ledger as
// unsuccessful outcomes.
func (m *Monitor) Run(ctx context.Context) error {
	if m.Interval <= 0 {
		return fmt.Errorf("probe interval must be positive, got %v", m.Interval)
	}

	reportEvery := m.ReportEvery
	if reportEvery <= 0 {
		reportEvery = time.Second
	}

	timer := time.NewTimer(m.Interval)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	log.Debugf("monitor started (target=%s, interval=%v)", m.Target, m.Interval)
	defer log.Debugf("monitor stopped (target=%s)", m.Target)

	var lastReport time.Time
	for {
		if ctx.Err() != nil {
			return nil
		}

		o := m.Prober.Probe(ctx)
		m.Ledger.Append(o)
		if m.OnOutcome != nil {
			m.OnOutcome(o)
		}

		if now := time.Now(); now.Sub(lastReport) >= reportEvery {
			m.report(now)
			lastReport = now
		}

		timer.Reset(m.Interval)
		select {
		case <-ctx.Done():
			return nil
		case <-timer.C:
		}
	}
}

func (m *Monitor) report(now time.Time) {
	if m.Reporter == nil {
		return
	}

	windows := make([]WindowStats, 0, len(Windows))
	for _, w := range Windows {
		windows = append(windows, Compute(m.Ledger, w, now))
	}
	m.Reporter.Report(m.Target, now, windows)
}
