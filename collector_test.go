package main

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"pingmon/monitor"
)

func TestCollectorEmptyLedger(t *testing.T) {
	c := newPingCollector("192.0.2.1", monitor.NewLedger(0))

	// only the packet gauges are emitted when nothing was measured
	if got := testutil.CollectAndCount(c); got != 3 {
		t.Errorf("expected 3 samples from an empty ledger, got %d", got)
	}
}

func TestCollectorAllFailures(t *testing.T) {
	l := monitor.NewLedger(0)
	now := time.Now()
	for i := 0; i < 5; i++ {
		l.Append(monitor.Outcome{Timestamp: now.Add(time.Duration(i) * time.Second), Success: false})
	}

	c := newPingCollector("192.0.2.1", l)
	c.now = func() time.Time { return now.Add(5 * time.Second) }

	// packets and loss per window, no rtt series without a single reply
	if got := testutil.CollectAndCount(c); got != 6 {
		t.Errorf("expected 6 samples for loss-only data, got %d", got)
	}
}

func TestCollectorFullData(t *testing.T) {
	l := monitor.NewLedger(0)
	now := time.Now()
	for i := 0; i < 5; i++ {
		rtt := 10.0 + float64(i)
		l.Append(monitor.Outcome{Timestamp: now.Add(time.Duration(i) * time.Second), RTT: &rtt, Success: true})
	}

	c := newPingCollector("192.0.2.1", l)
	c.now = func() time.Time { return now.Add(5 * time.Second) }

	// per window: packets, loss and six rtt types
	if got := testutil.CollectAndCount(c); got != 24 {
		t.Errorf("expected 24 samples, got %d", got)
	}

	if got := testutil.CollectAndCount(c, "pingmon_rtt_milliseconds"); got != 18 {
		t.Errorf("expected 18 rtt samples, got %d", got)
	}
}

func TestWindowLabel(t *testing.T) {
	for _, tc := range []struct {
		window time.Duration
		want   string
	}{
		{10 * time.Second, "10s"},
		{time.Minute, "60s"},
		{5 * time.Minute, "300s"},
	} {
		if got := windowLabel(tc.window); got != tc.want {
			t.Errorf("windowLabel(%v) = %q, want %q", tc.window, got, tc.want)
		}
	}
}
