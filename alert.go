package main

import (
	"fmt"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"pingmon/monitor"
)

// alerter watches the one minute window and logs when loss or latency cross
// their thresholds. Transitions log exactly once; steady state stays quiet.
// Thresholds of zero disable the respective check.
type alerter struct {
	mu sync.Mutex

	lossThreshold float64 // percent
	rttThreshold  float64 // milliseconds
	window        time.Duration

	degraded   bool
	lastChange time.Time
}

func newAlerter(lossThreshold float64, rttThreshold time.Duration) *alerter {
	return &alerter{
		lossThreshold: lossThreshold,
		rttThreshold:  float64(rttThreshold) / float64(time.Millisecond),
		window:        time.Minute,
	}
}

// SetThresholds applies new limits; called by the config hot reload.
func (a *alerter) SetThresholds(lossThreshold float64, rttThreshold time.Duration) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.lossThreshold = lossThreshold
	a.rttThreshold = float64(rttThreshold) / float64(time.Millisecond)
}

// Report implements monitor.Reporter.
func (a *alerter) Report(target string, now time.Time, windows []monitor.WindowStats) {
	a.mu.Lock()
	defer a.mu.Unlock()

	ws, ok := pickWindow(windows, a.window)
	if !ok || ws.TotalPackets == 0 {
		// nothing measured yet, nothing to judge
		return
	}

	breach, reason := a.evaluate(ws)
	switch {
	case breach && !a.degraded:
		a.degraded = true
		a.lastChange = now
		log.Warnf("[ TARGET_FAIL ] %s: %s", target, reason)
	case !breach && a.degraded:
		a.degraded = false
		log.Infof("[ TARGET_RECOVER ] %s: below thresholds again (degraded for %v)",
			target, now.Sub(a.lastChange).Round(time.Second))
		a.lastChange = now
	}
}

func (a *alerter) evaluate(ws monitor.WindowStats) (bool, string) {
	if a.lossThreshold > 0 && ws.PacketLoss != nil && *ws.PacketLoss >= a.lossThreshold {
		return true, fmt.Sprintf("packet loss %.1f%% at or above threshold %.1f%%", *ws.PacketLoss, a.lossThreshold)
	}
	if a.rttThreshold > 0 && ws.RTTAvg != nil && *ws.RTTAvg >= a.rttThreshold {
		return true, fmt.Sprintf("avg rtt %.2fms at or above threshold %.2fms", *ws.RTTAvg, a.rttThreshold)
	}
	return false, ""
}

func pickWindow(windows []monitor.WindowStats, d time.Duration) (monitor.WindowStats, bool) {
	for _, ws := range windows {
		if ws.Window == d {
			return ws, true
		}
	}
	return monitor.WindowStats{}, false
}
