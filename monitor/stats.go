package monitor

import (
	"time"

	"github.com/montanaflynn/stats"
)

// Windows are the trailing durations rendered by the display and exported
// over the metrics endpoint.
var Windows = []time.Duration{10 * time.Second, time.Minute, 5 * time.Minute}

// WindowStats is the aggregate over one trailing window.
//
// Numeric fields are pointers so that "no data" stays distinguishable from a
// zero measurement: every field is nil for an empty window, and the RTT
// fields are nil when the window holds only failures (PacketLoss is then
// 100). Jitter is the sample standard deviation of the RTTs, 0 for a single
// sample.
type WindowStats struct {
	Window       time.Duration
	RTTAvg       *float64
	RTTMin       *float64
	RTTMax       *float64
	Jitter       *float64
	RTTP95       *float64
	RTTP99       *float64
	PacketLoss   *float64
	TotalPackets int
}

// Compute aggregates all outcomes inside the trailing window ending at now.
// It is a pure function of the ledger contents and does not mutate them.
func Compute(l *Ledger, window time.Duration, now time.Time) WindowStats {
	ws := WindowStats{Window: window}

	outcomes := l.Snapshot(now.Add(-window))
	ws.TotalPackets = len(outcomes)
	if ws.TotalPackets == 0 {
		return ws
	}

	rtts := make([]float64, 0, len(outcomes))
	for _, o := range outcomes {
		if o.Success && o.RTT != nil {
			rtts = append(rtts, *o.RTT)
		}
	}

	loss := float64(ws.TotalPackets-len(rtts)) / float64(ws.TotalPackets) * 100.0
	ws.PacketLoss = &loss
	if len(rtts) == 0 {
		return ws
	}

	ws.RTTAvg = statPtr(stats.Mean(rtts))
	ws.RTTMin = statPtr(stats.Min(rtts))
	ws.RTTMax = statPtr(stats.Max(rtts))
	ws.RTTP95 = statPtr(stats.Percentile(rtts, 95))
	ws.RTTP99 = statPtr(stats.Percentile(rtts, 99))

	// The sample standard deviation is undefined for a single value; report
	// zero jitter in that case.
	jitter := 0.0
	if len(rtts) > 1 {
		if p := statPtr(stats.StandardDeviationSample(rtts)); p != nil {
			jitter = *p
		}
	}
	ws.Jitter = &jitter

	return ws
}

func statPtr(v float64, err error) *float64 {
	if err != nil {
		return nil
	}
	return &v
}
