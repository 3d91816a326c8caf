package main

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"pingmon/monitor"
)

const prefix = "pingmon_"

var (
	labelNames  = []string{"target", "window"}
	rttDesc     = prometheus.NewDesc(prefix+"rtt_milliseconds", "Round trip time in milliseconds", append(labelNames, "type"), nil)
	lossDesc    = prometheus.NewDesc(prefix+"loss_percent", "Packet loss in percent", labelNames, nil)
	packetsDesc = prometheus.NewDesc(prefix+"packets_in_window", "Probes recorded in the window", labelNames, nil)
)

type pingCollector struct {
	target string
	ledger *monitor.Ledger
	now    func() time.Time
}

func newPingCollector(target string, ledger *monitor.Ledger) *pingCollector {
	return &pingCollector{
		target: target,
		ledger: ledger,
		now:    time.Now,
	}
}

func (p *pingCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- rttDesc
	ch <- lossDesc
	ch <- packetsDesc
}

func (p *pingCollector) Collect(ch chan<- prometheus.Metric) {
	now := p.now()

	for _, w := range monitor.Windows {
		ws := monitor.Compute(p.ledger, w, now)
		l := []string{p.target, windowLabel(w)}

		ch <- prometheus.MustNewConstMetric(packetsDesc, prometheus.GaugeValue, float64(ws.TotalPackets), l...)

		if ws.PacketLoss != nil {
			ch <- prometheus.MustNewConstMetric(lossDesc, prometheus.GaugeValue, *ws.PacketLoss, l...)
		}

		for _, m := range []struct {
			kind  string
			value *float64
		}{
			{"avg", ws.RTTAvg},
			{"min", ws.RTTMin},
			{"max", ws.RTTMax},
			{"jitter", ws.Jitter},
			{"p95", ws.RTTP95},
			{"p99", ws.RTTP99},
		} {
			if m.value != nil {
				ch <- prometheus.MustNewConstMetric(rttDesc, prometheus.GaugeValue, *m.value, append(l, m.kind)...)
			}
		}
	}
}

func windowLabel(w time.Duration) string {
	return fmt.Sprintf("%ds", int(w.Seconds()))
}
