package main

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"pingmon/monitor"
)

func fptr(v float64) *float64 { return &v }

func TestFormatWindow(t *testing.T) {
	tests := []struct {
		name     string
		ws       monitor.WindowStats
		expected string
	}{
		{
			name:     "no data",
			ws:       monitor.WindowStats{Window: 10 * time.Second},
			expected: "  10 sec: No data",
		},
		{
			name: "all probes failed",
			ws: monitor.WindowStats{
				Window:       time.Minute,
				PacketLoss:   fptr(100),
				TotalPackets: 12,
			},
			expected: "   1 min: 100.0% loss (12 packets)",
		},
		{
			name: "full statistics",
			ws: monitor.WindowStats{
				Window:       5 * time.Minute,
				RTTAvg:       fptr(20.5),
				RTTMin:       fptr(10),
				RTTMax:       fptr(31.25),
				Jitter:       fptr(4.75),
				PacketLoss:   fptr(2.5),
				TotalPackets: 2400,
			},
			expected: "   5 min: RTT avg= 20.50ms min= 10.00ms max= 31.25ms jitter=  4.75ms loss=  2.5% (2,400 packets)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := formatWindow(tt.ws); got != tt.expected {
				t.Errorf("formatWindow() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestWindowName(t *testing.T) {
	tests := []struct {
		in       time.Duration
		expected string
	}{
		{10 * time.Second, "10 sec"},
		{time.Minute, "1 min"},
		{5 * time.Minute, "5 min"},
		{2 * time.Hour, "2 hr"},
	}

	for _, tt := range tests {
		if got := windowName(tt.in); got != tt.expected {
			t.Errorf("windowName(%v) = %q, want %q", tt.in, got, tt.expected)
		}
	}
}

func TestPacketLine(t *testing.T) {
	d := &consoleDisplay{addr: "192.0.2.1"}
	ts := time.Date(2024, 6, 1, 12, 30, 45, 0, time.UTC)

	{
		o := monitor.Outcome{Timestamp: ts, RTT: fptr(6.2), Success: true}
		if expected := "[12:30:45] ✓ 192.0.2.1:   6.20ms"; d.packetLine(o) != expected {
			t.Errorf("packetLine() = %q, want %q", d.packetLine(o), expected)
		}
	}

	{
		o := monitor.Outcome{Timestamp: ts, Success: true}
		if got := d.packetLine(o); !strings.Contains(got, "✓") || !strings.Contains(got, "without parseable time") {
			t.Errorf("unexpected line for untimed success: %q", got)
		}
	}

	{
		o := monitor.Outcome{Timestamp: ts, Success: false}
		if expected := "[12:30:45] ✗ 192.0.2.1: FAILED"; d.packetLine(o) != expected {
			t.Errorf("packetLine() = %q, want %q", d.packetLine(o), expected)
		}
	}
}

func TestDisplayReport(t *testing.T) {
	var buf bytes.Buffer
	d := &consoleDisplay{
		w:        &buf,
		host:     "example.com",
		addr:     "192.0.2.1",
		interval: 100 * time.Millisecond,
		verbose:  false,
		isTTY:    false,
	}

	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	windows := []monitor.WindowStats{
		{Window: 10 * time.Second},
		{Window: time.Minute},
		{Window: 5 * time.Minute},
	}

	d.Report("192.0.2.1", now, windows)
	out := buf.String()

	for _, want := range []string{
		"Ping Monitor - Target: example.com (192.0.2.1)",
		"Interval: 100ms",
		"Time: 2024-06-01 12:00:00",
		"  10 sec: No data",
		"   1 min: No data",
		"   5 min: No data",
		"Press Ctrl+C to stop",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("report output missing %q:\n%s", want, out)
		}
	}

	if strings.Contains(out, "\033[2J") {
		t.Error("non-TTY output must not contain escape sequences")
	}
	if strings.Contains(out, "Verbose mode") {
		t.Error("non-verbose output must not mention verbose mode")
	}

	buf.Reset()
	d.verbose = true
	d.Report("192.0.2.1", now, windows)
	if out := buf.String(); !strings.Contains(out, "Verbose mode: ON") {
		t.Error("verbose output should mention verbose mode")
	}
}
