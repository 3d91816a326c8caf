package probe

import (
	"context"
	"testing"
	"time"
)

func TestParseRTT(t *testing.T) {
	tests := []struct {
		name    string
		output  string
		wantRTT float64
		wantOK  bool
	}{
		{
			name:    "linux individual response",
			output:  "64 bytes from 8.8.8.8: icmp_seq=1 ttl=118 time=12.3 ms",
			wantRTT: 12.3,
			wantOK:  true,
		},
		{
			name:    "macos individual response",
			output:  "64 bytes from 8.8.8.8: icmp_seq=0 ttl=118 time=44.347 ms",
			wantRTT: 44.347,
			wantOK:  true,
		},
		{
			name:    "bsd summary line",
			output:  "round-trip min/avg/max = 12.3/15.7/19.1 ms",
			wantRTT: 15.7,
			wantOK:  true,
		},
		{
			name:    "windows response",
			output:  "Reply from 8.8.8.8: bytes=32 time=15ms TTL=118",
			wantRTT: 15,
			wantOK:  true,
		},
		{
			name:    "windows sub-millisecond",
			output:  "Reply from 8.8.8.8: bytes=32 time<1ms TTL=118",
			wantRTT: 1,
			wantOK:  true,
		},
		{
			name:   "resolution failure",
			output: "ping: unknown host example.invalid",
			wantOK: false,
		},
		{
			name:   "empty output",
			output: "",
			wantOK: false,
		},
		{
			name: "full transcript",
			output: `PING 8.8.8.8 (8.8.8.8): 56 data bytes
64 bytes from 8.8.8.8: icmp_seq=0 ttl=118 time=44.347 ms

--- 8.8.8.8 ping statistics ---
1 packets transmitted, 1 packets received, 0.0% packet loss
round-trip min/avg/max/stddev = 44.347/44.347/44.347/0.000 ms`,
			wantRTT: 44.347,
			wantOK:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rtt, ok := ParseRTT(tt.output)
			if ok != tt.wantOK {
				t.Fatalf("ParseRTT(%q) ok = %v, want %v", tt.output, ok, tt.wantOK)
			}
			if ok && rtt != tt.wantRTT {
				t.Errorf("ParseRTT(%q) = %v, want %v", tt.output, rtt, tt.wantRTT)
			}
		})
	}
}

func TestExecArgs(t *testing.T) {
	e := &Exec{target: "192.0.2.1", timeout: 250 * time.Millisecond, binary: "ping"}

	args := e.args()
	if got := args[len(args)-1]; got != "192.0.2.1" {
		t.Errorf("expected target as last argument, got %q", got)
	}
	for _, a := range args {
		if a == "-W" || a == "-w" {
			return
		}
	}
	t.Error("expected a timeout flag in the argument list")
}

func TestExecProbe(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping ping integration test in short mode")
	}

	e, err := NewExec("127.0.0.1", 2*time.Second)
	if err != nil {
		t.Skipf("ping binary not available: %v", err)
	}

	o := e.Probe(context.Background())
	t.Logf("probe outcome: success=%v rtt=%v", o.Success, o.RTT)

	if o.Timestamp.IsZero() {
		t.Error("expected outcome timestamp to be set")
	}
	if !o.Success && o.RTT != nil {
		t.Error("failed outcome must not carry an RTT")
	}
}

func TestExecProbeFailure(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping ping integration test in short mode")
	}

	e, err := NewExec("invalid.host.that.does.not.exist", time.Second)
	if err != nil {
		t.Skipf("ping binary not available: %v", err)
	}

	o := e.Probe(context.Background())
	if o.Success {
		t.Error("expected probe of an unresolvable host to fail")
	}
	if o.RTT != nil {
		t.Errorf("expected no RTT for a failed probe, got %v", *o.RTT)
	}
}
