// Package probe provides the drivers that feed the monitor with outcomes:
// one shelling out to the system ping binary and one sending ICMP echo
// requests directly.
package probe

import (
	"context"
	"fmt"
	"os/exec"
	"regexp"
	"runtime"
	"strconv"
	"time"

	"pingmon/monitor"
)

// RTT extraction patterns for the ping output dialects in the wild.
// Linux and macOS print "time=12.3 ms" or "time=12.3ms" per reply, Windows
// prints "time=12ms" or "time<1ms"; BSD flavored pings are covered by the
// round-trip summary line.
var rttPatterns = []*regexp.Regexp{
	regexp.MustCompile(`time[=<]([0-9.]+)\s*ms`),
	regexp.MustCompile(`round-trip min/avg/max = [0-9.]+/([0-9.]+)/`),
}

// Exec probes by running the system ping binary once per call.
type Exec struct {
	target  string
	timeout time.Duration
	binary  string
}

// NewExec builds the exec driver for target. It fails when no ping binary
// is on the PATH; a missing binary is a configuration problem, not packet
// loss.
func NewExec(target string, timeout time.Duration) (*Exec, error) {
	bin, err := exec.LookPath("ping")
	if err != nil {
		return nil, fmt.Errorf("locating ping binary: %w", err)
	}
	return &Exec{target: target, timeout: timeout, binary: bin}, nil
}

// Probe runs one ping. A non-zero exit or a killed subprocess becomes an
// unsuccessful outcome; a zero exit whose output yields no parseable time
// becomes a successful outcome without an RTT.
func (e *Exec) Probe(ctx context.Context) monitor.Outcome {
	// one second of grace on top of ping's own deadline
	ctx, cancel := context.WithTimeout(ctx, e.timeout+time.Second)
	defer cancel()

	cmd := exec.CommandContext(ctx, e.binary, e.args()...)
	out, err := cmd.CombinedOutput()

	o := monitor.Outcome{Timestamp: time.Now()}
	if err != nil {
		return o
	}

	o.Success = true
	if rtt, ok := ParseRTT(string(out)); ok {
		o.RTT = &rtt
	}
	return o
}

func (e *Exec) args() []string {
	if runtime.GOOS == "windows" {
		return []string{"-n", "1", "-w", strconv.Itoa(int(e.timeout.Milliseconds())), e.target}
	}

	// iputils takes -W in whole seconds
	secs := int(e.timeout.Seconds())
	if secs < 1 {
		secs = 1
	}
	return []string{"-c", "1", "-W", strconv.Itoa(secs), e.target}
}

// ParseRTT extracts the round trip time in milliseconds from ping output.
// The second return value is false when no known pattern matches.
func ParseRTT(output string) (float64, bool) {
	for _, re := range rttPatterns {
		m := re.FindStringSubmatch(output)
		if len(m) > 1 {
			if rtt, err := strconv.ParseFloat(m[1], 64); err == nil {
				return rtt, true
			}
		}
	}
	return 0, false
}
