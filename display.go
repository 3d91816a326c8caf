package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"golang.org/x/term"

	"pingmon/monitor"
)

// consoleDisplay renders rolling statistics to the terminal: a full-screen
// refresh once per second in normal mode, appended packet lines between
// refreshes in verbose mode.
type consoleDisplay struct {
	w        io.Writer
	host     string // what the user asked for
	addr     string // what is actually probed
	interval time.Duration
	verbose  bool
	isTTY    bool
}

func newConsoleDisplay(host, addr string, interval time.Duration, verbose bool) *consoleDisplay {
	return &consoleDisplay{
		w:        os.Stdout,
		host:     host,
		addr:     addr,
		interval: interval,
		verbose:  verbose,
		isTTY:    term.IsTerminal(int(os.Stdout.Fd())),
	}
}

// Report implements monitor.Reporter.
func (d *consoleDisplay) Report(target string, now time.Time, windows []monitor.WindowStats) {
	var b strings.Builder

	if !d.verbose && d.isTTY {
		// clear screen, cursor home
		b.WriteString("\033[2J\033[H")
	}

	fmt.Fprintf(&b, "Ping Monitor - Target: %s (%s)\n", d.host, target)
	fmt.Fprintf(&b, "Interval: %dms\n", d.interval.Milliseconds())
	fmt.Fprintf(&b, "Time: %s\n", now.Format("2006-01-02 15:04:05"))
	if d.verbose {
		b.WriteString("Verbose mode: ON\n")
	}
	b.WriteString(strings.Repeat("-", 80))
	b.WriteByte('\n')

	for _, ws := range windows {
		b.WriteString(formatWindow(ws))
		b.WriteByte('\n')
	}

	b.WriteString(strings.Repeat("-", 80))
	b.WriteByte('\n')
	if d.verbose {
		b.WriteString("Press Ctrl+C to stop | Packet responses shown below:\n\n")
	} else {
		b.WriteString("Press Ctrl+C to stop\n")
	}

	fmt.Fprint(d.w, b.String())
}

// Observe prints one per-probe response line; it is wired as the monitor's
// outcome observer in verbose mode.
func (d *consoleDisplay) Observe(o monitor.Outcome) {
	fmt.Fprintln(d.w, d.packetLine(o))
}

func (d *consoleDisplay) packetLine(o monitor.Outcome) string {
	ts := o.Timestamp.Format("15:04:05")
	switch {
	case o.Success && o.RTT != nil:
		return fmt.Sprintf("[%s] ✓ %s: %6.2fms", ts, d.addr, *o.RTT)
	case o.Success:
		return fmt.Sprintf("[%s] ✓ %s: reply without parseable time", ts, d.addr)
	default:
		return fmt.Sprintf("[%s] ✗ %s: FAILED", ts, d.addr)
	}
}

// formatWindow renders one statistics row. Absent fields mean no data for
// the window yet, loss without RTT means every probe in it failed.
func formatWindow(ws monitor.WindowStats) string {
	name := windowName(ws.Window)
	if ws.TotalPackets == 0 {
		return fmt.Sprintf("%8s: No data", name)
	}

	packets := humanize.Comma(int64(ws.TotalPackets))
	if ws.RTTAvg == nil {
		return fmt.Sprintf("%8s: %5.1f%% loss (%s packets)", name, *ws.PacketLoss, packets)
	}

	return fmt.Sprintf("%8s: RTT avg=%6.2fms min=%6.2fms max=%6.2fms jitter=%6.2fms loss=%5.1f%% (%s packets)",
		name, *ws.RTTAvg, *ws.RTTMin, *ws.RTTMax, *ws.Jitter, *ws.PacketLoss, packets)
}

func windowName(w time.Duration) string {
	switch {
	case w < time.Minute:
		return fmt.Sprintf("%d sec", int(w.Seconds()))
	case w < time.Hour:
		return fmt.Sprintf("%d min", int(w.Minutes()))
	default:
		return fmt.Sprintf("%d hr", int(w.Hours()))
	}
}
