package probe

import (
	"context"
	"fmt"
	"net"
	"time"

	ping "github.com/digineo/go-ping"

	"pingmon/monitor"
)

// ICMP probes with native echo requests. It needs a raw ICMP socket, so
// construction fails without the necessary privileges; the exec driver is
// the unprivileged alternative.
type ICMP struct {
	pinger  *ping.Pinger
	addr    *net.IPAddr
	timeout time.Duration
}

// NewICMP resolves target to an IP address and opens the ICMP sockets for
// whichever address families the host supports.
func NewICMP(target string, timeout time.Duration) (*ICMP, error) {
	addr, err := net.ResolveIPAddr("ip", target)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", target, err)
	}

	var bind4, bind6 string
	if ln, err := net.Listen("tcp4", "127.0.0.1:0"); err == nil {
		// ipv4 enabled
		ln.Close()
		bind4 = "0.0.0.0"
	}
	if ln, err := net.Listen("tcp6", "[::1]:0"); err == nil {
		// ipv6 enabled
		ln.Close()
		bind6 = "::"
	}

	pinger, err := ping.New(bind4, bind6)
	if err != nil {
		return nil, fmt.Errorf("opening icmp sockets: %w", err)
	}

	return &ICMP{pinger: pinger, addr: addr, timeout: timeout}, nil
}

// Probe sends one echo request and waits for the reply or the timeout.
func (i *ICMP) Probe(ctx context.Context) monitor.Outcome {
	ctx, cancel := context.WithTimeout(ctx, i.timeout)
	defer cancel()

	rtt, err := i.pinger.PingContext(ctx, i.addr)

	o := monitor.Outcome{Timestamp: time.Now()}
	if err != nil {
		return o
	}

	o.Success = true
	ms := float64(rtt) / float64(time.Millisecond)
	o.RTT = &ms
	return o
}

// Addr returns the resolved destination address.
func (i *ICMP) Addr() string {
	return i.addr.String()
}

// Close releases the ICMP sockets.
func (i *ICMP) Close() {
	i.pinger.Close()
}
