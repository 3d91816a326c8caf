package probe

import (
	"net"
	"testing"
)

func TestICMPAddr(t *testing.T) {
	tests := []struct {
		ip   string
		want string
	}{
		{"192.0.2.7", "192.0.2.7"},
		{"2001:db8::1", "2001:db8::1"},
	}

	for _, tt := range tests {
		i := &ICMP{addr: &net.IPAddr{IP: net.ParseIP(tt.ip)}}
		if got := i.Addr(); got != tt.want {
			t.Errorf("Addr() = %q, want %q", got, tt.want)
		}
	}
}
