package main

import (
	"context"
	"net"
)

// Resolver is the name lookup used to turn the target host into an address
// to ping. *net.Resolver satisfies it.
type Resolver interface {
	LookupIPAddr(ctx context.Context, host string) ([]net.IPAddr, error)
}
