package service

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/compozy/autopush/internal/domain"
)

// DefaultProbeTimeout bounds the TCP reachability check.
const DefaultProbeTimeout = 5 * time.Second

// ConnectivityProber checks that the remote host accepts connections.
type ConnectivityProber interface {
	Probe(ctx context.Context, link domain.RemoteLink) error
}

// tcpProber dials the remote host on its transport port.
type tcpProber struct {
	timeout time.Duration
	dialer  net.Dialer
}

// NewTCPProber creates a ConnectivityProber bounded by timeout.
func NewTCPProber(timeout time.Duration) ConnectivityProber {
	if timeout <= 0 {
		timeout = DefaultProbeTimeout
	}
	return &tcpProber{timeout: timeout}
}

// Probe returns nil for local remotes without dialing.
func (p *tcpProber) Probe(ctx context.Context, link domain.RemoteLink) error {
	if link.IsLocal() {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	conn, err := p.dialer.DialContext(ctx, "tcp", link.Address())
	if err != nil {
		return fmt.Errorf("%w: %s: %v", domain.ErrNetworkUnreachable, link.Address(), err)
	}
	return conn.Close()
}
