package mirror

import (
	"context"
	"sync/atomic"
	"time"
)

// Probe polls the server health endpoint and exposes the result as an
// online flag.
type Probe struct {
	client   *Client
	interval time.Duration
	online   atomic.Bool
}

func NewProbe(client *Client, interval time.Duration) *Probe {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	return &Probe{client: client, interval: interval}
}

func (p *Probe) Online() bool {
	return p.online.Load()
}

// Check performs one health check and records the result.
func (p *Probe) Check(ctx context.Context) bool {
	up := p.client.Available(ctx)
	if p.online.Swap(up) != up {
		p.client.logger.Info("mirror connectivity changed", "online", up)
	}
	return up
}

// Run checks immediately and then on every interval until ctx is done.
func (p *Probe) Run(ctx context.Context) {
	p.Check(ctx)
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.Check(ctx)
		}
	}
}
