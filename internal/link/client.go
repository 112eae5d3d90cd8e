package link

import (
	"context"
	"log/slog"
	"net"
	"sync"
	"time"
)

// Client is the User end. It dials the Observer and redials after every
// failure until its context ends.
type Client struct {
	*Peer

	mu     sync.Mutex
	target string
	wake   chan struct{}

	retry       time.Duration
	dialTimeout time.Duration
}

// NewClient returns a client for target. An empty target waits for
// SetTarget, typically fed by discovery.
func NewClient(target string) *Client {
	return &Client{
		Peer:        newPeer("user"),
		target:      target,
		wake:        make(chan struct{}, 1),
		retry:       RetryInterval,
		dialTimeout: 3 * time.Second,
	}
}

// SetRetry overrides the redial interval.
func (c *Client) SetRetry(d time.Duration) {
	c.retry = d
}

// SetTarget points the client at a new Observer address. It takes effect
// on the next dial.
func (c *Client) SetTarget(addr string) {
	c.mu.Lock()
	changed := c.target != addr
	c.target = addr
	c.mu.Unlock()
	if changed {
		select {
		case c.wake <- struct{}{}:
		default:
		}
	}
}

// Target returns the current Observer address.
func (c *Client) Target() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.target
}

// Run dials and serves connections until ctx is done.
func (c *Client) Run(ctx context.Context) error {
	dialer := net.Dialer{Timeout: c.dialTimeout}
	for {
		addr := c.Target()
		if addr == "" {
			select {
			case <-ctx.Done():
				return nil
			case <-c.wake:
				continue
			}
		}
		conn, err := dialer.DialContext(ctx, "tcp", addr)
		if err == nil {
			c.serve(ctx, conn)
		} else {
			slog.Debug("link: dial failed", "target", addr, "error", err)
		}
		if ctx.Err() != nil {
			return nil
		}
		select {
		case <-ctx.Done():
			return nil
		case <-c.wake:
		case <-time.After(c.retry):
		}
	}
}
