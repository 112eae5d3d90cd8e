package link

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"runtime/debug"
	"sync"
	"time"
)

const (
	// RetryInterval is the pause between reconnect attempts.
	RetryInterval = 2 * time.Second

	writeTimeout = 2 * time.Second
	maxPending   = 256
	outboxSize   = maxPending + 16
	incomingSize = 64
)

// Status is the link state seen by the UI.
type Status int

const (
	Disconnected Status = iota
	Connected
)

func (s Status) String() string {
	if s == Connected {
		return "connected"
	}
	return "disconnected"
}

// Peer is one end of the link. Messages sent while disconnected are queued
// and flushed, in order, when a connection is attached. Only one connection
// is live at a time; attaching a new one drops the previous. Writes happen on
// a per-connection goroutine so Send never blocks on the network.
type Peer struct {
	name string

	mu       sync.Mutex
	conn     net.Conn
	out      chan Message
	pending  []Message
	greeting func() []Message

	incoming chan Message
	status   chan Status
}

func newPeer(name string) *Peer {
	return &Peer{
		name:     name,
		incoming: make(chan Message, incomingSize),
		status:   make(chan Status, 1),
	}
}

// Incoming delivers received messages in arrival order.
func (p *Peer) Incoming() <-chan Message {
	return p.incoming
}

// Status delivers the latest connection state. Intermediate states may be
// coalesced.
func (p *Peer) Status() <-chan Status {
	return p.status
}

// Connected reports whether a connection is attached.
func (p *Peer) Connected() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.conn != nil
}

// Pending returns the number of queued messages.
func (p *Peer) Pending() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.pending)
}

// SetGreeting registers the messages sent first on every new connection.
// The greeting describes the sender's whole current state, so it replaces
// whatever was queued while disconnected.
func (p *Peer) SetGreeting(fn func() []Message) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.greeting = fn
}

// Send hands m to the connection's writer or queues it while disconnected.
// A peer that stops reading long enough to fill the outbox is dropped and m
// is queued for the next connection.
func (p *Peer) Send(m Message) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.conn == nil {
		p.enqueue(m)
		return
	}
	select {
	case p.out <- m:
	default:
		slog.Warn("link: outbox full, dropping connection", "peer", p.name, "command", m.Command)
		p.dropLocked()
		p.enqueue(m)
	}
}

func (p *Peer) enqueue(m Message) {
	if len(p.pending) >= maxPending {
		slog.Warn("link: queue full, dropping oldest", "peer", p.name, "command", p.pending[0].Command)
		p.pending = p.pending[1:]
	}
	p.pending = append(p.pending, m)
}

func (p *Peer) attach(conn net.Conn) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.conn != nil {
		slog.Info("link: replacing connection", "peer", p.name, "old", p.conn.RemoteAddr(), "new", conn.RemoteAddr())
		p.dropLocked()
	}
	first := p.pending
	if p.greeting != nil {
		if len(first) > 0 {
			slog.Debug("link: greeting supersedes queue", "peer", p.name, "dropped", len(first))
		}
		first = p.greeting()
	}
	p.pending = nil

	out := make(chan Message, outboxSize)
	p.conn = conn
	p.out = out
	for _, m := range first {
		out <- m
	}
	go p.writeLoop(conn, out)
	p.notify(Connected)
	slog.Info("link: connected", "peer", p.name, "remote", conn.RemoteAddr(), "flushed", len(first))
}

// writeLoop drains out onto conn. On a write failure the unsent message and
// everything behind it go back to the queue.
func (p *Peer) writeLoop(conn net.Conn, out chan Message) {
	for m := range out {
		_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := WriteFrame(conn, m); err != nil {
			p.mu.Lock()
			if p.out == out {
				slog.Warn("link: write failed", "peer", p.name, "command", m.Command, "error", err)
				p.pending = append(p.pending, m)
				p.dropLocked()
			}
			p.mu.Unlock()
			return
		}
	}
}

// detach clears conn if it is still the live connection.
func (p *Peer) detach(conn net.Conn) {
	p.mu.Lock()
	defer p.mu.Unlock()
	_ = conn.Close()
	if p.conn == conn {
		p.dropLocked()
	}
}

// dropLocked closes the live connection and moves unsent messages back to
// the queue.
func (p *Peer) dropLocked() {
	if p.conn == nil {
		return
	}
	_ = p.conn.Close()
	for {
		select {
		case m := <-p.out:
			p.enqueue(m)
			continue
		default:
		}
		break
	}
	close(p.out)
	p.conn = nil
	p.out = nil
	p.notify(Disconnected)
	slog.Info("link: disconnected", "peer", p.name)
}

// notify keeps only the newest status in the channel.
func (p *Peer) notify(s Status) {
	select {
	case p.status <- s:
		return
	default:
	}
	select {
	case <-p.status:
	default:
	}
	select {
	case p.status <- s:
	default:
	}
}

// serve attaches conn and reads from it until it fails or ctx ends.
func (p *Peer) serve(ctx context.Context, conn net.Conn) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("link: panic in connection handler", "peer", p.name, "panic", r, "stack", string(debug.Stack()))
		}
	}()
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.Close()
		case <-done:
		}
	}()

	p.attach(conn)
	defer p.detach(conn)

	for {
		var m Message
		if err := ReadFrame(conn, &m); err != nil {
			if errors.Is(err, ErrMalformed) {
				slog.Warn("link: dropping malformed frame", "peer", p.name, "error", err)
				continue
			}
			if ctx.Err() == nil && !errors.Is(err, io.EOF) && !errors.Is(err, net.ErrClosed) {
				slog.Debug("link: read ended", "peer", p.name, "error", err)
			}
			return
		}
		if err := m.Validate(); err != nil {
			slog.Warn("link: dropping invalid message", "peer", p.name, "error", err)
			continue
		}
		select {
		case p.incoming <- m:
		case <-ctx.Done():
			return
		}
	}
}
