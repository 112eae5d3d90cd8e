// Package discovery announces the Observer on the LAN and finds it from
// the User station.
package discovery

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"strconv"
	"time"
)

const (
	// Service is the announcement tag both stations agree on.
	Service = "warehouse-sim"
	// DefaultPort is the UDP discovery port.
	DefaultPort = 5001
	// Interval is the time between announcements.
	Interval = 2 * time.Second

	anchor = "8.8.8.8:80"
)

// Announcement is the broadcast payload.
type Announcement struct {
	Service string `json:"service"`
	Port    int    `json:"port"`
	IP      string `json:"ip"`
}

// Addr returns the Observer's TCP address.
func (a Announcement) Addr() string {
	return net.JoinHostPort(a.IP, strconv.Itoa(a.Port))
}

// LocalIP returns the IPv4 address of the interface used for outbound
// traffic. No packet is sent; the UDP socket is only connected. It falls
// back to loopback when there is no route.
func LocalIP() string {
	conn, err := net.Dial("udp4", anchor)
	if err != nil {
		return "127.0.0.1"
	}
	defer func() { _ = conn.Close() }()
	if addr, ok := conn.LocalAddr().(*net.UDPAddr); ok && addr.IP.To4() != nil {
		return addr.IP.String()
	}
	return "127.0.0.1"
}

// BroadcastAddr is the default announcement target.
func BroadcastAddr(port int) string {
	return net.JoinHostPort("255.255.255.255", strconv.Itoa(port))
}

// Broadcaster periodically sends an announcement to target.
type Broadcaster struct {
	target   string
	ann      Announcement
	interval time.Duration
}

// NewBroadcaster announces linkPort on the local IP to target.
func NewBroadcaster(target string, linkPort int) *Broadcaster {
	return &Broadcaster{
		target:   target,
		ann:      Announcement{Service: Service, Port: linkPort, IP: LocalIP()},
		interval: Interval,
	}
}

// SetIP overrides the announced address.
func (b *Broadcaster) SetIP(ip string) {
	b.ann.IP = ip
}

// SetInterval overrides the announcement period.
func (b *Broadcaster) SetInterval(d time.Duration) {
	b.interval = d
}

// Announcement returns the payload being broadcast.
func (b *Broadcaster) Announcement() Announcement {
	return b.ann
}

// Run sends one announcement immediately and then every interval until ctx
// is done. Send failures are logged and retried on the next period.
func (b *Broadcaster) Run(ctx context.Context) error {
	dst, err := net.ResolveUDPAddr("udp4", b.target)
	if err != nil {
		return fmt.Errorf("resolve broadcast target %s: %w", b.target, err)
	}
	conn, err := net.ListenPacket("udp4", ":0")
	if err != nil {
		return fmt.Errorf("open broadcast socket: %w", err)
	}
	defer func() { _ = conn.Close() }()

	payload, err := json.Marshal(b.ann)
	if err != nil {
		return fmt.Errorf("marshal announcement: %w", err)
	}
	ticker := time.NewTicker(b.interval)
	defer ticker.Stop()
	for {
		if _, err := conn.WriteTo(payload, dst); err != nil {
			slog.Debug("discovery: broadcast failed", "target", b.target, "error", err)
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

// Listener receives announcements.
type Listener struct {
	conn net.PacketConn
}

// Listen binds addr, for example ":5001".
func Listen(addr string) (*Listener, error) {
	conn, err := net.ListenPacket("udp4", addr)
	if err != nil {
		return nil, fmt.Errorf("listen for discovery on %s: %w", addr, err)
	}
	return &Listener{conn: conn}, nil
}

// Addr returns the bound address.
func (l *Listener) Addr() net.Addr {
	return l.conn.LocalAddr()
}

// Close releases the socket.
func (l *Listener) Close() error {
	return l.conn.Close()
}

// Run calls found for every matching announcement until ctx is done.
// Datagrams for other services and garbage are ignored.
func (l *Listener) Run(ctx context.Context, found func(Announcement)) error {
	go func() {
		<-ctx.Done()
		_ = l.conn.Close()
	}()
	buf := make([]byte, 2048)
	for {
		n, from, err := l.conn.ReadFrom(buf)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return nil
			}
			return fmt.Errorf("read discovery datagram: %w", err)
		}
		var ann Announcement
		if err := json.Unmarshal(buf[:n], &ann); err != nil {
			slog.Debug("discovery: ignoring datagram", "from", from, "error", err)
			continue
		}
		if ann.Service != Service || ann.Port <= 0 || ann.IP == "" {
			continue
		}
		found(ann)
	}
}

// Discover blocks until the first announcement arrives on addr.
func Discover(ctx context.Context, addr string) (Announcement, error) {
	l, err := Listen(addr)
	if err != nil {
		return Announcement{}, err
	}
	defer func() { _ = l.Close() }()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var got Announcement
	err = l.Run(ctx, func(a Announcement) {
		got = a
		cancel()
	})
	if err != nil {
		return Announcement{}, err
	}
	if got.Service == "" {
		return Announcement{}, ctx.Err()
	}
	return got, nil
}
