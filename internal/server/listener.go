package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"time"
)

// Listener accepts line-protocol connections over TCP and hands each one to
// the hub.
type Listener struct {
	log *slog.Logger
	hub *Hub
	ln  net.Listener
}

// Listen binds the TCP address. Port 0 picks a free port, see Addr.
func Listen(addr string, hub *Hub, log *slog.Logger) (*Listener, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	return &Listener{log: log, hub: hub, ln: ln}, nil
}

func (l *Listener) Addr() net.Addr { return l.ln.Addr() }

// Serve accepts connections until ctx is canceled or the listener is closed.
// Accept errors on a live listener are logged and retried with backoff so one
// failure never stops the relay.
func (l *Listener) Serve(ctx context.Context) error {
	stop := context.AfterFunc(ctx, func() {
		_ = l.ln.Close()
	})
	defer stop()

	l.log.Info("Line protocol listening", "address", l.ln.Addr().String())

	var backoff time.Duration
	for {
		conn, err := l.ln.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return nil
			}
			backoff = nextBackoff(backoff)
			l.log.Warn("Accept failed; retrying", "error", err, "backoff", backoff)
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(backoff):
			}
			continue
		}
		backoff = 0

		client := NewClient(newTCPConn(conn, l.hub.cfg.MaxLineLength, l.hub.cfg.WriteTimeout), l.hub)
		if !l.hub.Attach(client) {
			_ = conn.Close()
			return nil
		}
	}
}

// Close stops accepting new connections.
func (l *Listener) Close() error {
	return l.ln.Close()
}

func nextBackoff(current time.Duration) time.Duration {
	const (
		first = 5 * time.Millisecond
		limit = time.Second
	)
	if current == 0 {
		return first
	}
	if current*2 > limit {
		return limit
	}
	return current * 2
}
