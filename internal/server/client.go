// Package server manages individual relay clients, handling read/write
// pumps, rate limiting, and lifecycle control for each connection.
package server

import (
	"errors"
	"io"
	"log/slog"
	"net"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/moksh2305/secure-chat-application/internal/chat"
	"github.com/moksh2305/secure-chat-application/internal/protocol"
)

var _ chat.Peer = (*Client)(nil)

// Client is one connection to the relay. It owns a bounded outbound queue
// drained by its own write pump, so a slow client never stalls the hub.
type Client struct {
	id          string
	conn        lineConn
	hub         *Hub
	log         *slog.Logger
	send        chan []string
	mu          sync.Mutex
	closed      bool
	rateLimiter *rateLimiter
	rateLimit   RateLimitConfig
}

// NewClient wraps a line connection. The hub starts its pumps on Attach.
func NewClient(conn lineConn, hub *Hub) *Client {
	id := uuid.NewString()
	rl := hub.cfg.RateLimit()
	return &Client{
		id:          id,
		conn:        conn,
		hub:         hub,
		log:         hub.log.With("conn", id, "addr", conn.RemoteAddr(), "transport", conn.Transport()),
		send:        make(chan []string, hub.cfg.SendQueueSize),
		rateLimiter: newRateLimiter(rl.Burst, rl.RefillInterval),
		rateLimit:   rl,
	}
}

// Deliver queues a batch of lines without blocking.
func (c *Client) Deliver(lines ...string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return false
	}
	select {
	case c.send <- lines:
		return true
	default:
		return false
	}
}

// Close stops the queue. The write pump flushes what is left and then closes
// the connection.
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
}

// Abort drops the connection now; the read pump notices and tears down.
func (c *Client) Abort() {
	if err := c.conn.Abort(); err != nil && !isExpectedCloseError(err) {
		c.log.Warn("Error aborting connection", "error", err)
	}
}

// readPump turns inbound lines into hub events. Its deferred Leave is the
// only teardown path, whatever ended the connection.
func (c *Client) readPump() {
	defer func() {
		if !c.hub.Leave(c) {
			c.Abort()
		}
	}()

	name, err := c.conn.ReadLine()
	if err != nil {
		c.handleReadError(err)
		return
	}
	if !c.hub.Join(c, name) {
		return
	}

	for {
		line, err := c.conn.ReadLine()
		if err != nil {
			c.handleReadError(err)
			return
		}

		if !c.checkRateLimit(line) {
			continue
		}

		if !c.hub.Handle(c, line) {
			return
		}
	}
}

// handleReadError logs the reason the connection ended at a level matching
// how unusual it is.
func (c *Client) handleReadError(err error) {
	switch {
	case errors.Is(err, errLineTooLong):
		c.log.Warn("Line exceeded maximum length; closing", "max", c.hub.cfg.MaxLineLength)
	case errors.Is(err, io.EOF), errors.Is(err, net.ErrClosed), isExpectedCloseError(err):
		c.log.Info("Client disconnected")
	case websocket.IsCloseError(err,
		websocket.CloseNormalClosure,
		websocket.CloseGoingAway,
		websocket.CloseNoStatusReceived):
		c.log.Info("Client disconnected", "reason", err)
	default:
		c.log.Warn("Read error", "error", err)
	}
}

// checkRateLimit verifies if the client has exceeded rate limits
// and returns true if the line should be processed. /quit always goes through;
// a dropped line is reported back to its sender only.
func (c *Client) checkRateLimit(line string) bool {
	if protocol.IsQuit(line) || c.rateLimiter.allow() {
		return true
	}
	c.hub.metrics.RateLimited.Inc()
	c.log.Warn("Rate limit exceeded; discarding line",
		"burst", c.rateLimit.Burst, "interval", c.rateLimit.RefillInterval)
	c.Deliver(protocol.Notify(noticeRateLimited))
	return false
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.closeConnection()
	}()

	for c.processWriteEvent(ticker) {
	}
}

// processWriteEvent waits for the next write event and returns false when the
// pump should stop processing.
func (c *Client) processWriteEvent(ticker *time.Ticker) bool {
	select {
	case lines, ok := <-c.send:
		if !ok {
			return false
		}
		return c.writeLines(lines)
	case <-ticker.C:
		if err := c.conn.Ping(); err != nil {
			c.log.Debug("Ping failed", "error", err)
			return false
		}
		return true
	case <-c.hub.ctx.Done():
		return false
	}
}

// writeLines writes the batch plus any batches already queued behind it.
func (c *Client) writeLines(lines []string) bool {
	n := len(c.send)
	for i := 0; i < n; i++ {
		next, ok := <-c.send
		if !ok {
			break
		}
		lines = append(lines[:len(lines):len(lines)], next...)
	}

	if err := c.conn.WriteLines(lines); err != nil {
		if !isExpectedCloseError(err) {
			c.log.Warn("Write failed", "error", err)
		}
		return false
	}
	return true
}

// closeConnection closes the connection once the write pump is done, which
// also unblocks a read pump still waiting for input.
func (c *Client) closeConnection() {
	if err := c.conn.Close(); err != nil && !isExpectedCloseError(err) {
		c.log.Warn("Error closing connection", "error", err)
	}
}
