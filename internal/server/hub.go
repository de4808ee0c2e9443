// Package server coordinates session registration, command routing and
// connection cleanup for the chat relay via the Hub type.
package server

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/moksh2305/secure-chat-application/internal/chat"
)

type eventKind int

const (
	eventJoin eventKind = iota
	eventLine
	eventLeave
	eventBarrier
)

// event is one step of a connection's life as seen by the hub. All events of
// one connection travel on the same channel so the hub observes them in the
// order the connection produced them.
type event struct {
	kind eventKind
	peer chat.Peer
	text string
	done chan struct{}
}

// Hub is the protocol router. A single goroutine (Run) applies every event,
// so id assignment, registration and the fan-out that follows them happen in
// one global order that all sessions observe.
type Hub struct {
	log     *slog.Logger
	cfg     Config
	metrics *Metrics

	sessions *chat.Registry
	history  *chat.History
	ledger   *chat.Ledger

	conns       map[chat.Peer]struct{}
	unreachable map[chat.Peer]struct{}
	register    chan *Client
	events      chan event
	mutex       sync.RWMutex
	wg          sync.WaitGroup
	ctx         context.Context
	cancel      context.CancelFunc
	done        chan struct{}
}

// NewHub creates a hub with empty shared state sized from cfg.
func NewHub(cfg Config, log *slog.Logger, metrics *Metrics) *Hub {
	ctx, cancel := context.WithCancel(context.Background())
	if metrics == nil {
		metrics = NewMetrics()
	}
	return &Hub{
		log:         log,
		cfg:         cfg,
		metrics:     metrics,
		sessions:    chat.NewRegistry(cfg.MaxNameLength),
		history:     chat.NewHistory(cfg.HistorySize),
		ledger:      chat.NewLedger(),
		conns:       make(map[chat.Peer]struct{}),
		unreachable: make(map[chat.Peer]struct{}),
		register:    make(chan *Client),
		events:      make(chan event),
		ctx:         ctx,
		cancel:      cancel,
		done:        make(chan struct{}),
	}
}

func (h *Hub) Metrics() *Metrics { return h.metrics }

// Names returns the current user list.
func (h *Hub) Names() []string { return h.sessions.Names() }

// ConnectionCount returns the number of attached connections, named or not.
func (h *Hub) ConnectionCount() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.conns)
}

// Attach hands a fresh connection to the hub, which starts its pumps. It
// reports false when the hub is shutting down.
func (h *Hub) Attach(client *Client) bool {
	select {
	case h.register <- client:
		return true
	case <-h.ctx.Done():
		return false
	}
}

// Join requests registration of name for the peer.
func (h *Hub) Join(p chat.Peer, name string) bool {
	return h.submit(event{kind: eventJoin, peer: p, text: name})
}

// Handle routes one inbound line from the peer.
func (h *Hub) Handle(p chat.Peer, line string) bool {
	return h.submit(event{kind: eventLine, peer: p, text: line})
}

// Leave tears the peer down. It is the only teardown entry point and may be
// called for peers that never registered.
func (h *Hub) Leave(p chat.Peer) bool {
	return h.submit(event{kind: eventLeave, peer: p})
}

func (h *Hub) submit(ev event) bool {
	select {
	case h.events <- ev:
		return true
	case <-h.ctx.Done():
		return false
	}
}

// Run starts the hub's main event loop. It returns once Shutdown is called.
func (h *Hub) Run() {
	defer close(h.done)

	for {
		select {
		case <-h.ctx.Done():
			h.shutdownClients()
			return

		case client := <-h.register:
			if client == nil {
				h.log.Warn("Received nil client registration; skipping")
				continue
			}
			h.attach(client)

		case ev := <-h.events:
			h.dispatch(ev)
		}
	}
}

func (h *Hub) attach(client *Client) {
	h.mutex.Lock()
	h.conns[client] = struct{}{}
	count := len(h.conns)
	h.mutex.Unlock()

	h.metrics.Connections.WithLabelValues(client.conn.Transport()).Inc()
	client.log.Info("Client connected", "connections", count)

	h.wg.Add(2)
	go func() {
		defer h.wg.Done()
		client.writePump()
	}()
	go func() {
		defer h.wg.Done()
		client.readPump()
	}()
}

func (h *Hub) dispatch(ev event) {
	switch ev.kind {
	case eventJoin:
		h.handleJoin(ev.peer, ev.text)
	case eventLine:
		h.route(ev.peer, ev.text)
	case eventLeave:
		h.teardown(ev.peer)
		h.mutex.Lock()
		delete(h.conns, ev.peer)
		h.mutex.Unlock()
		delete(h.unreachable, ev.peer)
		ev.peer.Close()
	case eventBarrier:
		close(ev.done)
	}
}

// shutdownClients closes every attached connection. Their read pumps then
// end on their own.
func (h *Hub) shutdownClients() {
	h.log.Info("Shutting down all client connections...")

	h.mutex.Lock()
	peers := make([]chat.Peer, 0, len(h.conns))
	for p := range h.conns {
		peers = append(peers, p)
	}
	h.mutex.Unlock()

	for _, p := range peers {
		p.Abort()
	}

	h.log.Info("Closed client connections", "count", len(peers))
}

// Shutdown initiates graceful shutdown of the hub and waits for all goroutines to complete.
// It returns after all client connections are closed and goroutines have finished,
// or when the timeout is reached.
func (h *Hub) Shutdown(timeout time.Duration) error {
	h.log.Info("Initiating hub shutdown...")

	h.cancel()
	<-h.done

	done := make(chan struct{})
	go func() {
		h.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		h.log.Info("Hub shutdown completed successfully")
		return nil
	case <-time.After(timeout):
		h.log.Warn("Hub shutdown timeout reached, some goroutines may still be running")
		return context.DeadlineExceeded
	}
}
