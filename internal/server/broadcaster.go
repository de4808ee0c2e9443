package server

import (
	"github.com/moksh2305/secure-chat-application/internal/chat"
)

// toAll queues the lines, as one batch, for every registered session.
func (h *Hub) toAll(lines ...string) {
	h.toAllExcept("", lines...)
}

// toAllExcept queues the lines for every registered session but the one
// holding excluded. It is the one place self-exclusion is decided.
func (h *Hub) toAllExcept(excluded string, lines ...string) {
	for _, p := range h.sessions.Peers(excluded) {
		h.deliver(p, lines...)
	}
}

// toOne queues the lines for the named session.
func (h *Hub) toOne(name string, lines ...string) bool {
	p, ok := h.sessions.Lookup(name)
	if !ok {
		return false
	}
	return h.deliver(p, lines...)
}

// deliver never blocks. A peer whose queue is full is disconnected; its own
// read loop then ends and runs the regular teardown.
func (h *Hub) deliver(p chat.Peer, lines ...string) bool {
	if _, gone := h.unreachable[p]; gone {
		return false
	}
	if p.Deliver(lines...) {
		return true
	}

	h.unreachable[p] = struct{}{}
	h.metrics.SlowConsumers.Inc()
	name, _ := h.sessions.NameOf(p)
	h.log.Warn("Disconnecting recipient", "name", name, "error", chat.ErrRecipientUnreachable)
	p.Abort()
	return false
}
