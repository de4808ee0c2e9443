//go:generate go run go.uber.org/mock/mockgen -source=peer.go -destination=mocks/mock_peer.go -package=mocks

// Package chat holds the shared state of the relay: the live sessions, the
// bounded message history and the reactions applied to it. Every type here is
// safe for concurrent use and exposes only atomic operations.
package chat

// Peer is the outbound side of one connection as seen by the router.
type Peer interface {
	// Deliver queues protocol lines as one batch without blocking. It reports
	// false when the batch could not be queued (queue full or peer closed).
	Deliver(lines ...string) bool
	// Close stops accepting lines, flushes what is queued, then closes the
	// connection. Safe to call more than once.
	Close()
	// Abort closes the connection immediately, dropping queued lines.
	Abort()
}
