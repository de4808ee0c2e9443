package chat

import (
	"fmt"
	"slices"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"

	"github.com/samber/lo"
)

// Registry is the set of live, named sessions. A name maps to at most one
// Peer and a Peer holds at most one name.
type Registry struct {
	mu            sync.RWMutex
	byName        map[string]Peer
	byPeer        map[Peer]string
	maxNameLength int
}

func NewRegistry(maxNameLength int) *Registry {
	return &Registry{
		byName:        make(map[string]Peer),
		byPeer:        make(map[Peer]string),
		maxNameLength: maxNameLength,
	}
}

// NormalizeName trims the requested name and checks that it can be used as a
// single protocol token.
func (r *Registry) NormalizeName(raw string) (string, error) {
	name := strings.TrimSpace(raw)
	if !utf8.ValidString(name) {
		return "", fmt.Errorf("%w: not valid UTF-8", ErrNameInvalid)
	}
	if name == "" || strings.HasPrefix(name, "/") || strings.IndexFunc(name, unicode.IsSpace) >= 0 {
		return "", fmt.Errorf("%w: %q", ErrNameInvalid, raw)
	}
	if r.maxNameLength > 0 && utf8.RuneCountInString(name) > r.maxNameLength {
		return "", fmt.Errorf("%w: longer than %d characters", ErrNameInvalid, r.maxNameLength)
	}
	return name, nil
}

// Register atomically checks and inserts the name for the peer and returns
// the normalized name. Concurrent registrations of one name resolve to
// exactly one winner.
func (r *Registry) Register(raw string, p Peer) (string, error) {
	name, err := r.NormalizeName(raw)
	if err != nil {
		return "", err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byName[name]; exists {
		return "", fmt.Errorf("%w: %q", ErrNameTaken, name)
	}
	if current, exists := r.byPeer[p]; exists {
		return "", fmt.Errorf("%w: connection already registered as %q", ErrNameInvalid, current)
	}
	r.byName[name] = p
	r.byPeer[p] = name
	return name, nil
}

// Unregister removes the peer and reports the name it held. Removing a peer
// that is not registered is a no-op returning false.
func (r *Registry) Unregister(p Peer) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	name, ok := r.byPeer[p]
	if !ok {
		return "", false
	}
	delete(r.byPeer, p)
	delete(r.byName, name)
	return name, true
}

// Lookup returns the peer registered under name.
func (r *Registry) Lookup(name string) (Peer, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.byName[name]
	return p, ok
}

// NameOf returns the name held by the peer.
func (r *Registry) NameOf(p Peer) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	name, ok := r.byPeer[p]
	return name, ok
}

// Names returns a point-in-time snapshot of registered names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	names := lo.Keys(r.byName)
	r.mu.RUnlock()

	slices.Sort(names)
	return names
}

// Peers returns a snapshot of every registered peer except the one holding
// the excluded name. An empty exclusion returns all peers.
func (r *Registry) Peers(except string) []Peer {
	r.mu.RLock()
	defer r.mu.RUnlock()

	peers := make([]Peer, 0, len(r.byName))
	for name, p := range r.byName {
		if except != "" && name == except {
			continue
		}
		peers = append(peers, p)
	}
	return peers
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byName)
}
