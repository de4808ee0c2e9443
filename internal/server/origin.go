package server

import (
	"log/slog"
	"net/http"
	"net/url"
	"strings"
)

// originPolicy decides which browser origins may open a WebSocket session.
// Entries are compared as lowercase scheme://host; "*" admits any well-formed
// origin. Requests without an Origin header are refused.
type originPolicy struct {
	log      *slog.Logger
	wildcard bool
	allowed  map[string]struct{}
}

func newOriginPolicy(log *slog.Logger, entries []string) *originPolicy {
	p := &originPolicy{log: log, allowed: make(map[string]struct{}, len(entries))}
	for _, entry := range entries {
		entry = strings.TrimSpace(entry)
		switch {
		case entry == "":
		case entry == "*":
			p.wildcard = true
		default:
			key, ok := originKey(entry)
			if !ok {
				log.Warn("Skipping malformed origin entry", "origin", entry)
				continue
			}
			p.allowed[key] = struct{}{}
		}
	}
	return p
}

func originKey(origin string) (string, bool) {
	u, err := url.Parse(origin)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return "", false
	}
	return strings.ToLower(u.Scheme + "://" + u.Host), true
}

func (p *originPolicy) admits(origin string) bool {
	key, ok := originKey(origin)
	if !ok {
		return false
	}
	if p.wildcard {
		return true
	}
	_, listed := p.allowed[key]
	return listed
}

// check is the websocket.Upgrader CheckOrigin hook.
func (p *originPolicy) check(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if p.admits(origin) {
		return true
	}
	p.log.Warn("Refusing WebSocket upgrade", "origin", origin, "addr", r.RemoteAddr)
	return false
}
