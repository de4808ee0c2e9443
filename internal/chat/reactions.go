package chat

import (
	"slices"
	"sync"

	"github.com/samber/lo"
)

// Reaction is one (message, symbol, user) association.
type Reaction struct {
	MessageID uint64
	Symbol    string
	User      string
}

type symbolUsers struct {
	users []string
	seen  map[string]struct{}
}

type messageReactions struct {
	symbols []string
	byEmoji map[string]*symbolUsers
}

// Ledger maps message ids to the users that applied each symbol. Symbols and
// users keep their insertion order so replay is reproducible.
type Ledger struct {
	mu        sync.RWMutex
	byMessage map[uint64]*messageReactions
}

func NewLedger() *Ledger {
	return &Ledger{byMessage: make(map[uint64]*messageReactions)}
}

// Apply adds the user to the set for (messageID, symbol). It reports false
// when the user was already in the set.
func (l *Ledger) Apply(messageID uint64, symbol, user string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	mr, ok := l.byMessage[messageID]
	if !ok {
		mr = &messageReactions{byEmoji: make(map[string]*symbolUsers)}
		l.byMessage[messageID] = mr
	}
	su, ok := mr.byEmoji[symbol]
	if !ok {
		su = &symbolUsers{seen: make(map[string]struct{})}
		mr.byEmoji[symbol] = su
		mr.symbols = append(mr.symbols, symbol)
	}
	if _, dup := su.seen[user]; dup {
		return false
	}
	su.seen[user] = struct{}{}
	su.users = append(su.users, user)
	return true
}

// Users returns the users that applied symbol to the message.
func (l *Ledger) Users(messageID uint64, symbol string) []string {
	l.mu.RLock()
	defer l.mu.RUnlock()

	mr, ok := l.byMessage[messageID]
	if !ok {
		return nil
	}
	su, ok := mr.byEmoji[symbol]
	if !ok {
		return nil
	}
	return slices.Clone(su.users)
}

// PruneBefore drops every entry whose message id is lower than oldest and
// returns how many messages lost their reactions.
func (l *Ledger) PruneBefore(oldest uint64) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	pruned := 0
	for id := range l.byMessage {
		if id < oldest {
			delete(l.byMessage, id)
			pruned++
		}
	}
	return pruned
}

// AllForReplay flattens the ledger in ascending message id, then symbol and
// user insertion order.
func (l *Ledger) AllForReplay() []Reaction {
	l.mu.RLock()
	defer l.mu.RUnlock()

	ids := lo.Keys(l.byMessage)
	slices.Sort(ids)

	var out []Reaction
	for _, id := range ids {
		mr := l.byMessage[id]
		for _, symbol := range mr.symbols {
			for _, user := range mr.byEmoji[symbol].users {
				out = append(out, Reaction{MessageID: id, Symbol: symbol, User: user})
			}
		}
	}
	return out
}

// Len returns the number of messages carrying at least one reaction.
func (l *Ledger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.byMessage)
}
