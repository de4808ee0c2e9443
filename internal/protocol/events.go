package protocol

import (
	"strconv"
	"strings"
)

// EventKind identifies a server-to-client line.
type EventKind int

const (
	EventUnknown EventKind = iota
	EventMessageID
	EventMessage
	EventNotify
	EventUsers
	EventError
	EventPrivate
	EventFile
	EventReact
	EventTyping
)

// Event is a parsed server-to-client line. Fields not used by the kind are
// left empty.
type Event struct {
	Kind      EventKind
	Raw       string
	MessageID uint64
	Sender    string
	Text      string
	Users     []string
	Filename  string
	Payload   string
	Symbol    string
}

// ParseEvent is the client side counterpart of the line builders. Lines it
// cannot make sense of come back as EventUnknown.
func ParseEvent(line string) Event {
	line = strings.TrimSuffix(line, "\r")
	ev := Event{Kind: EventUnknown, Raw: line}
	token, rest, _ := strings.Cut(line, " ")

	switch token {
	case tokenMsgID:
		if id, err := strconv.ParseUint(rest, 10, 64); err == nil {
			ev.Kind, ev.MessageID = EventMessageID, id
		}
	case tokenMsg:
		parts := strings.SplitN(rest, " ", 3)
		if len(parts) < 2 {
			return ev
		}
		id, err := strconv.ParseUint(parts[0], 10, 64)
		if err != nil {
			return ev
		}
		ev.Kind, ev.MessageID, ev.Sender = EventMessage, id, parts[1]
		if len(parts) == 3 {
			ev.Text = parts[2]
		}
	case tokenNotify:
		ev.Kind, ev.Text = EventNotify, rest
	case tokenUsers:
		ev.Kind, ev.Users = EventUsers, strings.Fields(rest)
	case tokenError:
		ev.Kind, ev.Text = EventError, rest
	case tokenPM:
		sender, text, ok := strings.Cut(rest, " ")
		if ok || sender != "" {
			ev.Kind, ev.Sender, ev.Text = EventPrivate, sender, text
		}
	case tokenFile:
		if filename, payload, ok := strings.Cut(rest, " "); ok {
			ev.Kind, ev.Filename, ev.Payload = EventFile, filename, payload
		}
	case tokenReact:
		parts := strings.SplitN(rest, " ", 3)
		if len(parts) != 3 {
			return ev
		}
		if id, err := strconv.ParseUint(parts[0], 10, 64); err == nil {
			ev.Kind, ev.MessageID, ev.Symbol, ev.Sender = EventReact, id, parts[1], parts[2]
		}
	case tokenTyping:
		ev.Kind, ev.Sender = EventTyping, rest
	}
	return ev
}
