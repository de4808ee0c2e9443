package server

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/moksh2305/secure-chat-application/internal/chat"
	"github.com/moksh2305/secure-chat-application/internal/protocol"
	"github.com/samber/lo"
)

const (
	errorNameInvalid = "Username is invalid."
	errorNameTaken   = "Username is already taken."
	noticeNoSuchUser = "User not found."
	// sent to a sender whose line was discarded by the rate limiter
	noticeRateLimited = "Rate limit exceeded; line dropped."

	// sniffPrefix is how much of a base64 payload is decoded for media type
	// detection. Multiple of 4 so it decodes without padding issues.
	sniffPrefix = 4096
)

// handleJoin registers the peer, announces it to the others and replays the
// history to it. Failure is fatal to the connection only.
func (h *Hub) handleJoin(p chat.Peer, requested string) {
	name, err := h.sessions.Register(requested, p)
	if err != nil {
		reason, text := "invalid", errorNameInvalid
		if errors.Is(err, chat.ErrNameTaken) {
			reason, text = "taken", errorNameTaken
		}
		h.metrics.Registrations.WithLabelValues(reason).Inc()
		h.log.Info("Registration rejected", "requested", requested, "error", err)
		p.Deliver(protocol.Error(text))
		p.Close()
		return
	}

	h.metrics.Registrations.WithLabelValues("ok").Inc()
	h.metrics.Sessions.Set(float64(h.sessions.Len()))
	h.log.Info("Session joined", "name", name, "sessions", h.sessions.Len())

	h.toAllExcept(name, protocol.Joined(name))
	h.toAll(protocol.Users(h.sessions.Names()))
	h.replay(p)
}

// replay sends the stored history, then the reactions, to one peer as a
// single batch.
func (h *Hub) replay(p chat.Peer) {
	messages := h.history.All()
	reactions := h.ledger.AllForReplay()
	if len(messages)+len(reactions) == 0 {
		return
	}

	lines := make([]string, 0, len(messages)+len(reactions))
	lines = append(lines, lo.Map(messages, func(m chat.Message, _ int) string { return protocol.Message(m) })...)
	lines = append(lines, lo.Map(reactions, func(r chat.Reaction, _ int) string { return protocol.React(r) })...)
	h.deliver(p, lines...)
}

// teardown unregisters the peer and announces the departure. It does nothing
// for peers that are not registered, which makes it safe to reach from both
// /quit and the connection's own exit.
func (h *Hub) teardown(p chat.Peer) {
	name, ok := h.sessions.Unregister(p)
	if !ok {
		return
	}
	h.metrics.Sessions.Set(float64(h.sessions.Len()))
	h.log.Info("Session left", "name", name, "sessions", h.sessions.Len())

	h.toAllExcept(name, protocol.Left(name))
	h.toAll(protocol.Users(h.sessions.Names()))
}

// route executes exactly one command for a registered peer.
func (h *Hub) route(p chat.Peer, line string) {
	if strings.TrimSpace(line) == "" {
		return
	}
	name, ok := h.sessions.NameOf(p)
	if !ok {
		h.log.Debug("Dropping line from unregistered connection")
		return
	}

	cmd, err := protocol.Parse(line)
	h.metrics.Lines.WithLabelValues(cmd.Kind.String()).Inc()
	if err != nil {
		h.reject(name, cmd, err)
		return
	}
	h.log.Debug("Routing line", "name", name, "command", cmd.Kind.String())

	switch cmd.Kind {
	case protocol.KindQuit:
		h.teardown(p)
		p.Close()
	case protocol.KindTyping:
		h.toAllExcept(name, protocol.Typing(name))
	case protocol.KindPrivate:
		h.privateMessage(p, name, cmd)
	case protocol.KindFile:
		h.fileTransfer(p, name, cmd)
	case protocol.KindReact:
		h.react(name, cmd)
	case protocol.KindSend:
		h.send(name, cmd)
	default:
		h.toAll(cmd.Raw)
	}
}

func (h *Hub) reject(name string, cmd protocol.Command, err error) {
	reason := "malformed"
	switch {
	case errors.Is(err, chat.ErrPayloadTooLarge):
		reason = "too_large"
	case errors.Is(err, chat.ErrUnknownMessage):
		reason = "unknown_message"
	}
	h.metrics.RejectedLines.WithLabelValues(reason).Inc()
	h.log.Debug("Rejected line", "name", name, "command", cmd.Kind.String(), "error", err)
}

func (h *Hub) send(name string, cmd protocol.Command) {
	msg := h.history.Append(name, cmd.Text)
	h.metrics.Messages.Inc()

	if pruned := h.ledger.PruneBefore(h.history.OldestID()); pruned > 0 {
		h.metrics.PrunedReactions.Add(float64(pruned))
	}

	h.toAll(protocol.MessageID(msg.ID), protocol.Message(msg))
}

func (h *Hub) privateMessage(p chat.Peer, name string, cmd protocol.Command) {
	if _, ok := h.sessions.Lookup(cmd.Target); !ok {
		h.deliver(p, protocol.Notify(noticeNoSuchUser))
		return
	}

	line := protocol.Private(name, cmd.Text)
	h.toOne(cmd.Target, line)
	if cmd.Target != name {
		h.toOne(name, line)
	}
}

func (h *Hub) fileTransfer(p chat.Peer, name string, cmd protocol.Command) {
	if len(cmd.Payload) > h.cfg.MaxFilePayload {
		h.reject(name, cmd, fmt.Errorf("%w: %s is %d bytes", chat.ErrPayloadTooLarge, cmd.Filename, len(cmd.Payload)))
		h.deliver(p, protocol.Notify(fmt.Sprintf("File %s rejected: payload exceeds %d bytes.", cmd.Filename, h.cfg.MaxFilePayload)))
		return
	}

	kind := sniffPayload(cmd.Payload)
	h.metrics.FileTransfers.WithLabelValues(kind).Inc()
	h.log.Info("Relaying file", "name", name, "file", cmd.Filename, "bytes", len(cmd.Payload), "mime", kind)
	h.toAll(cmd.Raw)
}

// sniffPayload guesses the media type of a base64 payload from its first
// bytes. Payloads that are not base64 are relayed anyway and labeled unknown.
func sniffPayload(payload string) string {
	prefix := payload
	if len(prefix) > sniffPrefix {
		prefix = prefix[:sniffPrefix]
	}
	data, err := base64.StdEncoding.DecodeString(prefix)
	if err != nil || len(data) == 0 {
		return "unknown"
	}
	kind, _, _ := strings.Cut(mimetype.Detect(data).String(), ";")
	return kind
}

func (h *Hub) react(name string, cmd protocol.Command) {
	if !h.history.Contains(cmd.MessageID) {
		h.reject(name, cmd, fmt.Errorf("%w: %d", chat.ErrUnknownMessage, cmd.MessageID))
		return
	}
	if h.ledger.Apply(cmd.MessageID, cmd.Symbol, cmd.User) {
		h.metrics.Reactions.Inc()
	}
	h.toAll(cmd.Raw)
}
