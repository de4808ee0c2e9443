// Package protocol parses inbound protocol lines into commands and builds the
// outbound lines of the newline-delimited chat protocol.
package protocol

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/moksh2305/secure-chat-application/internal/chat"
)

// Kind selects what the router does with a line.
type Kind int

const (
	KindRaw Kind = iota
	KindQuit
	KindTyping
	KindPrivate
	KindFile
	KindReact
	KindSend
)

func (k Kind) String() string {
	switch k {
	case KindQuit:
		return "quit"
	case KindTyping:
		return "typing"
	case KindPrivate:
		return "pm"
	case KindFile:
		return "file"
	case KindReact:
		return "react"
	case KindSend:
		return "msg"
	default:
		return "raw"
	}
}

const (
	tokenMsg    = "/msg"
	tokenMsgID  = "/msgid"
	tokenTyping = "/typing"
	tokenPM     = "/pm"
	tokenFile   = "/file"
	tokenReact  = "/react"
	tokenQuit   = "/quit"
	tokenNotify = "/notify"
	tokenUsers  = "/users"
	tokenError  = "/error"
)

// Command is one parsed inbound line. Raw always holds the line as received,
// minus any trailing carriage return.
type Command struct {
	Kind      Kind
	Raw       string
	Text      string
	Target    string
	Filename  string
	Payload   string
	MessageID uint64
	Symbol    string
	User      string
}

// IsQuit reports whether the line is a /quit, in any letter case.
func IsQuit(line string) bool {
	return strings.EqualFold(strings.TrimSpace(line), tokenQuit)
}

// Parse classifies a line by its first space-delimited token. Known commands
// with missing or unparsable arguments fail with chat.ErrMalformedCommand;
// anything unknown comes back as KindRaw. Lines that are not valid UTF-8 are
// malformed whatever their token.
func Parse(line string) (Command, error) {
	line = strings.TrimSuffix(line, "\r")
	cmd := Command{Kind: KindRaw, Raw: line}
	if !utf8.ValidString(line) {
		return cmd, fmt.Errorf("%w: line is not valid UTF-8", chat.ErrMalformedCommand)
	}

	if IsQuit(line) {
		cmd.Kind = KindQuit
		return cmd, nil
	}

	token, rest, _ := strings.Cut(line, " ")
	switch token {
	case tokenTyping:
		cmd.Kind = KindTyping
	case tokenMsg:
		cmd.Kind = KindSend
		if strings.TrimSpace(rest) == "" {
			return cmd, fmt.Errorf("%w: %s needs a message body", chat.ErrMalformedCommand, tokenMsg)
		}
		cmd.Text = rest
	case tokenPM:
		cmd.Kind = KindPrivate
		target, text, ok := strings.Cut(rest, " ")
		if !ok || target == "" {
			return cmd, fmt.Errorf("%w: %s needs a target and a text", chat.ErrMalformedCommand, tokenPM)
		}
		cmd.Target, cmd.Text = target, text
	case tokenFile:
		cmd.Kind = KindFile
		filename, payload, ok := strings.Cut(rest, " ")
		if !ok || filename == "" {
			return cmd, fmt.Errorf("%w: %s needs a filename and a payload", chat.ErrMalformedCommand, tokenFile)
		}
		cmd.Filename, cmd.Payload = filename, payload
	case tokenReact:
		cmd.Kind = KindReact
		parts := strings.SplitN(rest, " ", 3)
		if len(parts) != 3 || parts[1] == "" || parts[2] == "" {
			return cmd, fmt.Errorf("%w: %s needs a message id, a symbol and a user", chat.ErrMalformedCommand, tokenReact)
		}
		id, err := strconv.ParseUint(parts[0], 10, 64)
		if err != nil || id == 0 {
			return cmd, fmt.Errorf("%w: message id %q", chat.ErrMalformedCommand, parts[0])
		}
		cmd.MessageID, cmd.Symbol, cmd.User = id, parts[1], parts[2]
	}
	return cmd, nil
}
