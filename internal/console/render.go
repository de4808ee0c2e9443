// Package console turns keyboard input into protocol lines and server lines
// into terminal output for the chatcat client.
package console

import (
	"fmt"
	"strings"

	"github.com/gookit/color"
	"github.com/moksh2305/secure-chat-application/internal/protocol"
)

// Renderer formats server lines for a terminal. MessageID lines and the
// user's own typing hints render to nothing.
type Renderer struct {
	colors bool
	self   string

	sender  color.Style
	own     color.Style
	notice  color.Style
	failure color.Style
	private color.Style
	muted   color.Style
}

func NewRenderer(self string, colors bool) *Renderer {
	return &Renderer{
		colors:  colors,
		self:    self,
		sender:  color.New(color.FgCyan, color.OpBold),
		own:     color.New(color.FgGreen, color.OpBold),
		notice:  color.New(color.FgYellow),
		failure: color.New(color.FgRed, color.OpBold),
		private: color.New(color.FgMagenta),
		muted:   color.New(color.FgGray),
	}
}

func (r *Renderer) paint(style color.Style, text string) string {
	if !r.colors {
		return text
	}
	return style.Render(text)
}

// Render returns the text to print for ev, or "" when nothing is shown.
func (r *Renderer) Render(ev protocol.Event) string {
	switch ev.Kind {
	case protocol.EventMessageID:
		return ""
	case protocol.EventTyping:
		if ev.Sender == "" || ev.Sender == r.self {
			return ""
		}
		return r.paint(r.muted, ev.Sender+" is typing...")
	case protocol.EventMessage:
		style := r.sender
		if ev.Sender == r.self {
			style = r.own
		}
		return fmt.Sprintf("%s %s: %s", r.paint(r.muted, fmt.Sprintf("#%d", ev.MessageID)), r.paint(style, ev.Sender), ev.Text)
	case protocol.EventNotify:
		return r.paint(r.notice, "* "+ev.Text)
	case protocol.EventUsers:
		return r.paint(r.muted, "online: "+strings.Join(ev.Users, ", "))
	case protocol.EventError:
		return r.paint(r.failure, "error: "+ev.Text)
	case protocol.EventPrivate:
		return r.paint(r.private, fmt.Sprintf("[pm] %s: %s", ev.Sender, ev.Text))
	case protocol.EventFile:
		return r.paint(r.notice, fmt.Sprintf("* file %s (%d bytes encoded)", ev.Filename, len(ev.Payload)))
	case protocol.EventReact:
		return r.paint(r.muted, fmt.Sprintf("%s reacted %s to #%d", ev.Sender, ev.Symbol, ev.MessageID))
	default:
		return ev.Raw
	}
}
