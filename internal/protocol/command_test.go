package protocol_test

import (
	"testing"

	"github.com/moksh2305/secure-chat-application/internal/chat"
	"github.com/moksh2305/secure-chat-application/internal/protocol"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		line string
		want protocol.Command
	}{
		{
			name: "send keeps embedded whitespace",
			line: "/msg hello  big   world",
			want: protocol.Command{Kind: protocol.KindSend, Raw: "/msg hello  big   world", Text: "hello  big   world"},
		},
		{
			name: "quit is case insensitive",
			line: " /QUIT ",
			want: protocol.Command{Kind: protocol.KindQuit, Raw: " /QUIT "},
		},
		{
			name: "typing ignores the redundant name",
			line: "/typing mallory",
			want: protocol.Command{Kind: protocol.KindTyping, Raw: "/typing mallory"},
		},
		{
			name: "typing without a name",
			line: "/typing",
			want: protocol.Command{Kind: protocol.KindTyping, Raw: "/typing"},
		},
		{
			name: "private message",
			line: "/pm bob see you at 5",
			want: protocol.Command{Kind: protocol.KindPrivate, Raw: "/pm bob see you at 5", Target: "bob", Text: "see you at 5"},
		},
		{
			name: "file transfer",
			line: "/file notes.txt aGVsbG8=",
			want: protocol.Command{Kind: protocol.KindFile, Raw: "/file notes.txt aGVsbG8=", Filename: "notes.txt", Payload: "aGVsbG8="},
		},
		{
			name: "reaction with a user containing spaces",
			line: "/react 12 👍 alice smith",
			want: protocol.Command{Kind: protocol.KindReact, Raw: "/react 12 👍 alice smith", MessageID: 12, Symbol: "👍", User: "alice smith"},
		},
		{
			name: "carriage return is stripped",
			line: "/msg hi\r",
			want: protocol.Command{Kind: protocol.KindSend, Raw: "/msg hi", Text: "hi"},
		},
		{
			name: "unknown command is raw",
			line: "/shrug ¯\\_(ツ)_/¯",
			want: protocol.Command{Kind: protocol.KindRaw, Raw: "/shrug ¯\\_(ツ)_/¯"},
		},
		{
			name: "plain text is raw",
			line: "hello",
			want: protocol.Command{Kind: protocol.KindRaw, Raw: "hello"},
		},
		{
			name: "msgid from a client is raw",
			line: "/msgid 4",
			want: protocol.Command{Kind: protocol.KindRaw, Raw: "/msgid 4"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := protocol.Parse(tt.line)
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestParse_Malformed(t *testing.T) {
	for _, line := range []string{
		"/msg",
		"/msg    ",
		"/pm bob",
		"/pm",
		"/file notes.txt",
		"/react x 👍 alice",
		"/react 0 👍 alice",
		"/react -3 👍 alice",
		"/react 3 👍",
		"/react 3  alice",
		"/msg bad\xff\xfebytes",
		"hello \xff",
		"\xc3",
	} {
		t.Run(line, func(t *testing.T) {
			_, err := protocol.Parse(line)
			require.ErrorIs(t, err, chat.ErrMalformedCommand)
		})
	}
}

func TestKind_String(t *testing.T) {
	req := require.New(t)
	req.Equal("msg", protocol.KindSend.String())
	req.Equal("react", protocol.KindReact.String())
	req.Equal("raw", protocol.Kind(99).String())
}
