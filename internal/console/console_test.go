package console_test

import (
	"encoding/base64"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/moksh2305/secure-chat-application/internal/console"
	"github.com/moksh2305/secure-chat-application/internal/protocol"
	"github.com/stretchr/testify/require"
)

func TestTranslate(t *testing.T) {
	files := map[string][]byte{"/tmp/notes.txt": []byte("hello")}
	readFile := func(path string) ([]byte, error) {
		data, ok := files[path]
		if !ok {
			return nil, os.ErrNotExist
		}
		return data, nil
	}

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain text becomes a message", "hi there", "/msg hi there"},
		{"trailing newline is dropped", "hi\r\n", "/msg hi"},
		{"commands pass through", "/pm bob hey", "/pm bob hey"},
		{"quit passes through", "/quit", "/quit"},
		{"file is read and encoded", "/file /tmp/notes.txt", "/file notes.txt " + base64.StdEncoding.EncodeToString([]byte("hello"))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := console.Translate(tt.input, readFile)
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}

	t.Run("blank input", func(t *testing.T) {
		_, err := console.Translate("   ", readFile)
		require.ErrorIs(t, err, console.ErrEmptyInput)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := console.Translate("/file /nope", readFile)
		require.True(t, errors.Is(err, os.ErrNotExist))
	})

	t.Run("file without path", func(t *testing.T) {
		_, err := console.Translate("/file", readFile)
		require.Error(t, err)
	})
}

func TestRenderer_Plain(t *testing.T) {
	r := console.NewRenderer("alice", false)

	tests := []struct {
		line string
		want string
	}{
		{"/msgid 4", ""},
		{"/typing bob", "bob is typing..."},
		{"/typing alice", ""},
		{"/msg 4 bob hello world", "#4 bob: hello world"},
		{"/notify bob joined the chat.", "* bob joined the chat."},
		{"/users alice bob", "online: alice, bob"},
		{"/error Username is already taken.", "error: Username is already taken."},
		{"/pm bob psst", "[pm] bob: psst"},
		{"/react 4 👍 bob", "bob reacted 👍 to #4"},
		{"/file a.txt aGk=", "* file a.txt (4 bytes encoded)"},
		{"something else", "something else"},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			require.Equal(t, tt.want, r.Render(protocol.ParseEvent(tt.line)))
		})
	}
}

func TestRenderer_ColorsWrapText(t *testing.T) {
	r := console.NewRenderer("alice", true)
	out := r.Render(protocol.ParseEvent("/notify hi"))
	require.Contains(t, out, "* hi")
}

func TestSaveFile(t *testing.T) {
	t.Run("writes decoded contents under dir", func(t *testing.T) {
		req := require.New(t)
		dir := t.TempDir()
		ev := protocol.ParseEvent("/file ../../etc/passwd " + base64.StdEncoding.EncodeToString([]byte("plain text")))

		dl, err := console.SaveFile(dir, ev)
		req.NoError(err)
		req.Equal(filepath.Join(dir, "passwd"), dl.Path)
		req.Equal(10, dl.Size)
		req.Contains(dl.MIME, "text/plain")

		data, err := os.ReadFile(dl.Path)
		req.NoError(err)
		req.Equal("plain text", string(data))
	})

	t.Run("rejects bad payloads", func(t *testing.T) {
		_, err := console.SaveFile(t.TempDir(), protocol.ParseEvent("/file x.bin !!!"))
		require.Error(t, err)
	})

	t.Run("rejects other events", func(t *testing.T) {
		_, err := console.SaveFile(t.TempDir(), protocol.ParseEvent("/notify hi"))
		require.Error(t, err)
	})
}
