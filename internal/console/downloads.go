package console

import (
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gabriel-vasile/mimetype"
	"github.com/moksh2305/secure-chat-application/internal/protocol"
)

// Download is a received file written to disk.
type Download struct {
	Path string
	Size int
	MIME string
}

// SaveFile decodes a /file event into dir. Only the base name of the
// advertised filename is used, so a sender cannot write outside dir.
func SaveFile(dir string, ev protocol.Event) (Download, error) {
	if ev.Kind != protocol.EventFile {
		return Download{}, fmt.Errorf("not a file event: %q", ev.Raw)
	}
	data, err := base64.StdEncoding.DecodeString(ev.Payload)
	if err != nil {
		return Download{}, fmt.Errorf("decode %s: %w", ev.Filename, err)
	}

	name := filepath.Base(filepath.Clean("/" + ev.Filename))
	if name == "/" || name == "." {
		return Download{}, fmt.Errorf("unusable filename %q", ev.Filename)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return Download{}, err
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return Download{}, err
	}
	return Download{Path: path, Size: len(data), MIME: mimetype.Detect(data).String()}, nil
}
