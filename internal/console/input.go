package console

import (
	"encoding/base64"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// ErrEmptyInput is returned for input that produces no line.
var ErrEmptyInput = errors.New("empty input")

// ReadFileFunc loads the file named in a /file command.
type ReadFileFunc func(path string) ([]byte, error)

// Translate turns one line typed by the user into the protocol line to send.
// Plain text is posted with /msg. Commands pass through unchanged, except
// /file which is given a path and sends the file's base name and contents.
func Translate(input string, readFile ReadFileFunc) (string, error) {
	input = strings.TrimRight(input, "\r\n")
	if strings.TrimSpace(input) == "" {
		return "", ErrEmptyInput
	}
	if !strings.HasPrefix(input, "/") {
		return "/msg " + input, nil
	}

	token, rest, _ := strings.Cut(input, " ")
	if token != "/file" {
		return input, nil
	}

	path := strings.TrimSpace(rest)
	if path == "" {
		return "", fmt.Errorf("usage: /file <path>")
	}
	data, err := readFile(path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	name := strings.ReplaceAll(filepath.Base(path), " ", "_")
	return "/file " + name + " " + base64.StdEncoding.EncodeToString(data), nil
}
