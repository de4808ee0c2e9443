package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/kelseyhightower/envconfig"
	"github.com/moksh2305/secure-chat-application/internal/console"
	"github.com/moksh2305/secure-chat-application/internal/protocol"
)

// Exit codes for the client application.
const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

// Config defines the client-side environment variables.
type Config struct {
	Addr        string `envconfig:"CHAT_ADDR" default:"localhost:5000"`
	Name        string `envconfig:"CHAT_NAME" required:"true"`
	DownloadDir string `envconfig:"CHAT_DOWNLOAD_DIR"`
	Colours     bool   `envconfig:"CHAT_COLOURS" default:"true"`
}

func main() {
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "chatcat: %v\n", err)
	}
	os.Exit(code)
}

func run() (int, error) {
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		return exitConfig, fmt.Errorf("config error: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var dialer net.Dialer
	conn, err := dialer.DialContext(ctx, "tcp", config.Addr)
	if err != nil {
		return exitRuntime, fmt.Errorf("could not connect to %s: %w", config.Addr, err)
	}
	defer func() { _ = conn.Close() }()
	context.AfterFunc(ctx, func() { _ = conn.Close() })

	if _, err := fmt.Fprintf(conn, "%s\n", config.Name); err != nil {
		return exitRuntime, err
	}

	received := make(chan error, 1)
	go func() {
		received <- receive(conn, os.Stdout, config)
	}()

	go func() {
		if err := send(conn, os.Stdin); err != nil {
			fmt.Fprintf(os.Stderr, "chatcat: %v\n", err)
		}
		_, _ = fmt.Fprintln(conn, "/quit")
	}()

	select {
	case <-ctx.Done():
		return exitOK, nil
	case err := <-received:
		if err != nil && ctx.Err() == nil {
			return exitRuntime, err
		}
		return exitOK, nil
	}
}

// send forwards keyboard input until stdin ends or the user quits.
func send(w io.Writer, r io.Reader) error {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line, err := console.Translate(scanner.Text(), os.ReadFile)
		if errors.Is(err, console.ErrEmptyInput) {
			continue
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "chatcat: %v\n", err)
			continue
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
		if line == "/quit" {
			return nil
		}
	}
	return scanner.Err()
}

// receive prints server lines until the connection ends.
func receive(r io.Reader, w io.Writer, config Config) error {
	renderer := console.NewRenderer(config.Name, config.Colours)
	reader := bufio.NewReader(r)
	for {
		line, err := reader.ReadString('\n')
		if len(line) > 0 {
			ev := protocol.ParseEvent(strings.TrimSuffix(line, "\n"))
			if out := renderer.Render(ev); out != "" {
				_, _ = fmt.Fprintln(w, out)
			}
			if ev.Kind == protocol.EventFile && config.DownloadDir != "" {
				if dl, err := console.SaveFile(config.DownloadDir, ev); err != nil {
					fmt.Fprintf(os.Stderr, "chatcat: %v\n", err)
				} else {
					_, _ = fmt.Fprintf(w, "* saved %s (%s, %d bytes)\n", dl.Path, dl.MIME, dl.Size)
				}
			}
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
	}
}
