// Package testhelpers provides common utilities for testing the chat relay.
//
// It wraps TCP and WebSocket connections behind one line-oriented client so
// the same scenarios can be driven over either transport, and carries the
// HTTP assertions shared by the handler tests.
package testhelpers

import (
	"bufio"
	"errors"
	"net"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
)

// DefaultTimeout bounds every blocking read performed by a LineClient.
const DefaultTimeout = 2 * time.Second

// TestOrigin is the origin header sent by ConnectWebSocket.
const TestOrigin = "http://localhost:8080"

// LineClient speaks the newline-delimited protocol over some transport.
type LineClient struct {
	t       *testing.T
	send    func(line string) error
	recv    func(deadline time.Time) ([]string, error)
	close   func() error
	pending []string
}

// DialTCP connects to a line protocol listener.
func DialTCP(t *testing.T, addr string) *LineClient {
	t.Helper()

	conn, err := net.DialTimeout("tcp", addr, DefaultTimeout)
	require.NoError(t, err)

	reader := bufio.NewReader(conn)
	c := &LineClient{
		t: t,
		send: func(line string) error {
			_, err := conn.Write([]byte(line + "\n"))
			return err
		},
		recv: func(deadline time.Time) ([]string, error) {
			_ = conn.SetReadDeadline(deadline)
			line, err := reader.ReadString('\n')
			if err != nil {
				return nil, err
			}
			return []string{strings.TrimSuffix(line, "\n")}, nil
		},
		close: conn.Close,
	}
	t.Cleanup(func() { _ = c.Close() })
	return c
}

// DialWebSocket connects to the /ws endpoint of an HTTP front end.
func DialWebSocket(t *testing.T, url string) *LineClient {
	t.Helper()

	conn, err := ConnectWebSocket(url)
	require.NoError(t, err)

	c := &LineClient{
		t: t,
		send: func(line string) error {
			return conn.WriteMessage(websocket.TextMessage, []byte(line))
		},
		recv: func(deadline time.Time) ([]string, error) {
			_ = conn.SetReadDeadline(deadline)
			_, data, err := conn.ReadMessage()
			if err != nil {
				return nil, err
			}
			return strings.Split(strings.TrimSuffix(string(data), "\n"), "\n"), nil
		},
		close: conn.Close,
	}
	t.Cleanup(func() { _ = c.Close() })
	return c
}

// Send writes one line.
func (c *LineClient) Send(line string) {
	c.t.Helper()
	require.NoError(c.t, c.send(line))
}

// ReadLine returns the next line or an error once DefaultTimeout passes.
func (c *LineClient) ReadLine() (string, error) {
	return c.ReadLineWithin(DefaultTimeout)
}

// ReadLineWithin is ReadLine with an explicit timeout.
func (c *LineClient) ReadLineWithin(timeout time.Duration) (string, error) {
	if len(c.pending) == 0 {
		lines, err := c.recv(time.Now().Add(timeout))
		if err != nil {
			return "", err
		}
		c.pending = lines
	}
	line := c.pending[0]
	c.pending = c.pending[1:]
	return line, nil
}

// Expect reads the next line and requires it to equal want.
func (c *LineClient) Expect(want string) {
	c.t.Helper()
	got, err := c.ReadLine()
	require.NoError(c.t, err, "waiting for %q", want)
	require.Equal(c.t, want, got)
}

// ExpectLines reads len(want) lines and requires them in order.
func (c *LineClient) ExpectLines(want ...string) {
	c.t.Helper()
	for _, w := range want {
		c.Expect(w)
	}
}

// SkipUntil discards lines until one equals want.
func (c *LineClient) SkipUntil(want string) {
	c.t.Helper()
	for {
		got, err := c.ReadLine()
		require.NoError(c.t, err, "waiting for %q", want)
		if got == want {
			return
		}
	}
}

// ExpectSilence requires that nothing arrives within d.
func (c *LineClient) ExpectSilence(d time.Duration) {
	c.t.Helper()
	got, err := c.ReadLineWithin(d)
	require.Error(c.t, err, "unexpected line %q", got)
}

// ExpectClosed requires the server to end the connection.
func (c *LineClient) ExpectClosed() {
	c.t.Helper()
	deadline := time.Now().Add(DefaultTimeout)
	for time.Now().Before(deadline) {
		line, err := c.ReadLine()
		if err != nil {
			var netErr net.Error
			if errors.As(err, &netErr) && netErr.Timeout() {
				c.t.Fatal("connection still open")
			}
			return
		}
		c.t.Logf("draining %q", line)
	}
	c.t.Fatal("connection still open")
}

// Close drops the connection without a goodbye.
func (c *LineClient) Close() error {
	return c.close()
}

// Join connects over TCP and sends name as the first line.
func Join(t *testing.T, addr, name string) *LineClient {
	t.Helper()
	c := DialTCP(t, addr)
	c.Send(name)
	return c
}

// AssertStatusCode checks if the HTTP response has the expected status code.
func AssertStatusCode(t *testing.T, resp *http.Response, expected int) {
	t.Helper()
	require.Equal(t, expected, resp.StatusCode)
}

// AssertContentType checks if the HTTP response has the expected Content-Type header.
func AssertContentType(t *testing.T, resp *http.Response, expected string) {
	t.Helper()
	require.Equal(t, expected, resp.Header.Get("Content-Type"))
}

// MakeRequest creates and executes an HTTP request, returning the response.
// It includes a 5-second timeout and fails the test if the request cannot be
// created or executed successfully.
func MakeRequest(t *testing.T, method, url string) *http.Response {
	t.Helper()

	client := &http.Client{
		Timeout: 5 * time.Second,
	}

	req, err := http.NewRequest(method, url, http.NoBody)
	require.NoError(t, err)

	resp, err := client.Do(req)
	require.NoError(t, err)
	return resp
}

// ConnectWebSocket creates a WebSocket connection to the specified URL.
// It returns the connection or an error if connection fails.
func ConnectWebSocket(url string) (*websocket.Conn, error) {
	dialer := websocket.Dialer{
		HandshakeTimeout: 5 * time.Second,
	}

	// Set a proper origin header for testing
	headers := http.Header{}
	headers.Set("Origin", TestOrigin)

	conn, resp, err := dialer.Dial(url, headers)
	if resp != nil {
		_ = resp.Body.Close()
	}
	return conn, err
}
