package server

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"net"
	"strings"
	"time"

	"github.com/gorilla/websocket"
)

const (
	transportTCP       = "tcp"
	transportWebSocket = "websocket"

	pongWait   = 60 * time.Second
	pingPeriod = 54 * time.Second
)

var errLineTooLong = errors.New("line exceeds maximum length")

// lineConn is a duplex stream of protocol lines. ReadLine is only called from
// the read pump and the write methods only from the write pump.
type lineConn interface {
	ReadLine() (string, error)
	WriteLines(lines []string) error
	Ping() error
	// Close ends the stream politely; Abort drops it without blocking.
	Close() error
	Abort() error
	RemoteAddr() string
	Transport() string
}

// tcpConn frames a raw byte stream on '\n'.
type tcpConn struct {
	conn         net.Conn
	scanner      *bufio.Scanner
	writer       *bufio.Writer
	writeTimeout time.Duration
}

func newTCPConn(conn net.Conn, maxLineLength int, writeTimeout time.Duration) *tcpConn {
	scanner := bufio.NewScanner(conn)
	// room for the line plus "\r\n"
	scanner.Buffer(make([]byte, 0, 4096), maxLineLength+2)
	return &tcpConn{
		conn:         conn,
		scanner:      scanner,
		writer:       bufio.NewWriter(conn),
		writeTimeout: writeTimeout,
	}
}

func (c *tcpConn) ReadLine() (string, error) {
	if c.scanner.Scan() {
		return strings.TrimSuffix(c.scanner.Text(), "\r"), nil
	}
	if err := c.scanner.Err(); err != nil {
		if errors.Is(err, bufio.ErrTooLong) {
			return "", errLineTooLong
		}
		return "", err
	}
	return "", io.EOF
}

func (c *tcpConn) WriteLines(lines []string) error {
	if err := c.conn.SetWriteDeadline(time.Now().Add(c.writeTimeout)); err != nil {
		return fmt.Errorf("set write deadline: %w", err)
	}
	for _, line := range lines {
		if _, err := c.writer.WriteString(line); err != nil {
			return err
		}
		if err := c.writer.WriteByte('\n'); err != nil {
			return err
		}
	}
	return c.writer.Flush()
}

// Ping is a no-op: the line protocol has no keepalive and disconnects are
// detected through read errors.
func (c *tcpConn) Ping() error { return nil }

func (c *tcpConn) Close() error { return c.conn.Close() }

func (c *tcpConn) Abort() error { return c.conn.Close() }

func (c *tcpConn) RemoteAddr() string { return c.conn.RemoteAddr().String() }

func (c *tcpConn) Transport() string { return transportTCP }

// wsConn carries protocol lines in WebSocket text frames. A frame may hold
// several lines separated by '\n'.
type wsConn struct {
	conn         *websocket.Conn
	addr         string
	pending      []string
	writeTimeout time.Duration
}

func newWSConn(conn *websocket.Conn, addr string, maxLineLength int, writeTimeout time.Duration) (*wsConn, error) {
	conn.SetReadLimit(int64(maxLineLength))
	if err := conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		return nil, fmt.Errorf("set initial read deadline: %w", err)
	}
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	return &wsConn{conn: conn, addr: addr, writeTimeout: writeTimeout}, nil
}

func (c *wsConn) ReadLine() (string, error) {
	for len(c.pending) == 0 {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if errors.Is(err, websocket.ErrReadLimit) {
				return "", errLineTooLong
			}
			return "", err
		}
		// any frame proves liveness, not only pongs
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
		c.pending = strings.Split(strings.TrimSuffix(string(data), "\n"), "\n")
	}
	line := c.pending[0]
	c.pending = c.pending[1:]
	return strings.TrimSuffix(line, "\r"), nil
}

func (c *wsConn) WriteLines(lines []string) error {
	if err := c.conn.SetWriteDeadline(time.Now().Add(c.writeTimeout)); err != nil {
		return fmt.Errorf("set write deadline: %w", err)
	}
	w, err := c.conn.NextWriter(websocket.TextMessage)
	if err != nil {
		return fmt.Errorf("create writer: %w", err)
	}
	for i, line := range lines {
		if i > 0 {
			if _, err := w.Write([]byte{'\n'}); err != nil {
				return err
			}
		}
		if _, err := io.WriteString(w, line); err != nil {
			return err
		}
	}
	return w.Close()
}

func (c *wsConn) Ping() error {
	if err := c.conn.SetWriteDeadline(time.Now().Add(c.writeTimeout)); err != nil {
		return err
	}
	return c.conn.WriteMessage(websocket.PingMessage, nil)
}

// Close sends a close frame when possible, then closes the socket.
func (c *wsConn) Close() error {
	deadline := time.Now().Add(time.Second)
	_ = c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), deadline)
	return c.conn.Close()
}

func (c *wsConn) Abort() error { return c.conn.Close() }

func (c *wsConn) RemoteAddr() string { return c.addr }

func (c *wsConn) Transport() string { return transportWebSocket }
