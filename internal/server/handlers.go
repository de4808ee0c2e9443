// Package server exposes HTTP handlers, including WebSocket upgrades, health
// checks, metrics and the built-in test page.
package server

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"
)

// Frontend serves the HTTP side of the relay. WebSocket sessions share the
// hub with TCP sessions.
type Frontend struct {
	hub      *Hub
	log      *slog.Logger
	upgrader websocket.Upgrader
}

func NewFrontend(hub *Hub, log *slog.Logger) *Frontend {
	policy := newOriginPolicy(log, hub.cfg.Origins())
	return &Frontend{
		hub: hub,
		log: log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     policy.check,
		},
	}
}

// WebSocketHandler validates that the request uses the GET method, upgrades
// the connection and hands it to the hub, which starts the pumps.
func (f *Frontend) WebSocketHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed. WebSocket endpoint only accepts GET requests.", http.StatusMethodNotAllowed)
		return
	}

	conn, err := f.upgrader.Upgrade(w, r, nil)
	if err != nil {
		f.log.Warn("WebSocket upgrade failed", "error", err)
		return
	}

	lc, err := newWSConn(conn, r.RemoteAddr, f.hub.cfg.MaxLineLength, f.hub.cfg.WriteTimeout)
	if err != nil {
		f.log.Warn("WebSocket setup failed", "error", err)
		_ = conn.Close()
		return
	}
	if !f.hub.Attach(NewClient(lc, f.hub)) {
		_ = conn.Close()
	}
}

// HealthHandler responds with a plain text status line.
func (f *Frontend) HealthHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	_, _ = fmt.Fprintf(w, "Chat relay is running! sessions=%d connections=%d",
		len(f.hub.Names()), f.hub.ConnectionCount())
}

// TestPageHandler serves a minimal browser console speaking the line
// protocol over /ws: the first line sent is the display name.
func (f *Frontend) TestPageHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html")
	if _, err := fmt.Fprint(w, testPage); err != nil {
		f.log.Warn("Error writing HTML response", "error", err)
	}
}

const testPage = `<!DOCTYPE html>
<html>
<head>
    <title>Chat relay console</title>
    <style>
        body { font-family: monospace; margin: 20px; }
        #log { border: 1px solid #ccc; height: 320px; padding: 8px; overflow-y: scroll; white-space: pre-wrap; }
        input[type="text"] { width: 360px; }
    </style>
</head>
<body>
    <h1>Chat relay console</h1>
    <div>
        <input type="text" id="name" placeholder="Display name">
        <button id="connect" onclick="toggle()">Connect</button>
    </div>
    <div id="log"></div>
    <div>
        <input type="text" id="input" placeholder="Message, or /pm name text, /quit ..." disabled>
    </div>
    <script>
        let ws = null;
        const log = document.getElementById('log');
        const input = document.getElementById('input');
        const button = document.getElementById('connect');

        function append(line) {
            log.textContent += line + '\n';
            log.scrollTop = log.scrollHeight;
        }

        function toggle() {
            if (ws) { ws.close(); return; }
            const name = document.getElementById('name').value.trim();
            if (!name) { return; }
            ws = new WebSocket((location.protocol === 'https:' ? 'wss://' : 'ws://') + location.host + '/ws');
            ws.onopen = () => { ws.send(name); input.disabled = false; button.textContent = 'Disconnect'; };
            ws.onmessage = (e) => e.data.split('\n').forEach(append);
            ws.onclose = () => { append('-- disconnected'); ws = null; input.disabled = true; button.textContent = 'Connect'; };
        }

        input.addEventListener('keypress', (e) => {
            if (e.key !== 'Enter' || !ws) { return; }
            const text = input.value;
            ws.send(text.startsWith('/') ? text : '/msg ' + text);
            input.value = '';
        });
    </script>
</body>
</html>`
