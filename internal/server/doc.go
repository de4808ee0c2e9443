// Package server implements the chat relay: the hub that routes the line
// protocol, the per-connection clients, and the TCP and HTTP/WebSocket front
// ends that feed it.
//
// The implementation is organized into specialized files for configuration,
// hub routing, broadcasting, clients, transports and HTTP handlers.
package server
