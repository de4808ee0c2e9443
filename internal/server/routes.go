// Package server wires HTTP handlers into a ServeMux for the chat relay via
// routing helpers.
package server

import "net/http"

// SetupRoutes configures and returns an HTTP ServeMux with all application routes.
// It sets up handlers for health check, metrics, WebSocket endpoint, and test page.
func SetupRoutes(f *Frontend) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/", f.HealthHandler)
	mux.HandleFunc("/health", f.HealthHandler)
	mux.HandleFunc("/ws", f.WebSocketHandler)
	mux.HandleFunc("/test", f.TestPageHandler)
	mux.Handle("/metrics", f.hub.metrics.Handler())
	return mux
}
