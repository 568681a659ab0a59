// Package httpserver runs the HTTP server with signal-aware graceful shutdown
// and provides liveness and readiness handlers.
package httpserver
