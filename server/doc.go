// Package server implements a single-connection MCP server over
// newline-delimited JSON-RPC. It reads one JSON document per line from its
// reader (stdin by default), writes one response line per request to its
// writer (stdout by default), and keeps diagnostics on stderr via slog.
//
// Characteristics
//
//	Connection model : 1 process <-> 1 client
//	Lifecycle        : uninitialized -> ready -> shutting down
//	Transport        : line-oriented JSON-RPC 2.0, no network listener
//
// Tool semantics live in the tools package; the server owns only framing,
// lifecycle gating, and the mapping of failures to wire error codes.
// Cancellation notifications are acknowledged in the log but do not abort
// an in-flight call.
package server
