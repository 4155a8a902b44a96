// Package logging defines the structured-logging contract the server code
// depends on, keeping the concrete backend (slog here) out of business
// packages.
package logging

import "context"

// Logger is a structured, context-aware logger. The variadic args are
// alternating key-value pairs:
//
//	log.Info(ctx, "starting HTTP server", "address", addr)
type Logger interface {
	// Info records normal operational events (startup, shutdown).
	Info(ctx context.Context, msg string, args ...any)

	// Warn records rejected requests and other recoverable conditions.
	Warn(ctx context.Context, msg string, args ...any)

	// Error records failures that need operator attention.
	Error(ctx context.Context, msg string, args ...any)

	// With returns a child logger carrying the given key-value pairs on
	// every record, used to tag per-module loggers.
	With(args ...any) Logger
}
