// Package logger provides structured logging functionality for the application.
//
// It builds on log/slog: JSON output for production and a colored console
// handler (tint) for local development, plus helpers for carrying a
// request-scoped logger through a context.Context.
package logger
