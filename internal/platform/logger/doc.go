// Package logger provides structured logging for the application.
//
// It configures a JSON log/slog handler at the configured level and carries
// request-scoped loggers (with trace IDs attached) through context.Context.
package logger
