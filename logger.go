package ggplay

import (
	"context"
	"log/slog"
	"sync/atomic"
)

// nopHandler is a slog.Handler that silently discards all log records.
// The Enabled method returns false so the caller skips message formatting
// entirely, making disabled logging effectively zero-cost.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

// newNopLogger creates a logger that silently discards all output.
func newNopLogger() *slog.Logger { return slog.New(nopHandler{}) }

// loggerPtr stores the active logger. Accessed atomically so that
// SetLogger can be called concurrently with logging from any goroutine.
var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	loggerPtr.Store(newNopLogger())
}

// SetLogger configures the logger for ggplay and its internal packages.
// By default, ggplay produces no log output.
//
// Pass nil to disable logging (restore default silent behavior).
//
// Log levels used by ggplay:
//   - [slog.LevelDebug]: per-frame diagnostics (dispatch sizes, pacing skips)
//   - [slog.LevelInfo]: lifecycle events (adapter selected, stream ended)
//   - [slog.LevelWarn]: non-fatal issues (probe fallback, child kill errors)
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = newNopLogger()
	}
	loggerPtr.Store(l)
}

// Logger returns the current logger used by ggplay.
// Internal packages call this to share the same logger configuration.
func Logger() *slog.Logger {
	return loggerPtr.Load()
}

// loggerSetter is implemented by engines that keep their own logger.
type loggerSetter interface {
	SetLogger(*slog.Logger)
}

// AttachLogger passes the current logger to r if r accepts one.
// The GPU engine keeps a package-local logger and needs this call after
// construction; engines without a SetLogger method are left untouched.
func AttachLogger(r Resampler) {
	if ls, ok := r.(loggerSetter); ok {
		ls.SetLogger(Logger())
	}
}
