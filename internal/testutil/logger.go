package testutil

import (
	"io"
	"log/slog"
)

// NopLogger returns a logger that discards everything it is given.
// Tests pass this wherever a service wants a *slog.Logger.
func NopLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}
