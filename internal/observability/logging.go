package observability

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/cirrusrun/internal/logfields"
)

// LevelTrace sits below debug and is enabled by the third -v.
const LevelTrace = slog.LevelDebug - 4

// LevelForVerbosity maps the -v count to a level: 0 warn, 1 info, 2 debug, 3+ trace.
func LevelForVerbosity(verbosity int) slog.Level {
	switch {
	case verbosity <= 0:
		return slog.LevelWarn
	case verbosity == 1:
		return slog.LevelInfo
	case verbosity == 2:
		return slog.LevelDebug
	default:
		return LevelTrace
	}
}

// NewLogger builds the process logger. Console output goes to w at the level
// selected by verbosity. When file is non-nil everything from debug up is also
// written there, independent of verbosity.
func NewLogger(verbosity int, w io.Writer, file io.Writer) *slog.Logger {
	level := LevelForVerbosity(verbosity)
	console := slog.NewTextHandler(w, &slog.HandlerOptions{Level: level, ReplaceAttr: traceLevelName})
	if file == nil {
		return slog.New(console)
	}
	fileLevel := min(level, slog.LevelDebug)
	logfile := slog.NewTextHandler(file, &slog.HandlerOptions{Level: fileLevel, ReplaceAttr: traceLevelName})
	return slog.New(fanout{console, logfile})
}

// OpenLogFile opens path for appending, creating it when needed.
func OpenLogFile(path string) (*os.File, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	return f, nil
}

// WithRunTrace tags every record of logger with a fresh trace id and returns both.
func WithRunTrace(logger *slog.Logger) (*slog.Logger, string) {
	id := uuid.NewString()
	return logger.With(logfields.TraceID(id)), id
}

func traceLevelName(_ []string, a slog.Attr) slog.Attr {
	if a.Key == slog.LevelKey {
		if lvl, ok := a.Value.Any().(slog.Level); ok && lvl <= LevelTrace {
			a.Value = slog.StringValue("TRACE")
		}
	}
	return a
}

// fanout hands each record to every handler that accepts its level.
type fanout []slog.Handler

func (f fanout) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range f {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (f fanout) Handle(ctx context.Context, r slog.Record) error {
	var errs []error
	for _, h := range f {
		if h.Enabled(ctx, r.Level) {
			errs = append(errs, h.Handle(ctx, r.Clone()))
		}
	}
	return errors.Join(errs...)
}

func (f fanout) WithAttrs(attrs []slog.Attr) slog.Handler {
	out := make(fanout, len(f))
	for i, h := range f {
		out[i] = h.WithAttrs(attrs)
	}
	return out
}

func (f fanout) WithGroup(name string) slog.Handler {
	out := make(fanout, len(f))
	for i, h := range f {
		out[i] = h.WithGroup(name)
	}
	return out
}
