// Package logging configures the process-wide structured logger used by
// every component of the playback engine.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"sync/atomic"
)

const envLogLevel = "AVPLAY_LOG_LEVEL"

// dynamicLevel implements slog.Leveler backed by an atomic int64, so the
// level can be changed at runtime (e.g. from a future debug key binding)
// without re-creating the logger.
type dynamicLevel struct{ v int64 }

func (d *dynamicLevel) Level() slog.Level { return slog.Level(atomic.LoadInt64(&d.v)) }
func (d *dynamicLevel) set(l slog.Level)  { atomic.StoreInt64(&d.v, int64(l)) }

var (
	atomicLevel = &dynamicLevel{v: int64(slog.LevelInfo)}
	global      *slog.Logger
	initOnce    sync.Once
)

// Init initializes the global logger from (precedence high→low): the
// explicit level argument, the AVPLAY_LOG_LEVEL environment variable, and
// finally info. Safe to call multiple times; only the first call sets the
// writer.
func Init(levelFlag string) {
	initOnce.Do(func() {
		atomicLevel.set(detectLevel(levelFlag))
		global = slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: atomicLevel}))
		slog.SetDefault(global)
	})
}

func detectLevel(flagValue string) slog.Level {
	if strings.TrimSpace(flagValue) != "" {
		if lvl, ok := parseLevel(flagValue); ok {
			return lvl
		}
	}
	if env := os.Getenv(envLogLevel); env != "" {
		if lvl, ok := parseLevel(env); ok {
			return lvl
		}
	}
	return slog.LevelInfo
}

func parseLevel(s string) (slog.Level, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, true
	case "info", "":
		return slog.LevelInfo, true
	case "warn", "warning":
		return slog.LevelWarn, true
	case "error", "err":
		return slog.LevelError, true
	}
	return 0, false
}

// SetLevel changes the runtime log level.
func SetLevel(level string) bool {
	lvl, ok := parseLevel(level)
	if !ok {
		return false
	}
	atomicLevel.set(lvl)
	return true
}

// Logger returns the global logger, initializing it with defaults first if
// Init was never called.
func Logger() *slog.Logger {
	Init("")
	return global
}

// UseWriter swaps the output writer. Intended for tests.
func UseWriter(w io.Writer) {
	Init("")
	global = slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: atomicLevel}))
}

// WithStream attaches stream identity fields (audio/video stream index) to
// a logger for the lifetime of a pipeline worker.
func WithStream(l *slog.Logger, kind string, streamIndex int) *slog.Logger {
	return l.With("stream_kind", kind, "stream_index", streamIndex)
}
