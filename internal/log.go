package internal

import (
	"log/slog"
	"os"
	"sync/atomic"
)

// logger is swappable at process scope via SetLogger, mirroring how the
// teacher's package-level runtime is itself a swappable singleton
// (internal/runtime.go's build-tag default vs runtime_wasm.go override).
var logger atomic.Pointer[slog.Logger]

func init() {
	logger.Store(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn})))
}

// SetLogger overrides the package-wide structured logger.
func SetLogger(l *slog.Logger) {
	if l == nil {
		return
	}
	logger.Store(l)
}

// Log returns the current logger for ad-hoc structured logging calls
// from graph/batch/node machinery.
func Log() *slog.Logger {
	return logger.Load()
}
