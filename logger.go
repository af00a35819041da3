package vecscene

import (
	"log/slog"
	"sync/atomic"

	"github.com/gogpu/vecscene/internal/logging"
)

// loggerPtr stores the active logger. Accessed atomically so that
// SetLogger can be called concurrently with logging from any goroutine.
var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	loggerPtr.Store(logging.Nop())
}

// SetLogger configures the logger for vecscene and all its sub-packages.
// By default, vecscene produces no log output. Call SetLogger to enable
// logging.
//
// SetLogger is safe for concurrent use: it stores the new logger atomically.
// Pass nil to disable logging (restore default silent behavior). Renderers
// pick up the logger when they are created.
//
// Log levels used by vecscene:
//   - [slog.LevelDebug]: per-pass diagnostics, ignored settings
//   - [slog.LevelInfo]: lifecycle events (enable, disable, terrain rebuild)
//   - [slog.LevelWarn]: features not drawn, disposal errors, recovered panics
//
// Example:
//
//	vecscene.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
//	    Level: slog.LevelDebug,
//	})))
func SetLogger(l *slog.Logger) {
	loggerPtr.Store(logging.Or(l))
}

// Logger returns the current logger used by vecscene.
//
// Logger is safe for concurrent use.
func Logger() *slog.Logger {
	return loggerPtr.Load()
}
