// Package logging holds the slog plumbing shared by every vecscene package.
//
// Components receive a *slog.Logger through their configuration. A nil
// logger means "silent", which is served by a handler whose Enabled method
// returns false so that callers skip message formatting entirely.
package logging

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// nopHandler is a slog.Handler that silently discards all log records.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

var nop = slog.New(nopHandler{})

// Nop returns a logger that discards all output.
func Nop() *slog.Logger { return nop }

// Or returns l, or the nop logger when l is nil.
func Or(l *slog.Logger) *slog.Logger {
	if l == nil {
		return nop
	}
	return l
}

// Throttle rate-limits a class of repeated log lines, keyed by a short
// string such as "convert". The first few occurrences of each key are
// always logged, after that at most one per interval.
type Throttle struct {
	mu       sync.Mutex
	first    int
	interval time.Duration
	keys     map[string]*rate.Sometimes
}

// NewThrottle returns a Throttle that logs the first n lines of each key and
// then one line per interval.
func NewThrottle(first int, interval time.Duration) *Throttle {
	return &Throttle{
		first:    first,
		interval: interval,
		keys:     make(map[string]*rate.Sometimes),
	}
}

// Do runs fn unless the key is currently throttled.
func (t *Throttle) Do(key string, fn func()) {
	t.mu.Lock()
	s, ok := t.keys[key]
	if !ok {
		s = &rate.Sometimes{First: t.first, Interval: t.interval}
		t.keys[key] = s
	}
	t.mu.Unlock()
	s.Do(fn)
}
