package alloc

import (
	"io"
	"log/slog"
	"os"

	"github.com/joshuapare/heapkit/heap/dirty"
)

// logEnv switches on allocator debug logging to stderr when set.
const logEnv = "HEAPKIT_LOG_ALLOC"

// Option configures an Allocator.
type Option func(*Allocator)

// WithStrict makes Free return ErrUnknownPointer for pointers the allocator
// does not own instead of ignoring them.
func WithStrict() Option {
	return func(a *Allocator) { a.strict = true }
}

// WithInPlaceResize lets Realloc shrink a block, or grow it into a free
// successor, without moving it.
func WithInPlaceResize() Option {
	return func(a *Allocator) { a.inPlace = true }
}

// WithLogger sets the logger for allocator events. nil restores the default.
func WithLogger(l *slog.Logger) Option {
	return func(a *Allocator) { a.log = l }
}

// WithDirtyTracker reports every header and payload write to dt.
func WithDirtyTracker(dt dirty.DirtyTracker) Option {
	return func(a *Allocator) { a.dt = dt }
}

// WithGrowHook calls fn with the byte count after every successful growth.
func WithGrowHook(fn func(n int64)) Option {
	return func(a *Allocator) { a.onGrow = fn }
}

func defaultLogger() *slog.Logger {
	if os.Getenv(logEnv) != "" {
		return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
