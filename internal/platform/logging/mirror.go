package logging

import (
	"context"
	"sync/atomic"
)

// MirrorFunc receives every emitted log record in addition to the zap core.
// Used to ship logs to an OTLP backend without a second logger in call sites.
type MirrorFunc func(ctx context.Context, level Level, msg string, args ...any)

type mirrorHolder struct {
	fn MirrorFunc
}

var mirror atomic.Pointer[mirrorHolder]

// SetMirror installs fn as the global log mirror. Passing nil removes the
// current mirror.
func SetMirror(fn MirrorFunc) {
	if fn == nil {
		mirror.Store(nil)
		return
	}
	mirror.Store(&mirrorHolder{fn: fn})
}

func mirrorLog(ctx context.Context, level Level, msg string, args ...any) {
	holder := mirror.Load()
	if holder == nil || holder.fn == nil {
		return
	}
	holder.fn(ctx, level, msg, args...)
}
