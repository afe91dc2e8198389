package core

import (
	"sync/atomic"

	"go.uber.org/zap"
)

// loggerPtr holds the logger used by the kernel packages. Kernel code runs on
// many goroutines at once, so the pointer is swapped atomically.
var loggerPtr atomic.Pointer[zap.Logger]

func init() {
	loggerPtr.Store(zap.NewNop())
}

// SetLogger installs the logger used by every kernel package.
// By default the kernel is silent. Passing nil restores the silent logger.
func SetLogger(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	loggerPtr.Store(l)
}

// Logger returns the kernel logger
func Logger() *zap.Logger {
	return loggerPtr.Load()
}
