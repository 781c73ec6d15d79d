package thread

import (
	"sync"
	"sync/atomic"
)

// CrashInfo contains details about a panic that escaped a thread entry
// point.
type CrashInfo struct {
	PID   KernelPID
	Value any
	Stack []byte
}

var (
	crashActive atomic.Bool
	crashOnce   sync.Once

	crashHandler atomic.Value // func(CrashInfo)
)

// InCrashMode reports whether a thread crash has already been handled.
func InCrashMode() bool {
	return crashActive.Load()
}

// SetCrashHandler installs a process-wide handler for panics escaping
// thread entry points.
//
// The handler is invoked at most once (on the first crash). It must not
// panic. A handler that returns lets the original panic continue.
func SetCrashHandler(fn func(CrashInfo)) {
	crashHandler.Store(fn)
}

func triggerCrash(info CrashInfo) {
	crashOnce.Do(func() {
		crashActive.Store(true)
		info.Stack = captureStack()
		if v := crashHandler.Load(); v != nil {
			if fn, ok := v.(func(CrashInfo)); ok && fn != nil {
				fn(info)
			}
		}
	})
}
