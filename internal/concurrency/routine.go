package concurrency

import (
	"log/slog"
	"runtime/debug"
)

// SafeGo runs fn in a named goroutine. A panic is logged with its stack and
// handed to onPanic instead of crashing the process.
func SafeGo(name string, fn func(), onPanic func(interface{})) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				slog.Error("Panic recovered", "goroutine", name, "panic", r, "stack", string(debug.Stack()))
				if onPanic != nil {
					onPanic(r)
				}
			}
		}()
		fn()
	}()
}
