package exception

import (
	"os"
	"runtime/debug"

	"github.com/web4asset/w4t/logx"
	"github.com/web4asset/w4t/monitoring"
)

// SafeGo runs fn in a goroutine and logs a panic instead of crashing the node
func SafeGo(name string, fn func()) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				monitoring.IncreasePanicCount()
				logx.Error("PANIC", "Panic in:", name, r, string(debug.Stack()))
			}
		}()
		fn()
	}()
}

// SafeGoWithPanic is SafeGo for goroutines the node cannot run without
func SafeGoWithPanic(name string, fn func()) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				monitoring.IncreasePanicCount()
				logx.Error("PANIC", "Panic in:", name, r, string(debug.Stack()))
				os.Exit(1)
			}
		}()
		fn()
	}()
}
