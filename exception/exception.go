package exception

import (
	"fmt"
	"runtime/debug"

	"github.com/mezonai/decash/logx"
	"github.com/mezonai/decash/monitoring"
)

// SafeGo runs fn in a goroutine, logging instead of crashing on panic
func SafeGo(name string, fn func()) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				monitoring.IncreasePanicCount()
				logx.Error("PANIC", name, r, string(debug.Stack()))
			}
		}()
		fn()
	}()
}

// Recover converts a panic in fn into an error carrying the panic value and stack
func Recover(name string, fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			monitoring.IncreasePanicCount()
			logx.Error("PANIC", name, r, string(debug.Stack()))
			err = fmt.Errorf("panic in %s: %v", name, r)
		}
	}()
	return fn()
}
