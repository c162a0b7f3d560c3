// Package thread pins rendering work onto the main OS thread.
// SDL window and renderer calls are not safe off the main thread on macOS.
// See: https://github.com/golang/go/wiki/LockOSThread
package thread

import (
	"runtime"

	"github.com/faiface/mainthread"
)

var isMacOs = runtime.GOOS == "darwin"

// MainWrapMaybe runs f with a main-thread call dispatcher when the
// platform requires one, and directly otherwise.
func MainWrapMaybe(f func()) {
	if isMacOs {
		mainthread.Run(f)
	} else {
		f()
	}
}

// MainMaybe executes f on the main thread when the platform requires it.
func MainMaybe(f func()) {
	if isMacOs {
		mainthread.Call(f)
	} else {
		f()
	}
}
