//go:build darwin

package intercept

/*
#cgo LDFLAGS: -framework ApplicationServices -framework CoreFoundation

#include "tap_darwin.h"
*/
import "C"

import (
	"fmt"
	"runtime/cgo"

	"keyhush/combo"
)

// darwinTap installs a CGEventTap at the HID location on the current
// thread's CFRunLoop.
type darwinTap struct {
	handle cgo.Handle
	h      handler
	t      *C.khTap
}

func newTap() tap {
	return &darwinTap{}
}

func (d *darwinTap) install(h handler) error {
	d.h = h
	d.handle = cgo.NewHandle(d)
	d.t = C.khTapNew(C.uintptr_t(d.handle))
	if d.t == nil {
		d.handle.Delete()
		return fmt.Errorf("%w: out of memory", ErrTapCreationFailed)
	}

	switch C.khTapInstall(d.t) {
	case C.KH_TAP_OK:
		return nil
	case C.KH_TAP_CREATE_FAILED:
		d.release()
		if C.khAccessibilityTrusted(0) == 0 {
			return fmt.Errorf("%w: accessibility permission not granted", ErrTapCreationFailed)
		}
		return ErrTapCreationFailed
	default:
		d.release()
		return ErrSourceCreationFailed
	}
}

func (d *darwinTap) run() {
	C.khTapRun(d.t)
}

func (d *darwinTap) stop() {
	C.khTapStop(d.t)
}

func (d *darwinTap) release() {
	if d.t == nil {
		return
	}
	C.khTapRelease(d.t)
	d.t = nil
	d.handle.Delete()
}

// reenabled returns how often the system disabled the tap and it was turned
// back on.
func (d *darwinTap) reenabled() int {
	if d.t == nil {
		return 0
	}
	return int(d.t.reenabled)
}

//export khKeyDown
func khKeyDown(handle C.uintptr_t, keycode C.int64_t, flags C.uint64_t) C.int {
	d := cgo.Handle(handle).Value().(*darwinTap)
	if d.h.keyDown(int64(keycode), combo.Modifier(flags)) {
		return 1
	}
	return 0
}

//export khLoopEntered
func khLoopEntered(handle C.uintptr_t) {
	d := cgo.Handle(handle).Value().(*darwinTap)
	d.h.entered()
}

// AccessibilityTrusted reports whether this process may create event taps.
// With prompt set, macOS shows the permission dialog if it is not.
func AccessibilityTrusted(prompt bool) bool {
	p := C.int(0)
	if prompt {
		p = 1
	}
	return C.khAccessibilityTrusted(p) == 1
}
