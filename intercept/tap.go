package intercept

import "keyhush/combo"

// handler receives callbacks from a tap. Both methods run on the tap's run
// loop thread.
type handler interface {
	// keyDown reports whether the event should be suppressed.
	keyDown(keycode int64, flags combo.Modifier) bool
	// entered is called each time the run loop is entered.
	entered()
}

// tap wraps the native event tap and run loop. install must be called on the
// thread that will later call run; stop may be called from any thread.
type tap interface {
	install(h handler) error
	run()
	stop()
	release()
}
