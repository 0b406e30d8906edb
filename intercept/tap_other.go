//go:build !darwin

package intercept

import "fmt"

type unsupportedTap struct{}

func newTap() tap {
	return unsupportedTap{}
}

func (unsupportedTap) install(handler) error {
	return fmt.Errorf("%w: event taps require macOS", ErrTapCreationFailed)
}

func (unsupportedTap) run()     {}
func (unsupportedTap) stop()    {}
func (unsupportedTap) release() {}

// AccessibilityTrusted is always false where event taps are unavailable.
func AccessibilityTrusted(bool) bool {
	return false
}
