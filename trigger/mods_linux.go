//go:build linux

package trigger

import "golang.design/x/hotkey"

// X11: Alt is Mod1, Super is Mod4.
var modifiers = map[string]hotkey.Modifier{
	"ctrl":  hotkey.ModCtrl,
	"shift": hotkey.ModShift,
	"opt":   hotkey.Mod1,
	"alt":   hotkey.Mod1,
	"cmd":   hotkey.Mod4,
}
