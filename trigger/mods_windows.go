//go:build windows

package trigger

import "golang.design/x/hotkey"

var modifiers = map[string]hotkey.Modifier{
	"ctrl":  hotkey.ModCtrl,
	"shift": hotkey.ModShift,
	"opt":   hotkey.ModAlt,
	"alt":   hotkey.ModAlt,
	"cmd":   hotkey.ModWin,
}
