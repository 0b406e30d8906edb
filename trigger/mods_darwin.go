//go:build darwin

package trigger

import "golang.design/x/hotkey"

var modifiers = map[string]hotkey.Modifier{
	"ctrl":  hotkey.ModCtrl,
	"shift": hotkey.ModShift,
	"opt":   hotkey.ModOption,
	"alt":   hotkey.ModOption,
	"cmd":   hotkey.ModCmd,
}
