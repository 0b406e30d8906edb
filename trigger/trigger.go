// Package trigger registers the global shortcut that starts a blocking
// session.
package trigger

import (
	"fmt"
	"strings"

	"golang.design/x/hotkey"
)

// Hotkey delivers a value on Keydown each time the shortcut is pressed.
type Hotkey interface {
	Register() error
	Unregister()
	Keydown() <-chan struct{}
}

// Binding is a parsed trigger descriptor.
type Binding struct {
	Mods []hotkey.Modifier
	Key  hotkey.Key
}

var keys = map[string]hotkey.Key{
	"a": hotkey.KeyA, "b": hotkey.KeyB, "c": hotkey.KeyC, "d": hotkey.KeyD,
	"e": hotkey.KeyE, "f": hotkey.KeyF, "g": hotkey.KeyG, "h": hotkey.KeyH,
	"i": hotkey.KeyI, "j": hotkey.KeyJ, "k": hotkey.KeyK, "l": hotkey.KeyL,
	"m": hotkey.KeyM, "n": hotkey.KeyN, "o": hotkey.KeyO, "p": hotkey.KeyP,
	"q": hotkey.KeyQ, "r": hotkey.KeyR, "s": hotkey.KeyS, "t": hotkey.KeyT,
	"u": hotkey.KeyU, "v": hotkey.KeyV, "w": hotkey.KeyW, "x": hotkey.KeyX,
	"y": hotkey.KeyY, "z": hotkey.KeyZ,
	"0": hotkey.Key0, "1": hotkey.Key1, "2": hotkey.Key2, "3": hotkey.Key3,
	"4": hotkey.Key4, "5": hotkey.Key5, "6": hotkey.Key6, "7": hotkey.Key7,
	"8": hotkey.Key8, "9": hotkey.Key9,
	"space":  hotkey.KeySpace,
	"return": hotkey.KeyReturn,
	"enter":  hotkey.KeyReturn,
	"esc":    hotkey.KeyEscape,
	"escape": hotkey.KeyEscape,
	"delete": hotkey.KeyDelete,
	"tab":    hotkey.KeyTab,
	"left":   hotkey.KeyLeft,
	"right":  hotkey.KeyRight,
	"up":     hotkey.KeyUp,
	"down":   hotkey.KeyDown,
	"f1":     hotkey.KeyF1,
	"f2":     hotkey.KeyF2,
	"f3":     hotkey.KeyF3,
	"f4":     hotkey.KeyF4,
	"f5":     hotkey.KeyF5,
	"f6":     hotkey.KeyF6,
	"f7":     hotkey.KeyF7,
	"f8":     hotkey.KeyF8,
	"f9":     hotkey.KeyF9,
	"f10":    hotkey.KeyF10,
	"f11":    hotkey.KeyF11,
	"f12":    hotkey.KeyF12,
}

// Parse converts a descriptor such as "ctrl+shift+b". Unlike the blocked
// combos, a trigger must be exact: the last segment is the key, every other
// segment must be a known modifier.
func Parse(desc string) (Binding, error) {
	parts := strings.Split(strings.ToLower(strings.TrimSpace(desc)), "+")
	if len(parts) < 2 {
		return Binding{}, fmt.Errorf("trigger %q needs at least one modifier and a key", desc)
	}

	keyName := parts[len(parts)-1]
	key, ok := keys[keyName]
	if !ok {
		return Binding{}, fmt.Errorf("unsupported key: %s", keyName)
	}

	var b Binding
	b.Key = key
	seen := make(map[string]bool)
	for _, part := range parts[:len(parts)-1] {
		mod, ok := modifiers[part]
		if !ok {
			return Binding{}, fmt.Errorf("unsupported modifier: %s", part)
		}
		if seen[part] {
			continue
		}
		seen[part] = true
		b.Mods = append(b.Mods, mod)
	}
	return b, nil
}
