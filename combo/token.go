package combo

import "strings"

// Modifier is a set of modifier flags. Bit values match the macOS CGEventFlags
// masks so an event's flags field can be compared directly.
type Modifier uint64

const (
	Shift     Modifier = 0x00020000
	Control   Modifier = 0x00040000
	Alternate Modifier = 0x00080000
	Command   Modifier = 0x00100000
)

// Contains reports whether every flag in other is also set in m.
func (m Modifier) Contains(other Modifier) bool {
	return m&other == other
}

var modifierNames = []struct {
	flag Modifier
	name string
}{
	{Command, "cmd"},
	{Alternate, "opt"},
	{Shift, "shift"},
	{Control, "ctrl"},
}

func (m Modifier) String() string {
	var parts []string
	for _, mn := range modifierNames {
		if m.Contains(mn.flag) {
			parts = append(parts, mn.name)
		}
	}
	return strings.Join(parts, "+")
}

// Token is one parsed segment of a combo descriptor: either a physical key or
// a modifier flag.
type Token struct {
	Keycode  int64
	Modifier Modifier
	IsKey    bool
}

func Keycode(code int64) Token     { return Token{Keycode: code, IsKey: true} }
func ModifierKey(m Modifier) Token { return Token{Modifier: m} }
