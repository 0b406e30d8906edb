package combo

// macOS virtual keycodes (ANSI layout).
var tokens = map[string]Token{
	"a": Keycode(0),
	"s": Keycode(1),
	"d": Keycode(2),
	"f": Keycode(3),
	"h": Keycode(4),
	"g": Keycode(5),
	"z": Keycode(6),
	"x": Keycode(7),
	"c": Keycode(8),
	"v": Keycode(9),
	"b": Keycode(11),
	"q": Keycode(12),
	"w": Keycode(13),
	"e": Keycode(14),
	"r": Keycode(15),
	"y": Keycode(16),
	"t": Keycode(17),
	"o": Keycode(31),
	"u": Keycode(32),
	"i": Keycode(34),
	"p": Keycode(35),
	"l": Keycode(37),
	"j": Keycode(38),
	"k": Keycode(40),
	"n": Keycode(45),
	"m": Keycode(46),

	"1": Keycode(18),
	"2": Keycode(19),
	"3": Keycode(20),
	"4": Keycode(21),
	"6": Keycode(22),
	"5": Keycode(23),
	"9": Keycode(25),
	"7": Keycode(26),
	"8": Keycode(28),
	"0": Keycode(29),

	"return": Keycode(36),
	"enter":  Keycode(36),
	"tab":    Keycode(48),
	"space":  Keycode(49),
	"delete": Keycode(51),
	"esc":    Keycode(53),
	"escape": Keycode(53),

	"f5":  Keycode(96),
	"f6":  Keycode(97),
	"f7":  Keycode(98),
	"f3":  Keycode(99),
	"f8":  Keycode(100),
	"f9":  Keycode(101),
	"f11": Keycode(103),
	"f10": Keycode(109),
	"f12": Keycode(111),
	"f4":  Keycode(118),
	"f2":  Keycode(120),
	"f1":  Keycode(122),

	"left":  Keycode(123),
	"right": Keycode(124),
	"down":  Keycode(125),
	"up":    Keycode(126),

	"cmd":     ModifierKey(Command),
	"command": ModifierKey(Command),
	"opt":     ModifierKey(Alternate),
	"option":  ModifierKey(Alternate),
	"alt":     ModifierKey(Alternate),
	"shift":   ModifierKey(Shift),
	"ctrl":    ModifierKey(Control),
	"control": ModifierKey(Control),
}

// Lookup returns the token registered for name. Names are lowercase.
func Lookup(name string) (Token, bool) {
	t, ok := tokens[name]
	return t, ok
}

// keyName is the preferred descriptor for a keycode, used when printing match keys.
var keyName = func() map[int64]string {
	names := make(map[int64]string)
	for name, t := range tokens {
		if !t.IsKey {
			continue
		}
		// Aliases share a keycode; keep the shortest name so output is stable.
		if prev, ok := names[t.Keycode]; !ok || len(name) < len(prev) || (len(name) == len(prev) && name < prev) {
			names[t.Keycode] = name
		}
	}
	return names
}()
