// Package combo turns textual shortcut descriptors such as "cmd+opt+esc" into
// keycode/modifier pairs that can be matched against raw keyboard events.
package combo

import (
	"strconv"
	"strings"
)

const separator = "+"

// MatchKey is the canonical form of one combo: the physical key plus the
// modifiers that must be held for it to match.
type MatchKey struct {
	Keycode   int64
	Modifiers Modifier
}

func (k MatchKey) String() string {
	name, ok := keyName[k.Keycode]
	if !ok {
		name = "key" + strconv.FormatInt(k.Keycode, 10)
	}
	if k.Modifiers == 0 {
		return name
	}
	return k.Modifiers.String() + separator + name
}

// Matches reports whether an event with the given keycode and active flags
// triggers k. Extra held modifiers still match.
func (k MatchKey) Matches(keycode int64, flags Modifier) bool {
	return keycode == k.Keycode && flags.Contains(k.Modifiers)
}

// MatchKeySet is built once per interception session and never modified.
type MatchKeySet []MatchKey

// Match reports whether any key in s matches the event.
func (s MatchKeySet) Match(keycode int64, flags Modifier) bool {
	for _, k := range s {
		if k.Matches(keycode, flags) {
			return true
		}
	}
	return false
}

func (s MatchKeySet) Strings() []string {
	out := make([]string, len(s))
	for i, k := range s {
		out[i] = k.String()
	}
	return out
}

// Parse converts combos into match keys, preserving input order. Combos
// without a key token are dropped; it never fails.
func Parse(combos []string) MatchKeySet {
	set := make(MatchKeySet, 0, len(combos))
	for _, c := range combos {
		if k, ok := ParseOne(c); ok {
			set = append(set, k)
		}
	}
	return set
}

// ParseOne folds the tokens of a single combo. Unknown tokens are skipped,
// a later key overrides an earlier one and modifiers accumulate. ok is false
// when the combo names no key.
func ParseOne(combo string) (MatchKey, bool) {
	var (
		key    MatchKey
		hasKey bool
	)
	for _, part := range strings.Split(combo, separator) {
		t, found := tokens[part]
		if !found {
			continue
		}
		if t.IsKey {
			key.Keycode = t.Keycode
			hasKey = true
		} else {
			key.Modifiers |= t.Modifier
		}
	}
	return key, hasKey
}

// Unknown returns the segments of combo that Parse ignores.
func Unknown(combo string) []string {
	var out []string
	for _, part := range strings.Split(combo, separator) {
		if _, ok := tokens[part]; !ok {
			out = append(out, part)
		}
	}
	return out
}
