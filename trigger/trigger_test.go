package trigger

import (
	"testing"

	"golang.design/x/hotkey"
)

func TestParse(t *testing.T) {
	b, err := Parse("ctrl+shift+b")
	if err != nil {
		t.Fatal(err)
	}
	if b.Key != hotkey.KeyB {
		t.Errorf("key = %v, want KeyB", b.Key)
	}
	if len(b.Mods) != 2 || b.Mods[0] != modifiers["ctrl"] || b.Mods[1] != modifiers["shift"] {
		t.Errorf("mods = %v", b.Mods)
	}
}

func TestParseNormalizes(t *testing.T) {
	b, err := Parse(" Ctrl+ctrl+F5 ")
	if err != nil {
		t.Fatal(err)
	}
	if b.Key != hotkey.KeyF5 || len(b.Mods) != 1 {
		t.Errorf("got %+v", b)
	}
}

func TestParseErrors(t *testing.T) {
	for _, desc := range []string{"", "b", "ctrl+", "ctrl+nope", "hyper+b", "ctrl+b+shift"} {
		if _, err := Parse(desc); err == nil {
			t.Errorf("Parse(%q) succeeded, want error", desc)
		}
	}
}

func TestNewRejectsBadDescriptor(t *testing.T) {
	if _, err := New("b"); err == nil {
		t.Error("expected error")
	}
}

func TestFake(t *testing.T) {
	f := NewFake()
	var hk Hotkey = f
	if err := hk.Register(); err != nil {
		t.Fatal(err)
	}
	f.SimKeydown()
	select {
	case <-hk.Keydown():
	default:
		t.Error("keydown not delivered")
	}
	hk.Unregister()
}
