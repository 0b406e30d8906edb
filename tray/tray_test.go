package tray

import (
	"testing"
	"time"
)

func TestCountdown(t *testing.T) {
	now := time.Now()
	SetBlocking(true, now.Add(9600*time.Millisecond))
	t.Cleanup(func() { SetBlocking(false, time.Time{}) })

	if got := countdown(now); got != "10s" {
		t.Errorf("got %q, want 10s", got)
	}
	if got := countdown(now.Add(time.Minute)); got != "0s" {
		t.Errorf("got %q after deadline, want 0s", got)
	}

	SetBlocking(false, time.Time{})
	if got := countdown(now); got != "" {
		t.Errorf("got %q while idle, want empty", got)
	}
}

func TestBlockTitle(t *testing.T) {
	if got := blockTitle(10 * time.Second); got != "Block Shortcuts for 10s" {
		t.Errorf("got %q", got)
	}
}

func TestFireCallbacks(t *testing.T) {
	var blocked, cancelled int
	OnBlock(func() { blocked++ })
	OnCancel(func() { cancelled++ })
	t.Cleanup(func() { OnBlock(nil); OnCancel(nil) })

	fire(&blockFn)
	fire(&cancelFn)
	fire(&cancelFn)
	if blocked != 1 || cancelled != 2 {
		t.Errorf("blocked=%d cancelled=%d", blocked, cancelled)
	}
}
