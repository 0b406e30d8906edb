package tray

import (
	"fmt"
	"sync"
	"time"
)

var (
	quitCh    = make(chan struct{})
	closeOnce sync.Once

	mu       sync.Mutex
	blockFn  func()
	cancelFn func()
	window   time.Duration
	blocking bool
	deadline time.Time
)

func OnBlock(fn func())  { mu.Lock(); blockFn = fn; mu.Unlock() }
func OnCancel(fn func()) { mu.Lock(); cancelFn = fn; mu.Unlock() }

func SetWindow(d time.Duration) {
	mu.Lock()
	window = d
	mu.Unlock()
	updateBlockTitle(blockTitle(d))
}

// SetBlocking switches the status item between idle and the countdown shown
// while shortcuts are blocked.
func SetBlocking(on bool, until time.Time) {
	mu.Lock()
	blocking = on
	deadline = until
	mu.Unlock()
	updateBlocking(on)
}

func SetError(msg string) {
	updateTooltip("keyhush – " + msg)
	go func() {
		time.Sleep(10 * time.Second)
		updateTooltip("keyhush")
	}()
}

func Quit() {
	closeOnce.Do(func() { close(quitCh) })
}

func blockTitle(d time.Duration) string {
	return fmt.Sprintf("Block Shortcuts for %s", d)
}

// countdown is the menu bar text while blocking; empty when idle.
func countdown(now time.Time) string {
	mu.Lock()
	defer mu.Unlock()
	if !blocking {
		return ""
	}
	left := deadline.Sub(now)
	if left < 0 {
		left = 0
	}
	return fmt.Sprintf("%ds", int(left.Round(time.Second).Seconds()))
}

func fire(fn *func()) {
	mu.Lock()
	f := *fn
	mu.Unlock()
	if f != nil {
		f()
	}
}
