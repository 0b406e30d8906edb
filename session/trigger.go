package session

import (
	"context"
	"sync"
	"time"
)

// Trigger is the fire-and-forget entry point used by the tray, the global
// hotkey and the TUI. At most one session runs at a time.
type Trigger struct {
	opts []Option

	// Config is read on every Fire so callers can change it between sessions.
	Config func() Config

	OnStart  func(Config)
	OnActive func(deadline time.Time)
	OnDone   func(Result, error)

	mu     sync.Mutex
	active bool
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewTrigger(cfg Config, opts ...Option) *Trigger {
	return &Trigger{
		opts:   opts,
		Config: func() Config { return cfg },
	}
}

// Fire starts a session in the background. It returns false if one is
// already running.
func (t *Trigger) Fire() bool {
	t.mu.Lock()
	if t.active {
		t.mu.Unlock()
		return false
	}
	ctx, cancel := context.WithCancel(context.Background())
	t.active = true
	t.cancel = cancel
	t.wg.Add(1)
	t.mu.Unlock()

	cfg := t.Config()
	if t.OnStart != nil {
		t.OnStart(cfg)
	}

	opts := t.opts
	if t.OnActive != nil {
		opts = append(append([]Option(nil), opts...), OnReady(t.OnActive))
	}

	go func() {
		defer t.wg.Done()
		res, err := Run(ctx, cfg, opts...)

		t.mu.Lock()
		t.active = false
		t.cancel = nil
		t.mu.Unlock()
		cancel()

		if t.OnDone != nil {
			t.OnDone(res, err)
		}
	}()
	return true
}

func (t *Trigger) Active() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.active
}

// Cancel ends the running session early, if any.
func (t *Trigger) Cancel() {
	t.mu.Lock()
	cancel := t.cancel
	t.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// Wait blocks until every fired session has finished.
func (t *Trigger) Wait() {
	t.wg.Wait()
}
