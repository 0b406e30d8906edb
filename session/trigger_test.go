package session

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func waitFor(t *testing.T, ch <-chan struct{}, what string) {
	t.Helper()
	select {
	case <-ch:
	case <-time.After(time.Second):
		t.Fatalf("timed out waiting for %s", what)
	}
}

func TestTriggerSingleFlight(t *testing.T) {
	var engines atomic.Int32
	active := make(chan struct{}, 1)
	doneCh := make(chan error, 2)

	tr := NewTrigger(Config{Window: 50 * time.Millisecond, Combos: DefaultCombos},
		WithEngine(func(zerolog.Logger) Engine {
			engines.Add(1)
			return newFakeEngine()
		}))
	tr.OnActive = func(time.Time) { active <- struct{}{} }
	tr.OnDone = func(_ Result, err error) { doneCh <- err }

	if !tr.Fire() {
		t.Fatal("first Fire returned false")
	}
	waitFor(t, active, "active")
	if tr.Fire() {
		t.Error("second Fire started a concurrent session")
	}
	if !tr.Active() {
		t.Error("trigger not active during session")
	}

	tr.Wait()
	if err := <-doneCh; err != nil {
		t.Fatalf("session error: %v", err)
	}
	if tr.Active() {
		t.Error("trigger still active after session")
	}

	if !tr.Fire() {
		t.Fatal("Fire after completion returned false")
	}
	tr.Wait()
	<-doneCh
	if engines.Load() != 2 {
		t.Errorf("built %d engines, want a fresh one per session (2)", engines.Load())
	}
}

func TestTriggerCancel(t *testing.T) {
	active := make(chan struct{}, 1)
	doneCh := make(chan error, 1)

	tr := NewTrigger(Config{Window: time.Hour, Combos: DefaultCombos},
		WithEngine(func(zerolog.Logger) Engine { return newFakeEngine() }))
	tr.OnActive = func(time.Time) { active <- struct{}{} }
	tr.OnDone = func(_ Result, err error) { doneCh <- err }

	tr.Fire()
	waitFor(t, active, "active")
	tr.Cancel()
	tr.Wait()

	if err := <-doneCh; !errors.Is(err, context.Canceled) {
		t.Errorf("got %v, want context.Canceled", err)
	}
	tr.Cancel() // no session; must not panic
}

func TestTriggerReadsConfigPerFire(t *testing.T) {
	var calls atomic.Int32
	started := make(chan Config, 1)

	tr := NewTrigger(Config{}, WithEngine(func(zerolog.Logger) Engine { return newFakeEngine() }))
	tr.Config = func() Config {
		calls.Add(1)
		return Config{Window: 10 * time.Millisecond, Combos: []string{"cmd+q"}}
	}
	tr.OnStart = func(c Config) { started <- c }

	tr.Fire()
	tr.Wait()
	if c := <-started; len(c.Combos) != 1 || c.Combos[0] != "cmd+q" {
		t.Errorf("OnStart got %+v", c)
	}
	if calls.Load() != 1 {
		t.Errorf("Config called %d times, want 1", calls.Load())
	}
}
