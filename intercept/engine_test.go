package intercept

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"keyhush/combo"
)

var defaultCombos = []string{"cmd+c", "cmd+v", "cmd+q", "cmd+opt+esc"}

type fakeEvent struct {
	keycode int64
	flags   combo.Modifier
	result  chan bool
}

// fakeTap stands in for the native tap: run delivers injected events to the
// handler until stop is called.
type fakeTap struct {
	installErr error
	gate       chan struct{} // if set, run waits on it before entering the loop

	h         handler
	installed chan struct{}
	events    chan fakeEvent
	stopCh    chan struct{}
	stopOnce  sync.Once
	released  atomic.Bool
	runs      atomic.Int32
}

func newFakeTap() *fakeTap {
	return &fakeTap{
		installed: make(chan struct{}),
		events:    make(chan fakeEvent),
		stopCh:    make(chan struct{}),
	}
}

func (f *fakeTap) install(h handler) error {
	if f.installErr != nil {
		return f.installErr
	}
	f.h = h
	close(f.installed)
	return nil
}

func (f *fakeTap) run() {
	f.runs.Add(1)
	if f.gate != nil {
		<-f.gate
	}
	f.h.entered()
	for {
		select {
		case <-f.stopCh:
			return
		case ev := <-f.events:
			ev.result <- f.h.keyDown(ev.keycode, ev.flags)
		}
	}
}

func (f *fakeTap) stop()    { f.stopOnce.Do(func() { close(f.stopCh) }) }
func (f *fakeTap) release() { f.released.Store(true) }

func (f *fakeTap) press(t *testing.T, name string, flags combo.Modifier) bool {
	t.Helper()
	tok, ok := combo.Lookup(name)
	if !ok || !tok.IsKey {
		t.Fatalf("unknown key %q", name)
	}
	ev := fakeEvent{keycode: tok.Keycode, flags: flags, result: make(chan bool, 1)}
	select {
	case f.events <- ev:
	case <-time.After(time.Second):
		t.Fatal("timed out delivering event")
	}
	return <-ev.result
}

func newTestEngine(f *fakeTap) *Engine {
	return New(withTap(func() tap { return f }))
}

func startEngine(t *testing.T, e *Engine, combos []string) <-chan error {
	t.Helper()
	done := make(chan error, 1)
	go func() { done <- e.Execute(combos) }()
	return done
}

func waitReady(t *testing.T, e *Engine) {
	t.Helper()
	select {
	case <-e.Ready():
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for ready")
	}
}

func waitDone(t *testing.T, done <-chan error) error {
	t.Helper()
	select {
	case err := <-done:
		return err
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for Execute to return")
		return nil
	}
}

func TestStopEndsExecute(t *testing.T) {
	f := newFakeTap()
	e := newTestEngine(f)
	done := startEngine(t, e, defaultCombos)
	waitReady(t, e)

	e.Stop()
	if err := waitDone(t, done); err != nil {
		t.Fatalf("Execute returned %v, want nil", err)
	}
	if !f.released.Load() {
		t.Error("tap not released after stop")
	}
}

func TestSuppressesMatchingKeyDown(t *testing.T) {
	f := newFakeTap()
	e := newTestEngine(f)
	done := startEngine(t, e, defaultCombos)
	waitReady(t, e)

	tests := []struct {
		key   string
		flags combo.Modifier
		want  bool
	}{
		{"c", combo.Command, true},
		{"c", 0, false},
		{"v", combo.Command | combo.Shift, true},
		{"q", combo.Control, false},
		{"esc", combo.Command | combo.Alternate | combo.Shift, true},
		{"esc", combo.Command, false},
		{"a", combo.Command, false},
	}
	for _, tt := range tests {
		if got := f.press(t, tt.key, tt.flags); got != tt.want {
			t.Errorf("press(%s, %v) suppressed=%v, want %v", tt.key, tt.flags, got, tt.want)
		}
	}

	e.Stop()
	if err := waitDone(t, done); err != nil {
		t.Fatal(err)
	}

	st := e.Stats()
	if st.Seen != uint64(len(tests)) {
		t.Errorf("seen = %d, want %d", st.Seen, len(tests))
	}
	if st.Suppressed != 3 {
		t.Errorf("suppressed = %d, want 3", st.Suppressed)
	}
}

func TestNoMatchKeysStillRuns(t *testing.T) {
	f := newFakeTap()
	e := newTestEngine(f)
	done := startEngine(t, e, []string{"cmd+opt", "shift"})
	waitReady(t, e)

	if len(e.Keys()) != 0 {
		t.Errorf("expected no match keys, got %v", e.Keys())
	}
	if f.press(t, "c", combo.Command) {
		t.Error("event suppressed with empty match set")
	}

	e.Stop()
	if err := waitDone(t, done); err != nil {
		t.Fatal(err)
	}
}

func TestTapCreationFailed(t *testing.T) {
	f := newFakeTap()
	f.installErr = fmt.Errorf("%w: accessibility permission not granted", ErrTapCreationFailed)
	e := newTestEngine(f)

	err := e.Execute(defaultCombos)
	if !errors.Is(err, ErrTapCreationFailed) {
		t.Fatalf("got %v, want ErrTapCreationFailed", err)
	}
	if f.runs.Load() != 0 {
		t.Error("run loop started after failed install")
	}
	select {
	case <-e.Ready():
		t.Error("ready closed after failed install")
	default:
	}
	if err := e.Execute(defaultCombos); !errors.Is(err, ErrEngineStopped) {
		t.Errorf("second Execute returned %v, want ErrEngineStopped", err)
	}
}

func TestSourceCreationFailed(t *testing.T) {
	f := newFakeTap()
	f.installErr = ErrSourceCreationFailed
	e := newTestEngine(f)

	if err := e.Execute(defaultCombos); !errors.Is(err, ErrSourceCreationFailed) {
		t.Fatalf("got %v, want ErrSourceCreationFailed", err)
	}
	// Stop after a failed session must not panic or block.
	e.Stop()
}

func TestStopBeforeLoopEntered(t *testing.T) {
	f := newFakeTap()
	f.gate = make(chan struct{})
	e := newTestEngine(f)
	done := startEngine(t, e, defaultCombos)

	select {
	case <-f.installed:
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for install")
	}
	e.Stop()
	close(f.gate)

	if err := waitDone(t, done); err != nil {
		t.Fatal(err)
	}
}

func TestStopBeforeExecute(t *testing.T) {
	f := newFakeTap()
	e := newTestEngine(f)
	e.Stop()

	if err := e.Execute(defaultCombos); err != nil {
		t.Fatalf("got %v, want nil", err)
	}
	select {
	case <-f.installed:
		t.Error("tap installed after stop")
	default:
	}
}

func TestStopTwice(t *testing.T) {
	f := newFakeTap()
	e := newTestEngine(f)
	done := startEngine(t, e, defaultCombos)
	waitReady(t, e)

	e.Stop()
	e.Stop()
	if err := waitDone(t, done); err != nil {
		t.Fatal(err)
	}
	e.Stop()
}

func TestStopFromManyGoroutines(t *testing.T) {
	f := newFakeTap()
	e := newTestEngine(f)
	done := startEngine(t, e, defaultCombos)
	waitReady(t, e)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			e.Stop()
		}()
	}
	wg.Wait()
	if err := waitDone(t, done); err != nil {
		t.Fatal(err)
	}
}

// freeingTap drops its loop on release the way the native tap frees its
// handle, so a stop that races with release dereferences nil.
type freeingTap struct {
	*fakeTap
	loop *fakeTap
}

func (f *freeingTap) install(h handler) error {
	f.loop = f.fakeTap
	return f.fakeTap.install(h)
}

func (f *freeingTap) stop() { f.loop.stop() }

func (f *freeingTap) release() {
	f.loop = nil
	f.fakeTap.release()
}

func TestStopRacingRelease(t *testing.T) {
	for i := 0; i < 50; i++ {
		f := &freeingTap{fakeTap: newFakeTap()}
		e := New(withTap(func() tap { return f }))
		done := startEngine(t, e, defaultCombos)
		waitReady(t, e)

		var wg sync.WaitGroup
		for j := 0; j < 4; j++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for k := 0; k < 20; k++ {
					e.Stop()
				}
			}()
		}
		if err := waitDone(t, done); err != nil {
			t.Fatal(err)
		}
		wg.Wait()
		if !f.released.Load() {
			t.Fatal("tap not released")
		}
	}
}

func TestEngineNotReusable(t *testing.T) {
	f := newFakeTap()
	e := newTestEngine(f)
	done := startEngine(t, e, defaultCombos)
	waitReady(t, e)
	e.Stop()
	if err := waitDone(t, done); err != nil {
		t.Fatal(err)
	}

	if err := e.Execute(defaultCombos); !errors.Is(err, ErrEngineStopped) {
		t.Errorf("got %v, want ErrEngineStopped", err)
	}
	if f.runs.Load() != 1 {
		t.Errorf("run loop ran %d times, want 1", f.runs.Load())
	}
}

func TestKeysBeforeExecute(t *testing.T) {
	e := newTestEngine(newFakeTap())
	if k := e.Keys(); k != nil {
		t.Errorf("expected nil keys before Execute, got %v", k)
	}
}
