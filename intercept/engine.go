// Package intercept swallows keyboard shortcuts system-wide for as long as an
// Engine's run loop is running.
//
// An Engine is single use: Execute installs a key-down event tap on the
// calling goroutine's OS thread and blocks until Stop is called from anywhere
// else. Matching events are rewritten to a null event so no application,
// including this one, observes them.
package intercept

import (
	"errors"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"keyhush/combo"
)

var (
	// ErrTapCreationFailed means the OS refused to create the event tap,
	// usually because accessibility permission is missing.
	ErrTapCreationFailed = errors.New("failed to create event tap")
	// ErrSourceCreationFailed means the tap could not be attached to the run loop.
	ErrSourceCreationFailed = errors.New("failed to create run loop source")
	// ErrEngineStopped is returned by Execute on an engine that already ran.
	ErrEngineStopped = errors.New("engine already used")
)

type state int

const (
	stateIdle state = iota
	stateInstalling
	stateRunning
	stateStopped
)

func (s state) String() string {
	switch s {
	case stateIdle:
		return "idle"
	case stateInstalling:
		return "installing"
	case stateRunning:
		return "running"
	default:
		return "stopped"
	}
}

// Stats counts key-down events observed during a session.
type Stats struct {
	Seen       uint64
	Suppressed uint64
	Reenabled  int
}

type Option func(*Engine)

// WithLogger sets the logger used for lifecycle and suppression events.
func WithLogger(l zerolog.Logger) Option {
	return func(e *Engine) { e.log = l }
}

func withTap(fn func() tap) Option {
	return func(e *Engine) { e.newTap = fn }
}

type Engine struct {
	newTap func() tap
	log    zerolog.Logger

	mu            sync.Mutex
	state         state
	stopRequested bool
	tap           tap
	reenabled     int

	keys      combo.MatchKeySet
	ready     chan struct{}
	readyOnce sync.Once

	seen       atomic.Uint64
	suppressed atomic.Uint64
}

func New(opts ...Option) *Engine {
	e := &Engine{
		newTap: newTap,
		log:    zerolog.Nop(),
		ready:  make(chan struct{}),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Execute parses combos, installs the event tap and runs the run loop until
// Stop is called. It returns nil once the loop has exited, or the setup
// error if the tap could not be installed. A combo list that yields no match
// keys still installs the tap.
func (e *Engine) Execute(combos []string) error {
	keys := combo.Parse(combos)

	e.mu.Lock()
	if e.state != stateIdle {
		e.mu.Unlock()
		return ErrEngineStopped
	}
	if e.stopRequested {
		e.state = stateStopped
		e.mu.Unlock()
		e.log.Info().Msg("stop requested before start")
		return nil
	}
	e.state = stateInstalling
	e.keys = keys
	e.mu.Unlock()

	// The run loop belongs to the thread; keep this goroutine on it until
	// the loop returns.
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	t := e.newTap()
	if err := t.install(e); err != nil {
		e.setState(stateStopped)
		e.log.Error().Err(err).Msg("tap_install_failed")
		return err
	}
	defer t.release()

	e.mu.Lock()
	e.tap = t
	e.mu.Unlock()

	e.log.Info().Strs("combos", keys.Strings()).Msg("tap_installed")
	start := time.Now()
	t.run()

	if r, ok := t.(interface{ reenabled() int }); ok {
		e.mu.Lock()
		e.reenabled = r.reenabled()
		e.mu.Unlock()
	}
	e.setState(stateStopped)
	e.log.Info().
		Dur("elapsed", time.Since(start)).
		Uint64("seen", e.seen.Load()).
		Uint64("suppressed", e.suppressed.Load()).
		Msg("tap_stopped")
	return nil
}

// Stop asks the run loop to exit. It may be called from any goroutine, more
// than once, and before Execute has reached the loop; in that case the loop
// exits as soon as it is entered.
func (e *Engine) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.stopRequested = true
	// Holding mu keeps Execute from reaching release while the tap is
	// being stopped.
	if e.state == stateRunning {
		e.tap.stop()
	}
}

// Ready is closed once the tap is enabled and the run loop is running.
func (e *Engine) Ready() <-chan struct{} {
	return e.ready
}

// Keys returns the match keys of the current session.
func (e *Engine) Keys() combo.MatchKeySet {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state == stateIdle {
		return nil
	}
	return e.keys
}

func (e *Engine) Stats() Stats {
	e.mu.Lock()
	reenabled := e.reenabled
	e.mu.Unlock()
	return Stats{
		Seen:       e.seen.Load(),
		Suppressed: e.suppressed.Load(),
		Reenabled:  reenabled,
	}
}

func (e *Engine) setState(s state) {
	e.mu.Lock()
	e.state = s
	e.mu.Unlock()
}

func (e *Engine) keyDown(keycode int64, flags combo.Modifier) bool {
	e.seen.Add(1)
	if !e.keys.Match(keycode, flags) {
		return false
	}
	e.suppressed.Add(1)
	e.log.Debug().Int64("keycode", keycode).Stringer("flags", flags).Msg("suppressed")
	return true
}

func (e *Engine) entered() {
	e.mu.Lock()
	if e.state == stateInstalling {
		e.state = stateRunning
	}
	if e.stopRequested {
		e.tap.stop()
	}
	e.mu.Unlock()

	e.readyOnce.Do(func() { close(e.ready) })
}
