package main

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"keyhush/beep"
	"keyhush/combo"
	"keyhush/config"
	"keyhush/intercept"
	"keyhush/log"
	"keyhush/session"
	"keyhush/trigger"
)

// scriptEngine stands in for the native tap in test mode. Key presses come
// from stdin instead of the keyboard.
type scriptEngine struct {
	keys     combo.MatchKeySet
	ready    chan struct{}
	stopCh   chan struct{}
	stopOnce sync.Once
	mu       sync.Mutex
	running  bool
	seen     atomic.Uint64
	suppress atomic.Uint64
}

func newScriptEngine() *scriptEngine {
	return &scriptEngine{
		ready:  make(chan struct{}),
		stopCh: make(chan struct{}),
	}
}

func (e *scriptEngine) Execute(combos []string) error {
	e.mu.Lock()
	e.keys = combo.Parse(combos)
	e.running = true
	e.mu.Unlock()
	close(e.ready)

	<-e.stopCh

	e.mu.Lock()
	e.running = false
	e.mu.Unlock()
	return nil
}

func (e *scriptEngine) Stop() {
	e.stopOnce.Do(func() { close(e.stopCh) })
}

func (e *scriptEngine) Ready() <-chan struct{} { return e.ready }

func (e *scriptEngine) Keys() combo.MatchKeySet {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.keys
}

func (e *scriptEngine) Stats() intercept.Stats {
	return intercept.Stats{Seen: e.seen.Load(), Suppressed: e.suppress.Load()}
}

// press reports whether the key-down would have been swallowed.
func (e *scriptEngine) press(k combo.MatchKey) bool {
	e.mu.Lock()
	running, keys := e.running, e.keys
	e.mu.Unlock()
	if !running {
		return false
	}
	e.seen.Add(1)
	if keys.Match(k.Keycode, k.Modifiers) {
		e.suppress.Add(1)
		return true
	}
	return false
}

func runTestMode(cfg *config.Config) {
	beep.Disable()
	defer log.Close()

	var (
		engMu   sync.Mutex
		current *scriptEngine
	)
	sessionDone := make(chan struct{}, 1)
	sessionReady := make(chan struct{}, 1)

	t := session.NewTrigger(cfg.Session(),
		session.WithLogger(log.Logger()),
		session.WithEngine(func(zerolog.Logger) session.Engine {
			e := newScriptEngine()
			engMu.Lock()
			current = e
			engMu.Unlock()
			return e
		}),
	)
	t.OnStart = func(c session.Config) { log.SessionStart(c.Window, c.Combos) }
	t.OnActive = func(time.Time) {
		select {
		case sessionReady <- struct{}{}:
		default:
		}
	}
	t.OnDone = func(res session.Result, err error) {
		log.SessionEnd(sessionRecord(cfg.Session(), res, err))
		select {
		case sessionDone <- struct{}{}:
		default:
		}
	}

	// HOTKEY presses go through the same loop as the registered hotkey.
	hk := trigger.NewFake()
	go hotkeyLoop(hk, t, "HOTKEY")

	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		cmd := strings.TrimSpace(scanner.Text())
		switch {
		case cmd == "FIRE":
			if !t.Fire() {
				log.Warn("test: session already active")
			}
		case cmd == "WAIT_READY":
			<-sessionReady
		case cmd == "WAIT":
			<-sessionDone
		case cmd == "HOTKEY":
			hk.SimKeydown()
		case cmd == "CANCEL":
			t.Cancel()
		case cmd == "QUIT":
			t.Cancel()
			t.Wait()
			return
		case strings.HasPrefix(cmd, "PRESS "):
			k, ok := combo.ParseOne(cmd[6:])
			if !ok {
				fmt.Fprintf(os.Stderr, "test: bad combo %q\n", cmd[6:])
				continue
			}
			engMu.Lock()
			e := current
			engMu.Unlock()
			if e != nil {
				fmt.Printf("%s blocked=%t\n", k, e.press(k))
			}
		case strings.HasPrefix(cmd, "SLEEP "):
			if ms, err := strconv.Atoi(cmd[6:]); err == nil {
				time.Sleep(time.Duration(ms) * time.Millisecond)
			}
		}
	}
	t.Cancel()
	t.Wait()
}
