// Package session runs one bounded interception window: it starts an
// intercept.Engine, lets it run for the configured window and stops it.
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"keyhush/combo"
	"keyhush/intercept"
)

const DefaultWindow = 10 * time.Second

var DefaultCombos = []string{"cmd+c", "cmd+v", "cmd+q", "cmd+opt+esc"}

var (
	ErrInvalidWindow = errors.New("window must be positive")
	// ErrEndedEarly means the run loop exited before the window elapsed.
	ErrEndedEarly = errors.New("interception ended before window elapsed")
)

type Config struct {
	Window time.Duration
	Combos []string
}

func DefaultConfig() Config {
	return Config{
		Window: DefaultWindow,
		Combos: append([]string(nil), DefaultCombos...),
	}
}

// Engine is the part of intercept.Engine a session drives.
type Engine interface {
	Execute(combos []string) error
	Stop()
	Ready() <-chan struct{}
	Keys() combo.MatchKeySet
	Stats() intercept.Stats
}

type Result struct {
	Start   time.Time
	Elapsed time.Duration
	Keys    combo.MatchKeySet
	Stats   intercept.Stats
}

type runner struct {
	newEngine func(zerolog.Logger) Engine
	log       zerolog.Logger
	onReady   func(deadline time.Time)
}

type Option func(*runner)

func WithLogger(l zerolog.Logger) Option {
	return func(r *runner) { r.log = l }
}

// WithEngine replaces the engine constructor.
func WithEngine(fn func(zerolog.Logger) Engine) Option {
	return func(r *runner) { r.newEngine = fn }
}

// OnReady is called once the filter is active, with the time it will be
// removed.
func OnReady(fn func(deadline time.Time)) Option {
	return func(r *runner) { r.onReady = fn }
}

func newRunner(opts []Option) *runner {
	r := &runner{
		newEngine: func(l zerolog.Logger) Engine {
			return intercept.New(intercept.WithLogger(l))
		},
		log: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run blocks the configured shortcuts for cfg.Window. The window starts once
// the engine reports the filter is active. Setup errors from the engine are
// returned as is; cancelling ctx stops the session early and returns
// ctx.Err().
func Run(ctx context.Context, cfg Config, opts ...Option) (Result, error) {
	if cfg.Window <= 0 {
		return Result{}, ErrInvalidWindow
	}
	r := newRunner(opts)
	e := r.newEngine(r.log)

	res := Result{Start: time.Now()}
	done := make(chan error, 1)
	go func() { done <- e.Execute(cfg.Combos) }()

	finish := func(err error) (Result, error) {
		res.Elapsed = time.Since(res.Start)
		res.Keys = e.Keys()
		res.Stats = e.Stats()
		return res, err
	}

	select {
	case err := <-done:
		if err == nil {
			err = ErrEndedEarly
		}
		return finish(err)
	case <-ctx.Done():
		e.Stop()
		<-done
		return finish(ctx.Err())
	case <-e.Ready():
	}

	deadline := time.Now().Add(cfg.Window)
	r.log.Info().Time("deadline", deadline).Msg("interception_active")
	if r.onReady != nil {
		r.onReady(deadline)
	}

	timer := time.NewTimer(cfg.Window)
	defer timer.Stop()

	select {
	case <-timer.C:
	case <-ctx.Done():
		e.Stop()
		<-done
		return finish(ctx.Err())
	case err := <-done:
		if err == nil {
			err = ErrEndedEarly
		}
		return finish(fmt.Errorf("engine: %w", err))
	}

	e.Stop()
	return finish(<-done)
}
