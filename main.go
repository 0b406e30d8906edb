package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"runtime/debug"
	"sync"
	"time"

	"golang.org/x/term"

	"keyhush/beep"
	"keyhush/combo"
	"keyhush/config"
	"keyhush/doctor"
	"keyhush/log"
	"keyhush/session"
	"keyhush/shutdown"
	"keyhush/tray"
	"keyhush/trigger"
)

var version = "dev"

var (
	activeTrigger *session.Trigger
	shutdownOnce  sync.Once

	cfgMu      sync.Mutex
	currentCfg *config.Config
)

func liveConfig() *config.Config {
	cfgMu.Lock()
	defer cfgMu.Unlock()
	return currentCfg
}

func setLiveConfig(cfg *config.Config) {
	cfgMu.Lock()
	currentCfg = cfg
	cfgMu.Unlock()
}

func gracefulShutdown(code int) {
	shutdownOnce.Do(func() {
		if activeTrigger != nil {
			activeTrigger.Cancel()
			activeTrigger.Wait()
		}
		log.Close()
		tray.Quit()
		if tuiProgram != nil {
			tuiProgram.Quit()
		}
		os.Exit(code)
	})
}

type flagOverrides struct {
	window time.Duration
	combos string
	noBeep bool
}

// apply copies the non-zero command line values over the file config.
func (f flagOverrides) apply(cfg *config.Config) {
	if f.window != 0 {
		cfg.Block.Window = config.Duration{Duration: f.window}
	}
	if f.combos != "" {
		cfg.Block.Combos = config.SplitCombos(f.combos)
	}
	if f.noBeep {
		cfg.UI.Beep = false
	}
}

func configLineText(cfg *config.Config) string {
	hk := cfg.Trigger.Hotkey
	if hk == "" {
		hk = "none"
	}
	return fmt.Sprintf("[window %s | hotkey %s]", cfg.Block.Window.Duration, hk)
}

func sessionRecord(cfg session.Config, res session.Result, err error) log.SessionRecord {
	start := res.Start
	if start.IsZero() {
		start = time.Now()
	}
	return log.SessionRecord{
		Start:      start,
		Elapsed:    res.Elapsed,
		Combos:     cfg.Combos,
		Seen:       res.Stats.Seen,
		Suppressed: res.Stats.Suppressed,
		Reenabled:  res.Stats.Reenabled,
		Err:        err,
	}
}

func run() {
	windowFlag := flag.Duration("window", 0, "How long shortcuts stay blocked (e.g. 10s; default from config)")
	combosFlag := flag.String("combos", "", "Comma-separated combos to block (e.g. cmd+c,cmd+v; default from config)")
	configFlag := flag.String("config", "", "Config file path (default: $KEYHUSH_CONFIG or OS config dir)")
	logPathFlag := flag.String("logpath", "", "log directory path (default: OS-specific location, use ./ for current dir)")
	tuiFlag := flag.Bool("tui", term.IsTerminal(int(os.Stdout.Fd())), "Run with terminal UI")
	doctorFlag := flag.Bool("doctor", false, "Run system diagnostics and exit")
	versionFlag := flag.Bool("version", false, "Print version and exit")
	onceFlag := flag.Bool("once", false, "Block once, print a summary and exit")
	noBeepFlag := flag.Bool("nobeep", false, "Disable start/end sounds")
	testFlag := flag.Bool("test", false, "Test mode (headless, stdin-driven)")
	flag.Parse()

	if *versionFlag {
		fmt.Printf("keyhush %s\n", version)
		os.Exit(0)
	}

	// Resolve log directory early
	logPath, err := log.ResolveDir(*logPathFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to resolve log directory: %v\n", err)
		os.Exit(1)
	}
	log.SetDir(logPath)

	if err := log.EnsureDir(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not create log directory: %v\n", err)
	}

	crashPath := filepath.Join(log.Dir(), "crash_log.txt")
	crashFile, err := os.OpenFile(crashPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err == nil {
		fmt.Fprintf(crashFile, "\n=== Session %s [pid=%d] ===\n", time.Now().Format("2006-01-02 15:04:05"), os.Getpid())
		debug.SetCrashOutput(crashFile, debug.CrashOptions{})
	}

	cfgPath := *configFlag
	if cfgPath == "" {
		if cfgPath, err = config.Path(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	overrides := flagOverrides{window: *windowFlag, combos: *combosFlag, noBeep: *noBeepFlag}
	overrides.apply(cfg)

	if *doctorFlag {
		os.Exit(doctor.Run(cfg))
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if err := log.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not init logging: %v\n", err)
	}
	for _, w := range cfg.Warnings() {
		log.Warn(w)
		fmt.Fprintf(os.Stderr, "Warning: %s\n", w)
	}

	if *testFlag {
		runTestMode(cfg)
		return
	}

	if !cfg.UI.Beep {
		beep.Disable()
	}
	go beep.Init()

	if *onceFlag {
		os.Exit(runOnce(cfg))
	}

	setLiveConfig(cfg)
	activeTrigger = newTrigger()

	watchCtx, stopWatch := context.WithCancel(context.Background())
	defer stopWatch()
	err = config.Watch(watchCtx, cfgPath, func(next *config.Config) {
		overrides.apply(next)
		if err := next.Validate(); err != nil {
			log.Warnf("config reload rejected: %v", err)
			return
		}
		setLiveConfig(next)
		tray.SetWindow(next.Block.Window.Duration)
		log.Info("config_reloaded")
		logToTUI("config reloaded: %s", configLineText(next))
	}, func(err error) {
		log.Warnf("config watch: %v", err)
	})
	if err != nil {
		log.Warnf("config watch disabled: %v", err)
	}

	if *tuiFlag {
		tuiMu.Lock()
		tuiProgram = NewTUIProgram(
			combo.Parse(cfg.Block.Combos).Strings(),
			configLineText(cfg),
			func() { activeTrigger.Fire() },
			activeTrigger.Cancel,
		)
		tuiMu.Unlock()

		go func() {
			if _, err := tuiProgram.Run(); err != nil {
				log.Errorf("TUI error: %v", err)
				gracefulShutdown(1)
			}
			gracefulShutdown(0)
		}()
	}

	var trayQuit <-chan struct{}
	if cfg.UI.Tray {
		tray.SetWindow(cfg.Block.Window.Duration)
		tray.OnBlock(func() { activeTrigger.Fire() })
		tray.OnCancel(activeTrigger.Cancel)
		trayQuit = tray.Init()
	}

	sigChan := make(chan os.Signal, 1)
	shutdown.Notify(sigChan)
	go func() {
		select {
		case <-sigChan:
		case <-trayQuit:
		}
		gracefulShutdown(0)
	}()

	if cfg.Trigger.Hotkey == "" {
		if !*tuiFlag && !cfg.UI.Tray {
			fmt.Fprintln(os.Stderr, "Error: no trigger hotkey, tray or TUI; nothing can start a session (try -once)")
			gracefulShutdown(1)
		}
		select {}
	}

	hk, err := trigger.New(cfg.Trigger.Hotkey)
	if err != nil {
		log.Errorf("hotkey config error: %v", err)
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		gracefulShutdown(1)
	}
	if err := hk.Register(); err != nil {
		log.Errorf("hotkey register error: %v", err)
		fmt.Fprintf(os.Stderr, "Error registering hotkey: %v\n", err)
		gracefulShutdown(1)
	}
	defer hk.Unregister()
	log.Info("hotkey_registered: " + cfg.Trigger.Hotkey)

	hotkeyLoop(hk, activeTrigger, cfg.Trigger.Hotkey)
}

// hotkeyLoop starts a session on each press. A press during a session ends
// it early. It returns when the hotkey's channel is closed.
func hotkeyLoop(hk trigger.Hotkey, t *session.Trigger, desc string) {
	for range hk.Keydown() {
		if t.Fire() {
			log.Info("hotkey_fire")
			continue
		}
		log.Info("hotkey_cancel")
		logToTUI("stopped early from %s", desc)
		t.Cancel()
	}
}

// newTrigger builds the session trigger. Each session reads the live config,
// so edits to the config file apply from the next session on.
func newTrigger() *session.Trigger {
	t := session.NewTrigger(liveConfig().Session(), session.WithLogger(log.Logger()))
	t.Config = func() session.Config { return liveConfig().Session() }

	var started session.Config
	t.OnStart = func(c session.Config) {
		started = c
		log.SessionStart(c.Window, c.Combos)
		tuiSend(SessionStartMsg{Window: c.Window, Keys: combo.Parse(c.Combos).Strings()})
	}
	t.OnActive = func(deadline time.Time) {
		go beep.PlayStart()
		tray.SetBlocking(true, deadline)
		tuiSend(SessionActiveMsg{Deadline: deadline})
	}
	t.OnDone = func(res session.Result, err error) {
		log.SessionEnd(sessionRecord(started, res, err))
		tray.SetBlocking(false, time.Time{})
		tuiSend(SessionDoneMsg{Seen: res.Stats.Seen, Suppressed: res.Stats.Suppressed, Err: err})
		if err != nil && !errors.Is(err, context.Canceled) {
			go beep.PlayError()
			log.Errorf("session error: %v", err)
			tray.SetError(err.Error())
			return
		}
		go beep.PlayEnd()
	}
	return t
}

// runOnce blocks for a single window in the foreground and returns the
// process exit code.
func runOnce(cfg *config.Config) int {
	ctx, cancel := shutdown.Context(context.Background())
	defer cancel()
	defer log.Close()

	sc := cfg.Session()
	log.SessionStart(sc.Window, sc.Combos)
	fmt.Printf("Blocking %s for %s\n", combo.Parse(sc.Combos).Strings(), sc.Window)

	res, err := session.Run(ctx, sc,
		session.WithLogger(log.Logger()),
		session.OnReady(func(time.Time) { beep.PlayStart() }),
	)
	log.SessionEnd(sessionRecord(sc, res, err))

	fmt.Printf("Blocked %d of %d key presses in %.1fs\n", res.Stats.Suppressed, res.Stats.Seen, res.Elapsed.Seconds())
	switch {
	case err == nil:
		beep.PlayEnd()
		return 0
	case errors.Is(err, context.Canceled):
		fmt.Println("Interrupted")
		return 0
	default:
		beep.PlayError()
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
}
