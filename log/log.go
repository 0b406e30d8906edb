package log

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

var (
	diagLog      zerolog.Logger = zerolog.Nop()
	diagFile     *os.File
	sessionsFile *os.File
	logMu        sync.Mutex
	logReady     bool
	pid          int
	dir          string
)

// SessionRecord summarizes one interception window.
type SessionRecord struct {
	Start      time.Time
	Elapsed    time.Duration
	Combos     []string
	Seen       uint64
	Suppressed uint64
	Reenabled  int
	Err        error
}

func ResolveDir(flagPath string) (string, error) {
	// Priority 1: -logpath flag
	if flagPath != "" {
		return absFromWd(flagPath)
	}

	// Priority 2: KEYHUSH_LOG_PATH environment variable
	if envPath := os.Getenv("KEYHUSH_LOG_PATH"); envPath != "" {
		return absFromWd(envPath)
	}

	// Priority 3: Default OS-specific location
	return getDefaultDir()
}

func absFromWd(p string) (string, error) {
	if filepath.IsAbs(p) {
		return p, nil
	}
	wd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	return filepath.Join(wd, p), nil
}

func SetDir(d string) {
	dir = d
}

func Dir() string {
	return dir
}

func EnsureDir() error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}
	return nil
}

func Init() error {
	logMu.Lock()
	defer logMu.Unlock()

	if err := EnsureDir(); err != nil {
		return err
	}

	pid = os.Getpid()

	var err error

	diagPath := filepath.Join(dir, "diagnostics_log.txt")
	diagFile, err = os.OpenFile(diagPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}

	sessionsPath := filepath.Join(dir, "sessions_log.txt")
	sessionsFile, err = os.OpenFile(sessionsPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		diagFile.Close()
		return err
	}

	consoleWriter := zerolog.ConsoleWriter{
		Out:        diagFile,
		TimeFormat: "2006-01-02 15:04:05",
		NoColor:    true,
	}
	diagLog = zerolog.New(consoleWriter).With().Timestamp().Int("pid", pid).Logger()

	logReady = true
	return nil
}

func Close() {
	logMu.Lock()
	defer logMu.Unlock()
	if diagFile != nil {
		diagFile.Close()
		diagFile = nil
	}
	if sessionsFile != nil {
		sessionsFile.Close()
		sessionsFile = nil
	}
	diagLog = zerolog.Nop()
	logReady = false
}

// Logger returns the diagnostics logger for components that take a
// zerolog.Logger. It is a no-op logger until Init succeeds.
func Logger() zerolog.Logger {
	logMu.Lock()
	defer logMu.Unlock()
	return diagLog
}

func Info(msg string) {
	if logReady {
		diagLog.Info().Msg(msg)
	}
}

func Error(msg string) {
	if logReady {
		diagLog.Error().Msg(msg)
	}
}

func Errorf(format string, args ...any) {
	if logReady {
		diagLog.Error().Msg(fmt.Sprintf(format, args...))
	}
}

func Warn(msg string) {
	if logReady {
		diagLog.Warn().Msg(msg)
	}
}

func Warnf(format string, args ...any) {
	if logReady {
		diagLog.Warn().Msg(fmt.Sprintf(format, args...))
	}
}

func SessionStart(window time.Duration, combos []string) {
	if !logReady {
		return
	}
	diagLog.Info().
		Dur("window", window).
		Strs("combos", combos).
		Msg("session_start")
}

func SessionEnd(r SessionRecord) {
	if !logReady {
		return
	}
	ev := diagLog.Info()
	if r.Err != nil {
		ev = diagLog.Error().Err(r.Err)
	}
	ev.Dur("elapsed", r.Elapsed).
		Uint64("seen", r.Seen).
		Uint64("suppressed", r.Suppressed).
		Int("reenabled", r.Reenabled).
		Msg("session_end")

	logMu.Lock()
	defer logMu.Unlock()
	if sessionsFile == nil {
		return
	}
	status := "ok"
	if r.Err != nil {
		status = "error: " + r.Err.Error()
	}
	line := fmt.Sprintf("%s\t[%d]\t%.1fs\t%d/%d\t%s\t%s\n",
		r.Start.Format("2006-01-02 15:04:05"), pid, r.Elapsed.Seconds(),
		r.Suppressed, r.Seen, strings.Join(r.Combos, ","), status)
	sessionsFile.WriteString(line)
}
