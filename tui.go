package main

import (
	"fmt"
	"strings"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// TUI message types
type SessionStartMsg struct {
	Window time.Duration
	Keys   []string
}
type SessionActiveMsg struct{ Deadline time.Time }
type SessionDoneMsg struct {
	Seen       uint64
	Suppressed uint64
	Err        error
}
type LogMsg struct{ Text string }
type tickMsg time.Time

type tuiState int

const (
	tuiStateIdle tuiState = iota
	tuiStateArming
	tuiStateBlocking
)

type tuiModel struct {
	state         tuiState
	now           time.Time
	deadline      time.Time
	window        time.Duration
	keys          []string
	configLine    string
	lastSummary   string
	lastErr       string
	logLine       string
	width, height int

	fire   func()
	cancel func()
}

var (
	tuiProgram *tea.Program
	tuiMu      sync.Mutex
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("231"))
	idleStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	activeStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196"))
	armingStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	comboStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("117"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
	helpStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	barFullStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	barRestStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("236"))
)

func NewTUIProgram(keys []string, configLine string, fire, cancel func()) *tea.Program {
	m := newTUIModel(keys, configLine, fire, cancel)
	return tea.NewProgram(m, tea.WithAltScreen())
}

func newTUIModel(keys []string, configLine string, fire, cancel func()) tuiModel {
	return tuiModel{
		keys:       keys,
		configLine: configLine,
		fire:       fire,
		cancel:     cancel,
		now:        time.Now(),
	}
}

func tuiTick() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m tuiModel) Init() tea.Cmd {
	return tuiTick()
}

func (m tuiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "b", "enter", " ":
			if m.state == tuiStateIdle && m.fire != nil {
				go m.fire()
			}
		case "x", "esc":
			if m.state != tuiStateIdle && m.cancel != nil {
				go m.cancel()
			}
		}

	case tickMsg:
		m.now = time.Time(msg)
		return m, tuiTick()

	case SessionStartMsg:
		m.state = tuiStateArming
		m.window = msg.Window
		m.keys = msg.Keys
		m.lastErr = ""

	case SessionActiveMsg:
		m.state = tuiStateBlocking
		m.deadline = msg.Deadline

	case SessionDoneMsg:
		m.state = tuiStateIdle
		m.deadline = time.Time{}
		if msg.Err != nil {
			m.lastErr = msg.Err.Error()
		}
		m.lastSummary = fmt.Sprintf("last session: %d of %d key presses blocked", msg.Suppressed, msg.Seen)

	case LogMsg:
		m.logLine = msg.Text
	}
	return m, nil
}

func (m tuiModel) remaining() time.Duration {
	if m.state != tuiStateBlocking {
		return 0
	}
	left := m.deadline.Sub(m.now)
	if left < 0 {
		return 0
	}
	return left
}

func (m tuiModel) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("keyhush"))
	b.WriteString("\n\n")

	switch m.state {
	case tuiStateIdle:
		b.WriteString(idleStyle.Render("idle - shortcuts pass through"))
	case tuiStateArming:
		b.WriteString(armingStyle.Render("installing keyboard filter..."))
	case tuiStateBlocking:
		left := m.remaining()
		b.WriteString(activeStyle.Render(fmt.Sprintf("BLOCKING  %.1fs", left.Seconds())))
		b.WriteString("\n")
		b.WriteString(progressBar(left, m.window, 30))
	}
	b.WriteString("\n\n")

	if len(m.keys) > 0 {
		b.WriteString("combos: ")
		b.WriteString(comboStyle.Render(strings.Join(m.keys, "  ")))
		b.WriteString("\n")
	}
	if m.configLine != "" {
		b.WriteString(helpStyle.Render(m.configLine))
		b.WriteString("\n")
	}
	if m.lastSummary != "" {
		b.WriteString(m.lastSummary)
		b.WriteString("\n")
	}
	if m.lastErr != "" {
		b.WriteString(errorStyle.Render("error: " + m.lastErr))
		b.WriteString("\n")
	}
	if m.logLine != "" {
		b.WriteString(helpStyle.Render(m.logLine))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	if m.state == tuiStateIdle {
		b.WriteString(helpStyle.Render("b block  q quit"))
	} else {
		b.WriteString(helpStyle.Render("x stop  q quit"))
	}
	return b.String()
}

// progressBar renders the part of window still left as a bar of width cells.
func progressBar(left, window time.Duration, width int) string {
	if window <= 0 || width <= 0 {
		return ""
	}
	full := int(float64(width) * float64(left) / float64(window))
	full = min(max(full, 0), width)
	return barFullStyle.Render(strings.Repeat("█", full)) +
		barRestStyle.Render(strings.Repeat("░", width-full))
}

func tuiSend(msg tea.Msg) {
	tuiMu.Lock()
	p := tuiProgram
	tuiMu.Unlock()

	if p != nil {
		p.Send(msg)
	}
}

func logToTUI(format string, args ...any) {
	tuiSend(LogMsg{Text: fmt.Sprintf(format, args...)})
}
