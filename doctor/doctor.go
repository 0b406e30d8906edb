package doctor

import (
	"fmt"
	"os"
	"time"

	"github.com/micmonay/keybd_event"

	"keyhush/combo"
	"keyhush/config"
	"keyhush/intercept"
	"keyhush/shutdown"
	"keyhush/trigger"
)

// selfTestCombo is unlikely to be bound by anything, so posting it is safe
// even if suppression fails.
const selfTestCombo = "ctrl+opt+shift+f12"

type selfTestEngine interface {
	Execute(combos []string) error
	Stop()
	Ready() <-chan struct{}
	Stats() intercept.Stats
}

var (
	newSelfTestEngine = func() selfTestEngine { return intercept.New() }
	readyTimeout      = 3 * time.Second
	drainTimeout      = 2 * time.Second
)

// Run executes diagnostic checks and returns an exit code (0=all pass, 1=any fail).
func Run(cfg *config.Config) int {
	setupInterruptHandler()

	fmt.Println("keyhush doctor - system diagnostics")
	fmt.Println("===================================")

	allPass := checkCombos(cfg)
	if !checkTrigger(cfg) {
		allPass = false
	}
	if !checkAccessibility() {
		allPass = false
	}
	if allPass && !checkSelfTest() {
		allPass = false
	}

	fmt.Println()
	if allPass {
		fmt.Println("All checks passed!")
		return 0
	}
	fmt.Println("Some checks failed. See details above.")
	return 1
}

func checkCombos(cfg *config.Config) bool {
	fmt.Println()
	fmt.Println("[1/4] Blocked combos")

	keys := combo.Parse(cfg.Block.Combos)
	for _, k := range keys {
		fmt.Printf("  %-16s keycode=%-3d flags=0x%08x\n", k, k.Keycode, uint64(k.Modifiers))
	}
	for _, w := range cfg.Warnings() {
		fmt.Printf("  WARN: %s\n", w)
	}
	if len(keys) == 0 {
		fmt.Println("  FAIL: no combo names a key; nothing would be blocked")
		return false
	}
	fmt.Printf("  PASS: %d combo(s) for %s\n", len(keys), cfg.Block.Window)
	return true
}

func checkTrigger(cfg *config.Config) bool {
	fmt.Println()
	fmt.Println("[2/4] Trigger hotkey")

	if cfg.Trigger.Hotkey == "" {
		fmt.Println("  PASS: disabled")
		return true
	}
	if _, err := trigger.Parse(cfg.Trigger.Hotkey); err != nil {
		fmt.Printf("  FAIL: %v\n", err)
		return false
	}
	fmt.Printf("  PASS: %s\n", cfg.Trigger.Hotkey)
	return true
}

func checkAccessibility() bool {
	fmt.Println()
	fmt.Println("[3/4] Accessibility permission")

	if intercept.AccessibilityTrusted(true) {
		fmt.Println("  PASS: process is trusted")
		return true
	}
	fmt.Println("  FAIL: not trusted")
	fmt.Println("  Grant access in System Settings > Privacy & Security > Accessibility, then re-run.")
	return false
}

// checkSelfTest installs a tap for selfTestCombo, posts that combo once and
// expects the engine to report one suppression.
func checkSelfTest() bool {
	fmt.Println()
	fmt.Println("[4/4] Interception self-test")

	e := newSelfTestEngine()
	done := make(chan error, 1)
	go func() { done <- e.Execute([]string{selfTestCombo}) }()

	select {
	case err := <-done:
		fmt.Printf("  FAIL: %v\n", err)
		return false
	case <-e.Ready():
	case <-time.After(readyTimeout):
		e.Stop()
		select {
		case <-done:
		case <-time.After(drainTimeout):
			fmt.Println("  WARN: event tap did not shut down")
		}
		fmt.Println("  FAIL: timeout waiting for event tap")
		return false
	}

	err := postSelfTestCombo()
	time.Sleep(300 * time.Millisecond)
	e.Stop()
	<-done

	if err != nil {
		fmt.Printf("  FAIL: could not post test key: %v\n", err)
		return false
	}
	st := e.Stats()
	if st.Suppressed == 0 {
		fmt.Printf("  FAIL: %s was not suppressed (%d key-down seen)\n", selfTestCombo, st.Seen)
		return false
	}
	fmt.Printf("  PASS: %s suppressed\n", selfTestCombo)
	return true
}

func postSelfTestCombo() error {
	kb, err := keybd_event.NewKeyBonding()
	if err != nil {
		return err
	}
	kb.SetKeys(keybd_event.VK_F12)
	kb.HasCTRL(true)
	kb.HasALT(true)
	kb.HasSHIFT(true)
	return kb.Launching()
}

func setupInterruptHandler() {
	sigChan := make(chan os.Signal, 1)
	shutdown.Notify(sigChan)
	go func() {
		<-sigChan
		fmt.Println("\nInterrupted")
		os.Exit(1)
	}()
}
