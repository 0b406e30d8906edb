//go:build darwin

package login

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"keyhush/log"
)

func plistPath() string {
	return filepath.Join(os.Getenv("HOME"), "Library", "LaunchAgents", label+".plist")
}

// Enabled reports whether the agent plist is installed.
func Enabled() bool {
	_, err := os.Stat(plistPath())
	return err == nil
}

// Enable writes the agent plist for the running executable and loads it.
// An already loaded agent is replaced.
func Enable() error {
	exe, err := os.Executable()
	if err != nil {
		return fmt.Errorf("resolve executable: %w", err)
	}
	if exe, err = filepath.EvalSymlinks(exe); err != nil {
		return fmt.Errorf("resolve executable: %w", err)
	}

	path := plistPath()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create LaunchAgents dir: %w", err)
	}
	if err := os.WriteFile(path, []byte(renderPlist(exe, currentEnv())), 0600); err != nil {
		return fmt.Errorf("write plist: %w", err)
	}

	uid := os.Getuid()
	bootout(uid)
	if out, err := exec.Command("launchctl", "bootstrap", guiDomain(uid), path).CombinedOutput(); err != nil {
		return fmt.Errorf("launchctl bootstrap %s: %w (%s)", label, err, out)
	}
	log.Info("login_agent_enabled: " + exe)
	return nil
}

// Disable unloads the agent and removes its plist. It is a no-op when the
// agent is not installed.
func Disable() error {
	path := plistPath()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}
	bootout(os.Getuid())
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove plist: %w", err)
	}
	log.Info("login_agent_disabled")
	return nil
}

// bootout unloads the agent by service target. Failure means it was not
// loaded.
func bootout(uid int) {
	if out, err := exec.Command("launchctl", "bootout", serviceTarget(uid)).CombinedOutput(); err != nil {
		log.Warnf("launchctl bootout %s: %v (%s)", label, err, out)
	}
}
