// Package login installs keyhush as a per-user launch agent so the tray
// item comes back after a restart.
package login

import (
	"errors"
	"fmt"
	"html"
	"os"
	"sort"
	"strings"
)

const label = "com.keyhush.agent"

var ErrUnsupported = errors.New("start at login is only supported on macOS")

// agentEnv lists the variables copied into the agent so it resolves the
// same config and log directory as the current process.
var agentEnv = []string{"KEYHUSH_CONFIG", "KEYHUSH_LOG_PATH"}

func guiDomain(uid int) string {
	return fmt.Sprintf("gui/%d", uid)
}

// serviceTarget names the loaded agent for launchctl bootout.
func serviceTarget(uid int) string {
	return guiDomain(uid) + "/" + label
}

func currentEnv() map[string]string {
	env := make(map[string]string)
	for _, key := range agentEnv {
		if v := os.Getenv(key); v != "" {
			env[key] = v
		}
	}
	return env
}

// renderPlist builds the launch agent property list. The agent runs without
// the terminal UI.
func renderPlist(exe string, env map[string]string) string {
	keys := make([]string, 0, len(env))
	for k := range env {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var envXML strings.Builder
	for _, k := range keys {
		fmt.Fprintf(&envXML, "\t\t<key>%s</key>\n\t\t<string>%s</string>\n", html.EscapeString(k), html.EscapeString(env[k]))
	}

	return fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE plist PUBLIC "-//Apple//DTD PLIST 1.0//EN" "http://www.apple.com/DTDs/PropertyList-1.0.dtd">
<plist version="1.0">
<dict>
	<key>Label</key>
	<string>%s</string>
	<key>ProgramArguments</key>
	<array>
		<string>%s</string>
		<string>-tui=false</string>
	</array>
	<key>RunAtLoad</key>
	<true/>
	<key>LimitLoadToSessionType</key>
	<string>Aqua</string>
	<key>EnvironmentVariables</key>
	<dict>
%s	</dict>
</dict>
</plist>
`, label, html.EscapeString(exe), envXML.String())
}
