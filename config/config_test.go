package config

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadCreatesDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(cfg, Default()) {
		t.Errorf("got %+v, want defaults", cfg)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("default config not written: %v", err)
	}
	if !strings.Contains(string(data), `window = "10s"`) {
		t.Errorf("unexpected default file:\n%s", data)
	}

	again, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(again, cfg) {
		t.Errorf("round trip changed config: %+v", again)
	}
}

func TestLoadOverrides(t *testing.T) {
	path := writeConfig(t, `
[block]
window = "1m30s"
combos = ["cmd+w", "cmd+shift+tab"]

[trigger]
hotkey = ""

[ui]
beep = false
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Block.Window.Duration != 90*time.Second {
		t.Errorf("window = %v", cfg.Block.Window)
	}
	if !reflect.DeepEqual(cfg.Block.Combos, []string{"cmd+w", "cmd+shift+tab"}) {
		t.Errorf("combos = %v", cfg.Block.Combos)
	}
	if cfg.Trigger.Hotkey != "" || cfg.UI.Beep {
		t.Errorf("overrides not applied: %+v", cfg)
	}
	if !cfg.UI.Tray {
		t.Error("unset ui.tray should keep its default")
	}
}

func TestLoadRejects(t *testing.T) {
	tests := map[string]string{
		"bad duration":   "[block]\nwindow = \"ten\"\n",
		"unknown key":    "[block]\nwindnow = \"5s\"\n",
		"malformed toml": "[block\n",
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := Load(writeConfig(t, body)); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestValidateRejects(t *testing.T) {
	tests := map[string]string{
		"zero window":    "[block]\nwindow = \"0s\"\n",
		"huge window":    "[block]\nwindow = \"1h\"\n",
		"modifier combo": "[block]\ncombos = [\"cmd+opt\"]\n",
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			cfg, err := Load(writeConfig(t, body))
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			if err := cfg.Validate(); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestLoadNormalizesCombos(t *testing.T) {
	cfg, err := Load(writeConfig(t, "[block]\ncombos = [\"Cmd+Q\", \" CTRL+Tab \", \"\"]\n"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if want := []string{"cmd+q", "ctrl+tab"}; !reflect.DeepEqual(cfg.Block.Combos, want) {
		t.Errorf("combos = %q, want %q", cfg.Block.Combos, want)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestWarnings(t *testing.T) {
	cfg := Default()
	cfg.Block.Combos = []string{"cmd+foo+v", "cmd+q"}
	w := cfg.Warnings()
	if len(w) != 1 || !strings.Contains(w[0], "foo") {
		t.Errorf("unexpected warnings %v", w)
	}
}

func TestPathEnv(t *testing.T) {
	t.Setenv("KEYHUSH_CONFIG", "/tmp/kh.toml")
	got, err := Path()
	if err != nil {
		t.Fatal(err)
	}
	if got != "/tmp/kh.toml" {
		t.Errorf("got %q", got)
	}
}

func TestSessionCopiesCombos(t *testing.T) {
	cfg := Default()
	s := cfg.Session()
	s.Combos[0] = "changed"
	if cfg.Block.Combos[0] == "changed" {
		t.Error("Session shares combos slice with config")
	}
	if s.Window != 10*time.Second {
		t.Errorf("window = %v", s.Window)
	}
}

func TestSplitCombos(t *testing.T) {
	got := SplitCombos(" CMD+C, cmd+v,,cmd+opt+esc ")
	want := []string{"cmd+c", "cmd+v", "cmd+opt+esc"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}
