package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"keyhush/combo"
	"keyhush/session"
)

const MaxWindow = 10 * time.Minute

type Config struct {
	Block   BlockConfig   `toml:"block"`
	Trigger TriggerConfig `toml:"trigger"`
	UI      UIConfig      `toml:"ui"`
}

type BlockConfig struct {
	Window Duration `toml:"window"`
	Combos []string `toml:"combos"`
}

type TriggerConfig struct {
	// Hotkey starts a session from anywhere; empty disables it.
	Hotkey string `toml:"hotkey"`
}

type UIConfig struct {
	Beep bool `toml:"beep"`
	Tray bool `toml:"tray"`
}

// Duration is a time.Duration written as "10s" in TOML.
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func Default() *Config {
	def := session.DefaultConfig()
	return &Config{
		Block: BlockConfig{
			Window: Duration{def.Window},
			Combos: def.Combos,
		},
		Trigger: TriggerConfig{
			Hotkey: "ctrl+shift+b",
		},
		UI: UIConfig{
			Beep: true,
			Tray: true,
		},
	}
}

// Path returns the configuration file location: KEYHUSH_CONFIG if set,
// otherwise keyhush/config.toml under the user config directory.
func Path() (string, error) {
	if p := os.Getenv("KEYHUSH_CONFIG"); p != "" {
		return p, nil
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve config dir: %w", err)
	}
	return filepath.Join(dir, "keyhush", "config.toml"), nil
}

// Load reads the configuration at path. A missing file is created with
// default values. Combos are lowercased; range checks are left to Validate
// so callers can apply command line overrides first.
func Load(path string) (*Config, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		cfg := Default()
		if err := Save(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to create default config: %w", err)
		}
		return cfg, nil
	}

	cfg := Default()
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("unknown config keys: %s", strings.Join(keys, ", "))
	}
	cfg.Block.Combos = normalizeCombos(cfg.Block.Combos)
	return cfg, nil
}

func normalizeCombos(combos []string) []string {
	out := make([]string, 0, len(combos))
	for _, c := range combos {
		if c = strings.ToLower(strings.TrimSpace(c)); c != "" {
			out = append(out, c)
		}
	}
	return out
}

func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(cfg)
}

// Validate rejects windows outside (0, MaxWindow] and combos that name no key.
func (c *Config) Validate() error {
	if c.Block.Window.Duration <= 0 {
		return fmt.Errorf("block.window must be positive, got %s", c.Block.Window)
	}
	if c.Block.Window.Duration > MaxWindow {
		return fmt.Errorf("block.window %s exceeds maximum %s", c.Block.Window, MaxWindow)
	}
	for _, cb := range c.Block.Combos {
		if _, ok := combo.ParseOne(cb); !ok {
			return fmt.Errorf("combo %q names no key", cb)
		}
	}
	return nil
}

// Warnings lists combo segments that will be ignored when parsing.
func (c *Config) Warnings() []string {
	var out []string
	for _, cb := range c.Block.Combos {
		if unknown := combo.Unknown(cb); len(unknown) > 0 {
			out = append(out, fmt.Sprintf("combo %q: ignoring unknown %s", cb, strings.Join(unknown, ", ")))
		}
	}
	return out
}

func (c *Config) Session() session.Config {
	return session.Config{
		Window: c.Block.Window.Duration,
		Combos: append([]string(nil), c.Block.Combos...),
	}
}

// SplitCombos parses a -combos flag value: comma separated descriptors,
// surrounding whitespace dropped, lowercased.
func SplitCombos(s string) []string {
	return normalizeCombos(strings.Split(s, ","))
}
