// Package config handles loading and saving the R1 Keys configuration.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/HopIT-Hub/R1-Keys/keysim"
)

// Config holds the application configuration.
type Config struct {
	mu           sync.RWMutex `json:"-"`
	path         string
	Serial       string    `json:"serial"` // optional device serial filter
	Bindings     []Binding `json:"bindings"`
	AutoStart    bool      `json:"auto_start"`
	WakeOnSend   bool      `json:"wake_on_send"`
	NotifyErrors bool      `json:"notify_errors"`
}

// Binding sends a key combination to the device when a local hotkey fires.
type Binding struct {
	Trigger string `json:"trigger"`           // local hotkey, e.g. "ctrl+alt+r"
	Send    string `json:"send"`              // combination sent to the device, e.g. "ctrl+shift+t"
	HoldMs  int    `json:"hold_ms,omitempty"` // 0 = click
}

// Validate checks that both sides of the binding parse.
func (b Binding) Validate() error {
	if _, err := keysim.Parse(b.Trigger); err != nil {
		return fmt.Errorf("trigger %q: %w", b.Trigger, err)
	}
	if _, err := keysim.Parse(b.Send); err != nil {
		return fmt.Errorf("send %q: %w", b.Send, err)
	}
	if b.HoldMs < 0 {
		return fmt.Errorf("hold_ms must not be negative (got %d)", b.HoldMs)
	}
	return nil
}

// String returns a human-readable representation like "Ctrl+Alt+R → ctrl+shift+t".
func (b Binding) String() string {
	s := pretty(b.Trigger) + " → " + b.Send
	if b.HoldMs > 0 {
		s += fmt.Sprintf(" (hold %dms)", b.HoldMs)
	}
	return s
}

// pretty renders a trigger combination as "Ctrl+Alt+R".
func pretty(combo string) string {
	c, err := keysim.Parse(combo)
	if err != nil {
		return combo
	}
	s := ""
	for _, m := range c.Modifiers {
		switch m {
		case keysim.Control:
			s += "Ctrl+"
		case keysim.Shift:
			s += "Shift+"
		case keysim.Alt:
			s += "Alt+"
		case keysim.Meta:
			s += "Super+"
		}
	}
	key := c.Key.String()
	if c.Key.Rune >= 'a' && c.Key.Rune <= 'z' {
		s += string(c.Key.Rune - 32) // uppercase single letter
	} else {
		s += key
	}
	return s
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Bindings: []Binding{
			{Trigger: "ctrl+alt+r", Send: "enter"},
			{Trigger: "ctrl+alt+w", Send: "volumeup"},
		},
		WakeOnSend:   true,
		NotifyErrors: true,
	}
}

// Dir returns the OS-appropriate config directory for r1keys.
func Dir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("user config dir: %w", err)
	}
	return filepath.Join(base, "r1keys"), nil
}

// Path returns the full path to the config file.
func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// Load reads the config from the default path.
func Load() (*Config, error) {
	p, err := Path()
	if err != nil {
		return nil, err
	}
	return LoadFile(p)
}

// LoadFile reads the config at p. If the file doesn't exist, it creates
// a default config and saves it.
func LoadFile(p string) (*Config, error) {
	data, err := os.ReadFile(p)
	if os.IsNotExist(err) {
		cfg := DefaultConfig()
		cfg.path = p
		if saveErr := cfg.Save(); saveErr != nil {
			return nil, fmt.Errorf("create default config: %w", saveErr)
		}
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := DefaultConfig() // start with defaults so new fields get populated
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.path = p
	return cfg, nil
}

// File returns the path the config was loaded from.
func (c *Config) File() string {
	return c.path
}

// Save writes the config to disk atomically (write temp, rename).
func (c *Config) Save() error {
	c.mu.RLock()
	data, err := json.MarshalIndent(c, "", "  ")
	p := c.path
	c.mu.RUnlock()
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if p == "" {
		p, err = Path()
		if err != nil {
			return err
		}
	}

	dir := filepath.Dir(p)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	tmp := p + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write temp config: %w", err)
	}
	if err := os.Rename(tmp, p); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("rename config: %w", err)
	}
	return nil
}

// GetBindings returns a copy of the current bindings.
func (c *Config) GetBindings() []Binding {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Binding, len(c.Bindings))
	copy(out, c.Bindings)
	return out
}

// SetBindings validates and replaces all bindings, then saves to disk.
func (c *Config) SetBindings(bindings []Binding) error {
	for i, b := range bindings {
		if err := b.Validate(); err != nil {
			return fmt.Errorf("binding %d: %w", i, err)
		}
	}
	c.mu.Lock()
	c.Bindings = append([]Binding(nil), bindings...)
	c.mu.Unlock()
	return c.Save()
}

// GetSerial returns the device serial filter.
func (c *Config) GetSerial() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.Serial
}

// GetAutoStart returns the current auto-start setting.
func (c *Config) GetAutoStart() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.AutoStart
}

// SetAutoStart updates the auto-start setting and saves to disk.
func (c *Config) SetAutoStart(enabled bool) error {
	c.mu.Lock()
	c.AutoStart = enabled
	c.mu.Unlock()
	return c.Save()
}

// GetWakeOnSend returns whether the device is woken before each send.
func (c *Config) GetWakeOnSend() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.WakeOnSend
}

// GetNotifyErrors returns whether failed hotkey sends raise a notification.
func (c *Config) GetNotifyErrors() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.NotifyErrors
}

// Update copies the settings of a freshly loaded config into c without
// saving. The path of c is kept.
func (c *Config) Update(from *Config) {
	from.mu.RLock()
	serial := from.Serial
	bindings := append([]Binding(nil), from.Bindings...)
	autoStart, wake, notifyErrs := from.AutoStart, from.WakeOnSend, from.NotifyErrors
	from.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()
	c.Serial = serial
	c.Bindings = bindings
	c.AutoStart = autoStart
	c.WakeOnSend = wake
	c.NotifyErrors = notifyErrs
}
