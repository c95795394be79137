package hotkey

import (
	"context"
	"fmt"
	"log"
	"runtime"
	"sync"
	"time"

	"golang.design/x/hotkey"
)

// repeatWindow is how long after a keyup a keydown still counts as X11
// auto-repeat.
const repeatWindow = 50 * time.Millisecond

// Manager handles one global hotkey and calls onDown each time it is
// pressed. Holding the key fires once.
type Manager struct {
	mu          sync.Mutex
	hk          *hotkey.Hotkey
	cancel      context.CancelFunc
	combination string
	onDown      func()
}

// NewManager creates a hotkey manager that calls onDown on every press.
func NewManager(onDown func()) *Manager {
	return &Manager{onDown: onDown}
}

// Register sets up a global hotkey described by a combination such as
// "ctrl+alt+r". If a hotkey is already registered, it is unregistered first.
func (m *Manager) Register(combination string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	// Unregister existing hotkey
	m.unregisterLocked()

	parsedMods, parsedKey, err := Convert(combination)
	if err != nil {
		return fmt.Errorf("parse hotkey: %w", err)
	}

	// Create and register the hotkey
	hk := hotkey.New(parsedMods, parsedKey)
	if err := hk.Register(); err != nil {
		return fmt.Errorf("register hotkey: %w", err)
	}

	m.hk = hk
	m.combination = combination

	// Start listening for events
	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	go m.listen(ctx, hk)

	log.Printf("[hotkey] registered: %s", combination)
	return nil
}

// listen calls onDown for each real press until ctx is cancelled.
func (m *Manager) listen(ctx context.Context, hk *hotkey.Hotkey) {
	// X11 auto-repeat turns a held key into keyup/keydown pairs. A keydown
	// within repeatWindow of the last keyup is auto-repeat and is dropped.
	isLinux := runtime.GOOS == "linux"
	var lastUp time.Time

	for {
		select {
		case <-ctx.Done():
			return
		case <-hk.Keydown():
			if isLinux && !lastUp.IsZero() && time.Since(lastUp) < repeatWindow {
				continue
			}
			if m.onDown != nil {
				m.onDown()
			}
		case <-hk.Keyup():
			lastUp = time.Now()
		}
	}
}

// Combination returns the registered hotkey, or "" if none.
func (m *Manager) Combination() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.combination
}

// Unregister removes the current global hotkey.
func (m *Manager) Unregister() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.unregisterLocked()
}

func (m *Manager) unregisterLocked() {
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
	if m.hk != nil {
		if err := m.hk.Unregister(); err != nil {
			log.Printf("[hotkey] unregister %s: %v", m.combination, err)
		}
		m.hk = nil
	}
	m.combination = ""
}
