// Package device manages the USB connection to an AOA2-capable Android
// device such as the Rabbit R1. It automatically detects the device when
// plugged in, reconnects on disconnect, and hands out keysim injectors
// that type on the device as a HID keyboard.
package device

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/HopIT-Hub/R1-Keys/aoa"
	"github.com/HopIT-Hub/R1-Keys/keysim"
)

// State represents the current device state.
type State int

const (
	Disconnected State = iota
	Connected
	Sending
)

func (s State) String() string {
	switch s {
	case Disconnected:
		return "disconnected"
	case Connected:
		return "connected"
	case Sending:
		return "sending"
	default:
		return "unknown"
	}
}

// ErrNotConnected is returned by OpenInjector when no device is attached.
var ErrNotConnected = errors.New("no device connected")

// ErrBusy is returned by OpenInjector while another injector is open.
var ErrBusy = errors.New("device busy")

// Conn is the part of *aoa.Device the manager uses.
type Conn interface {
	RegisterDescriptor(dt aoa.DescriptorType) (uint16, error)
	SendReportTo(hidID uint16, report []byte) error
	Ping() error
	Close()
}

// Manager handles the device USB lifecycle.
type Manager struct {
	mu       sync.Mutex
	dev      Conn
	state    State
	onChange func(State) // callback when state changes
	serial   string      // optional serial filter
	open     func(serial string) (Conn, error)

	// HID descriptor IDs (assigned on connect)
	keyboardID uint16
	consumerID uint16
	systemID   uint16

	wakeOnSend bool
	busy       bool
}

// NewManager creates a new device manager.
// onChange is called whenever the device state changes.
func NewManager(serial string, onChange func(State)) *Manager {
	return &Manager{
		state:      Disconnected,
		onChange:   onChange,
		serial:     serial,
		wakeOnSend: true,
		open: func(serial string) (Conn, error) {
			d, err := aoa.Open(serial)
			if err != nil {
				return nil, err
			}
			return d, nil
		},
	}
}

// SetWakeOnSend configures whether a System Wake Up tap precedes each send.
func (m *Manager) SetWakeOnSend(enabled bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.wakeOnSend = enabled
}

// State returns the current device state.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Run starts the device auto-detection loop. It polls for the device every
// 2 seconds and checks device health while connected.
// Blocks until ctx is cancelled.
func (m *Manager) Run(ctx context.Context) {
	pollTicker := time.NewTicker(2 * time.Second)
	defer pollTicker.Stop()

	// Try immediately on start
	m.tryConnect()

	for {
		select {
		case <-ctx.Done():
			return
		case <-pollTicker.C:
			if m.State() == Disconnected {
				m.tryConnect()
			} else {
				m.healthCheck()
			}
		}
	}
}

// tryConnect attempts to open the device and register HID descriptors.
func (m *Manager) tryConnect() {
	dev, err := m.open(m.serial)
	if err != nil {
		return // device not found, will retry
	}

	ids := make([]uint16, 3)
	for i, dt := range []aoa.DescriptorType{aoa.DescKeyboard, aoa.DescConsumerControl, aoa.DescSystemControl} {
		id, err := dev.RegisterDescriptor(dt)
		if err != nil {
			log.Printf("[device] %s HID register failed: %v", dt, err)
			dev.Close()
			return
		}
		ids[i] = id
	}

	m.mu.Lock()
	m.dev = dev
	m.keyboardID, m.consumerID, m.systemID = ids[0], ids[1], ids[2]
	m.busy = false
	m.setStateLocked(Connected)
	m.mu.Unlock()

	log.Println("[device] connected")
}

// healthCheck verifies the device is still connected.
func (m *Manager) healthCheck() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.dev == nil || m.busy {
		return
	}

	if err := m.dev.Ping(); err != nil {
		log.Printf("[device] disconnected: %v", err)
		m.dropLocked()
	}
}

// Wake tap timing.
var (
	wakeTap    = 50 * time.Millisecond
	wakeSettle = 100 * time.Millisecond // screen turn-on
)

// wake sends a System Wake Up tap to ensure the screen is on. It runs
// without m.mu held so State stays responsive during the tap.
func (m *Manager) wake(dev Conn, systemID uint16) {
	if err := m.send(dev, systemID, aoa.SystemWake); err != nil {
		return // best-effort, don't fail the caller
	}
	time.Sleep(wakeTap)
	_ = m.send(dev, systemID, aoa.SystemRelease)
	time.Sleep(wakeSettle)
}

// OpenInjector returns a fresh keysim.Injector bound to the connected
// device. Only one injector may be open at a time; Close releases it.
// It has the keysim.Opener shape.
func (m *Manager) OpenInjector() (keysim.Injector, error) {
	m.mu.Lock()
	if m.dev == nil {
		m.mu.Unlock()
		return nil, ErrNotConnected
	}
	if m.busy {
		m.mu.Unlock()
		return nil, ErrBusy
	}

	m.busy = true
	m.setStateLocked(Sending)
	in := &injector{
		m:          m,
		dev:        m.dev,
		keyboardID: m.keyboardID,
		consumerID: m.consumerID,
	}
	wakeOnSend, systemID := m.wakeOnSend, m.systemID
	m.mu.Unlock()

	if wakeOnSend {
		m.wake(in.dev, systemID)
	}
	return in, nil
}

// send delivers one report on behalf of an injector. dev pins the
// connection the injector was opened on; after a reconnect it fails.
func (m *Manager) send(dev Conn, hidID uint16, report []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.dev == nil || m.dev != dev {
		return ErrNotConnected
	}
	if err := m.dev.SendReportTo(hidID, report); err != nil {
		m.handleError(err)
		return err
	}
	return nil
}

// release ends an injector's session.
func (m *Manager) release(dev Conn) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.dev != dev {
		return
	}
	m.busy = false
	m.setStateLocked(Connected)
}

// handleError marks the device as disconnected on USB errors.
// Must be called with m.mu held.
func (m *Manager) handleError(err error) {
	log.Printf("[device] USB error: %v, will reconnect", err)
	m.dropLocked()
}

// dropLocked closes the connection. Must be called with m.mu held.
func (m *Manager) dropLocked() {
	if m.dev != nil {
		m.dev.Close()
		m.dev = nil
	}
	m.busy = false
	m.setStateLocked(Disconnected)
}

// setStateLocked records s and notifies. Must be called with m.mu held.
func (m *Manager) setStateLocked(s State) {
	if m.state == s {
		return
	}
	m.state = s
	if m.onChange != nil {
		m.onChange(s)
	}
}

// Close shuts down the device connection cleanly.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.dev != nil {
		// Release anything still held
		_ = m.dev.SendReportTo(m.keyboardID, make([]byte, 8))
		_ = m.dev.SendReportTo(m.consumerID, aoa.ConsumerReport(0))
	}
	m.dropLocked()
}
