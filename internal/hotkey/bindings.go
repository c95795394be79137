package hotkey

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/HopIT-Hub/R1-Keys/internal/config"
)

// Sender dispatches key combinations. *keysim.Simulator satisfies it.
type Sender interface {
	Simulate(combination string) error
	SimulateHold(combination string, d time.Duration) error
}

// registrar is the part of *Manager that Bindings drives.
type registrar interface {
	Register(combination string) error
	Combination() string
	Unregister()
}

// queueSize bounds how many triggered sends may wait behind a slow one.
const queueSize = 16

// Bindings owns one global hotkey per binding and sends the bound
// combination when it fires. Sends run one at a time on a single worker, so
// combinations never interleave on the device.
type Bindings struct {
	mu        sync.Mutex
	sender    Sender
	onResult  func(config.Binding, error)
	newHotkey func(onDown func()) registrar
	active    []registrar
	bound     []config.Binding
	jobs      chan config.Binding
}

// NewBindings creates an empty binding set. onResult, if non-nil, is called
// on the worker after every send.
func NewBindings(sender Sender, onResult func(config.Binding, error)) *Bindings {
	return &Bindings{
		sender:   sender,
		onResult: onResult,
		newHotkey: func(onDown func()) registrar {
			return NewManager(onDown)
		},
		jobs: make(chan config.Binding, queueSize),
	}
}

// Set unregisters all current hotkeys and registers bindings. Bindings that
// fail to register are skipped; their errors are joined in the result.
func (b *Bindings) Set(bindings []config.Binding) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.unregisterLocked()

	var errs []error
	for _, binding := range bindings {
		if err := binding.Validate(); err != nil {
			errs = append(errs, err)
			continue
		}
		hk := b.newHotkey(func() { b.Trigger(binding) })
		if err := hk.Register(binding.Trigger); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", binding.Trigger, err))
			continue
		}
		b.active = append(b.active, hk)
		b.bound = append(b.bound, binding)
	}
	log.Printf("[hotkey] %d of %d bindings active", len(b.bound), len(bindings))
	return errors.Join(errs...)
}

// Active returns the bindings whose hotkeys are registered.
func (b *Bindings) Active() []config.Binding {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]config.Binding(nil), b.bound...)
}

// Triggers returns the hotkeys currently grabbed, as registered.
func (b *Bindings) Triggers() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]string, 0, len(b.active))
	for _, hk := range b.active {
		out = append(out, hk.Combination())
	}
	return out
}

// Trigger queues binding for sending. It never blocks; when the queue is
// full the send is dropped.
func (b *Bindings) Trigger(binding config.Binding) {
	select {
	case b.jobs <- binding:
	default:
		log.Printf("[hotkey] queue full, dropped %s", binding)
	}
}

// Run sends queued bindings until ctx is cancelled.
func (b *Bindings) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case binding := <-b.jobs:
			b.send(binding)
		}
	}
}

func (b *Bindings) send(binding config.Binding) {
	var err error
	if binding.HoldMs > 0 {
		err = b.sender.SimulateHold(binding.Send, time.Duration(binding.HoldMs)*time.Millisecond)
	} else {
		err = b.sender.Simulate(binding.Send)
	}
	if err != nil {
		log.Printf("[hotkey] send %s: %v", binding.Send, err)
	}
	if b.onResult != nil {
		b.onResult(binding, err)
	}
}

// Close unregisters every hotkey.
func (b *Bindings) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.unregisterLocked()
}

func (b *Bindings) unregisterLocked() {
	for _, hk := range b.active {
		hk.Unregister()
	}
	b.active = nil
	b.bound = nil
}
