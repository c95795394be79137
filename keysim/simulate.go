package keysim

import (
	"fmt"
	"io"
	"log"
	"sync"
	"time"
)

// Injector performs the actual input delivery for one key at a time.
// Click is a press immediately followed by a release.
type Injector interface {
	Press(k Key) error
	Release(k Key) error
	Click(k Key) error
}

// Opener constructs a fresh Injector for a single dispatch. If the returned
// Injector also implements io.Closer it is closed when the dispatch ends.
type Opener func() (Injector, error)

// Op names one injector primitive, as passed to an ErrorHook.
type Op string

const (
	OpPress   Op = "press"
	OpRelease Op = "release"
	OpClick   Op = "click"
)

// ErrorHook observes injector failures. The sequencer never returns them.
type ErrorHook func(op Op, k Key, err error)

// Simulator parses combinations and sequences them onto injectors.
type Simulator struct {
	open    Opener
	sleep   func(time.Duration)
	onError ErrorHook
}

// Option configures a Simulator.
type Option func(*Simulator)

// WithErrorHook registers a callback for per-event injector failures.
func WithErrorHook(h ErrorHook) Option {
	return func(s *Simulator) { s.onError = h }
}

// WithSleep replaces the blocking wait used by SimulateHold.
func WithSleep(sleep func(time.Duration)) Option {
	return func(s *Simulator) { s.sleep = sleep }
}

// New creates a Simulator that opens an injector with open on every call.
// A nil open makes every dispatch fail with ErrInjectorUnavailable.
func New(open Opener, opts ...Option) *Simulator {
	s := &Simulator{open: open, sleep: time.Sleep}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Simulate presses the modifiers of combination in order, clicks the main
// key, then releases the modifiers in reverse order.
//
// Only parse failures (*ParseKeyError) and injector construction failures
// (ErrInjectorUnavailable) are returned. Nothing is injected when parsing
// fails.
func (s *Simulator) Simulate(combination string) error {
	c, err := Parse(combination)
	if err != nil {
		return err
	}
	return s.dispatch(c, func(inj Injector) {
		s.call(OpClick, c.Key, inj.Click)
	})
}

// SimulateHold is like Simulate but presses the main key, blocks for d,
// and releases it before releasing the modifiers. The wait cannot be
// cancelled once started.
func (s *Simulator) SimulateHold(combination string, d time.Duration) error {
	c, err := Parse(combination)
	if err != nil {
		return err
	}
	return s.dispatch(c, func(inj Injector) {
		s.call(OpPress, c.Key, inj.Press)
		s.sleep(d)
		s.call(OpRelease, c.Key, inj.Release)
	})
}

// dispatch wraps trigger with the modifier press/release nesting.
func (s *Simulator) dispatch(c Combination, trigger func(Injector)) error {
	inj, err := s.openInjector()
	if err != nil {
		return err
	}
	if closer, ok := inj.(io.Closer); ok {
		defer func() {
			if err := closer.Close(); err != nil {
				log.Printf("[keysim] close injector: %v", err)
			}
		}()
	}

	for _, m := range c.Modifiers {
		s.call(OpPress, ModifierKey(m), inj.Press)
	}
	trigger(inj)
	for i := len(c.Modifiers) - 1; i >= 0; i-- {
		s.call(OpRelease, ModifierKey(c.Modifiers[i]), inj.Release)
	}
	return nil
}

func (s *Simulator) openInjector() (Injector, error) {
	if s.open == nil {
		return nil, fmt.Errorf("%w: no injector configured", ErrInjectorUnavailable)
	}
	inj, err := s.open()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInjectorUnavailable, err)
	}
	if inj == nil {
		return nil, fmt.Errorf("%w: opener returned nil", ErrInjectorUnavailable)
	}
	return inj, nil
}

// call issues one primitive. Failures are best effort: logged, reported to
// the hook, and otherwise ignored so later releases still go out.
func (s *Simulator) call(op Op, k Key, fn func(Key) error) {
	if err := fn(k); err != nil {
		log.Printf("[keysim] %s %s: %v", op, k, err)
		if s.onError != nil {
			s.onError(op, k, err)
		}
	}
}

var (
	defaultMu  sync.RWMutex
	defaultSim = New(nil)
)

// SetOpener installs the opener used by SimulateKey and SimulateKeyHold.
func SetOpener(open Opener, opts ...Option) {
	sim := New(open, opts...)
	defaultMu.Lock()
	defaultSim = sim
	defaultMu.Unlock()
}

func defaultSimulator() *Simulator {
	defaultMu.RLock()
	defer defaultMu.RUnlock()
	return defaultSim
}

// SimulateKey runs Simulator.Simulate on the package default simulator.
func SimulateKey(combination string) error {
	return defaultSimulator().Simulate(combination)
}

// SimulateKeyHold runs Simulator.SimulateHold on the package default
// simulator.
func SimulateKeyHold(combination string, d time.Duration) error {
	return defaultSimulator().SimulateHold(combination, d)
}
