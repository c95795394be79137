package aoa

import (
	"errors"
	"fmt"

	"github.com/HopIT-Hub/R1-Keys/keysim"
)

// ErrNoUsage is returned for keys that have no HID usage on the descriptors
// this package registers (F25–F35, characters outside US ASCII).
var ErrNoUsage = errors.New("no HID usage for key")

// ErrRollover is returned when a seventh non-modifier key is pressed.
var ErrRollover = errors.New("more than 6 keys held")

// Modifier bits of byte 0 in a keyboard report (left-hand keys).
const (
	modLeftCtrl  byte = 0x01
	modLeftShift byte = 0x02
	modLeftAlt   byte = 0x04
	modLeftGUI   byte = 0x08
)

// Usage is a Keyboard/Keypad page usage plus any modifier bits the key
// implies on a US layout ("!" is Shift+1).
type Usage struct {
	Code    byte
	Implied byte
}

var modifierBits = map[keysim.Modifier]byte{
	keysim.Control: modLeftCtrl,
	keysim.Shift:   modLeftShift,
	keysim.Alt:     modLeftAlt,
	keysim.Meta:    modLeftGUI,
}

var namedUsages = map[keysim.Named]byte{
	keysim.Return:      0x28,
	keysim.Escape:      0x29,
	keysim.Backspace:   0x2A,
	keysim.Tab:         0x2B,
	keysim.Space:       0x2C,
	keysim.CapsLock:    0x39,
	keysim.PrintScreen: 0x46,
	keysim.ScrollLock:  0x47,
	keysim.Pause:       0x48,
	keysim.Insert:      0x49,
	keysim.Home:        0x4A,
	keysim.PageUp:      0x4B,
	keysim.Delete:      0x4C,
	keysim.End:         0x4D,
	keysim.PageDown:    0x4E,
	keysim.RightArrow:  0x4F,
	keysim.LeftArrow:   0x50,
	keysim.DownArrow:   0x51,
	keysim.UpArrow:     0x52,
	keysim.NumLock:     0x53,
	keysim.Numpad0:     0x62,
}

// Unshifted punctuation on a US layout.
var punctUsages = map[rune]byte{
	'-':  0x2D,
	'=':  0x2E,
	'[':  0x2F,
	']':  0x30,
	'\\': 0x31,
	';':  0x33,
	'\'': 0x34,
	'`':  0x35,
	',':  0x36,
	'.':  0x37,
	'/':  0x38,
}

// Shifted characters and the unshifted character on the same key.
var shiftedRunes = map[rune]rune{
	'!': '1', '@': '2', '#': '3', '$': '4', '%': '5',
	'^': '6', '&': '7', '*': '8', '(': '9', ')': '0',
	'_': '-', '+': '=', '{': '[', '}': ']', '|': '\\',
	':': ';', '"': '\'', '~': '`', '<': ',', '>': '.', '?': '/',
}

var consumerUsages = map[keysim.Named]uint16{
	keysim.VolumeUp:       0x00E9,
	keysim.VolumeDown:     0x00EA,
	keysim.VolumeMute:     0x00E2,
	keysim.MediaPlayPause: 0x00CD,
	keysim.MediaStop:      0x00B7,
	keysim.MediaNextTrack: 0x00B5,
	keysim.MediaPrevTrack: 0x00B6,
}

// IsConsumer reports whether k is delivered on the Consumer Control page.
func IsConsumer(k keysim.Key) bool {
	_, ok := consumerUsages[k.Named]
	return ok && k.Named != 0
}

// ConsumerUsage returns the Consumer page usage for a media key.
func ConsumerUsage(k keysim.Key) (uint16, error) {
	if u, ok := consumerUsages[k.Named]; ok && k.Named != 0 {
		return u, nil
	}
	return 0, fmt.Errorf("%w: %s", ErrNoUsage, k)
}

// ConsumerReport builds the 2-byte consumer control report for usage.
// A zero usage releases.
func ConsumerReport(usage uint16) []byte {
	return []byte{byte(usage & 0xFF), byte(usage >> 8)}
}

// KeyboardUsage maps a non-modifier key to its Keyboard/Keypad usage.
func KeyboardUsage(k keysim.Key) (Usage, error) {
	switch {
	case k.IsModifier() || k.IsZero():
		return Usage{}, fmt.Errorf("%w: %s", ErrNoUsage, k)
	case k.Named != 0:
		return namedUsage(k.Named, k)
	default:
		return runeUsage(k.Rune, k)
	}
}

func namedUsage(n keysim.Named, k keysim.Key) (Usage, error) {
	if n.IsFunction() {
		// the usage table stops at F24
		switch {
		case n <= keysim.F12:
			return Usage{Code: 0x3A + byte(n-keysim.F1)}, nil
		case n <= keysim.F24:
			return Usage{Code: 0x68 + byte(n-keysim.F13)}, nil
		}
		return Usage{}, fmt.Errorf("%w: %s", ErrNoUsage, k)
	}
	if n >= keysim.Numpad1 && n <= keysim.Numpad9 {
		return Usage{Code: 0x59 + byte(n-keysim.Numpad1)}, nil
	}
	if code, ok := namedUsages[n]; ok {
		return Usage{Code: code}, nil
	}
	return Usage{}, fmt.Errorf("%w: %s", ErrNoUsage, k)
}

func runeUsage(r rune, k keysim.Key) (Usage, error) {
	switch {
	case r >= 'a' && r <= 'z':
		return Usage{Code: 0x04 + byte(r-'a')}, nil
	case r >= 'A' && r <= 'Z':
		return Usage{Code: 0x04 + byte(r-'A'), Implied: modLeftShift}, nil
	case r >= '1' && r <= '9':
		return Usage{Code: 0x1E + byte(r-'1')}, nil
	case r == '0':
		return Usage{Code: 0x27}, nil
	case r == ' ':
		return Usage{Code: 0x2C}, nil
	case r == '\t':
		return Usage{Code: 0x2B}, nil
	case r == '\n':
		return Usage{Code: 0x28}, nil
	}
	if code, ok := punctUsages[r]; ok {
		return Usage{Code: code}, nil
	}
	if base, ok := shiftedRunes[r]; ok {
		u, err := runeUsage(base, k)
		u.Implied |= modLeftShift
		return u, err
	}
	return Usage{}, fmt.Errorf("%w: %s", ErrNoUsage, k)
}

// Keyboard tracks held keys and renders 8-byte boot keyboard reports.
// The zero value has nothing held.
type Keyboard struct {
	mods    byte
	held    [6]Usage
	holding int
}

// Press marks k as held and returns the report to send.
func (kb *Keyboard) Press(k keysim.Key) ([]byte, error) {
	if k.IsModifier() {
		kb.mods |= modifierBits[k.Modifier]
		return kb.Report(), nil
	}
	u, err := KeyboardUsage(k)
	if err != nil {
		return nil, err
	}
	for i := 0; i < kb.holding; i++ {
		if kb.held[i].Code == u.Code {
			// same physical key, e.g. '1' then '!'
			kb.held[i].Implied |= u.Implied
			return kb.Report(), nil
		}
	}
	if kb.holding == len(kb.held) {
		return nil, ErrRollover
	}
	kb.held[kb.holding] = u
	kb.holding++
	return kb.Report(), nil
}

// Release marks k as no longer held and returns the report to send.
// Releasing a key that is not held is not an error.
func (kb *Keyboard) Release(k keysim.Key) ([]byte, error) {
	if k.IsModifier() {
		kb.mods &^= modifierBits[k.Modifier]
		return kb.Report(), nil
	}
	u, err := KeyboardUsage(k)
	if err != nil {
		return nil, err
	}
	for i := 0; i < kb.holding; i++ {
		if kb.held[i].Code != u.Code {
			continue
		}
		copy(kb.held[i:], kb.held[i+1:kb.holding])
		kb.holding--
		kb.held[kb.holding] = Usage{}
		break
	}
	return kb.Report(), nil
}

// Report renders the current state.
func (kb *Keyboard) Report() []byte {
	report := make([]byte, 8)
	report[0] = kb.mods
	for i := 0; i < kb.holding; i++ {
		report[0] |= kb.held[i].Implied
		report[2+i] = kb.held[i].Code
	}
	return report
}

// Held reports whether any key or modifier is down.
func (kb *Keyboard) Held() bool {
	return kb.mods != 0 || kb.holding > 0
}
