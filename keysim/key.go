// Package keysim turns textual key combinations such as "ctrl+shift+t" into
// ordered press and release calls against an Injector.
//
// Parsing is pure. Dispatch goes through an Injector supplied by the caller,
// which performs the actual OS or device level input delivery.
package keysim

import (
	"strconv"
	"strings"
)

// Modifier is a key held down while another key is triggered.
type Modifier uint8

const (
	Control Modifier = iota + 1
	Shift
	Alt
	Meta
)

func (m Modifier) String() string {
	switch m {
	case Control:
		return "ctrl"
	case Shift:
		return "shift"
	case Alt:
		return "alt"
	case Meta:
		return "meta"
	default:
		return "modifier(" + strconv.Itoa(int(m)) + ")"
	}
}

// Named is a main key that has no single-character spelling.
type Named uint16

const (
	Return Named = iota + 1
	Tab
	Space
	Backspace
	Delete
	Insert
	Escape

	Home
	End
	PageUp
	PageDown

	LeftArrow
	RightArrow
	UpArrow
	DownArrow

	F1
	F2
	F3
	F4
	F5
	F6
	F7
	F8
	F9
	F10
	F11
	F12
	F13
	F14
	F15
	F16
	F17
	F18
	F19
	F20
	F21
	F22
	F23
	F24
	F25
	F26
	F27
	F28
	F29
	F30
	F31
	F32
	F33
	F34
	F35

	CapsLock
	NumLock
	ScrollLock

	PrintScreen
	Pause

	VolumeUp
	VolumeDown
	VolumeMute
	MediaPlayPause
	MediaStop
	MediaNextTrack
	MediaPrevTrack

	Numpad0
	Numpad1
	Numpad2
	Numpad3
	Numpad4
	Numpad5
	Numpad6
	Numpad7
	Numpad8
	Numpad9
)

// String returns the canonical alias of n, the first name the parser
// accepts for it.
func (n Named) String() string {
	if name, ok := canonicalNames[n]; ok {
		return name
	}
	return "named(" + strconv.Itoa(int(n)) + ")"
}

// IsFunction reports whether n is one of F1 through F35.
func (n Named) IsFunction() bool {
	return n >= F1 && n <= F35
}

// Key identifies one physical or logical key. Exactly one of Modifier,
// Named or Rune is set. Keys compare with ==.
type Key struct {
	Modifier Modifier
	Named    Named
	Rune     rune
}

// ModifierKey returns the Key for a modifier.
func ModifierKey(m Modifier) Key { return Key{Modifier: m} }

// NamedKey returns the Key for a named main key.
func NamedKey(n Named) Key { return Key{Named: n} }

// RuneKey returns the Key for a literal character.
func RuneKey(r rune) Key { return Key{Rune: r} }

// IsModifier reports whether k is a modifier key.
func (k Key) IsModifier() bool { return k.Modifier != 0 }

// IsZero reports whether k identifies no key at all.
func (k Key) IsZero() bool { return k == Key{} }

func (k Key) String() string {
	switch {
	case k.Modifier != 0:
		return k.Modifier.String()
	case k.Named != 0:
		return k.Named.String()
	case k.Rune != 0:
		if name, ok := runeNames[k.Rune]; ok {
			return name
		}
		return string(k.Rune)
	default:
		return ""
	}
}

// Combination is zero or more modifiers followed by exactly one main key.
// Modifiers keep their written order; duplicates are not removed.
type Combination struct {
	Modifiers []Modifier
	Key       Key
}

// String renders c in canonical form, e.g. "ctrl+shift+t".
func (c Combination) String() string {
	var b strings.Builder
	for _, m := range c.Modifiers {
		b.WriteString(m.String())
		b.WriteByte('+')
	}
	b.WriteString(c.Key.String())
	return b.String()
}

// runeNames spells runes that cannot appear literally in a combination.
var runeNames = map[rune]string{
	'+': "plus",
}
