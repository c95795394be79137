package keysim

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// alias binds one accepted spelling to a key. Tables are ordered so that
// SupportedKeys and String can report canonical names deterministically;
// the first alias listed for a key is its canonical name.
type alias struct {
	name string
	key  Key
}

var modifierAliases = []alias{
	{"ctrl", ModifierKey(Control)},
	{"control", ModifierKey(Control)},
	{"shift", ModifierKey(Shift)},
	{"alt", ModifierKey(Alt)},
	{"meta", ModifierKey(Meta)},
	{"win", ModifierKey(Meta)},
	{"cmd", ModifierKey(Meta)},
	{"command", ModifierKey(Meta)},
}

var namedAliases = []alias{
	// Basic keys
	{"enter", NamedKey(Return)},
	{"return", NamedKey(Return)},
	{"tab", NamedKey(Tab)},
	{"space", NamedKey(Space)},
	{"backspace", NamedKey(Backspace)},
	{"delete", NamedKey(Delete)},
	{"del", NamedKey(Delete)},
	{"insert", NamedKey(Insert)},
	{"ins", NamedKey(Insert)},
	{"escape", NamedKey(Escape)},
	{"esc", NamedKey(Escape)},

	// Navigation
	{"home", NamedKey(Home)},
	{"end", NamedKey(End)},
	{"pageup", NamedKey(PageUp)},
	{"pgup", NamedKey(PageUp)},
	{"pagedown", NamedKey(PageDown)},
	{"pgdn", NamedKey(PageDown)},

	// Arrows
	{"left", NamedKey(LeftArrow)},
	{"leftarrow", NamedKey(LeftArrow)},
	{"right", NamedKey(RightArrow)},
	{"rightarrow", NamedKey(RightArrow)},
	{"up", NamedKey(UpArrow)},
	{"uparrow", NamedKey(UpArrow)},
	{"down", NamedKey(DownArrow)},
	{"downarrow", NamedKey(DownArrow)},

	// Function keys
	{"f1", NamedKey(F1)},
	{"f2", NamedKey(F2)},
	{"f3", NamedKey(F3)},
	{"f4", NamedKey(F4)},
	{"f5", NamedKey(F5)},
	{"f6", NamedKey(F6)},
	{"f7", NamedKey(F7)},
	{"f8", NamedKey(F8)},
	{"f9", NamedKey(F9)},
	{"f10", NamedKey(F10)},
	{"f11", NamedKey(F11)},
	{"f12", NamedKey(F12)},
	{"f13", NamedKey(F13)},
	{"f14", NamedKey(F14)},
	{"f15", NamedKey(F15)},
	{"f16", NamedKey(F16)},
	{"f17", NamedKey(F17)},
	{"f18", NamedKey(F18)},
	{"f19", NamedKey(F19)},
	{"f20", NamedKey(F20)},
	{"f21", NamedKey(F21)},
	{"f22", NamedKey(F22)},
	{"f23", NamedKey(F23)},
	{"f24", NamedKey(F24)},
	{"f25", NamedKey(F25)},
	{"f26", NamedKey(F26)},
	{"f27", NamedKey(F27)},
	{"f28", NamedKey(F28)},
	{"f29", NamedKey(F29)},
	{"f30", NamedKey(F30)},
	{"f31", NamedKey(F31)},
	{"f32", NamedKey(F32)},
	{"f33", NamedKey(F33)},
	{"f34", NamedKey(F34)},
	{"f35", NamedKey(F35)},

	// Locks
	{"capslock", NamedKey(CapsLock)},
	{"caps", NamedKey(CapsLock)},
	{"numlock", NamedKey(NumLock)},
	{"num", NamedKey(NumLock)},
	{"scrolllock", NamedKey(ScrollLock)},
	{"scroll", NamedKey(ScrollLock)},

	// System
	{"printscreen", NamedKey(PrintScreen)},
	{"prtsc", NamedKey(PrintScreen)},
	{"pause", NamedKey(Pause)},

	// Media
	{"volumeup", NamedKey(VolumeUp)},
	{"volup", NamedKey(VolumeUp)},
	{"volumedown", NamedKey(VolumeDown)},
	{"voldown", NamedKey(VolumeDown)},
	{"volumemute", NamedKey(VolumeMute)},
	{"mute", NamedKey(VolumeMute)},
	{"mediaplay", NamedKey(MediaPlayPause)},
	{"play", NamedKey(MediaPlayPause)},
	{"mediastop", NamedKey(MediaStop)},
	{"stop", NamedKey(MediaStop)},
	{"medianext", NamedKey(MediaNextTrack)},
	{"next", NamedKey(MediaNextTrack)},
	{"mediaprev", NamedKey(MediaPrevTrack)},
	{"prev", NamedKey(MediaPrevTrack)},

	// Numpad
	{"numpad0", NamedKey(Numpad0)},
	{"numpad1", NamedKey(Numpad1)},
	{"numpad2", NamedKey(Numpad2)},
	{"numpad3", NamedKey(Numpad3)},
	{"numpad4", NamedKey(Numpad4)},
	{"numpad5", NamedKey(Numpad5)},
	{"numpad6", NamedKey(Numpad6)},
	{"numpad7", NamedKey(Numpad7)},
	{"numpad8", NamedKey(Numpad8)},
	{"numpad9", NamedKey(Numpad9)},

	// Punctuation by name
	{"comma", RuneKey(',')},
	{"period", RuneKey('.')},
	{"semicolon", RuneKey(';')},
	{"quote", RuneKey('\'')},
	{"bracketleft", RuneKey('[')},
	{"bracketright", RuneKey(']')},
	{"backslash", RuneKey('\\')},
	{"slash", RuneKey('/')},
	{"equal", RuneKey('=')},
	{"minus", RuneKey('-')},
	{"grave", RuneKey('`')},
	{"plus", RuneKey('+')},
}

var (
	modifierTable  = index(modifierAliases)
	namedTable     = index(namedAliases)
	canonicalNames = canonical(namedAliases)
)

func index(aliases []alias) map[string]Key {
	m := make(map[string]Key, len(aliases))
	for _, a := range aliases {
		if _, dup := m[a.name]; dup {
			panic("keysim: duplicate alias " + a.name)
		}
		m[a.name] = a.key
	}
	return m
}

func canonical(aliases []alias) map[Named]string {
	m := make(map[Named]string)
	for _, a := range aliases {
		if a.key.Named == 0 {
			continue
		}
		if _, ok := m[a.key.Named]; !ok {
			m[a.key.Named] = a.name
		}
	}
	return m
}

// Parse splits a "+"-delimited combination into its modifiers and main key.
// Matching is case-insensitive; the last token is always the main key.
// A single-character main key resolves to that literal character without
// consulting the named-key table.
func Parse(combination string) (Combination, error) {
	if strings.TrimSpace(combination) == "" {
		return Combination{}, errEmpty()
	}

	parts := strings.Split(combination, "+")
	for i := range parts {
		parts[i] = normalize(parts[i])
	}

	last := len(parts) - 1
	var mods []Modifier
	if last > 0 {
		mods = make([]Modifier, 0, last)
	}
	for _, p := range parts[:last] {
		m, err := ParseModifier(p)
		if err != nil {
			return Combination{}, err
		}
		mods = append(mods, m)
	}

	key, err := ParseMainKey(parts[last])
	if err != nil {
		return Combination{}, err
	}
	return Combination{Modifiers: mods, Key: key}, nil
}

// MustParse is like Parse but panics on error. It is meant for
// combinations fixed at compile time.
func MustParse(combination string) Combination {
	c, err := Parse(combination)
	if err != nil {
		panic(fmt.Sprintf("keysim: MustParse(%q): %v", combination, err))
	}
	return c
}

// ParseModifier resolves one modifier name such as "ctrl" or "cmd".
func ParseModifier(name string) (Modifier, error) {
	token := normalize(name)
	k, ok := modifierTable[token]
	if !ok {
		return 0, errModifier(token)
	}
	return k.Modifier, nil
}

// ParseMainKey resolves one main-key token: a single character other than
// NUL, or a named key alias.
func ParseMainKey(name string) (Key, error) {
	token := normalize(name)
	if utf8.RuneCountInString(token) == 1 {
		r, _ := utf8.DecodeRuneInString(token)
		if r == 0 {
			// RuneKey(0) is the zero Key
			return Key{}, errKey(token)
		}
		return RuneKey(r), nil
	}
	k, ok := namedTable[token]
	if !ok {
		return Key{}, errKey(token)
	}
	return k, nil
}

func normalize(token string) string {
	return strings.ToLower(strings.TrimSpace(token))
}
