// Package hotkey registers cross-platform global hotkeys and binds each
// one to a combination sent to the device. Hotkeys are described with the
// same combination strings keysim parses.
package hotkey

import (
	"fmt"

	"github.com/HopIT-Hub/R1-Keys/keysim"
	"golang.design/x/hotkey"
)

// Convert turns a combination string into hotkey modifiers and key.
// The modMap variable is defined in platform-specific files (keymap_*.go).
func Convert(combination string) ([]hotkey.Modifier, hotkey.Key, error) {
	c, err := keysim.Parse(combination)
	if err != nil {
		return nil, 0, err
	}

	mods := make([]hotkey.Modifier, 0, len(c.Modifiers))
	for _, m := range c.Modifiers {
		hm, ok := modMap[m]
		if !ok {
			return nil, 0, fmt.Errorf("modifier %s has no global hotkey equivalent", m)
		}
		mods = append(mods, hm)
	}

	k, ok := keyMap[c.Key]
	if !ok {
		return nil, 0, fmt.Errorf("key %q cannot be used as a global hotkey", c.Key.String())
	}
	return mods, k, nil
}

// keyMap holds the keys every supported platform can grab globally, plus
// platformKeys from keymap_*.go.
var keyMap = buildKeyMap()

func buildKeyMap() map[keysim.Key]hotkey.Key {
	m := map[keysim.Key]hotkey.Key{
		keysim.NamedKey(keysim.Space):      hotkey.KeySpace,
		keysim.NamedKey(keysim.Return):     hotkey.KeyReturn,
		keysim.NamedKey(keysim.Escape):     hotkey.KeyEscape,
		keysim.NamedKey(keysim.Tab):        hotkey.KeyTab,
		keysim.NamedKey(keysim.LeftArrow):  hotkey.KeyLeft,
		keysim.NamedKey(keysim.RightArrow): hotkey.KeyRight,
		keysim.NamedKey(keysim.UpArrow):    hotkey.KeyUp,
		keysim.NamedKey(keysim.DownArrow):  hotkey.KeyDown,
	}

	letters := []hotkey.Key{
		hotkey.KeyA, hotkey.KeyB, hotkey.KeyC, hotkey.KeyD, hotkey.KeyE,
		hotkey.KeyF, hotkey.KeyG, hotkey.KeyH, hotkey.KeyI, hotkey.KeyJ,
		hotkey.KeyK, hotkey.KeyL, hotkey.KeyM, hotkey.KeyN, hotkey.KeyO,
		hotkey.KeyP, hotkey.KeyQ, hotkey.KeyR, hotkey.KeyS, hotkey.KeyT,
		hotkey.KeyU, hotkey.KeyV, hotkey.KeyW, hotkey.KeyX, hotkey.KeyY,
		hotkey.KeyZ,
	}
	for i, k := range letters {
		m[keysim.RuneKey('a'+rune(i))] = k
	}

	digits := []hotkey.Key{
		hotkey.Key0, hotkey.Key1, hotkey.Key2, hotkey.Key3, hotkey.Key4,
		hotkey.Key5, hotkey.Key6, hotkey.Key7, hotkey.Key8, hotkey.Key9,
	}
	for i, k := range digits {
		m[keysim.RuneKey('0'+rune(i))] = k
	}

	fkeys := []hotkey.Key{
		hotkey.KeyF1, hotkey.KeyF2, hotkey.KeyF3, hotkey.KeyF4, hotkey.KeyF5,
		hotkey.KeyF6, hotkey.KeyF7, hotkey.KeyF8, hotkey.KeyF9, hotkey.KeyF10,
		hotkey.KeyF11, hotkey.KeyF12, hotkey.KeyF13, hotkey.KeyF14, hotkey.KeyF15,
		hotkey.KeyF16, hotkey.KeyF17, hotkey.KeyF18, hotkey.KeyF19, hotkey.KeyF20,
	}
	for i, k := range fkeys {
		m[keysim.NamedKey(keysim.F1+keysim.Named(i))] = k
	}
	for k, hk := range platformKeys {
		m[k] = hk
	}
	return m
}
