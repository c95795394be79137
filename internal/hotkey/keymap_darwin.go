//go:build darwin

package hotkey

import (
	"github.com/HopIT-Hub/R1-Keys/keysim"
	"golang.design/x/hotkey"
)

var modMap = map[keysim.Modifier]hotkey.Modifier{
	keysim.Control: hotkey.ModCtrl,
	keysim.Shift:   hotkey.ModShift,
	keysim.Alt:     hotkey.ModOption,
	keysim.Meta:    hotkey.ModCmd,
}

// KeyDelete is the key labelled Delete on Mac keyboards, which is Backspace.
// The library has no forward-delete key on macOS.
var platformKeys = map[keysim.Key]hotkey.Key{
	keysim.NamedKey(keysim.Backspace): hotkey.KeyDelete,
}
