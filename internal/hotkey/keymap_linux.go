//go:build linux

package hotkey

import (
	"github.com/HopIT-Hub/R1-Keys/keysim"
	"golang.design/x/hotkey"
)

// X11: Mod1 is Alt and Mod4 is Super on common keyboard maps.
var modMap = map[keysim.Modifier]hotkey.Modifier{
	keysim.Control: hotkey.ModCtrl,
	keysim.Shift:   hotkey.ModShift,
	keysim.Alt:     hotkey.Mod1,
	keysim.Meta:    hotkey.Mod4,
}

// KeyDelete is XK_Delete, the forward-delete key. The library has no
// BackSpace key on X11.
var platformKeys = map[keysim.Key]hotkey.Key{
	keysim.NamedKey(keysim.Delete): hotkey.KeyDelete,
}
