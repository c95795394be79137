//go:build windows

package hotkey

import (
	"github.com/HopIT-Hub/R1-Keys/keysim"
	"golang.design/x/hotkey"
)

var modMap = map[keysim.Modifier]hotkey.Modifier{
	keysim.Control: hotkey.ModCtrl,
	keysim.Shift:   hotkey.ModShift,
	keysim.Alt:     hotkey.ModAlt,
	keysim.Meta:    hotkey.ModWin,
}

// KeyDelete is VK_DELETE, the forward-delete key. The library has no
// VK_BACK key.
var platformKeys = map[keysim.Key]hotkey.Key{
	keysim.NamedKey(keysim.Delete): hotkey.KeyDelete,
}
