package tray

import _ "embed"

// Tray icons, one per device state.
var (
	//go:embed icons/disconnected.png
	IconDisconnected []byte

	//go:embed icons/connected.png
	IconConnected []byte

	//go:embed icons/sending.png
	IconSending []byte
)
