// Package tray manages the system tray icon and menu.
package tray

import (
	"strings"

	"github.com/HopIT-Hub/R1-Keys/internal/device"

	"fyne.io/systray"
)

// RunOpts configures the system tray.
type RunOpts struct {
	Version          string   // app version string (e.g., "1.0.0")
	AutoStartEnabled bool     // initial state of "Start on Login" checkbox
	Bindings         []string // human-readable bindings shown in the menu
	OnReady          func()
	OnSettings       func()
	OnAutoStart      func(enabled bool) // called when user toggles auto-start
	OnQuit           func()
}

// Run starts the system tray. It blocks on the main thread.
func Run(opts RunOpts) {
	systray.Run(func() {
		systray.SetIcon(IconDisconnected)
		systray.SetTitle("")
		systray.SetTooltip("R1 Keys: No device")

		// Version label, informational only
		versionLabel := "R1 Keys"
		if opts.Version != "" && opts.Version != "dev" {
			versionLabel += " v" + strings.TrimPrefix(opts.Version, "v")
		}
		mVersion := systray.AddMenuItem(versionLabel, "")
		mVersion.Disable()

		systray.AddSeparator()

		mBindings := systray.AddMenuItem("Bindings", "Hotkeys sent to the device")
		bindingsItem = mBindings
		SetBindings(opts.Bindings)

		mSettings := systray.AddMenuItem("Settings...", "Open the settings API")
		mAutoStart := systray.AddMenuItemCheckbox("Start on Login", "Launch automatically on login", opts.AutoStartEnabled)

		systray.AddSeparator()

		mStatus := systray.AddMenuItem("Status: Disconnected", "")
		mStatus.Disable()

		systray.AddSeparator()

		mQuit := systray.AddMenuItem("Quit", "Exit R1 Keys")

		// Store status item for updates
		statusItem = mStatus

		if opts.OnReady != nil {
			opts.OnReady()
		}

		go func() {
			for {
				select {
				case <-mSettings.ClickedCh:
					if opts.OnSettings != nil {
						opts.OnSettings()
					}
				case <-mAutoStart.ClickedCh:
					if mAutoStart.Checked() {
						mAutoStart.Uncheck()
						if opts.OnAutoStart != nil {
							opts.OnAutoStart(false)
						}
					} else {
						mAutoStart.Check()
						if opts.OnAutoStart != nil {
							opts.OnAutoStart(true)
						}
					}
				case <-mQuit.ClickedCh:
					if opts.OnQuit != nil {
						opts.OnQuit()
					}
					systray.Quit()
				}
			}
		}()
	}, func() {
		// cleanup on systray exit
	})
}

var (
	statusItem   *systray.MenuItem
	bindingsItem *systray.MenuItem
	bindingItems []*systray.MenuItem
)

// SetBindings replaces the informational binding entries under "Bindings".
func SetBindings(bindings []string) {
	if bindingsItem == nil {
		return
	}
	for _, item := range bindingItems {
		item.Remove()
	}
	bindingItems = bindingItems[:0]

	if len(bindings) == 0 {
		bindings = []string{"(none)"}
	}
	for _, b := range bindings {
		item := bindingsItem.AddSubMenuItem(b, "")
		item.Disable()
		bindingItems = append(bindingItems, item)
	}
}

// SetState updates the tray icon and tooltip based on device state.
func SetState(state device.State) {
	switch state {
	case device.Disconnected:
		systray.SetIcon(IconDisconnected)
		systray.SetTooltip("R1 Keys: No device")
		if statusItem != nil {
			statusItem.SetTitle("Status: Disconnected")
		}
	case device.Connected:
		systray.SetIcon(IconConnected)
		systray.SetTooltip("R1 Keys: Ready")
		if statusItem != nil {
			statusItem.SetTitle("Status: Connected")
		}
	case device.Sending:
		systray.SetIcon(IconSending)
		systray.SetTooltip("R1 Keys: Sending")
		if statusItem != nil {
			statusItem.SetTitle("Status: Sending")
		}
	}
}
