// R1 Keys: sends key combinations to a Rabbit R1 from global hotkeys.
//
// The R1 is attached over USB-C and registered as a HID keyboard through
// Android Open Accessory. Each configured binding maps a local hotkey
// (e.g. Ctrl+Alt+R) to a combination typed on the device (e.g. "enter",
// "ctrl+shift+t" or a held "space").
//
// Bindings live in config.json and can be edited in place, through the
// local API (Settings...) or by hand while the app is running.
package main

import (
	"context"
	"log"
	"os/exec"
	"runtime"
	"slices"

	"github.com/HopIT-Hub/R1-Keys/internal/autostart"
	"github.com/HopIT-Hub/R1-Keys/internal/config"
	"github.com/HopIT-Hub/R1-Keys/internal/device"
	"github.com/HopIT-Hub/R1-Keys/internal/hotkey"
	"github.com/HopIT-Hub/R1-Keys/internal/metrics"
	"github.com/HopIT-Hub/R1-Keys/internal/notify"
	"github.com/HopIT-Hub/R1-Keys/internal/server"
	"github.com/HopIT-Hub/R1-Keys/internal/tray"
	"github.com/HopIT-Hub/R1-Keys/keysim"
	"github.com/prometheus/client_golang/prometheus"
)

var version = "dev"

func main() {
	// Load or create config
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("[r1keys] config: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())

	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	// Device manager: auto-detects the R1, reconnects on disconnect
	devMgr := device.NewManager(cfg.GetSerial(), func(state device.State) {
		tray.SetState(state)
		m.SetDeviceConnected(state != device.Disconnected)
		log.Printf("[r1keys] device: %s", state)
	})
	devMgr.SetWakeOnSend(cfg.GetWakeOnSend())

	sim := keysim.New(devMgr.OpenInjector, keysim.WithErrorHook(m.InjectError))

	bindings := hotkey.NewBindings(sim, func(b config.Binding, err error) {
		variant := metrics.VariantClick
		if b.HoldMs > 0 {
			variant = metrics.VariantHold
		}
		m.ObserveSimulation(variant, err)
		if err == nil {
			log.Printf("[r1keys] sent %s", b)
			return
		}
		log.Printf("[r1keys] %s: %v", b, err)
		if cfg.GetNotifyErrors() {
			notify.SendFailed(b.Send, err)
		}
	})

	applyBindings := func() {
		bs := cfg.GetBindings()
		if err := bindings.Set(bs); err != nil {
			log.Printf("[r1keys] some hotkeys failed to register: %v", err)
			log.Printf("[r1keys] you can change the bindings via Settings")
		}
		active := bindings.Active()
		labels := make([]string, 0, len(active))
		for _, b := range active {
			labels = append(labels, b.String())
		}
		tray.SetBindings(labels)
	}

	// Settings HTTP server
	srv := server.New(server.Options{
		Simulator: sim,
		Device:    devMgr,
		Bindings:  bindings,
		Config:    cfg,
		Metrics:   m,
		Gatherer:  reg,
		Version:   version,
	})

	// System tray, blocks on main thread
	tray.Run(tray.RunOpts{
		Version:          version,
		AutoStartEnabled: cfg.GetAutoStart(),

		// onReady: start background services after tray is initialized
		OnReady: func() {
			go devMgr.Run(ctx)
			go bindings.Run(ctx)

			applyBindings()

			// Pick up hand edits to config.json
			go func() {
				err := config.Watch(ctx, cfg.File(), func(fresh *config.Config) {
					cfg.Update(fresh)
					devMgr.SetWakeOnSend(cfg.GetWakeOnSend())
					// our own saves come back through here too
					if !slices.Equal(cfg.GetBindings(), bindings.Active()) {
						applyBindings()
					}
				})
				if err != nil {
					log.Printf("[r1keys] config watch: %v", err)
				}
			}()

			// Start settings server
			if _, err := srv.Start(); err != nil {
				log.Printf("[r1keys] settings server: %v", err)
			}

			log.Printf("[r1keys] ready (version %s)", version)
		},

		// onSettings: open browser to the API status page
		OnSettings: func() {
			url := srv.URL()
			if url == "" {
				log.Println("[r1keys] settings server not running")
				return
			}
			openBrowser(url + "/status")
		},

		// onAutoStart: toggle auto-start on login
		OnAutoStart: func(enabled bool) {
			if enabled {
				if err := autostart.Enable(); err != nil {
					log.Printf("[r1keys] enable autostart: %v", err)
					return
				}
			} else {
				if err := autostart.Disable(); err != nil {
					log.Printf("[r1keys] disable autostart: %v", err)
					return
				}
			}
			if err := cfg.SetAutoStart(enabled); err != nil {
				log.Printf("[r1keys] save autostart config: %v", err)
			}
			log.Printf("[r1keys] auto-start: %v", enabled)
		},

		// onQuit: clean shutdown
		OnQuit: func() {
			cancel()
			bindings.Close()
			devMgr.Close()
			srv.Stop()
		},
	})
}

func openBrowser(url string) {
	var cmd string
	var args []string

	switch runtime.GOOS {
	case "darwin":
		cmd = "open"
		args = []string{url}
	case "windows":
		cmd = "cmd"
		args = []string{"/c", "start", url}
	default: // linux, bsd
		cmd = "xdg-open"
		args = []string{url}
	}

	if err := exec.Command(cmd, args...).Start(); err != nil {
		log.Printf("[r1keys] open browser: %v", err)
	}
}
