// Package notify raises desktop notifications through beeep.
package notify

import (
	"log"

	"github.com/gen2brain/beeep"
)

const appName = "R1 Keys"

// notifyFunc is swapped out in tests.
var notifyFunc = func(title, message string) error {
	return beeep.Notify(title, message, "")
}

// Send shows a desktop notification. Failures are logged and returned.
func Send(title, message string) error {
	log.Printf("[notify] %s: %s", title, message)
	err := notifyFunc(title, message)
	if err != nil {
		log.Printf("[notify] failed: %v", err)
	}
	return err
}

// SendFailed reports that a hotkey-triggered combination could not be sent.
func SendFailed(combination string, err error) error {
	return Send(appName, "Could not send "+combination+": "+err.Error())
}
