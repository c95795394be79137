//go:build windows

package autostart

import (
	"fmt"

	"golang.org/x/sys/windows/registry"
)

const (
	regKeyPath = `Software\Microsoft\Windows\CurrentVersion\Run`
	regValName = "R1Keys"
)

// IsEnabled returns true if the Run registry value exists.
func IsEnabled() bool {
	k, err := registry.OpenKey(registry.CURRENT_USER, regKeyPath, registry.QUERY_VALUE)
	if err != nil {
		return false
	}
	defer k.Close()

	_, _, err = k.GetStringValue(regValName)
	return err == nil
}

// Enable points the Run registry value at the current executable.
func Enable() error {
	e, err := currentEntry()
	if err != nil {
		return err
	}

	k, err := registry.OpenKey(registry.CURRENT_USER, regKeyPath, registry.SET_VALUE)
	if err != nil {
		return fmt.Errorf("open registry key: %w", err)
	}
	defer k.Close()

	if err := k.SetStringValue(regValName, `"`+e.Program+`"`); err != nil {
		return fmt.Errorf("set registry value: %w", err)
	}
	return nil
}

// Disable removes the Run registry value.
func Disable() error {
	k, err := registry.OpenKey(registry.CURRENT_USER, regKeyPath, registry.SET_VALUE)
	if err != nil {
		return fmt.Errorf("open registry key: %w", err)
	}
	defer k.Close()

	err = k.DeleteValue(regValName)
	if err == registry.ErrNotExist {
		return nil
	}
	return err
}
