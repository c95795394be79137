// Package autostart manages registering the app to start on login.
// Each platform has its own implementation file.
package autostart

import (
	"fmt"
	"os"
)

// Identity of the login item on every platform.
const (
	appID   = "co.hopit.r1keys"
	appName = "R1 Keys"
	appDesc = "Send key combinations to your Rabbit R1 over USB"
)

// entry is the data rendered into a platform login item.
type entry struct {
	ID      string
	Name    string
	Comment string
	Program string
}

// currentEntry describes the running executable.
func currentEntry() (entry, error) {
	exe, err := os.Executable()
	if err != nil {
		return entry{}, fmt.Errorf("get executable path: %w", err)
	}
	return entry{ID: appID, Name: appName, Comment: appDesc, Program: exe}, nil
}

// removeFile deletes p, treating a missing file as already disabled.
func removeFile(p string) error {
	err := os.Remove(p)
	if os.IsNotExist(err) {
		return nil
	}
	return err
}
