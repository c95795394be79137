//go:build linux

package autostart

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"text/template"
)

var desktopTemplate = template.Must(template.New("desktop").Parse(`[Desktop Entry]
Type=Application
Name={{ .Name }}
Comment={{ .Comment }}
Exec={{ .Program }}
Icon=r1keys
Categories=Utility;
Terminal=false
X-GNOME-Autostart-enabled=true
`))

func desktopFilePath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("user config dir: %w", err)
	}
	return filepath.Join(configDir, "autostart", "r1keys.desktop"), nil
}

// IsEnabled returns true if the autostart .desktop file exists.
func IsEnabled() bool {
	p, err := desktopFilePath()
	if err != nil {
		return false
	}
	_, err = os.Stat(p)
	return err == nil
}

// Enable writes an autostart .desktop entry for the current executable.
func Enable() error {
	e, err := currentEntry()
	if err != nil {
		return err
	}
	p, err := desktopFilePath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return fmt.Errorf("create autostart dir: %w", err)
	}

	var buf bytes.Buffer
	if err := desktopTemplate.Execute(&buf, e); err != nil {
		return fmt.Errorf("render desktop file: %w", err)
	}
	if err := os.WriteFile(p, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write desktop file: %w", err)
	}
	return nil
}

// Disable removes the autostart .desktop entry.
func Disable() error {
	p, err := desktopFilePath()
	if err != nil {
		return err
	}
	return removeFile(p)
}
