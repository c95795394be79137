package notify

import (
	"errors"
	"strings"
	"testing"
)

func TestSendFailed(t *testing.T) {
	var gotTitle, gotMessage string
	orig := notifyFunc
	t.Cleanup(func() { notifyFunc = orig })
	notifyFunc = func(title, message string) error {
		gotTitle, gotMessage = title, message
		return nil
	}

	if err := SendFailed("ctrl+c", errors.New("no device connected")); err != nil {
		t.Fatalf("SendFailed error: %v", err)
	}
	if gotTitle != appName {
		t.Errorf("title = %q, want %q", gotTitle, appName)
	}
	if !strings.Contains(gotMessage, "ctrl+c") || !strings.Contains(gotMessage, "no device connected") {
		t.Errorf("message = %q", gotMessage)
	}
}

func TestSendReturnsBackendError(t *testing.T) {
	orig := notifyFunc
	t.Cleanup(func() { notifyFunc = orig })
	want := errors.New("dbus unavailable")
	notifyFunc = func(string, string) error { return want }

	if err := Send("t", "m"); !errors.Is(err, want) {
		t.Errorf("Send error = %v, want %v", err, want)
	}
}
