package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/HopIT-Hub/R1-Keys/internal/config"
	"github.com/HopIT-Hub/R1-Keys/keysim"
)

// captureRequest is the JSON body for POST /bindings/capture: a hotkey
// captured in the browser plus the combination it should send.
type captureRequest struct {
	JSCode    string   `json:"js_code"`   // KeyboardEvent.code, e.g. "KeyR"
	Modifiers []string `json:"modifiers"` // e.g. ["ctrl", "alt"]
	Send      string   `json:"send"`
	HoldMs    int      `json:"hold_ms,omitempty"`
}

// handleCaptureBinding adds or replaces the binding for a captured hotkey.
func (s *Server) handleCaptureBinding(w http.ResponseWriter, r *http.Request) {
	var req captureRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON"})
		return
	}

	// Global hotkeys without a modifier would swallow normal typing
	if len(req.Modifiers) == 0 {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "at least one modifier required"})
		return
	}

	keyName, err := jsCodeToKeyName(req.JSCode)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	c, err := keysim.Parse(strings.Join(req.Modifiers, "+") + "+" + keyName)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	binding := config.Binding{Trigger: c.String(), Send: req.Send, HoldMs: req.HoldMs}
	s.applyBindings(w, upsertBinding(s.opts.Config.GetBindings(), binding))
}

// upsertBinding replaces the binding with the same trigger as b, or
// appends b.
func upsertBinding(bindings []config.Binding, b config.Binding) []config.Binding {
	for i, existing := range bindings {
		c, err := keysim.Parse(existing.Trigger)
		if err == nil && c.String() == b.Trigger {
			bindings[i] = b
			return bindings
		}
	}
	return append(bindings, b)
}

// jsCodeToKeyName converts a JavaScript event.code to a keysim key name.
// e.g., "KeyR" → "r", "F5" → "f5", "Space" → "space"
func jsCodeToKeyName(jsCode string) (string, error) {
	name, ok := jsCodeToName[jsCode]
	if !ok {
		return "", fmt.Errorf("unsupported key: %q", jsCode)
	}
	return name, nil
}

var jsCodeToName = map[string]string{
	"KeyA": "a", "KeyB": "b", "KeyC": "c", "KeyD": "d",
	"KeyE": "e", "KeyF": "f", "KeyG": "g", "KeyH": "h",
	"KeyI": "i", "KeyJ": "j", "KeyK": "k", "KeyL": "l",
	"KeyM": "m", "KeyN": "n", "KeyO": "o", "KeyP": "p",
	"KeyQ": "q", "KeyR": "r", "KeyS": "s", "KeyT": "t",
	"KeyU": "u", "KeyV": "v", "KeyW": "w", "KeyX": "x",
	"KeyY": "y", "KeyZ": "z",
	"Digit0": "0", "Digit1": "1", "Digit2": "2", "Digit3": "3",
	"Digit4": "4", "Digit5": "5", "Digit6": "6", "Digit7": "7",
	"Digit8": "8", "Digit9": "9",
	"F1": "f1", "F2": "f2", "F3": "f3", "F4": "f4",
	"F5": "f5", "F6": "f6", "F7": "f7", "F8": "f8",
	"F9": "f9", "F10": "f10", "F11": "f11", "F12": "f12",
	"F13": "f13", "F14": "f14", "F15": "f15", "F16": "f16",
	"F17": "f17", "F18": "f18", "F19": "f19", "F20": "f20",
	"Space": "space", "Enter": "enter", "Escape": "escape",
	"Backspace": "backspace", "Delete": "delete", "Tab": "tab",
	"ArrowUp": "up", "ArrowDown": "down",
	"ArrowLeft": "left", "ArrowRight": "right",
}
