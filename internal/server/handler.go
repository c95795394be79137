package server

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/HopIT-Hub/R1-Keys/internal/autostart"
	"github.com/HopIT-Hub/R1-Keys/internal/config"
	"github.com/HopIT-Hub/R1-Keys/internal/metrics"
	"github.com/HopIT-Hub/R1-Keys/keysim"
)

// maxHold caps hold_ms so a request cannot outlive the write timeout.
const maxHold = 10 * time.Second

// errorResponse is the JSON body of every failed request.
type errorResponse struct {
	Error string `json:"error"`
}

// statusResponse is the JSON response for GET /status.
type statusResponse struct {
	State     string   `json:"state"`
	Bindings  int      `json:"bindings"`
	Triggers  []string `json:"triggers"`
	Version   string   `json:"version"`
	AutoStart bool     `json:"auto_start"`
}

// handleStatus returns the current device state and settings summary.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	resp := statusResponse{
		State:   s.opts.Device.State().String(),
		Version: s.opts.Version,
	}
	if s.opts.Bindings != nil {
		resp.Bindings = len(s.opts.Bindings.Active())
		resp.Triggers = s.opts.Bindings.Triggers()
	}
	if s.opts.Config != nil {
		resp.AutoStart = s.opts.Config.GetAutoStart()
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleKeys lists every key name the parser resolves.
func (s *Server) handleKeys(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, keysim.SupportedKeys())
}

// combinationRequest is the JSON body for POST /parse and POST /simulate.
type combinationRequest struct {
	Combination string `json:"combination"`
	HoldMs      int    `json:"hold_ms,omitempty"`
}

// parseResponse is the JSON response for POST /parse.
type parseResponse struct {
	Canonical string   `json:"canonical"`
	Modifiers []string `json:"modifiers"`
	Key       string   `json:"key"`
}

// handleParse resolves a combination without sending it.
func (s *Server) handleParse(w http.ResponseWriter, r *http.Request) {
	var req combinationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON"})
		return
	}

	c, err := keysim.Parse(req.Combination)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	mods := make([]string, len(c.Modifiers))
	for i, m := range c.Modifiers {
		mods[i] = m.String()
	}
	writeJSON(w, http.StatusOK, parseResponse{
		Canonical: c.String(),
		Modifiers: mods,
		Key:       c.Key.String(),
	})
}

// handleSimulate sends a combination to the device, as a click or a hold.
func (s *Server) handleSimulate(w http.ResponseWriter, r *http.Request) {
	var req combinationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON"})
		return
	}
	hold := time.Duration(req.HoldMs) * time.Millisecond
	if req.HoldMs < 0 || hold > maxHold {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "hold_ms must be between 0 and 10000"})
		return
	}

	variant := metrics.VariantClick
	var err error
	if hold > 0 {
		variant = metrics.VariantHold
		err = s.opts.Simulator.SimulateHold(req.Combination, hold)
	} else {
		err = s.opts.Simulator.Simulate(req.Combination)
	}
	if s.opts.Metrics != nil {
		s.opts.Metrics.ObserveSimulation(variant, err)
	}

	var pe *keysim.ParseKeyError
	switch {
	case err == nil:
		log.Printf("[server] sent %s", req.Combination)
		writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
	case errors.As(err, &pe):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
	case errors.Is(err, keysim.ErrInjectorUnavailable):
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: err.Error()})
	default:
		log.Printf("[server] simulate %s: %v", req.Combination, err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
	}
}

// handleGetBindings lists the configured bindings.
func (s *Server) handleGetBindings(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.opts.Config.GetBindings())
}

// handlePutBindings validates, persists and registers a new binding set.
func (s *Server) handlePutBindings(w http.ResponseWriter, r *http.Request) {
	var req []config.Binding
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON"})
		return
	}

	s.applyBindings(w, req)
}

// applyBindings persists bindings, then registers their hotkeys.
func (s *Server) applyBindings(w http.ResponseWriter, bindings []config.Binding) {
	if err := s.opts.Config.SetBindings(bindings); err != nil {
		log.Printf("[server] bindings rejected: %v", err)
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	if s.opts.Bindings != nil {
		if err := s.opts.Bindings.Set(bindings); err != nil {
			log.Printf("[server] bindings register: %v", err)
			writeJSON(w, http.StatusConflict, errorResponse{Error: "saved, but some hotkeys could not be registered: " + err.Error()})
			return
		}
	}

	log.Printf("[server] bindings updated (%d)", len(bindings))
	writeJSON(w, http.StatusOK, bindings)
}

// autoStartRequest is the JSON body for POST /autostart.
type autoStartRequest struct {
	Enabled bool `json:"enabled"`
}

// autoStartResponse is the JSON response for POST /autostart.
type autoStartResponse struct {
	AutoStart bool `json:"auto_start"`
}

// handleAutoStart toggles the auto-start on login setting.
func (s *Server) handleAutoStart(w http.ResponseWriter, r *http.Request) {
	var req autoStartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON"})
		return
	}

	// Enable or disable OS autostart
	if req.Enabled {
		if err := autostart.Enable(); err != nil {
			log.Printf("[server] enable autostart: %v", err)
			writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "failed to enable auto-start: " + err.Error()})
			return
		}
	} else {
		if err := autostart.Disable(); err != nil {
			log.Printf("[server] disable autostart: %v", err)
			writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "failed to disable auto-start: " + err.Error()})
			return
		}
	}

	// Persist to config
	if err := s.opts.Config.SetAutoStart(req.Enabled); err != nil {
		log.Printf("[server] save autostart config: %v", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "setting changed but failed to persist"})
		return
	}

	log.Printf("[server] auto-start: %v", req.Enabled)
	writeJSON(w, http.StatusOK, autoStartResponse{AutoStart: req.Enabled})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
