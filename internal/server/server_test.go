package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/HopIT-Hub/R1-Keys/internal/config"
	"github.com/HopIT-Hub/R1-Keys/internal/device"
	"github.com/HopIT-Hub/R1-Keys/internal/metrics"
	"github.com/HopIT-Hub/R1-Keys/keysim"
	"github.com/prometheus/client_golang/prometheus"
)

type stateFunc func() device.State

func (f stateFunc) State() device.State { return f() }

type recordingInjector struct{ events []string }

func (r *recordingInjector) Press(k keysim.Key) error {
	r.events = append(r.events, "press "+k.String())
	return nil
}

func (r *recordingInjector) Release(k keysim.Key) error {
	r.events = append(r.events, "release "+k.String())
	return nil
}

func (r *recordingInjector) Click(k keysim.Key) error {
	r.events = append(r.events, "click "+k.String())
	return nil
}

type fakeBinder struct {
	set    []config.Binding
	setErr error
}

func (b *fakeBinder) Set(bindings []config.Binding) error {
	b.set = bindings
	return b.setErr
}

func (b *fakeBinder) Active() []config.Binding { return b.set }

func (b *fakeBinder) Triggers() []string {
	out := make([]string, 0, len(b.set))
	for _, binding := range b.set {
		out = append(out, binding.Trigger)
	}
	return out
}

type fixture struct {
	srv     *httptest.Server
	inj     *recordingInjector
	binder  *fakeBinder
	cfg     *config.Config
	openErr error
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{inj: &recordingInjector{}, binder: &fakeBinder{}}

	cfg, err := config.LoadFile(filepath.Join(t.TempDir(), "config.json"))
	if err != nil {
		t.Fatal(err)
	}
	f.cfg = cfg

	reg := prometheus.NewRegistry()
	sim := keysim.New(func() (keysim.Injector, error) {
		if f.openErr != nil {
			return nil, f.openErr
		}
		return f.inj, nil
	}, keysim.WithSleep(func(time.Duration) {}))

	s := New(Options{
		Simulator: sim,
		Device:    stateFunc(func() device.State { return device.Connected }),
		Bindings:  f.binder,
		Config:    cfg,
		Metrics:   metrics.New(reg),
		Gatherer:  reg,
		Version:   "1.2.3",
	})
	f.srv = httptest.NewServer(s.Handler())
	t.Cleanup(f.srv.Close)
	return f
}

func (f *fixture) do(t *testing.T, method, path, body string) (*http.Response, map[string]any) {
	t.Helper()
	req, err := http.NewRequest(method, f.srv.URL+path, strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	var out map[string]any
	if strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json") {
		var raw any
		if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
			t.Fatalf("decode %s %s: %v", method, path, err)
		}
		out, _ = raw.(map[string]any)
	}
	return resp, out
}

func TestStatus(t *testing.T) {
	f := newFixture(t)
	resp, body := f.do(t, http.MethodGet, "/status", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if body["state"] != "connected" || body["version"] != "1.2.3" {
		t.Errorf("body = %v", body)
	}
}

func TestKeys(t *testing.T) {
	f := newFixture(t)
	resp, err := http.Get(f.srv.URL + "/keys")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	var keys []string
	if err := json.NewDecoder(resp.Body).Decode(&keys); err != nil {
		t.Fatal(err)
	}
	if len(keys) != len(keysim.SupportedKeys()) {
		t.Errorf("got %d keys, want %d", len(keys), len(keysim.SupportedKeys()))
	}
}

func TestParse(t *testing.T) {
	f := newFixture(t)

	resp, body := f.do(t, http.MethodPost, "/parse", `{"combination":"Control+Shift+Return"}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d body = %v", resp.StatusCode, body)
	}
	if body["canonical"] != "ctrl+shift+enter" || body["key"] != "enter" {
		t.Errorf("body = %v", body)
	}

	resp, body = f.do(t, http.MethodPost, "/parse", `{"combination":"bogus+c"}`)
	if resp.StatusCode != http.StatusBadRequest || body["error"] != "Unknown modifier: bogus" {
		t.Errorf("status = %d body = %v", resp.StatusCode, body)
	}
	if len(f.inj.events) != 0 {
		t.Errorf("parse injected events: %v", f.inj.events)
	}
}

func TestSimulate(t *testing.T) {
	f := newFixture(t)

	resp, body := f.do(t, http.MethodPost, "/simulate", `{"combination":"ctrl+shift+t"}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d body = %v", resp.StatusCode, body)
	}
	want := "press ctrl,press shift,click t,release shift,release ctrl"
	if got := strings.Join(f.inj.events, ","); got != want {
		t.Errorf("events = %s, want %s", got, want)
	}

	f.inj.events = nil
	resp, _ = f.do(t, http.MethodPost, "/simulate", `{"combination":"space","hold_ms":50}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("hold status = %d", resp.StatusCode)
	}
	if got := strings.Join(f.inj.events, ","); got != "press space,release space" {
		t.Errorf("hold events = %s", got)
	}
}

func TestSimulateErrors(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		body   string
		status int
	}{
		{`{`, http.StatusBadRequest},
		{`{"combination":""}`, http.StatusBadRequest},
		{`{"combination":"ctrl+zz"}`, http.StatusBadRequest},
		{`{"combination":"a","hold_ms":-1}`, http.StatusBadRequest},
		{`{"combination":"a","hold_ms":60000}`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		resp, body := f.do(t, http.MethodPost, "/simulate", tt.body)
		if resp.StatusCode != tt.status {
			t.Errorf("POST /simulate %s = %d (%v), want %d", tt.body, resp.StatusCode, body, tt.status)
		}
	}

	f.openErr = device.ErrNotConnected
	resp, body := f.do(t, http.MethodPost, "/simulate", `{"combination":"a"}`)
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", resp.StatusCode)
	}
	if msg, _ := body["error"].(string); !strings.Contains(msg, "no device connected") {
		t.Errorf("error = %q", msg)
	}
	if len(f.inj.events) != 0 {
		t.Errorf("events = %v, want none", f.inj.events)
	}
}

func TestBindings(t *testing.T) {
	f := newFixture(t)

	resp, _ := f.do(t, http.MethodPut, "/bindings", `[{"trigger":"ctrl+alt+1","send":"f5"}]`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if len(f.binder.set) != 1 || f.binder.set[0].Send != "f5" {
		t.Errorf("binder got %+v", f.binder.set)
	}
	if got := f.cfg.GetBindings(); len(got) != 1 || got[0].Trigger != "ctrl+alt+1" {
		t.Errorf("config bindings = %+v", got)
	}

	resp, body := f.do(t, http.MethodPut, "/bindings", `[{"trigger":"ctrl+alt+1","send":"nope"}]`)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
	if msg, _ := body["error"].(string); !strings.Contains(msg, "Unknown key: nope") {
		t.Errorf("error = %q", msg)
	}

	f.binder.setErr = errors.New("hotkey taken")
	resp, _ = f.do(t, http.MethodPut, "/bindings", `[{"trigger":"ctrl+alt+2","send":"f6"}]`)
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("status = %d, want 409", resp.StatusCode)
	}

	resp, err := http.Get(f.srv.URL + "/bindings")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	var listed []config.Binding
	if err := json.NewDecoder(resp.Body).Decode(&listed); err != nil {
		t.Fatal(err)
	}
	if len(listed) != 1 || listed[0].Send != "f6" {
		t.Errorf("GET /bindings = %+v", listed)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	f := newFixture(t)
	f.do(t, http.MethodPost, "/simulate", `{"combination":"a"}`)

	resp, err := http.Get(f.srv.URL + "/metrics")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	buf := new(strings.Builder)
	if _, err := io.Copy(buf, resp.Body); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), `r1keys_simulations_total{result="ok",variant="click"} 1`) {
		t.Errorf("metrics output missing simulation counter:\n%s", buf.String())
	}
}

func TestMethodNotAllowed(t *testing.T) {
	f := newFixture(t)
	resp, _ := f.do(t, http.MethodGet, "/simulate", "")
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Errorf("GET /simulate = %d, want 405", resp.StatusCode)
	}
}

func TestStatusListsTriggers(t *testing.T) {
	f := newFixture(t)
	f.binder.set = []config.Binding{{Trigger: "ctrl+alt+r", Send: "enter"}}

	_, body := f.do(t, http.MethodGet, "/status", "")
	triggers, _ := body["triggers"].([]any)
	if len(triggers) != 1 || triggers[0] != "ctrl+alt+r" {
		t.Errorf("triggers = %v, want [ctrl+alt+r]", body["triggers"])
	}
}

func TestCaptureBinding(t *testing.T) {
	f := newFixture(t)

	resp, body := f.do(t, http.MethodPost, "/bindings/capture",
		`{"js_code":"KeyR","modifiers":["Control","alt"],"send":"f2"}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d body = %v", resp.StatusCode, body)
	}

	// Defaults already bind ctrl+alt+r; capture replaces it in place.
	got := f.cfg.GetBindings()
	n := 0
	for _, b := range got {
		if b.Trigger == "ctrl+alt+r" {
			n++
			if b.Send != "f2" {
				t.Errorf("ctrl+alt+r sends %q, want f2", b.Send)
			}
		}
	}
	if n != 1 {
		t.Errorf("config bindings = %+v, want exactly one ctrl+alt+r", got)
	}
	if len(f.binder.set) != len(got) {
		t.Errorf("binder got %d bindings, config has %d", len(f.binder.set), len(got))
	}

	resp, _ = f.do(t, http.MethodPost, "/bindings/capture",
		`{"js_code":"F5","modifiers":["shift"],"send":"volup","hold_ms":200}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	got = f.cfg.GetBindings()
	if last := got[len(got)-1]; last.Trigger != "shift+f5" || last.HoldMs != 200 {
		t.Errorf("appended binding = %+v", last)
	}
}

func TestCaptureBindingErrors(t *testing.T) {
	f := newFixture(t)
	before := f.cfg.GetBindings()

	tests := []struct {
		body string
		msg  string
	}{
		{`{"js_code":"KeyR","modifiers":[],"send":"enter"}`, "at least one modifier required"},
		{`{"js_code":"MetaLeft","modifiers":["ctrl"],"send":"enter"}`, "unsupported key"},
		{`{"js_code":"KeyR","modifiers":["hyper"],"send":"enter"}`, "Unknown modifier: hyper"},
		{`{"js_code":"KeyR","modifiers":["ctrl"],"send":"nope"}`, "Unknown key: nope"},
	}
	for _, tt := range tests {
		resp, body := f.do(t, http.MethodPost, "/bindings/capture", tt.body)
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("POST %s = %d, want 400", tt.body, resp.StatusCode)
		}
		if msg, _ := body["error"].(string); !strings.Contains(msg, tt.msg) {
			t.Errorf("POST %s error = %q, want %q", tt.body, msg, tt.msg)
		}
	}
	if got := f.cfg.GetBindings(); len(got) != len(before) {
		t.Errorf("bindings changed after rejected captures: %+v", got)
	}
}

func TestJSCodeToKeyName(t *testing.T) {
	tests := map[string]string{
		"KeyR":      "r",
		"F5":        "f5",
		"Space":     "space",
		"Backspace": "backspace",
		"Delete":    "delete",
		"ArrowUp":   "up",
	}
	for code, want := range tests {
		got, err := jsCodeToKeyName(code)
		if err != nil || got != want {
			t.Errorf("jsCodeToKeyName(%q) = %q, %v, want %q", code, got, err, want)
		}
		if _, err := keysim.Parse(got); err != nil {
			t.Errorf("keysim.Parse(%q): %v", got, err)
		}
	}
	if _, err := jsCodeToKeyName("MetaLeft"); err == nil {
		t.Error("jsCodeToKeyName(MetaLeft) succeeded, want error")
	}
}
