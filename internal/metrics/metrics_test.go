package metrics

import (
	"errors"
	"fmt"
	"testing"

	"github.com/HopIT-Hub/R1-Keys/keysim"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestResult(t *testing.T) {
	_, parseErr := keysim.Parse("bogus+c")
	tests := []struct {
		err  error
		want string
	}{
		{nil, "ok"},
		{parseErr, "parse_error"},
		{fmt.Errorf("%w: unplugged", keysim.ErrInjectorUnavailable), "injector_unavailable"},
		{errors.New("boom"), "error"},
	}
	for _, tt := range tests {
		if got := Result(tt.err); got != tt.want {
			t.Errorf("Result(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}

func TestCounters(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ObserveSimulation(VariantClick, nil)
	m.ObserveSimulation(VariantClick, nil)
	m.ObserveSimulation(VariantHold, keysim.ErrInjectorUnavailable)
	m.InjectError(keysim.OpPress, keysim.RuneKey('a'), errors.New("stall"))
	m.SetDeviceConnected(true)

	if got := testutil.ToFloat64(m.simulations.WithLabelValues(VariantClick, "ok")); got != 2 {
		t.Errorf("click/ok = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.simulations.WithLabelValues(VariantHold, "injector_unavailable")); got != 1 {
		t.Errorf("hold/injector_unavailable = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.injectErrors.WithLabelValues("press")); got != 1 {
		t.Errorf("inject errors = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.deviceConnected); got != 1 {
		t.Errorf("device_connected = %v, want 1", got)
	}
}
