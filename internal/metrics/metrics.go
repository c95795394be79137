// Package metrics exposes Prometheus counters for key dispatch.
package metrics

import (
	"errors"

	"github.com/HopIT-Hub/R1-Keys/keysim"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "r1keys"

// Variants of a dispatch.
const (
	VariantClick = "click"
	VariantHold  = "hold"
)

// Metrics holds the collectors registered for one process.
type Metrics struct {
	simulations     *prometheus.CounterVec
	injectErrors    *prometheus.CounterVec
	deviceConnected prometheus.Gauge
}

// New registers the collectors on reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		simulations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "simulations_total",
			Help:      "Key combinations dispatched, by variant and result",
		}, []string{"variant", "result"}),

		injectErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "inject_errors_total",
			Help:      "Press, release and click calls the injector rejected",
		}, []string{"op"}),

		deviceConnected: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "device_connected",
			Help:      "1 while a device is attached",
		}),
	}
}

// ObserveSimulation counts one dispatch attempt and its outcome.
func (m *Metrics) ObserveSimulation(variant string, err error) {
	m.simulations.WithLabelValues(variant, Result(err)).Inc()
}

// InjectError is a keysim.ErrorHook counting rejected primitives.
func (m *Metrics) InjectError(op keysim.Op, _ keysim.Key, _ error) {
	m.injectErrors.WithLabelValues(string(op)).Inc()
}

// SetDeviceConnected updates the device gauge.
func (m *Metrics) SetDeviceConnected(connected bool) {
	if connected {
		m.deviceConnected.Set(1)
	} else {
		m.deviceConnected.Set(0)
	}
}

// Result classifies a dispatch error for the result label.
func Result(err error) string {
	var pe *keysim.ParseKeyError
	switch {
	case err == nil:
		return "ok"
	case errors.As(err, &pe):
		return "parse_error"
	case errors.Is(err, keysim.ErrInjectorUnavailable):
		return "injector_unavailable"
	default:
		return "error"
	}
}
