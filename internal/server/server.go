// Package server provides the local HTTP API for settings and key sends.
package server

import (
	"context"
	"fmt"
	"log"
	"net"
	"net/http"
	"time"

	"github.com/HopIT-Hub/R1-Keys/internal/config"
	"github.com/HopIT-Hub/R1-Keys/internal/device"
	"github.com/HopIT-Hub/R1-Keys/internal/metrics"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Simulator dispatches combinations. *keysim.Simulator satisfies it.
type Simulator interface {
	Simulate(combination string) error
	SimulateHold(combination string, d time.Duration) error
}

// DeviceState reports the attached device state.
type DeviceState interface {
	State() device.State
}

// Binder applies hotkey bindings. *hotkey.Bindings satisfies it.
type Binder interface {
	Set(bindings []config.Binding) error
	Active() []config.Binding
	Triggers() []string
}

// Options are the collaborators a Server needs.
type Options struct {
	Simulator Simulator
	Device    DeviceState
	Bindings  Binder
	Config    *config.Config
	Metrics   *metrics.Metrics
	Gatherer  prometheus.Gatherer
	Version   string
}

// Server serves the settings API on localhost.
type Server struct {
	opts       Options
	httpServer *http.Server
	listener   net.Listener
}

// New creates a settings server.
func New(opts Options) *Server {
	if opts.Gatherer == nil {
		opts.Gatherer = prometheus.DefaultGatherer
	}
	return &Server{opts: opts}
}

// Handler returns the API routes.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/status", s.handleStatus)
	r.Get("/keys", s.handleKeys)
	r.Post("/parse", s.handleParse)
	r.Post("/simulate", s.handleSimulate)
	r.Get("/bindings", s.handleGetBindings)
	r.Put("/bindings", s.handlePutBindings)
	r.Post("/bindings/capture", s.handleCaptureBinding)
	r.Post("/autostart", s.handleAutoStart)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.opts.Gatherer, promhttp.HandlerOpts{}))

	return r
}

// Start begins serving on a random localhost port.
// Returns the URL to open in the browser.
func (s *Server) Start() (string, error) {
	// Bind to random localhost port
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return "", fmt.Errorf("listen: %w", err)
	}
	s.listener = ln

	s.httpServer = &http.Server{
		Handler:      s.Handler(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: maxHold + 5*time.Second,
	}

	go func() {
		if err := s.httpServer.Serve(ln); err != nil && err != http.ErrServerClosed {
			log.Printf("[server] error: %v", err)
		}
	}()

	url := fmt.Sprintf("http://%s", ln.Addr().String())
	log.Printf("[server] API available at %s", url)
	return url, nil
}

// Stop shuts down the HTTP server.
func (s *Server) Stop() {
	if s.httpServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		s.httpServer.Shutdown(ctx)
	}
}

// URL returns the server's URL, or empty string if not started.
func (s *Server) URL() string {
	if s.listener == nil {
		return ""
	}
	return fmt.Sprintf("http://%s", s.listener.Addr().String())
}
