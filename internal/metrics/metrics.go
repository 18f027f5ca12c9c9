// Package metrics exports frame telemetry in the Prometheus text format.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/gogpu/cellgrid"
	"github.com/gogpu/cellgrid/internal/frame"
)

const namespace = "cellgrid"

// Recorder collects frame outcomes, acquisition outcomes and frame
// durations. It implements frame.Observer.
type Recorder struct {
	registry *prometheus.Registry

	frames   *prometheus.CounterVec
	acquires *prometheus.CounterVec
	duration prometheus.Histogram
	cells    prometheus.Gauge
	colors   prometheus.Gauge
}

var _ frame.Observer = (*Recorder)(nil)

// NewRecorder creates a Recorder with its own registry, so that several
// recorders can coexist in one process.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		frames: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "frames_total",
			Help:      "Frames by outcome (presented, discarded, failed).",
		}, []string{"result"}),
		acquires: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "surface_acquire_total",
			Help:      "Surface acquisitions by first-attempt outcome.",
		}, []string{"outcome"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "frame_seconds",
			Help:      "Wall time from compute dispatch to present.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 10),
		}),
		cells: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "cells",
			Help:      "Number of simulated cells.",
		}),
		colors: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "colors",
			Help:      "Number of cell states.",
		}),
	}
	r.registry.MustRegister(r.frames, r.acquires, r.duration, r.cells, r.colors)
	return r
}

// Registry returns the registry the recorder's collectors live in.
func (r *Recorder) Registry() *prometheus.Registry { return r.registry }

// SetGrid records the grid dimensions.
func (r *Recorder) SetGrid(g cellgrid.GridSpec) {
	r.cells.Set(float64(g.TotalCells))
	r.colors.Set(float64(g.ColorCount))
}

// ObserveAcquire implements frame.Observer.
func (r *Recorder) ObserveAcquire(o frame.AcquireOutcome) {
	r.acquires.WithLabelValues(o.String()).Inc()
}

// ObserveFrame implements frame.Observer.
func (r *Recorder) ObserveFrame(o frame.Outcome, d time.Duration) {
	r.frames.WithLabelValues(o.String()).Inc()
	if o == frame.OutcomePresented {
		r.duration.Observe(d.Seconds())
	}
}

// Handler serves the recorder's registry.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}

// NewServer returns an HTTP server exposing the recorder on /metrics.
func (r *Recorder) NewServer(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", r.Handler())
	return &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  15 * time.Second,
	}
}
