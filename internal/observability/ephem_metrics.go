package observability

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Fetch outcome label values.
const (
	OutcomeOK    = "ok"
	OutcomeError = "error"
)

// EphemCollector exposes ephemeris and surface pipeline Prometheus metrics.
type EphemCollector struct {
	gatherer prometheus.Gatherer

	FetchesTotal    *prometheus.CounterVec
	FetchDuration   *prometheus.HistogramVec
	ComputeDuration *prometheus.HistogramVec
	ScenesTotal     prometheus.Counter
}

// NewEphemCollector registers pipeline metrics against the provided registerer.
func NewEphemCollector(reg prometheus.Registerer) (*EphemCollector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	fetches := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ephem_fetches_total",
		Help: "Cumulative ephemeris fetches, labeled by source, spacecraft, and outcome.",
	}, []string{"source", "spacecraft", "outcome"})
	fetches, err := registerCounterVec(reg, fetches, "ephem_fetches_total")
	if err != nil {
		return nil, err
	}

	fetchDurations := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "ephem_fetch_duration_seconds",
		Help:    "Upstream ephemeris fetch latency in seconds, labeled by source.",
		Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
	}, []string{"source"})
	fetchDurations, err = registerHistogramVec(reg, fetchDurations, "ephem_fetch_duration_seconds")
	if err != nil {
		return nil, err
	}

	computeDurations := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "surface_compute_duration_seconds",
		Help:    "Sheet surface computation time in seconds, labeled by model.",
		Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
	}, []string{"model"})
	computeDurations, err = registerHistogramVec(reg, computeDurations, "surface_compute_duration_seconds")
	if err != nil {
		return nil, err
	}

	scenes := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "scenes_built_total",
		Help: "Cumulative number of scenes assembled.",
	})
	scenes, err = registerCounter(reg, scenes, "scenes_built_total")
	if err != nil {
		return nil, err
	}

	return &EphemCollector{
		gatherer:        gatherer,
		FetchesTotal:    fetches,
		FetchDuration:   fetchDurations,
		ComputeDuration: computeDurations,
		ScenesTotal:     scenes,
	}, nil
}

// Gatherer returns the Prometheus gatherer associated with the collector.
func (c *EphemCollector) Gatherer() prometheus.Gatherer {
	if c == nil {
		return nil
	}
	return c.gatherer
}

// ObserveFetch records one upstream fetch attempt.
func (c *EphemCollector) ObserveFetch(source, spacecraft, outcome string, d time.Duration) {
	if c == nil {
		return
	}
	if c.FetchesTotal != nil {
		c.FetchesTotal.WithLabelValues(source, spacecraft, outcome).Inc()
	}
	if c.FetchDuration != nil {
		c.FetchDuration.WithLabelValues(source).Observe(d.Seconds())
	}
}

// ObserveCompute records one surface computation.
func (c *EphemCollector) ObserveCompute(model string, d time.Duration) {
	if c == nil || c.ComputeDuration == nil {
		return
	}
	c.ComputeDuration.WithLabelValues(model).Observe(d.Seconds())
}

// IncScenes counts one assembled scene.
func (c *EphemCollector) IncScenes() {
	if c == nil || c.ScenesTotal == nil {
		return
	}
	c.ScenesTotal.Inc()
}

func registerCounter(reg prometheus.Registerer, counter prometheus.Counter, name string) (prometheus.Counter, error) {
	if err := reg.Register(counter); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Counter); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return counter, nil
}
