package metrics

import (
	"errors"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Package-level Prometheus collectors. They are registered via Register.
var (
	sessionStarts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "jiggler",
			Subsystem: "session",
			Name:      "starts_total",
			Help:      "Number of jiggle sessions started.",
		}, []string{"pattern"},
	)
	sessionStops = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "jiggler",
			Subsystem: "session",
			Name:      "stops_total",
			Help:      "Number of jiggle sessions that ended, by reason.",
		}, []string{"reason"},
	)
	ticksApplied = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "jiggler",
			Subsystem: "loop",
			Name:      "ticks_total",
			Help:      "Number of displacements applied to the pointer.",
		},
	)
	ticksSkipped = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "jiggler",
			Subsystem: "loop",
			Name:      "skipped_ticks_total",
			Help:      "Number of ticks skipped due to transient pointer failures.",
		},
	)
	tickFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "jiggler",
			Subsystem: "loop",
			Name:      "tick_failures_total",
			Help:      "Number of pointer adapter errors, including those that end the session.",
		},
	)
	sessionRunning = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "jiggler",
			Subsystem: "session",
			Name:      "running",
			Help:      "1 while the jiggle loop is running, 0 otherwise.",
		},
	)
)

// Register registers all metrics with the provided registerer. It is safe
// to call multiple times, including against different registries.
func Register(r prometheus.Registerer) error {
	cs := []prometheus.Collector{sessionStarts, sessionStops, ticksApplied, ticksSkipped, tickFailures, sessionRunning}
	for _, c := range cs {
		if err := r.Register(c); err != nil {
			// If already registered, ignore (allows double Register with default registry)
			var are prometheus.AlreadyRegisteredError
			if errors.As(err, &are) {
				continue
			}
			return err
		}
	}
	return nil
}

// Handler returns an http.Handler serving Prometheus metrics for the
// DefaultGatherer. The caller owns the HTTP server and route wiring.
func Handler() http.Handler {
	return promhttp.Handler()
}

// SessionStarted records the start of a jiggle session.
func SessionStarted(pattern string) { sessionStarts.WithLabelValues(pattern).Inc(); sessionRunning.Set(1) }

// SessionStopped records the end of a session. Reason is one of
// "stop-flag", "deadline", "interrupt", "failure".
func SessionStopped(reason string) { sessionStops.WithLabelValues(reason).Inc(); sessionRunning.Set(0) }

// TickApplied counts a successfully applied displacement.
func TickApplied() { ticksApplied.Inc() }

// TickSkipped counts a tick skipped after a transient pointer failure.
func TickSkipped() { ticksSkipped.Inc() }

// TickFailed counts a pointer adapter error.
func TickFailed() { tickFailures.Inc() }
