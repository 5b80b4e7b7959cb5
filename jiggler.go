// Package jiggler keeps a machine awake by periodically nudging the mouse
// pointer. This file is the public facade over the internal packages for
// embedding the controller in other programs.
package jiggler

import (
	"context"
	"net/http"
	"time"

	"github.com/loykin/jiggler/internal/controller"
	"github.com/loykin/jiggler/internal/history"
	"github.com/loykin/jiggler/internal/metrics"
	"github.com/loykin/jiggler/internal/pattern"
	"github.com/loykin/jiggler/internal/statedir"
	"github.com/loykin/jiggler/internal/timespec"
	"github.com/prometheus/client_golang/prometheus"
)

// Re-export core types for external consumers.
// These are aliases so conversions are zero-cost.

type Config = controller.Config

type Options = controller.Options

type StatusInfo = controller.StatusInfo

type StartOutcome = controller.StartOutcome

type Pattern = pattern.Pattern

type Spawner = controller.Spawner

type HistoryEvent = history.Event

type HistorySink = history.Sink

type AlreadyRunningError = controller.AlreadyRunningError

type NotRunningError = controller.NotRunningError

type StaleInstanceError = controller.StaleInstanceError

// Observable instance states reported by Status.
const (
	StateIdle     = controller.StateIdle
	StateRunning  = controller.StateRunning
	StateStopping = controller.StateStopping
)

// Controller is a thin facade over internal/controller.Controller.
type Controller struct{ inner *controller.Controller }

// New builds a controller rooted at the given state directory path. An
// empty path resolves to the platform default.
func New(path string, opts Options) (*Controller, error) {
	if path == "" {
		path = statedir.DefaultPath()
	}
	dir, err := statedir.Open(path)
	if err != nil {
		return nil, err
	}
	opts.Dir = dir
	return &Controller{inner: controller.New(opts)}, nil
}

func (c *Controller) Start(cfg Config, force bool) (StartOutcome, error) {
	return c.inner.Start(cfg, force)
}
func (c *Controller) Stop() error        { return c.inner.Stop() }
func (c *Controller) Status() StatusInfo { return c.inner.Status() }
func (c *Controller) RunLoop(ctx context.Context, cfg Config) error {
	return c.inner.RunLoop(ctx, cfg)
}

// PatternByName resolves a pattern name ("square", "random", or empty for
// the default).
func PatternByName(name string) (Pattern, error) { return pattern.ByName(name) }

// ParseTimeSpec parses a humanized duration such as "30s", "500ms" or "2h".
// A bare number is interpreted as seconds.
func ParseTimeSpec(spec string) (time.Duration, error) { return timespec.Parse(spec) }

// RegisterMetricsDefault registers the session metrics with the default
// Prometheus registry. Safe to call more than once.
func RegisterMetricsDefault() error { return metrics.Register(prometheus.DefaultRegisterer) }

// RegisterMetrics registers the session metrics with a custom registry.
func RegisterMetrics(r prometheus.Registerer) error { return metrics.Register(r) }

// MetricsHandler returns an http.Handler serving the metrics endpoint.
func MetricsHandler() http.Handler { return metrics.Handler() }

// DefaultStateDir returns the platform-specific state directory path.
func DefaultStateDir() string { return statedir.DefaultPath() }
