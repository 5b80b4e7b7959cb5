package controller

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/loykin/jiggler/internal/history"
	"github.com/loykin/jiggler/internal/metrics"
	"github.com/loykin/jiggler/internal/pattern"
	"github.com/loykin/jiggler/internal/pointer"
	"github.com/loykin/jiggler/internal/statedir"
)

// Session end reasons, recorded in history and metrics.
const (
	reasonStopFlag  = "stop-flag"
	reasonDeadline  = "deadline"
	reasonInterrupt = "interrupt"
	reasonFailure   = "failure"
)

// RunLoop is the body of the background (or foreground) jiggle process. It
// records this process as the live instance, then ticks until the Stop Flag
// appears, the configured duration elapses, or ctx is cancelled. Cleanup
// (record and flag removal) happens on every exit path.
func (c *Controller) RunLoop(ctx context.Context, cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	// Drop any stale flag before the record is published; once the record
	// exists, a raised flag is addressed to this instance and must stick.
	if err := c.dir.ClearStopFlag(); err != nil {
		return err
	}
	pid := os.Getpid()
	rec := statedir.Record{
		PID:       pid,
		StartUnix: c.startUnix(pid),
		StartedAt: c.clock.Now(),
	}
	if err := c.dir.WritePID(rec); err != nil {
		return fmt.Errorf("write instance record: %w", err)
	}
	defer func() {
		_ = c.dir.ClearPID()
		_ = c.dir.ClearStopFlag()
	}()

	if err := c.inhibitor.Start(); err != nil {
		c.log.Warn("sleep inhibition unavailable", "error", err)
	}
	defer c.inhibitor.Stop()

	mover := c.mover
	if cfg.DryRun {
		mover = pointer.Nop{}
	}

	c.log.Info("session started",
		"pid", pid,
		"interval", cfg.Interval,
		"amplitude", cfg.Amplitude,
		"pattern", cfg.pattern().Name(),
		"duration", cfg.Duration)
	metrics.SessionStarted(cfg.pattern().Name())
	c.emit(cfg, pid, history.EventStarted, "")

	var deadline time.Time
	if cfg.Duration > 0 {
		deadline = rec.StartedAt.Add(cfg.Duration)
	}

	cur := pattern.NewCursor(cfg.pattern(), cfg.Amplitude)
	failures := 0

	for {
		if reason, done := c.shouldExit(ctx, deadline); done {
			c.finish(cfg, pid, reason)
			return nil
		}

		dx, dy := cur.Next()
		if err := mover.Move(dx, dy); err != nil {
			failures++
			metrics.TickFailed()
			metrics.TickSkipped()
			c.log.Warn("displacement failed, skipping tick", "dx", dx, "dy", dy, "failures", failures, "error", err)
			if failures >= maxConsecutiveFailures {
				c.finish(cfg, pid, reasonFailure)
				return fmt.Errorf("pointer adapter failed %d consecutive ticks: %w", failures, err)
			}
		} else {
			failures = 0
			metrics.TickApplied()
			c.log.Debug("displacement applied", "dx", dx, "dy", dy, "step", cur.Step())
		}

		if reason, done := c.sleepTick(ctx, cfg.Interval, deadline); done {
			c.finish(cfg, pid, reason)
			return nil
		}
	}
}

// shouldExit checks the cooperative termination conditions in priority
// order: context cancellation, Stop Flag, deadline.
func (c *Controller) shouldExit(ctx context.Context, deadline time.Time) (string, bool) {
	if ctx.Err() != nil {
		return reasonInterrupt, true
	}
	if c.dir.StopFlagRaised() {
		return reasonStopFlag, true
	}
	if !deadline.IsZero() && !c.clock.Now().Before(deadline) {
		return reasonDeadline, true
	}
	return "", false
}

// sleepTick sleeps one interval in small quanta so a Stop Flag raised
// mid-sleep is honored well within the one-interval latency contract.
func (c *Controller) sleepTick(ctx context.Context, interval time.Duration, deadline time.Time) (string, bool) {
	remaining := interval
	for remaining > 0 {
		if reason, done := c.shouldExit(ctx, deadline); done {
			return reason, true
		}
		q := stopPollQuantum
		if remaining < q {
			q = remaining
		}
		c.clock.Sleep(q)
		remaining -= q
	}
	return "", false
}

func (c *Controller) finish(cfg Config, pid int, reason string) {
	c.log.Info("session ended", "pid", pid, "reason", reason)
	metrics.SessionStopped(reason)
	if reason == reasonFailure {
		c.emit(cfg, pid, history.EventFailed, reason)
	} else {
		c.emit(cfg, pid, history.EventStopped, reason)
	}
}

// emit sends a lifecycle event to the history sink. Best-effort: failures
// are logged and never surface to the loop.
func (c *Controller) emit(cfg Config, pid int, typ history.EventType, reason string) {
	if c.hist == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	e := history.Event{
		Type:       typ,
		OccurredAt: c.clock.Now().UTC(),
		PID:        pid,
		Interval:   cfg.Interval,
		Amplitude:  cfg.Amplitude,
		Pattern:    cfg.pattern().Name(),
		Reason:     reason,
	}
	if err := c.hist.Send(ctx, e); err != nil {
		c.log.Warn("history sink send failed", "type", string(typ), "error", err)
	}
}
