// Package controller implements the instance lifecycle state machine: one
// background jiggle process at a time, admitted by Start, observed by
// Status, and torn down cooperatively through the Stop Flag. All
// cross-process coordination goes through the state directory; no OS signal
// delivery is assumed.
package controller

import (
	"log/slog"
	"time"

	"github.com/loykin/jiggler/internal/history"
	"github.com/loykin/jiggler/internal/pointer"
	"github.com/loykin/jiggler/internal/power"
	"github.com/loykin/jiggler/internal/probe"
	"github.com/loykin/jiggler/internal/statedir"
)

// Observable instance states as reported by Status.
const (
	StateIdle     = "idle"
	StateRunning  = "running"
	StateStopping = "stopping"
)

// Spawner launches the detached background process that executes the jiggle
// loop. The child re-resolves the state directory and writes its own
// Instance Record; the returned pid is only advisory.
type Spawner interface {
	SpawnDetached(cfg Config) (int, error)
}

// Options wires the controller's collaborators. Zero fields get production
// defaults; tests substitute fakes.
type Options struct {
	Dir       *statedir.Dir
	Mover     pointer.Mover
	Clock     Clock
	Spawner   Spawner
	Logger    *slog.Logger
	History   history.Sink
	Inhibitor power.Inhibitor

	Alive     func(pid int) bool
	StartUnix func(pid int) int64

	// GracePeriod bounds how long a forced takeover waits for the previous
	// instance to exit on its own.
	GracePeriod time.Duration
	// ConfirmWindow bounds how long Start polls for the child's Instance
	// Record before reporting the launch as unconfirmed.
	ConfirmWindow time.Duration
}

// Controller is the instance lifecycle state machine.
type Controller struct {
	dir       *statedir.Dir
	mover     pointer.Mover
	clock     Clock
	spawner   Spawner
	log       *slog.Logger
	hist      history.Sink
	inhibitor power.Inhibitor

	alive     func(pid int) bool
	startUnix func(pid int) int64

	grace         time.Duration
	confirmWindow time.Duration
}

const (
	defaultGracePeriod   = 5 * time.Second
	defaultConfirmWindow = 2 * time.Second

	takeoverPoll = 100 * time.Millisecond
	confirmPoll  = 50 * time.Millisecond

	// stopPollQuantum bounds how long the loop sleeps between Stop Flag
	// checks, keeping stop latency low even with long intervals.
	stopPollQuantum = 200 * time.Millisecond

	// maxConsecutiveFailures ends the session when the pointer adapter
	// keeps failing; a single transient failure only skips the tick.
	maxConsecutiveFailures = 3
)

func New(opts Options) *Controller {
	c := &Controller{
		dir:           opts.Dir,
		mover:         opts.Mover,
		clock:         opts.Clock,
		spawner:       opts.Spawner,
		log:           opts.Logger,
		hist:          opts.History,
		inhibitor:     opts.Inhibitor,
		alive:         opts.Alive,
		startUnix:     opts.StartUnix,
		grace:         opts.GracePeriod,
		confirmWindow: opts.ConfirmWindow,
	}
	if c.mover == nil {
		c.mover = pointer.Nop{}
	}
	if c.clock == nil {
		c.clock = systemClock{}
	}
	if c.log == nil {
		c.log = slog.New(slog.DiscardHandler)
	}
	if c.inhibitor == nil {
		c.inhibitor = power.Noop{}
	}
	if c.alive == nil {
		c.alive = probe.Alive
	}
	if c.startUnix == nil {
		c.startUnix = probe.StartUnix
	}
	if c.grace <= 0 {
		c.grace = defaultGracePeriod
	}
	if c.confirmWindow <= 0 {
		c.confirmWindow = defaultConfirmWindow
	}
	return c
}

// StatusInfo is the result of a liveness query.
type StatusInfo struct {
	State     string
	PID       int
	StartedAt time.Time
}

// liveRecord returns the Instance Record if it refers to a confirmed-live
// process, nil otherwise. A record whose PID has been reused by another
// process (start time mismatch) counts as stale.
func (c *Controller) liveRecord() *statedir.Record {
	rec := c.dir.ReadPID()
	if rec == nil {
		return nil
	}
	if !c.alive(rec.PID) {
		return nil
	}
	if rec.StartUnix > 0 {
		if cur := c.startUnix(rec.PID); cur > 0 && cur != rec.StartUnix {
			return nil
		}
	}
	return rec
}

// Status reports the current state. It never mutates state, except that a
// confirmed-stale Instance Record is cleared opportunistically so the next
// start does not trip over it.
func (c *Controller) Status() StatusInfo {
	rec := c.liveRecord()
	if rec == nil {
		if stale := c.dir.ReadPID(); stale != nil {
			c.log.Info("clearing stale instance record", "pid", stale.PID)
			_ = c.dir.ClearPID()
		}
		return StatusInfo{State: StateIdle}
	}
	state := StateRunning
	if c.dir.StopFlagRaised() {
		state = StateStopping
	}
	return StatusInfo{State: state, PID: rec.PID, StartedAt: rec.StartedAt}
}

// StartOutcome reports how a Start attempt concluded. Confirmed is false for
// the "launched, but PID not confirmed" case: the spawn succeeded but the
// child's Instance Record did not appear within the confirmation window.
// Callers report that as a warning, not a silent success.
type StartOutcome struct {
	PID       int
	Confirmed bool
}

// Start launches a detached background instance. With force it first asks a
// live instance to stop and waits up to the grace period; it never kills.
func (c *Controller) Start(cfg Config, force bool) (StartOutcome, error) {
	if err := cfg.Validate(); err != nil {
		return StartOutcome{}, err
	}

	if rec := c.liveRecord(); rec != nil {
		if !force {
			return StartOutcome{}, &AlreadyRunningError{PID: rec.PID}
		}
		if err := c.awaitTakeover(rec); err != nil {
			return StartOutcome{}, err
		}
	}

	// Idle: drop any stale leftovers before admitting the new instance.
	if err := c.dir.ClearStopFlag(); err != nil {
		return StartOutcome{}, err
	}
	if err := c.dir.ClearPID(); err != nil {
		return StartOutcome{}, err
	}

	pid, err := c.spawner.SpawnDetached(cfg)
	if err != nil {
		return StartOutcome{}, err
	}
	c.log.Info("spawned background instance", "pid", pid)

	// The child records itself; poll briefly for confirmation.
	deadline := c.clock.Now().Add(c.confirmWindow)
	for c.clock.Now().Before(deadline) {
		if rec := c.liveRecord(); rec != nil {
			return StartOutcome{PID: rec.PID, Confirmed: true}, nil
		}
		c.clock.Sleep(confirmPoll)
	}
	return StartOutcome{PID: pid, Confirmed: false}, nil
}

// awaitTakeover raises the Stop Flag for a live instance and waits up to the
// grace period for it to exit on its own.
func (c *Controller) awaitTakeover(rec *statedir.Record) error {
	c.log.Info("requesting takeover of running instance", "pid", rec.PID)
	if err := c.dir.RaiseStopFlag(); err != nil {
		return err
	}
	deadline := c.clock.Now().Add(c.grace)
	for c.clock.Now().Before(deadline) {
		if !c.alive(rec.PID) {
			return nil
		}
		c.clock.Sleep(takeoverPoll)
	}
	if !c.alive(rec.PID) {
		return nil
	}
	return &StaleInstanceError{PID: rec.PID}
}

// Stop requests graceful termination of the running instance. It raises the
// Stop Flag and returns immediately; callers needing confirmation must poll
// Status. Stopping an already-stopping instance is a no-op success, stopping
// an idle one is an error.
func (c *Controller) Stop() error {
	rec := c.liveRecord()
	if rec == nil {
		return &NotRunningError{}
	}
	if err := c.dir.RaiseStopFlag(); err != nil {
		return err
	}
	c.log.Info("stop requested", "pid", rec.PID)
	return nil
}
