package controller

import (
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/loykin/jiggler/internal/pattern"
	"github.com/loykin/jiggler/internal/statedir"
)

// fakeClock advances virtual time on Sleep so lifecycle timing is tested
// without real delays.
type fakeClock struct {
	mu      sync.Mutex
	now     time.Time
	slept   time.Duration
	onSleep func(now time.Time)
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Sleep(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.slept += d
	now := c.now
	hook := c.onSleep
	c.mu.Unlock()
	if hook != nil {
		hook(now)
	}
}

type fakeSpawner struct {
	pid     int
	err     error
	onSpawn func(cfg Config)
	calls   int
}

func (s *fakeSpawner) SpawnDetached(cfg Config) (int, error) {
	s.calls++
	if s.onSpawn != nil {
		s.onSpawn(cfg)
	}
	return s.pid, s.err
}

type aliveSet struct {
	mu   sync.Mutex
	pids map[int]bool
}

func newAliveSet(pids ...int) *aliveSet {
	m := make(map[int]bool, len(pids))
	for _, p := range pids {
		m[p] = true
	}
	return &aliveSet{pids: m}
}

func (a *aliveSet) alive(pid int) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.pids[pid]
}

func (a *aliveSet) kill(pid int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.pids, pid)
}

func testDir(t *testing.T) *statedir.Dir {
	t.Helper()
	d, err := statedir.Open(filepath.Join(t.TempDir(), "state"))
	if err != nil {
		t.Fatalf("open state dir: %v", err)
	}
	return d
}

func TestStartSpawnsAndConfirms(t *testing.T) {
	dir := testDir(t)
	alive := newAliveSet()
	sp := &fakeSpawner{pid: 4242}
	sp.onSpawn = func(cfg Config) {
		// Simulate the child recording itself.
		if err := dir.WritePID(statedir.Record{PID: 4242, StartUnix: 100}); err != nil {
			t.Errorf("child write pid: %v", err)
		}
		alive.mu.Lock()
		alive.pids[4242] = true
		alive.mu.Unlock()
	}

	c := New(Options{
		Dir:       dir,
		Clock:     newFakeClock(),
		Spawner:   sp,
		Alive:     alive.alive,
		StartUnix: func(int) int64 { return 100 },
	})

	out, err := c.Start(Config{Interval: time.Second, Amplitude: 1}, false)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if !out.Confirmed || out.PID != 4242 {
		t.Fatalf("outcome = %+v, want confirmed pid 4242", out)
	}

	st := c.Status()
	if st.State != StateRunning || st.PID != 4242 {
		t.Fatalf("status after start = %+v", st)
	}
}

func TestStartUnconfirmedIsReportedDistinctly(t *testing.T) {
	dir := testDir(t)
	sp := &fakeSpawner{pid: 7}

	c := New(Options{
		Dir:       dir,
		Clock:     newFakeClock(),
		Spawner:   sp,
		Alive:     func(int) bool { return false },
		StartUnix: func(int) int64 { return 0 },
	})

	out, err := c.Start(Config{Interval: time.Second}, false)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if out.Confirmed {
		t.Fatal("expected unconfirmed outcome when no record appears")
	}
	if out.PID != 7 {
		t.Fatalf("advisory pid = %d, want 7", out.PID)
	}
}

func TestStartAlreadyRunning(t *testing.T) {
	dir := testDir(t)
	if err := dir.WritePID(statedir.Record{PID: 111, StartUnix: 50}); err != nil {
		t.Fatalf("seed record: %v", err)
	}
	sp := &fakeSpawner{pid: 222}

	c := New(Options{
		Dir:       dir,
		Clock:     newFakeClock(),
		Spawner:   sp,
		Alive:     newAliveSet(111).alive,
		StartUnix: func(int) int64 { return 50 },
	})

	_, err := c.Start(Config{Interval: time.Second}, false)
	var are *AlreadyRunningError
	if !errors.As(err, &are) {
		t.Fatalf("expected AlreadyRunningError, got %v", err)
	}
	if are.PID != 111 {
		t.Fatalf("error pid = %d, want 111", are.PID)
	}
	if sp.calls != 0 {
		t.Fatal("must not spawn while an instance is running")
	}
}

func TestStartForceTakesOver(t *testing.T) {
	dir := testDir(t)
	if err := dir.WritePID(statedir.Record{PID: 111, StartUnix: 50}); err != nil {
		t.Fatalf("seed record: %v", err)
	}
	alive := newAliveSet(111)
	clock := newFakeClock()
	// The old instance honors the stop flag after a couple of poll cycles.
	clock.onSleep = func(time.Time) {
		if dir.StopFlagRaised() {
			alive.kill(111)
		}
	}
	sp := &fakeSpawner{pid: 222}
	sp.onSpawn = func(Config) {
		_ = dir.WritePID(statedir.Record{PID: 222, StartUnix: 80})
		alive.mu.Lock()
		alive.pids[222] = true
		alive.mu.Unlock()
	}

	c := New(Options{
		Dir:     dir,
		Clock:   clock,
		Spawner: sp,
		Alive:   alive.alive,
		StartUnix: func(pid int) int64 {
			if pid == 111 {
				return 50
			}
			return 80
		},
	})

	out, err := c.Start(Config{Interval: time.Second}, true)
	if err != nil {
		t.Fatalf("forced Start: %v", err)
	}
	if !out.Confirmed || out.PID != 222 {
		t.Fatalf("outcome = %+v", out)
	}
	if alive.alive(111) {
		t.Fatal("old instance still alive after takeover")
	}
}

func TestStartForceGracePeriodExceeded(t *testing.T) {
	dir := testDir(t)
	if err := dir.WritePID(statedir.Record{PID: 111, StartUnix: 50}); err != nil {
		t.Fatalf("seed record: %v", err)
	}
	sp := &fakeSpawner{pid: 222}

	c := New(Options{
		Dir:         dir,
		Clock:       newFakeClock(),
		Spawner:     sp,
		Alive:       newAliveSet(111).alive, // never dies
		StartUnix:   func(int) int64 { return 50 },
		GracePeriod: 500 * time.Millisecond,
	})

	_, err := c.Start(Config{Interval: time.Second}, true)
	var sie *StaleInstanceError
	if !errors.As(err, &sie) {
		t.Fatalf("expected StaleInstanceError, got %v", err)
	}
	if sie.PID != 111 {
		t.Fatalf("error pid = %d, want 111", sie.PID)
	}
	if sp.calls != 0 {
		t.Fatal("must not spawn after a failed takeover")
	}
	// Graceful-only: the stubborn instance's record must be left alone.
	if rec := dir.ReadPID(); rec == nil || rec.PID != 111 {
		t.Fatalf("record tampered with: %+v", rec)
	}
}

func TestStartClearsStaleStopFlag(t *testing.T) {
	dir := testDir(t)
	if err := dir.RaiseStopFlag(); err != nil {
		t.Fatalf("raise: %v", err)
	}
	sp := &fakeSpawner{pid: 9}
	var flagAtSpawn bool
	ready := false
	sp.onSpawn = func(Config) {
		flagAtSpawn = dir.StopFlagRaised()
		_ = dir.WritePID(statedir.Record{PID: 9})
		ready = true
	}

	c := New(Options{
		Dir:       dir,
		Clock:     newFakeClock(),
		Spawner:   sp,
		Alive:     func(pid int) bool { return ready && pid == 9 },
		StartUnix: func(int) int64 { return 0 },
	})

	if _, err := c.Start(Config{Interval: time.Second}, false); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if flagAtSpawn {
		t.Fatal("stale stop flag must be cleared before the child launches")
	}
}

func TestStopOnIdleFails(t *testing.T) {
	c := New(Options{
		Dir:       testDir(t),
		Clock:     newFakeClock(),
		Alive:     func(int) bool { return false },
		StartUnix: func(int) int64 { return 0 },
	})
	err := c.Stop()
	var nre *NotRunningError
	if !errors.As(err, &nre) {
		t.Fatalf("expected NotRunningError, got %v", err)
	}
}

func TestStopIsAsyncAndIdempotent(t *testing.T) {
	dir := testDir(t)
	if err := dir.WritePID(statedir.Record{PID: 33}); err != nil {
		t.Fatalf("seed: %v", err)
	}
	c := New(Options{
		Dir:       dir,
		Clock:     newFakeClock(),
		Alive:     newAliveSet(33).alive,
		StartUnix: func(int) int64 { return 0 },
	})

	if err := c.Stop(); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if !dir.StopFlagRaised() {
		t.Fatal("stop flag not raised")
	}
	// The instance has not honored the flag yet; a second stop is a no-op
	// success.
	if err := c.Stop(); err != nil {
		t.Fatalf("second Stop: %v", err)
	}
	if st := c.Status(); st.State != StateStopping || st.PID != 33 {
		t.Fatalf("status = %+v, want stopping pid 33", st)
	}
}

func TestStatusIdleOnFreshDir(t *testing.T) {
	c := New(Options{
		Dir:       testDir(t),
		Clock:     newFakeClock(),
		Alive:     func(int) bool { return false },
		StartUnix: func(int) int64 { return 0 },
	})
	if st := c.Status(); st.State != StateIdle || st.PID != 0 {
		t.Fatalf("status = %+v, want idle", st)
	}
}

func TestStatusClearsStaleRecord(t *testing.T) {
	dir := testDir(t)
	if err := dir.WritePID(statedir.Record{PID: 12345}); err != nil {
		t.Fatalf("seed: %v", err)
	}
	c := New(Options{
		Dir:       dir,
		Clock:     newFakeClock(),
		Alive:     func(int) bool { return false }, // process is dead
		StartUnix: func(int) int64 { return 0 },
	})
	if st := c.Status(); st.State != StateIdle {
		t.Fatalf("status = %+v, want idle for dead pid", st)
	}
	if rec := dir.ReadPID(); rec != nil {
		t.Fatalf("stale record not self-healed: %+v", rec)
	}
}

func TestStatusDetectsPIDReuse(t *testing.T) {
	dir := testDir(t)
	if err := dir.WritePID(statedir.Record{PID: 55, StartUnix: 100}); err != nil {
		t.Fatalf("seed: %v", err)
	}
	c := New(Options{
		Dir:       dir,
		Clock:     newFakeClock(),
		Alive:     newAliveSet(55).alive,          // pid exists...
		StartUnix: func(int) int64 { return 999 }, // ...but is a different process
	})
	if st := c.Status(); st.State != StateIdle {
		t.Fatalf("status = %+v, want idle for reused pid", st)
	}
}

func TestConfigValidate(t *testing.T) {
	bad := []Config{
		{Interval: 0, Amplitude: 1},
		{Interval: -time.Second, Amplitude: 1},
		{Interval: time.Second, Amplitude: -1},
		{Interval: time.Second, Amplitude: 1, Duration: -time.Minute},
	}
	for i, cfg := range bad {
		if err := cfg.Validate(); err == nil {
			t.Fatalf("case %d: expected validation error for %+v", i, cfg)
		}
	}
	ok := Config{Interval: time.Second, Amplitude: 0, Pattern: pattern.Square{}}
	if err := ok.Validate(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}
}
