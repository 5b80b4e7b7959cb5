package jiggler

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestNewOpensStateDir(t *testing.T) {
	c, err := New(t.TempDir(), Options{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if st := c.Status(); st.State != StateIdle {
		t.Fatalf("fresh dir state = %q, want %q", st.State, StateIdle)
	}
}

func TestNewDefaultPathFromEnv(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("JIGGLER_STATE_DIR", dir)
	if got := DefaultStateDir(); got != dir {
		t.Fatalf("DefaultStateDir() = %q, want %q", got, dir)
	}
	c, err := New("", Options{})
	if err != nil {
		t.Fatalf("New with empty path: %v", err)
	}
	if st := c.Status(); st.State != StateIdle {
		t.Fatalf("state = %q, want idle", st.State)
	}
}

func TestStopWithoutInstance(t *testing.T) {
	c, err := New(t.TempDir(), Options{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	var notRunning *NotRunningError
	if err := c.Stop(); !errors.As(err, &notRunning) {
		t.Fatalf("Stop on idle = %v, want NotRunningError", err)
	}
}

func TestRunLoopDryRunCompletes(t *testing.T) {
	c, err := New(t.TempDir(), Options{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	cfg := Config{
		Interval: 10 * time.Millisecond,
		Duration: 35 * time.Millisecond,
		DryRun:   true,
	}
	if err := c.RunLoop(context.Background(), cfg); err != nil {
		t.Fatalf("RunLoop: %v", err)
	}
	if st := c.Status(); st.State != StateIdle {
		t.Fatalf("state after run = %q, want idle", st.State)
	}
}

func TestParseTimeSpec(t *testing.T) {
	d, err := ParseTimeSpec("90")
	if err != nil || d != 90*time.Second {
		t.Fatalf("ParseTimeSpec(90) = %v, %v", d, err)
	}
	if _, err := ParseTimeSpec("soon"); err == nil {
		t.Fatalf("ParseTimeSpec accepted garbage")
	}
}

func TestPatternByName(t *testing.T) {
	p, err := PatternByName("")
	if err != nil || p.Name() != "square" {
		t.Fatalf("default pattern = %v, %v", p, err)
	}
	if _, err := PatternByName("spiral"); err == nil {
		t.Fatalf("unknown pattern accepted")
	}
}

func TestRegisterMetricsDefaultIdempotent(t *testing.T) {
	if err := RegisterMetricsDefault(); err != nil {
		t.Fatalf("first register: %v", err)
	}
	if err := RegisterMetricsDefault(); err != nil {
		t.Fatalf("second register: %v", err)
	}
}
