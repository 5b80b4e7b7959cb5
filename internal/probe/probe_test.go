//go:build !windows

package probe

import (
	"os"
	"os/exec"
	"testing"
	"time"
)

func TestAliveSelf(t *testing.T) {
	if !Alive(os.Getpid()) {
		t.Fatal("current process must be alive")
	}
}

func TestAliveInvalidPIDs(t *testing.T) {
	if Alive(0) || Alive(-1) {
		t.Fatal("non-positive pids must not be alive")
	}
	// PID close to the max is essentially guaranteed to be free.
	if Alive(1 << 22) {
		t.Skip("improbable pid is in use on this host")
	}
}

func TestAliveExitedProcess(t *testing.T) {
	cmd := exec.Command("/bin/sh", "-c", "exit 0")
	if err := cmd.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	pid := cmd.Process.Pid
	if err := cmd.Wait(); err != nil {
		t.Fatalf("wait: %v", err)
	}
	if Alive(pid) {
		t.Fatalf("reaped process %d reported alive", pid)
	}
}

func TestStartUnixSelf(t *testing.T) {
	start := StartUnix(os.Getpid())
	if start == 0 {
		t.Skip("process start time unavailable on this platform")
	}
	now := time.Now().Unix()
	if start > now || now-start > 3600 {
		t.Fatalf("implausible start time %d (now %d)", start, now)
	}
}

func TestStartUnixStableAcrossReads(t *testing.T) {
	a := StartUnix(os.Getpid())
	if a == 0 {
		t.Skip("process start time unavailable on this platform")
	}
	b := StartUnix(os.Getpid())
	if a != b {
		t.Fatalf("start time not stable: %d vs %d", a, b)
	}
}
