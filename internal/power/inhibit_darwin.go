//go:build darwin

package power

import (
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"sync"
)

type darwinInhibitor struct {
	mu  sync.Mutex
	cmd *exec.Cmd
}

func newInhibitor() Inhibitor {
	return &darwinInhibitor{}
}

func (d *darwinInhibitor) Start() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.cmd != nil {
		return nil // already running
	}

	path, err := exec.LookPath("caffeinate")
	if err != nil {
		return fmt.Errorf("caffeinate not found: %w", err)
	}

	// -d: prevent display sleep
	// -i: prevent idle sleep
	// -w <pid>: exit automatically when the session process dies
	d.cmd = exec.Command(path, "-di", "-w", strconv.Itoa(os.Getpid()))
	if err := d.cmd.Start(); err != nil {
		d.cmd = nil
		return fmt.Errorf("failed to start caffeinate: %w", err)
	}

	// Reap the child in background so it doesn't become a zombie.
	go func(cmd *exec.Cmd) { _ = cmd.Wait() }(d.cmd)

	return nil
}

func (d *darwinInhibitor) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.cmd != nil && d.cmd.Process != nil {
		_ = d.cmd.Process.Kill()
		d.cmd = nil
	}
}
