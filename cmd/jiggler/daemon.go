package main

import (
	"fmt"
	"os"
	"os/exec"
	"strconv"

	"github.com/loykin/jiggler/internal/controller"
	"github.com/loykin/jiggler/internal/timespec"
)

// daemonSpawner launches `jiggler run` as a detached background process.
// The resolved session parameters are re-encoded as flags so the child does
// not depend on the parent's config file still being readable.
type daemonSpawner struct {
	stateDir      string
	historyDSN    string
	metricsListen string
}

func (s daemonSpawner) SpawnDetached(cfg controller.Config) (int, error) {
	executable, err := os.Executable()
	if err != nil {
		return 0, fmt.Errorf("failed to resolve executable path: %w", err)
	}

	args := runArgs(cfg, s.stateDir, s.historyDSN, s.metricsListen)

	// #nosec 204
	cmd := exec.Command(executable, args...)
	cmd.Stdin = nil
	cmd.Stdout = nil
	cmd.Stderr = nil
	configureDaemonAttrs(cmd)

	if err := cmd.Start(); err != nil {
		return 0, fmt.Errorf("failed to start background process: %w", err)
	}
	pid := cmd.Process.Pid
	// The child outlives the parent; release so the parent can exit
	// without leaving a zombie reaper obligation behind.
	_ = cmd.Process.Release()
	return pid, nil
}

// runArgs encodes a resolved session as a `run` argv.
func runArgs(cfg controller.Config, stateDir, historyDSN, metricsListen string) []string {
	args := []string{
		"run",
		"--interval", timespec.Format(cfg.Interval),
		"--amplitude", strconv.Itoa(cfg.Amplitude),
	}
	if cfg.Pattern != nil {
		args = append(args, "--pattern", cfg.Pattern.Name())
	}
	if cfg.Duration > 0 {
		args = append(args, "--duration", timespec.Format(cfg.Duration))
	}
	if cfg.DryRun {
		args = append(args, "--dry-run")
	}
	if stateDir != "" {
		args = append(args, "--state-dir", stateDir)
	}
	if historyDSN != "" {
		args = append(args, "--history-dsn", historyDSN)
	}
	if metricsListen != "" {
		args = append(args, "--metrics-listen", metricsListen)
	}
	return args
}
