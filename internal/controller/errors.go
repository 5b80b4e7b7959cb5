package controller

import "fmt"

// AlreadyRunningError is returned by Start when a live instance exists and
// force was not requested.
type AlreadyRunningError struct {
	PID int
}

func (e *AlreadyRunningError) Error() string {
	return fmt.Sprintf("already running (pid=%d); use --force to take over", e.PID)
}

// NotRunningError is returned by Stop when there is nothing to stop.
// It is an error rather than a no-op so callers can detect "nothing was
// running".
type NotRunningError struct{}

func (e *NotRunningError) Error() string { return "not running" }

// StaleInstanceError is returned by a forced Start when the previous
// instance did not honor the stop request within the grace period. The
// takeover never force-kills; the caller must investigate manually.
type StaleInstanceError struct {
	PID int
}

func (e *StaleInstanceError) Error() string {
	return fmt.Sprintf("previous instance (pid=%d) did not stop within the grace period; inspect it and clear the state directory manually", e.PID)
}
