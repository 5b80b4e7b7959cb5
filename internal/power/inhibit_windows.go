//go:build windows

package power

import (
	"fmt"
	"sync"

	"golang.org/x/sys/windows"
)

// Execution state flags for SetThreadExecutionState.
const (
	esContinuous      = 0x80000000
	esSystemRequired  = 0x00000001
	esDisplayRequired = 0x00000002
)

var (
	kernel32                    = windows.NewLazySystemDLL("kernel32.dll")
	procSetThreadExecutionState = kernel32.NewProc("SetThreadExecutionState")
)

type windowsInhibitor struct {
	mu     sync.Mutex
	active bool
}

func newInhibitor() Inhibitor {
	return &windowsInhibitor{}
}

func (w *windowsInhibitor) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.active {
		return nil
	}
	ret, _, err := procSetThreadExecutionState.Call(uintptr(esContinuous | esSystemRequired | esDisplayRequired))
	if ret == 0 {
		return fmt.Errorf("SetThreadExecutionState failed: %w", err)
	}
	w.active = true
	return nil
}

func (w *windowsInhibitor) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.active {
		_, _, _ = procSetThreadExecutionState.Call(uintptr(esContinuous))
		w.active = false
	}
}
