package power

// Inhibitor prevents the system from sleeping while a jiggle session is
// active. The cursor nudges keep idle detectors quiet, but some platforms
// gate sleep on a separate policy that synthetic input does not reset.
type Inhibitor interface {
	// Start begins inhibiting system sleep. Returns an error if the
	// platform mechanism is unavailable; callers should treat this as
	// non-fatal (log and continue).
	Start() error

	// Stop releases the sleep inhibition. Safe to call multiple times.
	Stop()
}

// New returns a platform-appropriate Inhibitor.
// See inhibit_darwin.go, inhibit_linux.go, inhibit_windows.go, inhibit_other.go.
func New() Inhibitor {
	return newInhibitor()
}

// Noop never inhibits anything. Used by tests and dry runs.
type Noop struct{}

func (Noop) Start() error { return nil }
func (Noop) Stop()        {}
