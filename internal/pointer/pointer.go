// Package pointer abstracts the platform cursor so the jiggle loop can be
// exercised against fakes without touching real input state.
package pointer

// Mover applies one relative displacement to the system cursor.
type Mover interface {
	// Move shifts the cursor by (dx, dy) pixels relative to its current
	// position. Implementations may fail transiently (e.g. the compositor
	// denies synthetic input); the loop recovers from such failures.
	Move(dx, dy int) error
}

// Nop discards displacements. Used for --dry-run sessions and tests.
type Nop struct{}

func (Nop) Move(_, _ int) error { return nil }
