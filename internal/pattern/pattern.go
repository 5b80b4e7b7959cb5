package pattern

import "fmt"

// Pattern is a strategy that yields the displacement for a given tick.
// Implementations must be pure functions of (step, amplitude) so a restarted
// session replays the same sequence. It must be safe for concurrent use.
type Pattern interface {
	// Delta returns the (dx, dy) displacement for the given step.
	Delta(step int, amplitude int) (int, int)
	// Name returns the pattern identifier used in config and flags.
	Name() string
}

// ByName resolves a pattern identifier from config or the --pattern flag.
func ByName(name string) (Pattern, error) {
	switch name {
	case "", "square":
		return Square{}, nil
	case "random":
		return Random{}, nil
	default:
		return nil, fmt.Errorf("unknown pattern %q (supported: square, random)", name)
	}
}

// Cursor walks a Pattern from phase 0. A fresh Cursor always restarts the
// sequence; it is not safe for concurrent use.
type Cursor struct {
	pattern   Pattern
	amplitude int
	step      int
}

func NewCursor(p Pattern, amplitude int) *Cursor {
	return &Cursor{pattern: p, amplitude: amplitude}
}

// Next returns the displacement for the current tick and advances the phase.
func (c *Cursor) Next() (int, int) {
	dx, dy := c.pattern.Delta(c.step, c.amplitude)
	c.step++
	return dx, dy
}

// Step returns the number of displacements produced so far.
func (c *Cursor) Step() int { return c.step }
