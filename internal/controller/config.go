package controller

import (
	"errors"
	"time"

	"github.com/loykin/jiggler/internal/pattern"
)

// Config holds the immutable parameters of one jiggle session. It is built
// once per start/run invocation and never mutated.
type Config struct {
	// Interval is the time between two displacements. Must be > 0.
	Interval time.Duration
	// Amplitude is the displacement magnitude in pixels. 0 is a valid
	// no-op session used for dry runs.
	Amplitude int
	// Duration bounds the total run time; 0 means run until stopped.
	Duration time.Duration
	// Pattern selects the displacement sequence. Defaults to Square.
	Pattern pattern.Pattern
	// DryRun applies displacements to a no-op mover.
	DryRun bool
}

func (c *Config) Validate() error {
	if c.Interval <= 0 {
		return errors.New("interval must be > 0")
	}
	if c.Amplitude < 0 {
		return errors.New("amplitude must be >= 0")
	}
	if c.Duration < 0 {
		return errors.New("duration must be >= 0")
	}
	return nil
}

func (c *Config) pattern() pattern.Pattern {
	if c.Pattern == nil {
		return pattern.Square{}
	}
	return c.Pattern
}
