package pointer

import (
	"fmt"

	"github.com/go-vgo/robotgo"
)

// System moves the real cursor via robotgo.
type System struct{}

func (System) Move(dx, dy int) (err error) {
	// robotgo panics instead of returning errors on some display failures
	// (missing X11 connection, denied accessibility permission).
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("pointer move failed: %v", r)
		}
	}()
	robotgo.MoveRelative(dx, dy)
	return nil
}
