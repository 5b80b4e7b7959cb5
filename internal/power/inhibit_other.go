//go:build !darwin && !linux && !windows

package power

type noopInhibitor struct{}

func newInhibitor() Inhibitor {
	return &noopInhibitor{}
}

func (n *noopInhibitor) Start() error { return nil }
func (n *noopInhibitor) Stop()        {}
