package pattern

// Square traces a closed square loop:
//
//	(+a, 0) -> (0, +a) -> (-a, 0) -> (0, -a) -> repeat
//
// Any 4 consecutive outputs sum to (0, 0) regardless of starting phase, so
// repeated application never accumulates drift. Amplitude 0 degenerates to a
// no-op sequence, which is valid and used for dry runs.
type Square struct{}

func (Square) Name() string { return "square" }

func (Square) Delta(step int, amplitude int) (int, int) {
	if amplitude < 0 {
		amplitude = 0
	}
	switch step % 4 {
	case 0:
		return amplitude, 0
	case 1:
		return 0, amplitude
	case 2:
		return -amplitude, 0
	default:
		return 0, -amplitude
	}
}
