package pattern

// Random perturbs the pointer in one of the 8 neighborhood directions with a
// magnitude in [1, amplitude]. The direction is derived from the step with an
// LCG so the sequence is reproducible without global RNG state, and every 17th
// step may flip sign to bias the cumulative drift back towards zero.
//
// This pattern can look more natural to some idle heuristics than Square but
// it is also more visible; Square remains the default.
type Random struct{}

var directions = [8][2]int{
	{1, 0}, {-1, 0}, {0, 1}, {0, -1},
	{1, 1}, {1, -1}, {-1, 1}, {-1, -1},
}

// Probability of a compensating sign flip at the bias checkpoints.
const compensateProb = 0.6

func (Random) Name() string { return "random" }

func (Random) Delta(step int, amplitude int) (int, int) {
	if amplitude <= 0 {
		return 0, 0
	}
	mag := 1 + step%amplitude

	idx := (step*1103515245 + 12345) & 0x7FFFFFFF
	dir := directions[idx%len(directions)]
	dx, dy := dir[0]*mag, dir[1]*mag

	if step%17 == 0 {
		p := float64(uint32(step*2654435761)) / (1 << 32)
		if p < compensateProb {
			dx, dy = -dx, -dy
		}
	}
	return dx, dy
}
