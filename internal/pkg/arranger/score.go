package arranger

import "math"

// Score measures how far width x height is from a square: 0 is a perfect
// square, values approach 1 as the shape gets thinner.
func Score(width, height int) float64 {
	if width <= 0 || height <= 0 {
		return 1
	}
	diff := math.Abs(float64(width - height))
	return diff / float64(max(width, height))
}

// PickBest returns the candidate with the lowest score. On equal scores the
// earlier candidate wins.
func PickBest(candidates []Layout) (Layout, error) {
	if len(candidates) == 0 {
		return Layout{}, ErrEmptyCandidateSet
	}

	best := candidates[0]
	bestScore := best.Score()
	for _, c := range candidates[1:] {
		if s := c.Score(); s < bestScore {
			best, bestScore = c, s
		}
	}
	return best, nil
}
