package trajectory

import (
	"fmt"
	"math"
)

// Smooth runs a single-pole low-pass filter over raw, seeded with the start
// view. Legs meet with a speed discontinuity; the filter hides the jerk at the
// cost of a few samples of lag. raw is left untouched.
func Smooth(raw []Sample, start Point, startScale, alpha float64) []Sample {
	out := make([]Sample, len(raw))
	prev := Sample{Position: start, Scale: startScale}
	for i, s := range raw {
		prev = Sample{
			Position: prev.Position.Mul(alpha).Add(s.Position.Mul(1 - alpha)),
			Scale:    prev.Scale*alpha + s.Scale*(1-alpha),
		}
		out[i] = prev
	}
	return out
}

func validSmoothing(alpha float64) error {
	if math.IsNaN(alpha) || alpha < 0 || alpha >= 1 {
		return fmt.Errorf("trajectory: smoothing coefficient must be in [0, 1), got %v", alpha)
	}
	return nil
}
