package solver

import (
	"math"

	"gopower/domain/core"
	"gopower/domain/power"
)

// Shared inversion routines. Every "solve for whichever quantity is
// missing" path funnels through these two searches rather than each
// family duplicating its own loop.

const (
	searchTol     = 1e-6
	maxBisectIter = 100

	effectSearchMin = 1e-6
	effectSearchMax = 10.0

	maxSampleSize = 10_000_000

	// roundEps guards ceil against float wobble just above an integer.
	roundEps = 1e-9
)

// smallestN returns the smallest integer n in [lo, hi] with f(n) >= target.
// f must be monotone nondecreasing in n; power is, in sample size, for
// every family here. Equivalent to rounding the continuous root up.
func smallestN(lo, hi int, target float64, quantity string, f func(n float64) (float64, error)) (int, error) {
	top, err := f(float64(hi))
	if err != nil {
		return 0, err
	}
	if top < target {
		return 0, core.NewConvergenceError(quantity, float64(hi), 0)
	}
	for lo < hi {
		mid := lo + (hi-lo)/2
		p, err := f(float64(mid))
		if err != nil {
			return 0, err
		}
		if p >= target {
			hi = mid
		} else {
			lo = mid + 1
		}
	}
	return lo, nil
}

// bisectIncreasing finds x in [lo, hi] with f(x) ~= target for monotone
// increasing f. Fails with ConvergenceError when the target is not
// bracketed by the bounds; the iteration cap bounds termination.
func bisectIncreasing(lo, hi, target float64, quantity string, f func(x float64) (float64, error)) (float64, error) {
	flo, err := f(lo)
	if err != nil {
		return 0, err
	}
	fhi, err := f(hi)
	if err != nil {
		return 0, err
	}
	if flo > target {
		return 0, core.NewConvergenceError(quantity, lo, 0)
	}
	if fhi < target {
		return 0, core.NewConvergenceError(quantity, hi, 0)
	}

	x := hi
	for i := 0; i < maxBisectIter; i++ {
		x = 0.5 * (lo + hi)
		fx, err := f(x)
		if err != nil {
			return 0, err
		}
		if math.Abs(fx-target) < searchTol || hi-lo < searchTol {
			return x, nil
		}
		if fx < target {
			lo = x
		} else {
			hi = x
		}
	}
	return x, nil
}

// ceilN rounds a continuous sample size up to an integer, tolerating
// float results that land epsilon above a whole number.
func ceilN(x float64) int {
	return int(math.Ceil(x - roundEps))
}

// criticalAlpha returns the tail probability of the rejection region
// after folding the study objective into the sidedness.
func criticalAlpha(p power.StudyParameters) float64 {
	if p.EffectiveSidedness() == power.TwoSided {
		return p.Alpha / 2
	}
	return p.Alpha
}

// adjustObjective maps raw power onto the objective's scale. Equivalence
// uses the symmetric two-one-sided-tests approximation.
func adjustObjective(p power.StudyParameters, raw float64) float64 {
	if p.Objective == power.Equivalence {
		return math.Max(0, 2*raw-1)
	}
	return raw
}
