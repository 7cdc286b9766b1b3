package solver

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/montanaflynn/stats"
	"golang.org/x/sync/errgroup"

	"gopower/domain/core"
	"gopower/domain/power"
)

// Assurance computes Bayesian expected power for a two-sample comparison
// by averaging frequentist power over a normal prior on the effect size.
// The random source is always explicitly seeded: identical requests
// produce identical assurance values. Draws whose power evaluation is
// non-finite are recorded as zero and counted; the solve only fails when
// the failed fraction exceeds the registry threshold.
type Assurance struct {
	delegate *TTest
	defaults AssuranceDefaults
}

// AssuranceDefaults carries the draw count and base seed applied when a
// request omits them, typically sourced from the environment.
type AssuranceDefaults struct {
	Draws int
	Seed  int64
}

// NewAssurance creates the Monte Carlo assurance solver.
func NewAssurance(defaults AssuranceDefaults) *Assurance {
	return &Assurance{delegate: NewTTest(TwoSampleT), defaults: defaults}
}

// assuranceChunks fixes the parallel fan-out so partial sums combine in
// a machine-independent order.
const assuranceChunks = 8

const defaultDraws = 5000

func (s *Assurance) prior(p power.StudyParameters) (mean, sd float64, err error) {
	if p.PriorMean == nil || p.PriorSD == nil {
		return 0, 0, core.NewMissingParameterError("prior_mean, prior_sd")
	}
	if *p.PriorSD <= 0 {
		return 0, 0, core.NewDomainError("prior_sd", *p.PriorSD, "prior standard deviation must be positive")
	}
	if *p.PriorMean <= 0 {
		return 0, 0, core.NewDomainError("prior_mean", *p.PriorMean, "prior mean effect must be positive")
	}
	return *p.PriorMean, *p.PriorSD, nil
}

// ResolveEffectSize reports the prior mean as the nominal effect.
func (s *Assurance) ResolveEffectSize(p power.StudyParameters) (power.EffectSize, error) {
	mean, _, err := s.prior(p)
	if err != nil {
		return power.EffectSize{}, err
	}
	es := power.EffectSize{Value: mean, Measure: power.MeasureCohenD}
	return es, es.Validate()
}

func (s *Assurance) drawCount(p power.StudyParameters) int {
	draws := p.Draws
	if draws == 0 {
		draws = s.defaults.Draws
	}
	if draws == 0 {
		draws = defaultDraws
	}
	if draws < power.MinDraws {
		draws = power.MinDraws
	}
	if draws > power.MaxDraws {
		draws = power.MaxDraws
	}
	return draws
}

func (s *Assurance) seed(p power.StudyParameters) int64 {
	if p.Seed != 0 {
		return p.Seed
	}
	return s.defaults.Seed
}

// sampleEffects draws the prior effects once, sequentially, from the
// seeded source. Reusing the same draws across candidate sample sizes
// keeps the outer N search monotone and deterministic.
func (s *Assurance) sampleEffects(p power.StudyParameters, mean, sd float64) []float64 {
	rng := rand.New(rand.NewSource(s.seed(p)))
	draws := s.drawCount(p)
	effects := make([]float64, draws)
	for i := range effects {
		effects[i] = rng.NormFloat64()*sd + mean
	}
	return effects
}

// assuranceAt averages per-draw frequentist power at a fixed n1. Draw
// evaluation is parallelized over fixed chunks; the chunk partials are
// combined in order so the result does not depend on scheduling.
func (s *Assurance) assuranceAt(p power.StudyParameters, effects []float64, n1 float64) (value float64, failed int, perDraw []float64, err error) {
	perDraw = make([]float64, len(effects))
	failures := make([]int, assuranceChunks)
	chunkLen := (len(effects) + assuranceChunks - 1) / assuranceChunks

	var g errgroup.Group
	for c := 0; c < assuranceChunks; c++ {
		lo := c * chunkLen
		hi := lo + chunkLen
		if hi > len(effects) {
			hi = len(effects)
		}
		if lo >= hi {
			continue
		}
		c := c
		g.Go(func() error {
			for i := lo; i < hi; i++ {
				d := effects[i]
				if d <= 0 {
					// A null or harmful draw contributes no power.
					perDraw[i] = 0
					continue
				}
				pw, perr := s.delegate.PowerAtN(p, power.EffectSize{Value: d, Measure: power.MeasureCohenD}, n1)
				if perr != nil || math.IsNaN(pw) || math.IsInf(pw, 0) {
					perDraw[i] = 0
					failures[c]++
					continue
				}
				perDraw[i] = pw
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, 0, nil, err
	}

	sum := 0.0
	for _, pw := range perDraw {
		sum += pw
	}
	for _, f := range failures {
		failed += f
	}
	return sum / float64(len(effects)), failed, perDraw, nil
}

func (s *Assurance) Solve(mode power.Mode, p power.StudyParameters, effect power.EffectSize) (*power.Solution, error) {
	mean, sd, err := s.prior(p)
	if err != nil {
		return nil, err
	}
	effects := s.sampleEffects(p, mean, sd)

	switch mode {
	case power.ModePower:
		if p.N1 == nil {
			return nil, core.NewMissingParameterError("n1")
		}
		value, failed, perDraw, err := s.assuranceAt(p, effects, float64(*p.N1))
		if err != nil {
			return nil, err
		}
		if err := s.checkFailures(failed, len(effects)); err != nil {
			return nil, err
		}
		sol := s.solution(p, float64(*p.N1), value, effect)
		s.describeDraws(sol, perDraw, failed)
		return sol, nil

	case power.ModeN:
		if p.Power == nil {
			return nil, core.NewMissingParameterError("power")
		}
		var lastFailed int
		n, err := smallestN(2, 1_000_000, *p.Power, "n", func(n float64) (float64, error) {
			value, failed, _, aerr := s.assuranceAt(p, effects, n)
			if aerr != nil {
				return 0, aerr
			}
			lastFailed = failed
			return value, nil
		})
		if err != nil {
			return nil, err
		}
		if err := s.checkFailures(lastFailed, len(effects)); err != nil {
			return nil, err
		}
		value, failed, perDraw, err := s.assuranceAt(p, effects, float64(n))
		if err != nil {
			return nil, err
		}
		if err := s.checkFailures(failed, len(effects)); err != nil {
			return nil, err
		}
		sol := s.solution(p, float64(n), value, effect)
		s.describeDraws(sol, perDraw, failed)
		return sol, nil
	}
	// A minimum detectable prior is not a defined quantity for assurance.
	return nil, fmt.Errorf("%w: %q for bayesian assurance", core.ErrUnknownMode, mode)
}

func (s *Assurance) checkFailures(failed, total int) error {
	if float64(failed)/float64(total) > power.FailedDrawThreshold {
		return core.NewInstabilityError(failed, total)
	}
	return nil
}

func (s *Assurance) solution(p power.StudyParameters, n1, assurance float64, effect power.EffectSize) *power.Solution {
	n2 := n1 * p.AllocationRatio()
	return &power.Solution{N1: n1, N2: n2, TotalN: n1 + n2, Power: assurance, Effect: effect}
}

// describeDraws summarizes the per-draw power distribution for the
// diagnostics payload.
func (s *Assurance) describeDraws(sol *power.Solution, perDraw []float64, failed int) {
	if failed > 0 {
		sol.AddDiagnostic(power.WarningFailedDraws,
			fmt.Sprintf("%d of %d Monte Carlo draws failed and were counted as zero power", failed, len(perDraw)))
	}
	median, err := stats.Median(perDraw)
	if err != nil {
		return
	}
	q10, err := stats.Percentile(perDraw, 10)
	if err != nil {
		return
	}
	sol.AddDiagnostic(power.WarningDrawSummary,
		fmt.Sprintf("per-draw power median %.3f, 10th percentile %.3f over %d draws", median, q10, len(perDraw)))
}
