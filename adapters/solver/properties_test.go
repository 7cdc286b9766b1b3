package solver

import (
	"testing"

	"gopower/domain/power"
)

// Cross-family checks of the solver contracts: rounding-up monotonicity
// on re-solve, and strict monotonicity of N and power in the effect.

func TestResolveRoundTrip_PowerNeverBelowTarget(t *testing.T) {
	target := 0.80

	cases := []struct {
		name   string
		solver interface {
			Solve(power.Mode, power.StudyParameters, power.EffectSize) (*power.Solution, error)
		}
		params power.StudyParameters
		effect power.EffectSize
	}{
		{"two_sample_t", NewTTest(TwoSampleT), power.StudyParameters{Alpha: 0.05}, dEffect(0.35)},
		{"one_sample_t", NewTTest(OneSampleT), power.StudyParameters{Alpha: 0.05}, dEffect(0.35)},
		{"anova", NewANOVA(), power.StudyParameters{Alpha: 0.05, Groups: 3}, fEffect(0.2)},
		{"two_proportion", NewTwoProportion(), power.StudyParameters{Alpha: 0.05}, hEffect(0.4)},
		{"log_rank", NewLogRank(), power.StudyParameters{Alpha: 0.05, EventProbability: f64(0.6)}, hrEffect(0.7)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := tc.params
			p.Power = &target
			sol, err := tc.solver.Solve(power.ModeN, p, tc.effect)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			// Re-solve for power at the rounded-up sample size.
			check := tc.params
			n := ceilN(sol.N1)
			check.N1 = &n
			re, err := tc.solver.Solve(power.ModePower, check, tc.effect)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if re.Power < target {
				t.Errorf("power at the rounded-up N fell below the target: %g", re.Power)
			}
		})
	}
}

func TestRequiredNShrinksWithEffect(t *testing.T) {
	s := NewTTest(TwoSampleT)
	p := power.StudyParameters{Alpha: 0.05, Power: f64(0.80)}

	prev := 1e18
	for _, d := range []float64{0.2, 0.3, 0.5, 0.8, 1.2} {
		sol, err := s.Solve(power.ModeN, p, dEffect(d))
		if err != nil {
			t.Fatalf("d=%g: unexpected error: %v", d, err)
		}
		if sol.N1 >= prev {
			t.Fatalf("required N should strictly shrink with effect: %g after %g at d=%g", sol.N1, prev, d)
		}
		prev = sol.N1
	}
}

func TestPowerGrowsWithEffect(t *testing.T) {
	s := NewTTest(TwoSampleT)
	p := power.StudyParameters{Alpha: 0.05}

	prev := 0.0
	for _, d := range []float64{0.1, 0.2, 0.35, 0.5, 0.8} {
		pw, err := s.PowerAtN(p, dEffect(d), 50)
		if err != nil {
			t.Fatalf("d=%g: unexpected error: %v", d, err)
		}
		if pw <= prev {
			t.Fatalf("power should strictly grow with effect: %g after %g at d=%g", pw, prev, d)
		}
		prev = pw
	}
}
