package solver

import (
	"math"
	"testing"

	"gopower/domain/core"
	"gopower/domain/power"
)

func f64(v float64) *float64 { return &v }
func i(v int) *int           { return &v }

func dEffect(v float64) power.EffectSize {
	return power.EffectSize{Value: v, Measure: power.MeasureCohenD}
}

func TestTwoSampleT_SolveN_MediumEffect(t *testing.T) {
	// d=0.5, alpha=0.05 two-sided, power=0.80, 1:1 -> 64 per group.
	s := NewTTest(TwoSampleT)
	p := power.StudyParameters{Alpha: 0.05, Power: f64(0.80)}

	sol, err := s.Solve(power.ModeN, p, dEffect(0.5))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sol.N1 != 64 {
		t.Errorf("expected 64 per group, got %g", sol.N1)
	}
	if sol.TotalN != 128 {
		t.Errorf("expected 128 total, got %g", sol.TotalN)
	}
	if sol.Power < 0.80 {
		t.Errorf("achieved power below target: %g", sol.Power)
	}
	if sol.Power > 0.82 {
		t.Errorf("achieved power implausibly high at the minimum N: %g", sol.Power)
	}
}

func TestTwoSampleT_SolveN_SmallAndLargeEffects(t *testing.T) {
	s := NewTTest(TwoSampleT)
	p := power.StudyParameters{Alpha: 0.05, Power: f64(0.80)}

	small, err := s.Solve(power.ModeN, p, dEffect(0.2))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if small.N1 != 394 {
		t.Errorf("expected 394 per group for d=0.2, got %g", small.N1)
	}

	large, err := s.Solve(power.ModeN, p, dEffect(0.8))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if large.N1 != 26 {
		t.Errorf("expected 26 per group for d=0.8, got %g", large.N1)
	}
}

func TestTwoSampleT_MinimalityOfN(t *testing.T) {
	// One subject fewer per group must fall short of the target.
	s := NewTTest(TwoSampleT)
	p := power.StudyParameters{Alpha: 0.05}

	below, err := s.PowerAtN(p, dEffect(0.5), 63)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if below >= 0.80 {
		t.Errorf("power at N-1 should be below target, got %g", below)
	}
}

func TestTwoSampleT_Power(t *testing.T) {
	s := NewTTest(TwoSampleT)
	p := power.StudyParameters{Alpha: 0.05, N1: i(64)}

	sol, err := s.Solve(power.ModePower, p, dEffect(0.5))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(sol.Power-0.8015) > 0.002 {
		t.Errorf("expected power near 0.8015 at n=64, got %g", sol.Power)
	}
}

func TestTwoSampleT_OneSidedNeedsFewer(t *testing.T) {
	s := NewTTest(TwoSampleT)
	two := power.StudyParameters{Alpha: 0.05, Power: f64(0.80)}
	one := power.StudyParameters{Alpha: 0.05, Power: f64(0.80), Sidedness: power.OneSided}

	solTwo, err := s.Solve(power.ModeN, two, dEffect(0.5))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	solOne, err := s.Solve(power.ModeN, one, dEffect(0.5))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if solOne.N1 >= solTwo.N1 {
		t.Errorf("one-sided should need fewer subjects: %g vs %g", solOne.N1, solTwo.N1)
	}
}

func TestTwoSampleT_PowerMonotoneInN(t *testing.T) {
	s := NewTTest(TwoSampleT)
	p := power.StudyParameters{Alpha: 0.05}

	prev := 0.0
	for _, n := range []float64{5, 10, 20, 50, 100, 200} {
		pw, err := s.PowerAtN(p, dEffect(0.3), n)
		if err != nil {
			t.Fatalf("unexpected error at n=%g: %v", n, err)
		}
		if pw < prev {
			t.Fatalf("power not monotone in n: %g after %g at n=%g", pw, prev, n)
		}
		prev = pw
	}
}

func TestTwoSampleT_AllocationRatio(t *testing.T) {
	s := NewTTest(TwoSampleT)
	p := power.StudyParameters{Alpha: 0.05, Power: f64(0.80), Ratio: 2}

	sol, err := s.Solve(power.ModeN, p, dEffect(0.5))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(sol.N2-2*sol.N1) > 1e-9 {
		t.Errorf("n2 should be ratio*n1: n1=%g n2=%g", sol.N1, sol.N2)
	}
	// Unbalanced designs are less efficient in total N than 1:1.
	balanced, err := s.Solve(power.ModeN, power.StudyParameters{Alpha: 0.05, Power: f64(0.80)}, dEffect(0.5))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sol.TotalN < balanced.TotalN {
		t.Errorf("2:1 allocation should not beat 1:1 in total N: %g vs %g", sol.TotalN, balanced.TotalN)
	}
}

func TestOneSampleT_SolveN(t *testing.T) {
	// d=0.5, alpha=0.05 two-sided, power=0.80 -> 34 subjects.
	s := NewTTest(OneSampleT)
	p := power.StudyParameters{Alpha: 0.05, Power: f64(0.80)}

	sol, err := s.Solve(power.ModeN, p, dEffect(0.5))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sol.N1 != 34 {
		t.Errorf("expected 34 subjects, got %g", sol.N1)
	}
	if sol.N2 != 0 || sol.TotalN != sol.N1 {
		t.Errorf("single-arm solution should carry only a total: %+v", sol)
	}
}

func TestPairedT_MatchesOneSample(t *testing.T) {
	// The paired design reduces to a one-sample test on differences.
	p := power.StudyParameters{Alpha: 0.05, Power: f64(0.80)}
	one, err := NewTTest(OneSampleT).Solve(power.ModeN, p, dEffect(0.5))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	paired, err := NewTTest(PairedT).Solve(power.ModeN, p, dEffect(0.5))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if one.N1 != paired.N1 {
		t.Errorf("paired and one-sample should agree on N: %g vs %g", one.N1, paired.N1)
	}
}

func TestTTest_MDESRoundTrip(t *testing.T) {
	// Solve N for a target effect, then the MDES at that N must not
	// exceed the original effect.
	s := NewTTest(TwoSampleT)
	p := power.StudyParameters{Alpha: 0.05, Power: f64(0.80)}

	sol, err := s.Solve(power.ModeN, p, dEffect(0.5))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	n := int(sol.N1)
	p.N1 = &n
	mdes, err := s.Solve(power.ModeMDES, p, power.EffectSize{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if mdes.Effect.Value > 0.5+1e-3 {
		t.Errorf("MDES at the solved N should not exceed the planned effect: %g", mdes.Effect.Value)
	}
	if mdes.Effect.Value < 0.45 {
		t.Errorf("MDES implausibly small: %g", mdes.Effect.Value)
	}
}

func TestTTest_ResolveEffectFromMoments(t *testing.T) {
	s := NewTTest(TwoSampleT)
	es, err := s.ResolveEffectSize(power.StudyParameters{Mean1: f64(10), Mean2: f64(8), PooledSD: f64(4)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(es.Value-0.5) > 1e-12 {
		t.Errorf("expected d=0.5 from moments, got %g", es.Value)
	}

	// Supplied effect wins over raw moments.
	es, err = s.ResolveEffectSize(power.StudyParameters{Effect: f64(0.3), Mean1: f64(10), Mean2: f64(8), PooledSD: f64(4)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if es.Value != 0.3 {
		t.Errorf("supplied effect should take precedence, got %g", es.Value)
	}

	if _, err := s.ResolveEffectSize(power.StudyParameters{}); !core.IsInputError(err) {
		t.Errorf("expected missing-parameter error, got %v", err)
	}
}

func TestTTest_ZeroEffectRejected(t *testing.T) {
	s := NewTTest(TwoSampleT)
	if _, err := s.ResolveEffectSize(power.StudyParameters{Effect: f64(0)}); !core.IsDomainError(err) {
		t.Errorf("expected domain error for zero effect, got %v", err)
	}
}

func TestTTest_EquivalencePowerLower(t *testing.T) {
	// The TOST approximation halves the error budget: equivalence power
	// at the same N is below superiority power.
	s := NewTTest(TwoSampleT)
	sup := power.StudyParameters{Alpha: 0.05, N1: i(64)}
	eq := power.StudyParameters{Alpha: 0.05, N1: i(64), Objective: power.Equivalence}

	supSol, err := s.Solve(power.ModePower, sup, dEffect(0.5))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	eqSol, err := s.Solve(power.ModePower, eq, dEffect(0.5))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if eqSol.Power >= supSol.Power {
		t.Errorf("equivalence power should be lower: %g vs %g", eqSol.Power, supSol.Power)
	}
}

func TestTTest_ConvergenceFailure(t *testing.T) {
	// An effect far below the search floor cannot reach the target power
	// within the sample-size cap.
	s := NewTTest(TwoSampleT)
	p := power.StudyParameters{Alpha: 0.05, Power: f64(0.99)}
	_, err := s.Solve(power.ModeN, p, dEffect(1e-5))
	if !core.IsConvergenceError(err) {
		t.Fatalf("expected convergence error, got %v", err)
	}
}
