package solver

import (
	"math"
	"testing"

	"gopower/domain/core"
	"gopower/domain/power"
)

func hrEffect(v float64) power.EffectSize {
	return power.EffectSize{Value: v, Measure: power.MeasureHazardRatio}
}

func TestLogRank_SolveN(t *testing.T) {
	// HR=0.65, event probability 0.50, alpha=0.05 two-sided, power=0.80,
	// 1:1. Schoenfeld gives ~169.2 events, so ~169.2 subjects per group
	// at a 50% event rate.
	s := NewLogRank()
	p := power.StudyParameters{Alpha: 0.05, Power: f64(0.80), EventProbability: f64(0.50)}

	sol, err := s.Solve(power.ModeN, p, hrEffect(0.65))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(sol.N1-169.18) > 0.1 {
		t.Errorf("expected ~169.2 per group, got %g", sol.N1)
	}
	if math.Abs(sol.TotalN-2*sol.N1) > 1e-9 {
		t.Errorf("total should be 2*n1 at 1:1, got %g", sol.TotalN)
	}
	if sol.Power < 0.80 {
		t.Errorf("achieved power below target: %g", sol.Power)
	}
}

func TestLogRank_HigherEventRateNeedsFewerSubjects(t *testing.T) {
	// Same design at a 70% event rate: events stay fixed, subjects drop
	// to ~120.8 per group.
	s := NewLogRank()
	p := power.StudyParameters{Alpha: 0.05, Power: f64(0.80), EventProbability: f64(0.70)}

	sol, err := s.Solve(power.ModeN, p, hrEffect(0.65))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(sol.N1-120.85) > 0.1 {
		t.Errorf("expected ~120.8 per group, got %g", sol.N1)
	}
}

func TestLogRank_ReciprocalHRSymmetry(t *testing.T) {
	// ln(HR) enters squared: HR and 1/HR need identical samples.
	s := NewLogRank()
	p := power.StudyParameters{Alpha: 0.05, Power: f64(0.80), EventProbability: f64(0.50)}

	protective, err := s.Solve(power.ModeN, p, hrEffect(0.65))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	harmful, err := s.Solve(power.ModeN, p, hrEffect(1/0.65))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(protective.N1-harmful.N1) > 1e-6 {
		t.Errorf("HR and 1/HR should need identical N: %g vs %g", protective.N1, harmful.N1)
	}
}

func TestLogRank_NullHRRejected(t *testing.T) {
	s := NewLogRank()
	if _, err := s.ResolveEffectSize(power.StudyParameters{HazardRatio: f64(1.0)}); !core.IsDomainError(err) {
		t.Fatalf("expected domain error for HR=1, got %v", err)
	}
}

func TestLogRank_EventProbabilityValidation(t *testing.T) {
	s := NewLogRank()
	for _, pe := range []float64{0, -0.1, 1.5} {
		p := power.StudyParameters{Alpha: 0.05, Power: f64(0.80), EventProbability: f64(pe)}
		if _, err := s.Solve(power.ModeN, p, hrEffect(0.65)); !core.IsDomainError(err) {
			t.Errorf("event probability %g: expected domain error, got %v", pe, err)
		}
	}

	p := power.StudyParameters{Alpha: 0.05, Power: f64(0.80)}
	if _, err := s.Solve(power.ModeN, p, hrEffect(0.65)); !core.IsInputError(err) {
		t.Error("expected missing-parameter error without event probability")
	}
}

func TestLogRank_Power(t *testing.T) {
	// Re-solve consistency: power at the solved N reproduces the target.
	s := NewLogRank()
	p := power.StudyParameters{Alpha: 0.05, Power: f64(0.80), EventProbability: f64(0.50)}
	sol, err := s.Solve(power.ModeN, p, hrEffect(0.65))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	n := int(math.Ceil(sol.N1))
	check := power.StudyParameters{Alpha: 0.05, N1: &n, EventProbability: f64(0.50)}
	re, err := s.Solve(power.ModePower, check, hrEffect(0.65))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if re.Power < 0.80 {
		t.Errorf("power at the rounded-up N must reach the target, got %g", re.Power)
	}
}

func TestLogRank_MDES(t *testing.T) {
	// 170 per group at 50% events detects HR=0.65 or better (smaller).
	s := NewLogRank()
	p := power.StudyParameters{Alpha: 0.05, Power: f64(0.80), N1: i(170), EventProbability: f64(0.50)}

	sol, err := s.Solve(power.ModeMDES, p, power.EffectSize{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sol.Effect.Measure != power.MeasureHazardRatio {
		t.Errorf("expected hazard_ratio MDES, got %s", sol.Effect.Measure)
	}
	if sol.Effect.Value < 0.64 || sol.Effect.Value > 0.66 {
		t.Errorf("expected detectable HR near 0.65, got %g", sol.Effect.Value)
	}
}
