package solver

import (
	"math"
	"testing"

	"gopower/domain/core"
	"gopower/domain/power"
)

func fEffect(v float64) power.EffectSize {
	return power.EffectSize{Value: v, Measure: power.MeasureCohenF}
}

func TestANOVA_SolveN(t *testing.T) {
	// f=0.25, k=4, alpha=0.05, power=0.80: continuous total ~178.4,
	// smallest integer total 179 (per-group 44.75).
	s := NewANOVA()
	p := power.StudyParameters{Alpha: 0.05, Power: f64(0.80), Groups: 4}

	sol, err := s.Solve(power.ModeN, p, fEffect(0.25))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sol.TotalN != 179 {
		t.Errorf("expected total N 179, got %g", sol.TotalN)
	}
	if math.Abs(sol.N1-179.0/4.0) > 1e-9 {
		t.Errorf("per-group N1 should be total/k, got %g", sol.N1)
	}
	if sol.Power < 0.80 {
		t.Errorf("achieved power below target: %g", sol.Power)
	}
}

func TestANOVA_Power(t *testing.T) {
	// Per-group n=45 (total 180) at f=0.25, k=4 gives power just above 0.80.
	s := NewANOVA()
	p := power.StudyParameters{Alpha: 0.05, N1: i(45), Groups: 4}

	sol, err := s.Solve(power.ModePower, p, fEffect(0.25))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(sol.Power-0.805) > 0.005 {
		t.Errorf("expected power near 0.805, got %g", sol.Power)
	}
	if sol.TotalN != 180 {
		t.Errorf("expected total 180, got %g", sol.TotalN)
	}
}

func TestANOVA_MoreGroupsNeedMoreTotal(t *testing.T) {
	s := NewANOVA()
	prev := 0.0
	for _, k := range []int{2, 3, 5, 8} {
		p := power.StudyParameters{Alpha: 0.05, Power: f64(0.80), Groups: k}
		sol, err := s.Solve(power.ModeN, p, fEffect(0.25))
		if err != nil {
			t.Fatalf("k=%d: unexpected error: %v", k, err)
		}
		if sol.TotalN < prev {
			t.Fatalf("total N should not shrink with more groups: %g after %g", sol.TotalN, prev)
		}
		prev = sol.TotalN
	}
}

func TestANOVA_GroupsValidation(t *testing.T) {
	s := NewANOVA()
	p := power.StudyParameters{Alpha: 0.05, Power: f64(0.80), Groups: 1}
	if _, err := s.Solve(power.ModeN, p, fEffect(0.25)); !core.IsDomainError(err) {
		t.Fatalf("expected domain error for a single group, got %v", err)
	}
}

func TestANOVA_MDES(t *testing.T) {
	s := NewANOVA()
	p := power.StudyParameters{Alpha: 0.05, Power: f64(0.80), N1: i(45), Groups: 4}

	sol, err := s.Solve(power.ModeMDES, p, power.EffectSize{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// 45 per group detects f=0.25 with a little margin.
	if sol.Effect.Value > 0.25+1e-3 || sol.Effect.Value < 0.22 {
		t.Errorf("expected detectable f just below 0.25, got %g", sol.Effect.Value)
	}
	if sol.Effect.Measure != power.MeasureCohenF {
		t.Errorf("expected cohen_f, got %s", sol.Effect.Measure)
	}
}

func TestANOVA_ResolveEffectFromGroupMeans(t *testing.T) {
	s := NewANOVA()
	p := power.StudyParameters{GroupMeans: []float64{2, 4, 6}, PooledSD: f64(2)}
	es, err := s.ResolveEffectSize(p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := math.Sqrt(8.0/3.0) / 2
	if math.Abs(es.Value-want) > 1e-12 {
		t.Errorf("expected f=%g, got %g", want, es.Value)
	}
}
