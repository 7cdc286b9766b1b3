package solver

import (
	"math"

	"gopower/domain/core"
	"gopower/domain/power"
)

// LogRank implements Schoenfeld's events formula for the two-arm
// log-rank test:
//
//	d = (z_a + z_b)^2 (1+r)^2 / (r ln^2 HR)
//
// with subjects converted from events by the event probability. Power is
// closed form (only z_b is unknown); the detectable hazard ratio requires
// bisection because HR sits inside a squared logarithm.
type LogRank struct{}

// NewLogRank creates the survival solver.
func NewLogRank() *LogRank {
	return &LogRank{}
}

// ResolveEffectSize validates the supplied hazard ratio.
func (s *LogRank) ResolveEffectSize(p power.StudyParameters) (power.EffectSize, error) {
	if p.Effect != nil {
		return power.HazardRatio(*p.Effect)
	}
	if p.HazardRatio == nil {
		return power.EffectSize{}, core.NewMissingParameterError("hazard_ratio")
	}
	return power.HazardRatio(*p.HazardRatio)
}

func (s *LogRank) eventProbability(p power.StudyParameters) (float64, error) {
	if p.EventProbability == nil {
		return 0, core.NewMissingParameterError("event_probability")
	}
	pe := *p.EventProbability
	if pe <= 0 || pe > 1 {
		return 0, core.NewDomainError("event_probability", pe, "event probability must be in (0, 1]")
	}
	return pe, nil
}

// PowerAtN evaluates achieved power at a continuous per-group n1.
func (s *LogRank) PowerAtN(p power.StudyParameters, effect power.EffectSize, n1 float64) (float64, error) {
	if err := effect.Validate(); err != nil {
		return 0, err
	}
	pe, err := s.eventProbability(p)
	if err != nil {
		return 0, err
	}
	if n1 < 2 {
		return 0, core.NewDomainError("n1", n1, "at least two subjects per group required")
	}

	r := p.AllocationRatio()
	theta := math.Log(effect.Value)
	n2 := n1 * r
	events := (n1 + n2) * pe
	// Var of the log hazard estimator under the group split.
	share1 := n1 / (n1 + n2)
	share2 := n2 / (n1 + n2)
	varTheta := 1 / (events * share1 * share2)

	za := normalQuantile(1 - criticalAlpha(p))
	zobs := math.Abs(theta) / math.Sqrt(varTheta)
	raw := 1 - normalCDF(za-zobs)
	if p.EffectiveSidedness() == power.TwoSided {
		raw += normalCDF(-za - zobs)
	}
	return clamp01(adjustObjective(p, raw)), nil
}

func (s *LogRank) Solve(mode power.Mode, p power.StudyParameters, effect power.EffectSize) (*power.Solution, error) {
	switch mode {
	case power.ModePower:
		if p.N1 == nil {
			return nil, core.NewMissingParameterError("n1")
		}
		pw, err := s.PowerAtN(p, effect, float64(*p.N1))
		if err != nil {
			return nil, err
		}
		return s.solution(p, float64(*p.N1), pw, effect), nil

	case power.ModeN:
		if p.Power == nil {
			return nil, core.NewMissingParameterError("power")
		}
		if err := effect.Validate(); err != nil {
			return nil, err
		}
		pe, err := s.eventProbability(p)
		if err != nil {
			return nil, err
		}
		r := p.AllocationRatio()
		theta := math.Log(effect.Value)
		za := normalQuantile(1 - criticalAlpha(p))
		zb := normalQuantile(targetPower(p, *p.Power))

		events := (za + zb) * (za + zb) * (1 + r) * (1 + r) / (r * theta * theta)
		totalN := events / pe
		n1 := totalN / (1 + r)
		if n1 < 2 {
			n1 = 2
		}
		pw, err := s.PowerAtN(p, effect, n1)
		if err != nil {
			return nil, err
		}
		return s.solution(p, n1, pw, effect), nil

	case power.ModeMDES:
		if p.N1 == nil || p.Power == nil {
			return nil, core.NewMissingParameterError("n1, power")
		}
		// Power grows with |ln HR|; search the log scale downward from 1.
		u, err := bisectIncreasing(searchTol, math.Log(1000), *p.Power, "hazard_ratio", func(u float64) (float64, error) {
			hr := power.EffectSize{Value: math.Exp(-u), Measure: power.MeasureHazardRatio}
			return s.PowerAtN(p, hr, float64(*p.N1))
		})
		if err != nil {
			return nil, err
		}
		es := power.EffectSize{Value: math.Exp(-u), Measure: power.MeasureHazardRatio}
		return s.solution(p, float64(*p.N1), *p.Power, es), nil
	}
	return nil, core.ErrUnknownMode
}

func (s *LogRank) solution(p power.StudyParameters, n1, pw float64, effect power.EffectSize) *power.Solution {
	n2 := n1 * p.AllocationRatio()
	return &power.Solution{N1: n1, N2: n2, TotalN: n1 + n2, Power: pw, Effect: effect}
}
