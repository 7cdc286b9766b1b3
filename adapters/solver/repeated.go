package solver

import (
	"math"

	"gopower/domain/core"
	"gopower/domain/power"
)

// RepeatedMeasures adjusts the ANOVA variance term by the
// compound-symmetry correlation factor: the effect-size denominator is
// scaled by sqrt(1-rho), so higher within-subject correlation buys power.
// Correlations at or above 0.95 are rejected outright; the adjustment is
// numerically unstable there and must not produce a silent result.
type RepeatedMeasures struct {
	delegate *ANOVA
}

// NewRepeatedMeasures creates the repeated-measures adapter.
func NewRepeatedMeasures() *RepeatedMeasures {
	return &RepeatedMeasures{delegate: NewANOVA()}
}

const maxRepeatedCorrelation = 0.95

func (s *RepeatedMeasures) correlation(p power.StudyParameters) (float64, error) {
	if p.Correlation == nil {
		return 0, core.NewMissingParameterError("correlation")
	}
	rho := *p.Correlation
	if rho < 0 || rho >= maxRepeatedCorrelation {
		return 0, core.NewDomainError("correlation", rho,
			"repeated-measures correlation must be in [0, 0.95); higher values are numerically unstable")
	}
	return rho, nil
}

func (s *RepeatedMeasures) measurements(p power.StudyParameters) (int, error) {
	if p.Measurements < 2 {
		return 0, core.NewDomainError("measurements", float64(p.Measurements), "at least two measurements required")
	}
	return p.Measurements, nil
}

// ResolveEffectSize requires a directly supplied Cohen's f.
func (s *RepeatedMeasures) ResolveEffectSize(p power.StudyParameters) (power.EffectSize, error) {
	if p.Effect == nil {
		return power.EffectSize{}, core.NewMissingParameterError("effect_size")
	}
	es := power.EffectSize{Value: *p.Effect, Measure: power.MeasureCohenF}
	return es, es.Validate()
}

func (s *RepeatedMeasures) Solve(mode power.Mode, p power.StudyParameters, effect power.EffectSize) (*power.Solution, error) {
	rho, err := s.correlation(p)
	if err != nil {
		return nil, err
	}
	m, err := s.measurements(p)
	if err != nil {
		return nil, err
	}

	// Route through the F model with one "group" per measurement.
	inner := p
	inner.Groups = m
	adjust := math.Sqrt(1 - rho)

	if mode == power.ModeMDES {
		sol, err := s.delegate.Solve(power.ModeMDES, inner, effect)
		if err != nil {
			return nil, err
		}
		// Undo the adjustment so the reported effect is on the raw scale.
		sol.Effect.Value *= adjust
		return sol, nil
	}

	adjusted := power.EffectSize{Value: math.Abs(effect.Value) / adjust, Measure: power.MeasureCohenF}
	if err := adjusted.Validate(); err != nil {
		return nil, err
	}
	sol, err := s.delegate.Solve(mode, inner, adjusted)
	if err != nil {
		return nil, err
	}
	sol.Effect = effect
	return sol, nil
}
