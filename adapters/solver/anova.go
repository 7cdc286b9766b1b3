package solver

import (
	"math"

	"gopower/domain/core"
	"gopower/domain/power"
)

// ANOVA inverts the noncentral F model for fixed-effects one-way ANOVA.
// Sample sizes here follow the total-N convention: PowerAtN takes the
// total across groups, and solutions report a per-group N1 of total/k.
type ANOVA struct{}

// NewANOVA creates the one-way ANOVA solver.
func NewANOVA() *ANOVA {
	return &ANOVA{}
}

func (s *ANOVA) groups(p power.StudyParameters) (float64, error) {
	if p.Groups < 2 {
		return 0, core.NewDomainError("groups", float64(p.Groups), "at least two groups required")
	}
	return float64(p.Groups), nil
}

// ResolveEffectSize passes a supplied Cohen's f through, or derives it
// from group means and a pooled standard deviation.
func (s *ANOVA) ResolveEffectSize(p power.StudyParameters) (power.EffectSize, error) {
	if p.Effect != nil {
		es := power.EffectSize{Value: *p.Effect, Measure: power.MeasureCohenF}
		return es, es.Validate()
	}
	if len(p.GroupMeans) == 0 || p.PooledSD == nil {
		return power.EffectSize{}, core.NewMissingParameterError("group_means, pooled_sd (or effect_size)")
	}
	return power.CohenF(p.GroupMeans, *p.PooledSD)
}

// PowerAtN evaluates achieved power at a continuous total sample size.
// The F test is inherently one-sided; sidedness does not apply.
func (s *ANOVA) PowerAtN(p power.StudyParameters, effect power.EffectSize, totalN float64) (float64, error) {
	k, err := s.groups(p)
	if err != nil {
		return 0, err
	}
	df1 := k - 1
	df2 := totalN - k
	if df2 < 1 {
		return 0, nil
	}
	f := math.Abs(effect.Value)
	lambda := f * f * totalN
	fcrit := fQuantile(1-p.Alpha, df1, df2)
	return clamp01(1 - noncentralFCDF(fcrit, df1, df2, lambda)), nil
}

func (s *ANOVA) Solve(mode power.Mode, p power.StudyParameters, effect power.EffectSize) (*power.Solution, error) {
	k, err := s.groups(p)
	if err != nil {
		return nil, err
	}

	switch mode {
	case power.ModePower:
		if p.N1 == nil {
			return nil, core.NewMissingParameterError("n1")
		}
		total := float64(*p.N1) * k // N1 carries the per-group size
		pw, err := s.PowerAtN(p, effect, total)
		if err != nil {
			return nil, err
		}
		return s.solution(k, total, pw, effect), nil

	case power.ModeN:
		if p.Power == nil {
			return nil, core.NewMissingParameterError("power")
		}
		n, err := smallestN(p.Groups+1, maxSampleSize, *p.Power, "n", func(n float64) (float64, error) {
			return s.PowerAtN(p, effect, n)
		})
		if err != nil {
			return nil, err
		}
		pw, err := s.PowerAtN(p, effect, float64(n))
		if err != nil {
			return nil, err
		}
		return s.solution(k, float64(n), pw, effect), nil

	case power.ModeMDES:
		if p.N1 == nil || p.Power == nil {
			return nil, core.NewMissingParameterError("n1, power")
		}
		total := float64(*p.N1) * k
		f, err := bisectIncreasing(effectSearchMin, effectSearchMax, *p.Power, "effect_size", func(f float64) (float64, error) {
			return s.PowerAtN(p, power.EffectSize{Value: f, Measure: power.MeasureCohenF}, total)
		})
		if err != nil {
			return nil, err
		}
		es := power.EffectSize{Value: f, Measure: power.MeasureCohenF}
		return s.solution(k, total, *p.Power, es), nil
	}
	return nil, core.ErrUnknownMode
}

func (s *ANOVA) solution(k, totalN, pw float64, effect power.EffectSize) *power.Solution {
	return &power.Solution{
		N1:     totalN / k,
		TotalN: totalN,
		Power:  pw,
		Effect: effect,
	}
}
