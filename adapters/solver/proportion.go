package solver

import (
	"math"

	"gopower/domain/core"
	"gopower/domain/power"
)

// TwoProportion solves the two-independent-proportions z test on the
// arcsine (Cohen's h) scale. Power and N are closed form in the normal
// model; MDES bisects over h.
type TwoProportion struct{}

// NewTwoProportion creates the two-proportion z solver.
func NewTwoProportion() *TwoProportion {
	return &TwoProportion{}
}

// ResolveEffectSize passes a supplied Cohen's h through, or derives it
// from the two proportions.
func (s *TwoProportion) ResolveEffectSize(p power.StudyParameters) (power.EffectSize, error) {
	if p.Effect != nil {
		es := power.EffectSize{Value: *p.Effect, Measure: power.MeasureCohenH}
		return es, es.Validate()
	}
	if p.P1 == nil || p.P2 == nil {
		return power.EffectSize{}, core.NewMissingParameterError("p1, p2 (or effect_size)")
	}
	return power.CohenH(*p.P1, *p.P2)
}

// PowerAtN evaluates achieved power at a continuous per-group n1.
func (s *TwoProportion) PowerAtN(p power.StudyParameters, effect power.EffectSize, n1 float64) (float64, error) {
	if n1 < 2 {
		return 0, core.NewDomainError("n1", n1, "at least two subjects per group required")
	}
	r := p.AllocationRatio()
	h := math.Abs(effect.Value)
	ncp := h * math.Sqrt(n1*r/(1+r))
	za := normalQuantile(1 - criticalAlpha(p))

	raw := 1 - normalCDF(za-ncp)
	if p.EffectiveSidedness() == power.TwoSided {
		raw += normalCDF(-za - ncp)
	}
	return clamp01(adjustObjective(p, raw)), nil
}

func (s *TwoProportion) Solve(mode power.Mode, p power.StudyParameters, effect power.EffectSize) (*power.Solution, error) {
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
		// Closed-form normal inversion: effective n from the z pair,
		// split per group by the allocation ratio.
		r := p.AllocationRatio()
		h := math.Abs(effect.Value)
		za := normalQuantile(1 - criticalAlpha(p))
		zb := normalQuantile(targetPower(p, *p.Power))
		nEff := (za + zb) * (za + zb) / (h * h)
		n1 := nEff * (1 + r) / r
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
		h, err := bisectIncreasing(effectSearchMin, effectSearchMax, *p.Power, "effect_size", func(h float64) (float64, error) {
			return s.PowerAtN(p, power.EffectSize{Value: h, Measure: power.MeasureCohenH}, float64(*p.N1))
		})
		if err != nil {
			return nil, err
		}
		es := power.EffectSize{Value: h, Measure: power.MeasureCohenH}
		return s.solution(p, float64(*p.N1), *p.Power, es), nil
	}
	return nil, core.ErrUnknownMode
}

func (s *TwoProportion) solution(p power.StudyParameters, n1, pw float64, effect power.EffectSize) *power.Solution {
	n2 := n1 * p.AllocationRatio()
	return &power.Solution{N1: n1, N2: n2, TotalN: n1 + n2, Power: pw, Effect: effect}
}

// targetPower maps the requested power to the z-beta probability,
// accounting for the equivalence (TOST) approximation.
func targetPower(p power.StudyParameters, requested float64) float64 {
	if p.Objective == power.Equivalence {
		return 1 - (1-requested)/2
	}
	return requested
}

// OneProportion solves the single-proportion z test with exact null and
// alternative variances, the way the classical formula writes it:
// n = [(z_a*sqrt(p0*q0) + z_b*sqrt(p1*q1)) / (p1 - p0)]^2.
type OneProportion struct{}

// NewOneProportion creates the single-proportion z solver.
func NewOneProportion() *OneProportion {
	return &OneProportion{}
}

// nullProp validates the null proportion alone; MDES mode searches for
// the alternative and must not demand it up front.
func (s *OneProportion) nullProp(p power.StudyParameters) (float64, error) {
	if p.P1 == nil {
		return 0, core.NewMissingParameterError("p1")
	}
	p0 := *p.P1
	if p0 <= 0 || p0 >= 1 {
		return 0, core.NewDomainError("p1", p0, "proportion must be strictly between 0 and 1")
	}
	return p0, nil
}

func (s *OneProportion) props(p power.StudyParameters) (p0, p1 float64, err error) {
	p0, err = s.nullProp(p)
	if err != nil {
		return 0, 0, err
	}
	if p.P2 == nil {
		return 0, 0, core.NewMissingParameterError("p2")
	}
	p1 = *p.P2
	if p1 <= 0 || p1 >= 1 {
		return 0, 0, core.NewDomainError("p2", p1, "proportion must be strictly between 0 and 1")
	}
	if p0 == p1 {
		return 0, 0, core.NewDomainError("p2", p1, "null and alternative proportions must differ")
	}
	return p0, p1, nil
}

// ResolveEffectSize reports the arcsine-scale effect for the two
// proportions; the solver itself works on the raw scale.
func (s *OneProportion) ResolveEffectSize(p power.StudyParameters) (power.EffectSize, error) {
	p0, p1, err := s.props(p)
	if err != nil {
		return power.EffectSize{}, err
	}
	return power.CohenH(p0, p1)
}

func (s *OneProportion) powerAt(p power.StudyParameters, p0, p1, n float64) float64 {
	za := normalQuantile(1 - criticalAlpha(p))
	diff := math.Abs(p1 - p0)
	sd0 := math.Sqrt(p0 * (1 - p0))
	sd1 := math.Sqrt(p1 * (1 - p1))

	raw := normalCDF((diff*math.Sqrt(n) - za*sd0) / sd1)
	if p.EffectiveSidedness() == power.TwoSided {
		raw += normalCDF((-diff*math.Sqrt(n) - za*sd0) / sd1)
	}
	return clamp01(adjustObjective(p, raw))
}

func (s *OneProportion) Solve(mode power.Mode, p power.StudyParameters, effect power.EffectSize) (*power.Solution, error) {
	switch mode {
	case power.ModePower:
		p0, p1, err := s.props(p)
		if err != nil {
			return nil, err
		}
		if p.N1 == nil {
			return nil, core.NewMissingParameterError("n1")
		}
		pw := s.powerAt(p, p0, p1, float64(*p.N1))
		return s.solution(float64(*p.N1), pw, effect), nil

	case power.ModeN:
		p0, p1, err := s.props(p)
		if err != nil {
			return nil, err
		}
		if p.Power == nil {
			return nil, core.NewMissingParameterError("power")
		}
		za := normalQuantile(1 - criticalAlpha(p))
		zb := normalQuantile(targetPower(p, *p.Power))
		sd0 := math.Sqrt(p0 * (1 - p0))
		sd1 := math.Sqrt(p1 * (1 - p1))
		num := za*sd0 + zb*sd1
		n := (num / math.Abs(p1-p0)) * (num / math.Abs(p1-p0))
		if n < 2 {
			n = 2
		}
		return s.solution(n, s.powerAt(p, p0, p1, n), effect), nil

	case power.ModeMDES:
		p0, err := s.nullProp(p)
		if err != nil {
			return nil, err
		}
		if p.N1 == nil || p.Power == nil {
			return nil, core.NewMissingParameterError("n1, power")
		}
		// Search the detectable alternative proportion above the null;
		// power is monotone in the separation.
		lo, hi := p0+searchTol, 1-searchTol
		alt, err := bisectIncreasing(lo, hi, *p.Power, "p2", func(alt float64) (float64, error) {
			return s.powerAt(p, p0, alt, float64(*p.N1)), nil
		})
		if err != nil {
			return nil, err
		}
		es, err := power.CohenH(p0, alt)
		if err != nil {
			return nil, err
		}
		sol := s.solution(float64(*p.N1), *p.Power, es)
		return sol, nil
	}
	return nil, core.ErrUnknownMode
}

func (s *OneProportion) solution(n, pw float64, effect power.EffectSize) *power.Solution {
	return &power.Solution{N1: n, TotalN: n, Power: pw, Effect: effect}
}
