package power

import (
	"math"

	"gopower/domain/core"
)

// Effect-size conversions from raw study quantities to standardized
// measures. All conversions return magnitudes; direction is not part of
// an effect size here.

// CohenDTwo computes Cohen's d for two independent groups.
func CohenDTwo(mean1, mean2, pooledSD float64) (EffectSize, error) {
	if pooledSD <= 0 {
		return EffectSize{}, core.NewDomainError("pooled_sd", pooledSD, "pooled standard deviation must be positive")
	}
	d := math.Abs(mean1-mean2) / pooledSD
	es := EffectSize{Value: d, Measure: MeasureCohenD}
	return es, es.Validate()
}

// CohenDOne computes Cohen's d for a one-sample comparison against a null value.
func CohenDOne(sampleMean, nullMean, sd float64) (EffectSize, error) {
	if sd <= 0 {
		return EffectSize{}, core.NewDomainError("sd", sd, "standard deviation must be positive")
	}
	d := math.Abs(sampleMean-nullMean) / sd
	es := EffectSize{Value: d, Measure: MeasureCohenD}
	return es, es.Validate()
}

// CohenDPaired computes Cohen's d for paired differences.
func CohenDPaired(meanDiff, sdDiff float64) (EffectSize, error) {
	if sdDiff <= 0 {
		return EffectSize{}, core.NewDomainError("sd_diff", sdDiff, "standard deviation of differences must be positive")
	}
	d := math.Abs(meanDiff) / sdDiff
	es := EffectSize{Value: d, Measure: MeasureCohenD}
	return es, es.Validate()
}

// CohenH computes Cohen's h for two proportions via the arcsine transform.
// Both proportions must lie strictly inside (0, 1).
func CohenH(p1, p2 float64) (EffectSize, error) {
	if p1 <= 0 || p1 >= 1 {
		return EffectSize{}, core.NewDomainError("p1", p1, "proportion must be strictly between 0 and 1")
	}
	if p2 <= 0 || p2 >= 1 {
		return EffectSize{}, core.NewDomainError("p2", p2, "proportion must be strictly between 0 and 1")
	}
	h := math.Abs(2*math.Asin(math.Sqrt(p1)) - 2*math.Asin(math.Sqrt(p2)))
	if h == 0 {
		return EffectSize{}, core.NewDomainError("p2", p2, "proportions must differ")
	}
	es := EffectSize{Value: h, Measure: MeasureCohenH}
	return es, es.Validate()
}

// CohenF computes Cohen's f from k group means and a pooled standard
// deviation, assuming equal group sizes.
func CohenF(groupMeans []float64, pooledSD float64) (EffectSize, error) {
	if len(groupMeans) < 2 {
		return EffectSize{}, core.NewDomainError("group_means", float64(len(groupMeans)), "at least two group means required")
	}
	if pooledSD <= 0 {
		return EffectSize{}, core.NewDomainError("pooled_sd", pooledSD, "pooled standard deviation must be positive")
	}
	grand := 0.0
	for _, m := range groupMeans {
		grand += m
	}
	grand /= float64(len(groupMeans))

	ss := 0.0
	for _, m := range groupMeans {
		ss += (m - grand) * (m - grand)
	}
	f := math.Sqrt(ss/float64(len(groupMeans))) / pooledSD
	es := EffectSize{Value: f, Measure: MeasureCohenF}
	return es, es.Validate()
}

// HazardRatio wraps a directly supplied hazard ratio with validation.
func HazardRatio(hr float64) (EffectSize, error) {
	es := EffectSize{Value: hr, Measure: MeasureHazardRatio}
	return es, es.Validate()
}
