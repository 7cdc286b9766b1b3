package ports

import "gopower/domain/power"

// FamilySolver binds one catalog variant to its effect-size resolution
// and inversion routines. The registry is a closed set of these; there is
// no branch-on-identifier dispatch anywhere else.
type FamilySolver interface {
	// ResolveEffectSize derives the standardized effect from the request,
	// either passing a supplied value through or converting raw moments.
	ResolveEffectSize(p power.StudyParameters) (power.EffectSize, error)

	// Solve computes the quantity named by mode. effect carries the
	// resolved effect size except in MDES mode, where it is ignored.
	Solve(mode power.Mode, p power.StudyParameters, effect power.EffectSize) (*power.Solution, error)
}

// ContinuousPower is implemented by parametric solvers whose power can be
// evaluated at a non-integer sample size. Approximation adapters rescale
// through this rather than re-deriving the parametric model.
type ContinuousPower interface {
	// PowerAtN evaluates achieved power at a continuous per-group (or
	// total, for ANOVA-family solvers) sample size.
	PowerAtN(p power.StudyParameters, effect power.EffectSize, n float64) (float64, error)
}
