package power

import (
	"fmt"
	"math"

	"gopower/domain/core"
)

// ============================================================================
// STABLE PRIMITIVES (Canonical, never change)
// ============================================================================

// Mode selects which of {N, power, effect} the engine solves for.
// The other two must be supplied.
type Mode string

const (
	ModeN     Mode = "n"     // solve required sample size
	ModePower Mode = "power" // solve achieved power
	ModeMDES  Mode = "mdes"  // solve minimum detectable effect size
)

// ParseMode validates a mode string from the boundary.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeN, ModePower, ModeMDES:
		return Mode(s), nil
	}
	return "", fmt.Errorf("%w: %q", core.ErrUnknownMode, s)
}

// Sidedness of the alternative hypothesis.
type Sidedness string

const (
	TwoSided Sidedness = "two-sided"
	OneSided Sidedness = "one-sided"
)

// Objective of the comparison. Non-inferiority is always one-sided;
// equivalence uses the two-one-sided-tests approximation.
type Objective string

const (
	Superiority    Objective = "superiority"
	NonInferiority Objective = "non-inferiority"
	Equivalence    Objective = "equivalence"
)

// Family tags the test family a spec belongs to.
type Family string

const (
	FamilyT          Family = "t"
	FamilyANOVA      Family = "anova"
	FamilyProportion Family = "proportion"
	FamilyRank       Family = "rank"
	FamilyExact      Family = "exact"
	FamilySurvival   Family = "survival"
	FamilyCluster    Family = "cluster"
	FamilyRepeated   Family = "repeated"
	FamilyBayesian   Family = "bayesian"
)

// EffectMeasure names the standardized effect a family consumes.
type EffectMeasure string

const (
	MeasureCohenD      EffectMeasure = "cohen_d"
	MeasureCohenF      EffectMeasure = "cohen_f"
	MeasureCohenH      EffectMeasure = "cohen_h"
	MeasureHazardRatio EffectMeasure = "hazard_ratio"
)

// ============================================================================
// STUDY PARAMETERS
// ============================================================================

// StudyParameters is the full parameter surface for one calculation
// request. Which fields are required is determined by TestSpec and Mode;
// optional numeric inputs are pointers so absence is distinguishable
// from zero. Immutable for the duration of a solve.
type StudyParameters struct {
	Alpha     float64   `json:"alpha"`
	Sidedness Sidedness `json:"sidedness,omitempty"`
	Objective Objective `json:"objective,omitempty"`

	Power *float64 `json:"power,omitempty"`
	N1    *int     `json:"n1,omitempty"`
	Ratio float64  `json:"ratio,omitempty"` // n2/n1 allocation, defaults to 1

	// Standardized effect, or hazard ratio for survival designs.
	Effect *float64 `json:"effect_size,omitempty"`

	// Raw moments from which an effect size may be resolved.
	Mean1      *float64  `json:"mean1,omitempty"`
	Mean2      *float64  `json:"mean2,omitempty"`
	PooledSD   *float64  `json:"pooled_sd,omitempty"`
	NullMean   *float64  `json:"null_mean,omitempty"`
	SampleMean *float64  `json:"sample_mean,omitempty"`
	SD         *float64  `json:"sd,omitempty"`
	MeanDiff   *float64  `json:"mean_diff,omitempty"`
	SDDiff     *float64  `json:"sd_diff,omitempty"`
	P1         *float64  `json:"p1,omitempty"` // null/control proportion
	P2         *float64  `json:"p2,omitempty"` // alternative/treatment proportion
	GroupMeans []float64 `json:"group_means,omitempty"`

	Groups int `json:"groups,omitempty"` // k for ANOVA-family designs

	// Survival
	HazardRatio      *float64 `json:"hazard_ratio,omitempty"`
	EventProbability *float64 `json:"event_probability,omitempty"`

	// Cluster design
	ICC         *float64 `json:"icc,omitempty"`
	ClusterSize int      `json:"cluster_size,omitempty"`

	// Repeated measures
	Correlation  *float64 `json:"correlation,omitempty"`
	Measurements int      `json:"measurements,omitempty"`

	// Bayesian assurance
	PriorMean *float64 `json:"prior_mean,omitempty"`
	PriorSD   *float64 `json:"prior_sd,omitempty"`
	Draws     int      `json:"draws,omitempty"`
	Seed      int64    `json:"seed,omitempty"`

	Dropout float64 `json:"dropout,omitempty"`
}

// AllocationRatio returns the n2/n1 ratio, defaulting to equal allocation.
func (p StudyParameters) AllocationRatio() float64 {
	if p.Ratio <= 0 {
		return 1.0
	}
	return p.Ratio
}

// EffectiveSidedness folds the study objective into the test sidedness.
// Non-inferiority and equivalence comparisons are one-sided by construction.
func (p StudyParameters) EffectiveSidedness() Sidedness {
	if p.Objective == NonInferiority || p.Objective == Equivalence {
		return OneSided
	}
	if p.Sidedness == OneSided {
		return OneSided
	}
	return TwoSided
}

// ============================================================================
// EFFECT SIZE
// ============================================================================

// EffectSize is a standardized effect magnitude tagged by the measure it
// expresses. Either supplied directly or derived from raw moments.
type EffectSize struct {
	Value   float64       `json:"value"`
	Measure EffectMeasure `json:"measure"`
}

// Validate enforces the family constraints on an effect size. A zero or
// otherwise invalid effect is an input error, never silently coerced.
func (e EffectSize) Validate() error {
	if math.IsNaN(e.Value) || math.IsInf(e.Value, 0) {
		return core.NewDomainError("effect_size", e.Value, "effect size must be finite")
	}
	switch e.Measure {
	case MeasureHazardRatio:
		if e.Value <= 0 {
			return core.NewDomainError("hazard_ratio", e.Value, "hazard ratio must be positive")
		}
		if e.Value == 1 {
			return core.NewDomainError("hazard_ratio", e.Value, "hazard ratio must differ from 1")
		}
	default:
		if e.Value <= 0 {
			return core.NewDomainError("effect_size", e.Value, "effect size must be positive")
		}
	}
	return nil
}

// ============================================================================
// DIAGNOSTICS
// ============================================================================

// WarningCode represents structured warning types
type WarningCode string

const (
	WarningSmallSampleApprox  WarningCode = "SMALL_SAMPLE_APPROX"  // ARE rescaling degrades below N=20
	WarningHeuristic          WarningCode = "HEURISTIC_ADJUSTMENT" // fixed exact-test multipliers applied
	WarningLowExpectedCell5   WarningCode = "LOW_EXPECTED_CELL_5"  // expected cell count below 5
	WarningLowExpectedCell10  WarningCode = "LOW_EXPECTED_CELL_10" // expected cell count below 10
	WarningUnusualAlpha       WarningCode = "UNUSUAL_ALPHA"        // alpha outside [0.001, 0.20]
	WarningNonConvergence     WarningCode = "NON_CONVERGENCE"      // search stopped at iteration bound
	WarningFailedDraws        WarningCode = "MC_FAILED_DRAWS"      // non-finite Monte Carlo draws recorded
	WarningDrawSummary        WarningCode = "MC_DRAW_SUMMARY"      // per-draw power distribution summary
	WarningHighDropout        WarningCode = "HIGH_DROPOUT"         // dropout rate above 0.5
	WarningObjectiveOneSided  WarningCode = "OBJECTIVE_ONE_SIDED"  // objective forced one-sided testing
	WarningEquivalenceApprox  WarningCode = "EQUIVALENCE_APPROX"   // TOST approximation in use
)

// Diagnostic pairs a warning code with human-readable text.
type Diagnostic struct {
	Code    WarningCode `json:"code"`
	Message string      `json:"message"`
}

// ============================================================================
// CALCULATION RESULT
// ============================================================================

// CalculationResult is the immutable output of one solve.
type CalculationResult struct {
	ID     core.ID `json:"id"`
	TestID TestID  `json:"test_id"`
	Mode   Mode    `json:"mode"`

	N1        int `json:"n1,omitempty"`
	N2        int `json:"n2,omitempty"`
	TotalN    int `json:"total_n,omitempty"`
	AdjustedN int `json:"adjusted_n,omitempty"` // dropout-inflated total
	Clusters  int `json:"clusters,omitempty"`   // per arm, cluster designs only

	Power      float64    `json:"power"`
	EffectSize EffectSize `json:"effect_size"`

	Diagnostics []Diagnostic    `json:"diagnostics,omitempty"`
	Echo        StudyParameters `json:"echoed_parameters"`
}

// RangeCheck is the post-hoc guard: every result must be finite and
// inside its mathematical range even when the computation "succeeded".
func (r *CalculationResult) RangeCheck() error {
	if math.IsNaN(r.Power) || math.IsInf(r.Power, 0) || r.Power < 0 || r.Power > 1 {
		return core.NewDomainError("power", r.Power, "computed power outside [0, 1]")
	}
	if r.Mode != ModePower && r.TotalN <= 0 {
		return core.NewDomainError("total_n", float64(r.TotalN), "computed sample size must be positive")
	}
	if err := r.EffectSize.Validate(); err != nil {
		return err
	}
	return nil
}
