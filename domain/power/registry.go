package power

import (
	"fmt"
	"sort"

	"gopower/domain/core"
)

// TestID identifies a test family variant in the closed catalog.
type TestID string

const (
	TestTwoSampleT     TestID = "two_sample_t"
	TestOneSampleT     TestID = "one_sample_t"
	TestPairedT        TestID = "paired_t"
	TestOneWayANOVA    TestID = "one_way_anova"
	TestTwoProportionZ TestID = "two_proportion_z"
	TestOneProportionZ TestID = "one_proportion_z"
	TestMannWhitney    TestID = "mann_whitney"
	TestWilcoxon       TestID = "wilcoxon"
	TestKruskalWallis  TestID = "kruskal_wallis"
	TestFishersExact   TestID = "fishers_exact"
	TestLogRank        TestID = "log_rank"
	TestClusterT       TestID = "cluster_two_sample_t"
	TestRepeatedANOVA  TestID = "repeated_measures_anova"
	TestAssurance      TestID = "bayesian_assurance"
)

// Named constants owned by the registry. These are documented, unverified
// approximations carried over unchanged: altering them silently changes
// previously published-compatible results.
const (
	// AREFactor is the asymptotic relative efficiency of the rank-based
	// tests versus their parametric counterparts (3/pi, conventionally 0.955).
	AREFactor = 0.955

	// ExactTestNFactor and ExactTestPowerFactor are the fixed heuristic
	// multipliers applied when the exact 2x2-table test reuses the
	// two-proportion normal approximation.
	ExactTestNFactor     = 1.05
	ExactTestPowerFactor = 0.95

	// SmallSampleThreshold is the per-group N below which the ARE
	// rescaling loses accuracy and a diagnostic must be surfaced.
	SmallSampleThreshold = 20

	// Expected-cell-count diagnostic thresholds for proportion tests.
	CellCountSerious = 5
	CellCountMild    = 10

	// Monte Carlo draw bounds and the failed-draw fraction above which an
	// assurance solve is reported as numerically unstable.
	MinDraws            = 1000
	MaxDraws            = 10000
	FailedDrawThreshold = 0.5
)

// Benchmarks holds the conventional small/medium/large effect values for
// a test family, used by presentation layers to seed input forms.
type Benchmarks struct {
	Small  float64 `json:"small"`
	Medium float64 `json:"medium"`
	Large  float64 `json:"large"`
}

// TestSpec is the immutable descriptor for one catalog entry. Created
// once at startup, never mutated.
type TestSpec struct {
	ID          TestID        `json:"id"`
	Family      Family        `json:"family"`
	Description string        `json:"description"`
	Measure     EffectMeasure `json:"effect_measure"`
	Benchmarks  Benchmarks    `json:"benchmarks"`

	// RawInputs lists the raw-moment fields from which the effect size
	// can be resolved when it is not supplied directly.
	RawInputs []string `json:"raw_inputs,omitempty"`

	// Design fields the variant requires beyond the solvable trio.
	DesignFields []string `json:"design_fields,omitempty"`

	// TwoArm variants report n1/n2/total; single-arm only a total N.
	TwoArm bool `json:"two_arm"`
}

var catalog = map[TestID]TestSpec{
	TestTwoSampleT: {
		ID: TestTwoSampleT, Family: FamilyT, Measure: MeasureCohenD, TwoArm: true,
		Description: "Two-sample independent groups t-test",
		Benchmarks:  Benchmarks{Small: 0.2, Medium: 0.5, Large: 0.8},
		RawInputs:   []string{"mean1", "mean2", "pooled_sd"},
	},
	TestOneSampleT: {
		ID: TestOneSampleT, Family: FamilyT, Measure: MeasureCohenD,
		Description: "One-sample t-test",
		Benchmarks:  Benchmarks{Small: 0.2, Medium: 0.5, Large: 0.8},
		RawInputs:   []string{"null_mean", "sample_mean", "sd"},
	},
	TestPairedT: {
		ID: TestPairedT, Family: FamilyT, Measure: MeasureCohenD,
		Description: "Paired t-test",
		Benchmarks:  Benchmarks{Small: 0.2, Medium: 0.5, Large: 0.8},
		RawInputs:   []string{"mean_diff", "sd_diff"},
	},
	TestOneWayANOVA: {
		ID: TestOneWayANOVA, Family: FamilyANOVA, Measure: MeasureCohenF,
		Description:  "One-way ANOVA (between subjects)",
		Benchmarks:   Benchmarks{Small: 0.10, Medium: 0.25, Large: 0.40},
		RawInputs:    []string{"group_means", "pooled_sd"},
		DesignFields: []string{"groups"},
	},
	TestTwoProportionZ: {
		ID: TestTwoProportionZ, Family: FamilyProportion, Measure: MeasureCohenH, TwoArm: true,
		Description: "Z-test for two independent proportions",
		Benchmarks:  Benchmarks{Small: 0.2, Medium: 0.5, Large: 0.8},
		RawInputs:   []string{"p1", "p2"},
	},
	TestOneProportionZ: {
		ID: TestOneProportionZ, Family: FamilyProportion, Measure: MeasureCohenH,
		Description: "Z-test for a single proportion",
		Benchmarks:  Benchmarks{Small: 0.2, Medium: 0.5, Large: 0.8},
		RawInputs:   []string{"p1", "p2"},
	},
	TestMannWhitney: {
		ID: TestMannWhitney, Family: FamilyRank, Measure: MeasureCohenD, TwoArm: true,
		Description: "Mann-Whitney U test (ARE-rescaled t-test)",
		Benchmarks:  Benchmarks{Small: 0.2, Medium: 0.5, Large: 0.8},
		RawInputs:   []string{"mean1", "mean2", "pooled_sd"},
	},
	TestWilcoxon: {
		ID: TestWilcoxon, Family: FamilyRank, Measure: MeasureCohenD,
		Description: "Wilcoxon signed-rank test (ARE-rescaled paired t-test)",
		Benchmarks:  Benchmarks{Small: 0.2, Medium: 0.5, Large: 0.8},
		RawInputs:   []string{"mean_diff", "sd_diff"},
	},
	TestKruskalWallis: {
		ID: TestKruskalWallis, Family: FamilyRank, Measure: MeasureCohenF,
		Description:  "Kruskal-Wallis test (ARE-rescaled ANOVA)",
		Benchmarks:   Benchmarks{Small: 0.10, Medium: 0.25, Large: 0.40},
		RawInputs:    []string{"group_means", "pooled_sd"},
		DesignFields: []string{"groups"},
	},
	TestFishersExact: {
		ID: TestFishersExact, Family: FamilyExact, Measure: MeasureCohenH, TwoArm: true,
		Description: "Fisher's exact test (heuristic two-proportion approximation)",
		Benchmarks:  Benchmarks{Small: 0.2, Medium: 0.5, Large: 0.8},
		RawInputs:   []string{"p1", "p2"},
	},
	TestLogRank: {
		ID: TestLogRank, Family: FamilySurvival, Measure: MeasureHazardRatio, TwoArm: true,
		Description:  "Log-rank test for survival (Schoenfeld events formula)",
		Benchmarks:   Benchmarks{Small: 0.8, Medium: 0.65, Large: 0.5},
		RawInputs:    []string{"hazard_ratio"},
		DesignFields: []string{"event_probability"},
	},
	TestClusterT: {
		ID: TestClusterT, Family: FamilyCluster, Measure: MeasureCohenD, TwoArm: true,
		Description:  "Cluster-randomized two-sample t-test (design-effect inflation)",
		Benchmarks:   Benchmarks{Small: 0.2, Medium: 0.5, Large: 0.8},
		RawInputs:    []string{"mean1", "mean2", "pooled_sd"},
		DesignFields: []string{"icc", "cluster_size"},
	},
	TestRepeatedANOVA: {
		ID: TestRepeatedANOVA, Family: FamilyRepeated, Measure: MeasureCohenF,
		Description:  "Repeated-measures ANOVA (compound-symmetry correlation adjustment)",
		Benchmarks:   Benchmarks{Small: 0.10, Medium: 0.25, Large: 0.40},
		DesignFields: []string{"correlation", "measurements"},
	},
	TestAssurance: {
		ID: TestAssurance, Family: FamilyBayesian, Measure: MeasureCohenD, TwoArm: true,
		Description:  "Bayesian assurance for a two-sample comparison (Monte Carlo)",
		Benchmarks:   Benchmarks{Small: 0.2, Medium: 0.5, Large: 0.8},
		DesignFields: []string{"prior_mean", "prior_sd"},
	},
}

// Registry is the read-only catalog of test specs.
type Registry struct{}

// NewRegistry returns the catalog accessor.
func NewRegistry() Registry { return Registry{} }

// Lookup resolves a test identifier to its spec.
func (Registry) Lookup(id TestID) (TestSpec, error) {
	spec, ok := catalog[id]
	if !ok {
		return TestSpec{}, fmt.Errorf("%w: %q", core.ErrUnknownTest, id)
	}
	return spec, nil
}

// Specs returns every catalog entry sorted by identifier, for
// presentation layers that build input forms.
func (Registry) Specs() []TestSpec {
	specs := make([]TestSpec, 0, len(catalog))
	for _, spec := range catalog {
		specs = append(specs, spec)
	}
	sort.Slice(specs, func(i, j int) bool { return specs[i].ID < specs[j].ID })
	return specs
}
